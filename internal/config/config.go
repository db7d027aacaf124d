// Package config centralizes how the console reads environment variables and
// exposes them as strongly typed Go values.
package config

import (
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config represents runtime configuration for the console binaries.
type Config struct {
	APIBaseURL     string
	Address        string
	SessionFile    string
	ReadErrors     string
	RequestTimeout time.Duration
	LogLevel       string

	ConfirmSecret []byte
	ConfirmTTL    time.Duration

	MaxUploadSize int64
	S3Endpoint    string
	S3AccessKey   string
	S3SecretKey   string
	S3Bucket      string
	S3Region      string
	S3UseSSL      bool
	S3PublicURL   string
}

const (
	defaultAPIBaseURL    = "http://10.80.2.47:5000"
	defaultAddress       = ":8080"
	defaultReadErrors    = "swallow"
	defaultLogLevel      = "info"
	defaultConfirmTTL    = 5 * time.Minute
	defaultMaxUploadSize = 25 << 20 // 25 MiB
	defaultS3Bucket      = "resources"
	defaultS3Region      = "us-east-1"
)

// Load reads configuration from environment variables falling back to
// defaults. A .env file in the working directory is applied first when
// present; variables already set in the environment win.
func Load() (*Config, error) {
	_ = godotenv.Load()
	cfg := &Config{
		APIBaseURL:     strings.TrimRight(readEnv("CONSOLE_API_URL", defaultAPIBaseURL), "/"),
		Address:        readEnv("CONSOLE_ADDRESS", defaultAddress),
		SessionFile:    readEnv("CONSOLE_SESSION_FILE", defaultSessionFile()),
		ReadErrors:     strings.ToLower(readEnv("CONSOLE_READ_ERRORS", defaultReadErrors)),
		RequestTimeout: parseDuration("CONSOLE_REQUEST_TIMEOUT", 0),
		LogLevel:       readEnv("CONSOLE_LOG_LEVEL", defaultLogLevel),
		ConfirmSecret:  parseSecret("CONSOLE_CONFIRM_SECRET"),
		ConfirmTTL:     parseDuration("CONSOLE_CONFIRM_TTL", defaultConfirmTTL),
		MaxUploadSize:  parseInt64("CONSOLE_MAX_UPLOAD_BYTES", defaultMaxUploadSize),
		S3Endpoint:     readEnv("CONSOLE_S3_ENDPOINT", ""),
		S3AccessKey:    readEnv("CONSOLE_S3_ACCESS_KEY", ""),
		S3SecretKey:    readEnv("CONSOLE_S3_SECRET_KEY", ""),
		S3Bucket:       readEnv("CONSOLE_S3_BUCKET", defaultS3Bucket),
		S3Region:       readEnv("CONSOLE_S3_REGION", defaultS3Region),
		S3UseSSL:       parseBool("CONSOLE_S3_USE_SSL", false),
		S3PublicURL:    strings.TrimRight(readEnv("CONSOLE_S3_PUBLIC_URL", ""), "/"),
	}
	if cfg.ConfirmSecret == nil {
		secret, err := randomSecret()
		if err != nil {
			return nil, err
		}
		cfg.ConfirmSecret = secret
	}
	if cfg.ConfirmTTL <= 0 {
		cfg.ConfirmTTL = defaultConfirmTTL
	}
	if cfg.MaxUploadSize <= 0 {
		cfg.MaxUploadSize = defaultMaxUploadSize
	}
	if cfg.RequestTimeout < 0 {
		cfg.RequestTimeout = 0
	}
	return cfg, nil
}

// UploadsEnabled reports whether object storage settings are complete.
func (c *Config) UploadsEnabled() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != "" && c.S3Bucket != ""
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "rgpv-panel", "session.json")
}

func readEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func parseInt64(key string, def int64) int64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			return parsed
		}
	}
	return def
}

func parseBool(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}

func parseDuration(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return def
}

func parseSecret(key string) []byte {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return []byte(v)
	}
	return nil
}

// randRead is swapped in tests.
var randRead = rand.Read

func randomSecret() ([]byte, error) {
	buf := make([]byte, 32)
	if _, err := randRead(buf); err != nil {
		return nil, fmt.Errorf("generate confirm secret (set CONSOLE_CONFIRM_SECRET): %w", err)
	}
	return buf, nil
}
