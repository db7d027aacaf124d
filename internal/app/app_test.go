package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rgpvpanel/console/internal/config"
	"github.com/rgpvpanel/console/internal/console"
)

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		APIBaseURL:  "http://127.0.0.1:5000",
		SessionFile: filepath.Join(t.TempDir(), "session.json"),
		ReadErrors:  "surface",
		LogLevel:    "warn",
	}
}

func TestNew(t *testing.T) {
	a, err := New(testConfig(t))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if a.ReadPolicy != console.ReadSurface {
		t.Fatalf("expected surface policy")
	}
	if a.Client.BaseURL() != "http://127.0.0.1:5000" {
		t.Fatalf("unexpected base url %s", a.Client.BaseURL())
	}
	if a.Session.Active() {
		t.Fatalf("fresh app should not have an active session")
	}
	env := a.Env(&console.Notices{})
	if env.API == nil || env.Session != a.Session {
		t.Fatalf("env not wired: %+v", env)
	}
}

func TestNewRejectsBadSettings(t *testing.T) {
	cfg := testConfig(t)
	cfg.ReadErrors = "loud"
	if _, err := New(cfg); err == nil {
		t.Fatalf("expected read policy error")
	}
	cfg = testConfig(t)
	cfg.LogLevel = "chatty"
	if _, err := New(cfg); err == nil {
		t.Fatalf("expected log level error")
	}
}

func TestStorageDisabled(t *testing.T) {
	a, err := New(testConfig(t))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	store, err := a.Storage(context.Background())
	if err != nil || store != nil {
		t.Fatalf("expected no storage without settings, got %v %v", store, err)
	}
}
