// Package signing issues short-lived HMAC tokens that prove a browser user
// explicitly confirmed a destructive action on the web console.
package signing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Signer generates and validates confirmation tokens.
type Signer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSigner creates a Signer whose tokens expire after ttl.
func NewSigner(secret []byte, ttl time.Duration) *Signer {
	return &Signer{secret: secret, ttl: ttl, now: time.Now}
}

// Sign returns the hex signature of action at expiresUnix.
func (s *Signer) Sign(action string, expiresUnix int64) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(fmt.Sprintf("%s:%d", action, expiresUnix)))
	return hex.EncodeToString(mac.Sum(nil))
}

// Token returns "<expires>.<signature>" for action, valid for the TTL.
func (s *Signer) Token(action string) string {
	expiry := s.now().Add(s.ttl).Unix()
	return strconv.FormatInt(expiry, 10) + "." + s.Sign(action, expiry)
}

// Validate reports whether token was issued for action and has not expired.
func (s *Signer) Validate(action, token string) bool {
	expires, signature, ok := strings.Cut(token, ".")
	if !ok {
		return false
	}
	exp, err := strconv.ParseInt(expires, 10, 64)
	if err != nil {
		return false
	}
	if time.Unix(exp, 0).Before(s.now()) {
		return false
	}
	expected := s.Sign(action, exp)
	return hmac.Equal([]byte(expected), []byte(signature))
}
