package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Info is what can be read out of a token without verifying it.
type Info struct {
	Subject   string
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Describe decodes the claims of a JWT bearer token for display. The
// signature is not verified and the expiry is only reported, never enforced.
// Opaque (non-JWT) tokens return an error.
func Describe(token string) (Info, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return Info{}, fmt.Errorf("decode token: %w", err)
	}
	var info Info
	if sub, ok := claims["sub"].(string); ok {
		info.Subject = sub
	} else if id, ok := claims["id"].(string); ok {
		info.Subject = id
	} else if name, ok := claims["username"].(string); ok {
		info.Subject = name
	}
	if role, ok := claims["role"].(string); ok {
		info.Role = role
	}
	if iat, ok := claims["iat"].(float64); ok {
		info.IssuedAt = time.Unix(int64(iat), 0).UTC()
	}
	if exp, ok := claims["exp"].(float64); ok {
		info.ExpiresAt = time.Unix(int64(exp), 0).UTC()
	}
	return info, nil
}
