package apiclient

import (
	"fmt"
)

// RequestError is returned for transport failures and non-2xx responses.
// StatusCode is 0 when no response was received.
type RequestError struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *RequestError) Error() string {
	switch {
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: unexpected status %d", e.Op, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return e.Op + ": request failed"
	}
}

func (e *RequestError) Unwrap() error { return e.Err }

// AuthError is returned by Login when the credentials are not accepted.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	return "invalid credentials: access denied"
}

func (e *AuthError) Unwrap() error { return e.Err }
