package identity

import (
	"context"
	"fmt"
)

// Reason classifies why a credential was rejected.
type Reason string

const (
	// ReasonMissing means no credential was supplied at all.
	ReasonMissing Reason = "missing"
	// ReasonInvalid means the credential was malformed or failed verification.
	ReasonInvalid Reason = "invalid"
	// ReasonExpired means the credential was well-formed but past its validity window.
	ReasonExpired Reason = "expired"
)

// AuthError is the typed rejection produced by a Verifier. The gateway
// translates it into a 401 without leaking the underlying cause to clients.
type AuthError struct {
	Reason Reason
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("identity: credential %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("identity: credential %s", e.Reason)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// Verifier validates an opaque credential and returns the identity it
// asserts. Implementations must be side-effect free and must reject with
// *AuthError so callers can distinguish rejection from infrastructure
// failure.
type Verifier interface {
	Verify(ctx context.Context, credential string) (*Identity, error)
}
