package identity

import (
	"context"
	"crypto"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
)

// OIDCVerifier validates signed JWTs against a static public key set.
// Key material is pinned at startup; no issuer discovery happens at
// verification time, so Verify stays a pure function of its input.
type OIDCVerifier struct {
	verifier *oidc.IDTokenVerifier
	timeout  time.Duration
}

func NewOIDCVerifier(issuer, audience, publicKeyPEM string, timeout time.Duration) (*OIDCVerifier, error) {
	if issuer == "" || audience == "" || publicKeyPEM == "" {
		return nil, errors.New("oidc verifier config missing required fields")
	}

	block, _ := pem.Decode([]byte(publicKeyPEM))
	if block == nil {
		return nil, errors.New("oidc verifier: public key is not PEM encoded")
	}

	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("oidc verifier: failed to parse public key: %w", err)
	}

	keySet := &oidc.StaticKeySet{PublicKeys: []crypto.PublicKey{pub}}
	verifier := oidc.NewVerifier(issuer, keySet, &oidc.Config{
		ClientID:             audience,
		SupportedSigningAlgs: []string{oidc.RS256},
	})

	return &OIDCVerifier{
		verifier: verifier,
		timeout:  timeout,
	}, nil
}

func (v *OIDCVerifier) Verify(ctx context.Context, credential string) (*Identity, error) {
	if credential == "" {
		return nil, &AuthError{Reason: ReasonMissing}
	}

	if v.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, v.timeout)
		defer cancel()
	}

	token, err := v.verifier.Verify(ctx, credential)
	if err != nil {
		var expired *oidc.TokenExpiredError
		if errors.As(err, &expired) {
			return nil, &AuthError{Reason: ReasonExpired, Err: err}
		}
		return nil, &AuthError{Reason: ReasonInvalid, Err: err}
	}

	var claims map[string]any
	if err := token.Claims(&claims); err != nil {
		return nil, &AuthError{Reason: ReasonInvalid, Err: err}
	}

	return &Identity{
		Subject: token.Subject,
		Claims:  claims,
	}, nil
}
