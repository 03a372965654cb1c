package identity

import (
	"context"
	"fmt"
	"strings"
)

// StaticVerifier resolves credentials from a fixed token table. It backs
// the local stage, where no token issuer is available.
type StaticVerifier struct {
	tokens map[string]string // token -> subject
}

func NewStaticVerifier(tokens map[string]string) *StaticVerifier {
	return &StaticVerifier{tokens: tokens}
}

// ParseTokenSpec parses a "token:subject,token:subject" list, the format
// of the STATIC_TOKENS environment value. Malformed pairs are skipped.
func ParseTokenSpec(spec string) map[string]string {
	tokens := make(map[string]string)
	for _, pair := range strings.Split(spec, ",") {
		token, subject, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if !ok || token == "" || subject == "" {
			continue
		}
		tokens[token] = subject
	}
	return tokens
}

func (v *StaticVerifier) Verify(ctx context.Context, credential string) (*Identity, error) {
	if credential == "" {
		return nil, &AuthError{Reason: ReasonMissing}
	}

	subject, ok := v.tokens[credential]
	if !ok {
		return nil, &AuthError{Reason: ReasonInvalid, Err: fmt.Errorf("unknown token")}
	}

	return &Identity{Subject: subject}, nil
}
