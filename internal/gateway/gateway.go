package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"ws-gateway/internal/identity"
	"ws-gateway/internal/logger"
	"ws-gateway/internal/session"
)

// DefaultSessionTTL is the idle window after which a binding goes stale.
// It mirrors the keepalive window the transport applies to a silent
// connection, so a binding never outlives its socket by much.
const DefaultSessionTTL = 10 * time.Minute

// sendTimeout bounds the detached welcome send.
const sendTimeout = 5 * time.Second

// Transport is the delivery capability the gateway uses for effects that
// are not part of an event's synchronous response.
type Transport interface {
	// Send delivers payload to a live connection.
	Send(ctx context.Context, connectionID string, payload []byte) error
	// Close tears the connection down at the transport level.
	Close(ctx context.Context, connectionID string) error
}

// Result is the outcome of one lifecycle transition: the status and body
// handed back to the transport layer.
type Result struct {
	StatusCode int
	Body       string
}

// Gateway drives the per-connection lifecycle. The credential is verified
// exactly once, at connect; the resulting identity is bound in the session
// store and resolved from there for every later message on the handle.
// The store is the only state the gateway has: a handle is Active exactly
// while its binding is present.
type Gateway struct {
	verifier  identity.Verifier
	store     session.Store
	transport Transport
	ttl       time.Duration
	now       func() time.Time
}

func New(verifier identity.Verifier, store session.Store, transport Transport, ttl time.Duration) *Gateway {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Gateway{
		verifier:  verifier,
		store:     store,
		transport: transport,
		ttl:       ttl,
		now:       time.Now,
	}
}

type greetingBody struct {
	IdentitySubject string `json:"identitySubject"`
	Message         string `json:"message"`
}

type errorBody struct {
	ErrorMessage string `json:"errorMessage"`
}

// Connect admits the connection if its credential verifies. A missing
// credential is rejected without touching the verifier. On success the
// binding is stored and a greeting goes out as a detached send; the
// connect acknowledgment never waits for it.
func (g *Gateway) Connect(ctx context.Context, connectionID, credential string) Result {
	if credential == "" {
		logger.Warn("connect rejected: missing credential", map[string]any{
			"connection_id": connectionID,
		})
		return Result{StatusCode: http.StatusUnauthorized}
	}

	id, err := g.verifier.Verify(ctx, credential)
	if err != nil {
		logger.Warn("connect rejected: credential verification failed", map[string]any{
			"connection_id": connectionID,
			"error":         err.Error(),
		})
		return Result{StatusCode: http.StatusUnauthorized}
	}

	now := g.now()
	sess := session.Session{
		ConnectionID: connectionID,
		Identity:     *id,
		CreatedAt:    now,
		ExpiresAt:    now.Add(g.ttl),
	}

	if err := g.store.Put(ctx, sess); err != nil {
		logger.Error("connect failed: session store unavailable", map[string]any{
			"connection_id": connectionID,
			"error":         err.Error(),
		})
		return Result{StatusCode: http.StatusInternalServerError}
	}

	logger.Info("connection authorized", map[string]any{
		"connection_id": connectionID,
		"subject":       id.Subject,
	})

	g.sendGreeting(connectionID, id.Subject)

	return Result{StatusCode: http.StatusOK}
}

// Disconnect removes the binding. Idempotent: a handle that was never
// admitted, or was already removed, still acknowledges with 200.
func (g *Gateway) Disconnect(ctx context.Context, connectionID string) Result {
	if err := g.store.Remove(ctx, connectionID); err != nil {
		logger.Error("disconnect failed: session store unavailable", map[string]any{
			"connection_id": connectionID,
			"error":         err.Error(),
		})
		return Result{StatusCode: http.StatusInternalServerError}
	}

	logger.Info("connection closed", map[string]any{
		"connection_id": connectionID,
	})
	return Result{StatusCode: http.StatusOK}
}

// Message resolves the handle's identity and echoes the payload. A handle
// with no live binding fails closed with 403 and an explicit reconnect
// instruction; the sender is never treated as anonymous.
func (g *Gateway) Message(ctx context.Context, connectionID, payload string) Result {
	sess, err := g.store.Get(ctx, connectionID)
	if errors.Is(err, session.ErrNotFound) {
		logger.Warn("message on unknown connection", map[string]any{
			"connection_id": connectionID,
		})
		return Result{
			StatusCode: http.StatusForbidden,
			Body:       marshalBody(errorBody{ErrorMessage: "Unknown connection ID. Please reconnect."}),
		}
	}
	if err != nil {
		logger.Error("message failed: session lookup error", map[string]any{
			"connection_id": connectionID,
			"error":         err.Error(),
		})
		return Result{StatusCode: http.StatusInternalServerError}
	}

	return Result{
		StatusCode: http.StatusOK,
		Body: marshalBody(greetingBody{
			IdentitySubject: sess.Identity.Subject,
			Message:         "Echo: " + payload,
		}),
	}
}

// sendGreeting dispatches the welcome message without blocking the
// caller. The transport acknowledges a connect without a payload, so the
// greeting can only travel out-of-band; its failure is logged, never
// surfaced to the connect response.
func (g *Gateway) sendGreeting(connectionID, subject string) {
	payload := []byte(marshalBody(greetingBody{
		IdentitySubject: subject,
		Message:         fmt.Sprintf("Hello %s!!", subject),
	}))

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()

		if err := g.transport.Send(ctx, connectionID, payload); err != nil {
			logger.Error("greeting send failed", map[string]any{
				"connection_id": connectionID,
				"error":         err.Error(),
			})
		}
	}()
}

func marshalBody(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		// Both body types marshal unconditionally.
		panic(err)
	}
	return string(data)
}
