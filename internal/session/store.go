package session

import (
	"context"
	"errors"
	"time"

	"ws-gateway/internal/identity"
)

// Session binds a transport connection handle to the identity that was
// verified when the connection was admitted. Presence in a Store is what
// makes a connection Active; there is no separate status field, so the
// binding and the state can never drift apart.
type Session struct {
	ConnectionID string            `json:"connection_id"` // opaque handle assigned by the transport
	Identity     identity.Identity `json:"identity"`
	CreatedAt    time.Time         `json:"created_at"`
	ExpiresAt    time.Time         `json:"expires_at"` // absolute idle-expiry time
}

// Expired reports whether the binding is past its idle window.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// ErrNotFound is returned by Store.Get when no live binding exists for a
// connection handle. Callers must fail closed on it, never fall back to
// an anonymous identity.
var ErrNotFound = errors.New("session: not found")

// Store defines how session bindings are stored and retrieved. The store
// is the sole record of which connections are live; handler processes
// keep no state of their own.
//
// Every backing must provide read-your-write consistency: a Get
// immediately after a Put on the same store instance observes that Put.
// Cross-instance visibility is a property of the chosen backing, not of
// this interface.
type Store interface {
	// Put creates or overwrites the binding for s.ConnectionID.
	// Idempotent: repeating a Put leaves the same observable state.
	Put(ctx context.Context, s Session) error

	// Get returns the live binding for the handle, or ErrNotFound when
	// the handle is unknown or the binding has expired.
	Get(ctx context.Context, connectionID string) (*Session, error)

	// Remove deletes the binding. Removing an absent handle is not an
	// error.
	Remove(ctx context.Context, connectionID string) error
}
