package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// PostgresStore persists bindings in a durable table so that disconnect
// and message events handled by a different process instance than the
// connect event still observe them. Reads filter on expires_at, so a
// stale binding is unreadable even before the cleanup job removes it.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (p *PostgresStore) Put(ctx context.Context, s Session) error {
	if s.ConnectionID == "" || s.Identity.Subject == "" {
		return fmt.Errorf("session: missing connection_id or subject")
	}
	if !s.ExpiresAt.After(time.Now()) {
		return fmt.Errorf("session: expires_at must be in the future")
	}

	claims, err := json.Marshal(s.Identity.Claims)
	if err != nil {
		return fmt.Errorf("session: failed to marshal claims: %w", err)
	}

	_, err = p.db.ExecContext(ctx, `
		INSERT INTO gateway_sessions (connection_id, subject, claims, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (connection_id) DO UPDATE
		SET subject = EXCLUDED.subject,
		    claims = EXCLUDED.claims,
		    expires_at = EXCLUDED.expires_at`,
		s.ConnectionID, s.Identity.Subject, claims, s.CreatedAt, s.ExpiresAt,
	)
	return err
}

func (p *PostgresStore) Get(ctx context.Context, connectionID string) (*Session, error) {
	row := p.db.QueryRowContext(ctx, `
		SELECT subject, claims, created_at, expires_at
		FROM gateway_sessions
		WHERE connection_id = $1 AND expires_at > NOW()`,
		connectionID,
	)

	s := Session{ConnectionID: connectionID}
	var claims []byte
	if err := row.Scan(&s.Identity.Subject, &claims, &s.CreatedAt, &s.ExpiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if len(claims) > 0 {
		if err := json.Unmarshal(claims, &s.Identity.Claims); err != nil {
			return nil, fmt.Errorf("session: failed to unmarshal claims: %w", err)
		}
	}

	return &s, nil
}

func (p *PostgresStore) Remove(ctx context.Context, connectionID string) error {
	_, err := p.db.ExecContext(ctx,
		`DELETE FROM gateway_sessions WHERE connection_id = $1`,
		connectionID,
	)
	return err
}
