package db

import (
	"context"
	"database/sql"
)

const gatewayMigration = `
CREATE TABLE IF NOT EXISTS gateway_sessions (
    connection_id text PRIMARY KEY,
    subject text NOT NULL,
    claims jsonb,
    created_at timestamptz NOT NULL DEFAULT NOW(),
    expires_at timestamptz NOT NULL
);

CREATE INDEX IF NOT EXISTS gateway_sessions_expires_at_idx
ON gateway_sessions (expires_at);
`

// RunGatewayMigration creates the session binding table. Expired rows are
// filtered on read; the expires_at index keeps an external cleanup job
// cheap.
func RunGatewayMigration(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, gatewayMigration)
	return err
}
