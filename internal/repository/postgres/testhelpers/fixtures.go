package testhelpers

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// BackdateQuote moves created_at of a quote, used for monthly usage tests
func BackdateQuote(ctx context.Context, db *sqlx.DB, id uuid.UUID, createdAt time.Time) error {
	_, err := db.ExecContext(ctx, "UPDATE quotes SET created_at = $2 WHERE id = $1", id, createdAt)
	return err
}
