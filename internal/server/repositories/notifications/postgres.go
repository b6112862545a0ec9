// Package notifications persists which capsule openings have already been
// reported to their owner, so the check-opened poll can deduplicate.
package notifications

import (
	"context"
	"fmt"

	"github.com/cloudcapsule/cloudcapsule/internal/dbx"
)

// PostgresRepository implements notification bookkeeping over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// MarkNotified records that the given capsule openings were reported to
// userID. Re-marking an already notified pair is a no-op.
func (r *PostgresRepository) MarkNotified(ctx context.Context, userID string, capsuleIDs []string) error {
	query := `
		INSERT INTO capsule_notifications (user_id, capsule_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, capsule_id) DO NOTHING
	`
	for _, id := range capsuleIDs {
		if _, err := r.db.ExecContext(ctx, query, userID, id); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
	}
	return nil
}

// DeleteByCapsule removes notification rows for a capsule. Part of the
// explicit cascade run when a capsule is deleted.
func (r *PostgresRepository) DeleteByCapsule(ctx context.Context, capsuleID string) error {
	query := `
		DELETE FROM capsule_notifications
		WHERE capsule_id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, capsuleID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
