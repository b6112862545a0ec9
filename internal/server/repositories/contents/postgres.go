// Package contents provides the PostgreSQL-backed repository for the
// capsule content payload (1:1 with capsules, unique capsule_id).
package contents

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cloudcapsule/cloudcapsule/internal/common"
	"github.com/cloudcapsule/cloudcapsule/internal/dbx"
	"github.com/cloudcapsule/cloudcapsule/internal/server/models"
)

// PostgresRepository implements content storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts the content row for a capsule. Run inside dbx.WithTx
// together with the capsule insert so the pair commits atomically.
func (r *PostgresRepository) Create(ctx context.Context, content *models.Content) (*models.Content, error) {
	urls, err := encodePhotoURLs(content.PhotoURLs)
	if err != nil {
		return nil, err
	}
	query := `
		INSERT INTO contents (capsule_id, letter, secret, feeling, rating, song, photo_urls)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err = r.db.QueryRowContext(ctx, query,
		content.CapsuleID, content.Letter, content.Secret, content.Feeling,
		content.Rating, content.Song, urls).Scan(&content.ID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return content, nil
}

// Update rewrites the content row addressed by capsule_id. The caller is
// responsible for merging photo URLs (append semantics live in the
// service, not here).
func (r *PostgresRepository) Update(ctx context.Context, content *models.Content) error {
	urls, err := encodePhotoURLs(content.PhotoURLs)
	if err != nil {
		return err
	}
	query := `
		UPDATE contents
		SET letter = $2, secret = $3, feeling = $4, rating = $5, song = $6, photo_urls = $7
		WHERE capsule_id = $1
	`
	res, err := r.db.ExecContext(ctx, query,
		content.CapsuleID, content.Letter, content.Secret, content.Feeling,
		content.Rating, content.Song, urls)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// DeleteByCapsule removes the content row of a capsule. Part of the
// explicit cascade run when a capsule is deleted.
func (r *PostgresRepository) DeleteByCapsule(ctx context.Context, capsuleID string) error {
	query := `
		DELETE FROM contents
		WHERE capsule_id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, capsuleID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func encodePhotoURLs(urls []string) (string, error) {
	if urls == nil {
		urls = []string{}
	}
	b, err := json.Marshal(urls)
	if err != nil {
		return "", fmt.Errorf("encoding photo_urls: %w", err)
	}
	return string(b), nil
}
