// Package capsules provides the PostgreSQL-backed repository for capsule
// metadata and the joined capsule+content read queries.
package capsules

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cloudcapsule/cloudcapsule/internal/common"
	"github.com/cloudcapsule/cloudcapsule/internal/dbx"
	"github.com/cloudcapsule/cloudcapsule/internal/server/models"
)

// PostgresRepository implements capsule storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// joinedColumns is shared by ListByUser and GetByIDAndUser so both read
// paths return identical records. IsOpen is NOT computed here; the
// lifecycle engine derives it from the clock.
const joinedColumns = `
	c.id, c.user_id, c.title, c.open_date, c.created_at,
	ct.letter, ct.secret, ct.feeling, ct.rating, ct.song, ct.photo_urls
`

// Create inserts a capsule row and fills in the generated id and
// created_at. Run inside dbx.WithTx together with the content insert.
func (r *PostgresRepository) Create(ctx context.Context, capsule *models.Capsule) (*models.Capsule, error) {
	query := `
		INSERT INTO capsules (user_id, title, open_date)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		capsule.UserID, capsule.Title, capsule.OpenDate).Scan(&capsule.ID, &capsule.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return capsule, nil
}

// ListByUser returns all capsules owned by userID joined with their
// content, newest first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.CapsuleRecord, error) {
	query := `
		SELECT ` + joinedColumns + `
		FROM capsules c
		LEFT JOIN contents ct ON c.id = ct.capsule_id
		WHERE c.user_id = $1
		ORDER BY c.created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.CapsuleRecord
	for rows.Next() {
		rec, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

// GetByIDAndUser returns one joined record. Ownership is part of the
// lookup predicate so a capsule owned by someone else is indistinguishable
// from a missing one: both yield common.ErrorNotFound.
func (r *PostgresRepository) GetByIDAndUser(ctx context.Context, id, userID string) (*models.CapsuleRecord, error) {
	query := `
		SELECT ` + joinedColumns + `
		FROM capsules c
		LEFT JOIN contents ct ON c.id = ct.capsule_id
		WHERE c.id = $1 AND c.user_id = $2
	`
	row := r.db.QueryRowContext(ctx, query, id, userID)
	rec, err := scanRecord(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, err
	}
	return rec, nil
}

// UpdateMeta rewrites the mutable capsule metadata. The caller merges in
// unchanged values and must have authorized the mutation first.
func (r *PostgresRepository) UpdateMeta(ctx context.Context, id string, title string, openDate time.Time) error {
	query := `
		UPDATE capsules SET title = $2, open_date = $3
		WHERE id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, id, title, openDate); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Delete removes an owned capsule row. Returns common.ErrorNotFound when
// nothing matched (already gone or not owned).
func (r *PostgresRepository) Delete(ctx context.Context, id, userID string) error {
	query := `
		DELETE FROM capsules
		WHERE id = $1 AND user_id = $2
	`
	res, err := r.db.ExecContext(ctx, query, id, userID)
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

// ListOpened returns owned capsules whose open date has passed relative to
// the supplied instant. The clock stays an explicit input so the open
// comparison is made in exactly one timezone.
func (r *PostgresRepository) ListOpened(ctx context.Context, userID string, now time.Time) ([]*models.OpenedCapsule, error) {
	query := `
		SELECT id, title, open_date FROM capsules
		WHERE user_id = $1 AND open_date <= $2
		ORDER BY open_date DESC
	`
	return r.queryOpened(ctx, query, userID, now)
}

// ListOpenedUnseen is ListOpened minus capsules whose opening has already
// been reported to this user.
func (r *PostgresRepository) ListOpenedUnseen(ctx context.Context, userID string, now time.Time) ([]*models.OpenedCapsule, error) {
	query := `
		SELECT c.id, c.title, c.open_date FROM capsules c
		LEFT JOIN capsule_notifications n
			ON n.capsule_id = c.id AND n.user_id = c.user_id
		WHERE c.user_id = $1 AND c.open_date <= $2 AND n.capsule_id IS NULL
		ORDER BY c.open_date DESC
	`
	return r.queryOpened(ctx, query, userID, now)
}

func (r *PostgresRepository) queryOpened(ctx context.Context, query string, userID string, now time.Time) ([]*models.OpenedCapsule, error) {
	rows, err := r.db.QueryContext(ctx, query, userID, now)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.OpenedCapsule
	for rows.Next() {
		var item models.OpenedCapsule
		if err := rows.Scan(&item.ID, &item.Title, &item.OpenDate); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

// scanRecord maps one joined row into a CapsuleRecord. Content columns are
// nullable because of the LEFT JOIN; photo_urls is decoded from its JSON
// array column into a slice.
func scanRecord(scan func(dest ...any) error) (*models.CapsuleRecord, error) {
	rec := &models.CapsuleRecord{}
	var (
		letter, secret, feeling, song, photoURLs sql.NullString
		rating                                   sql.NullInt64
	)
	err := scan(
		&rec.ID, &rec.UserID, &rec.Title, &rec.OpenDate, &rec.CreatedAt,
		&letter, &secret, &feeling, &rating, &song, &photoURLs,
	)
	if err != nil {
		return nil, err
	}

	if letter.Valid {
		rec.Letter = &letter.String
	}
	if secret.Valid {
		rec.Secret = &secret.String
	}
	if feeling.Valid {
		rec.Feeling = &feeling.String
	}
	if rating.Valid {
		v := int(rating.Int64)
		rec.Rating = &v
	}
	if song.Valid {
		rec.Song = &song.String
	}
	if photoURLs.Valid && photoURLs.String != "" {
		var urls []string
		if err := json.Unmarshal([]byte(photoURLs.String), &urls); err != nil {
			return nil, fmt.Errorf("decoding photo_urls: %w", err)
		}
		rec.PhotoURLs = urls
	}
	return rec, nil
}
