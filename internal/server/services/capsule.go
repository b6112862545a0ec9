package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/cloudcapsule/cloudcapsule/internal/common"
	"github.com/cloudcapsule/cloudcapsule/internal/dbx"
	"github.com/cloudcapsule/cloudcapsule/internal/logging"
	"github.com/cloudcapsule/cloudcapsule/internal/server/lifecycle"
	"github.com/cloudcapsule/cloudcapsule/internal/server/models"
	"github.com/cloudcapsule/cloudcapsule/internal/server/repositories/repomanager"
)

// BlobStore is the upload collaborator. The service never sees file bytes
// again after Upload returns the reference URL.
type BlobStore interface {
	Upload(ctx context.Context, name string, body io.Reader) (string, error)
}

// PhotoUpload carries one file received from the client.
type PhotoUpload struct {
	Name string
	Body io.Reader
}

// CreateCapsuleParams is the input for CapsuleService.Create. Title and
// OpenDate are required; content fields fall back to their defaults.
type CreateCapsuleParams struct {
	Title    string
	OpenDate time.Time
	Letter   string
	Secret   string
	Feeling  string
	Rating   int
	Song     string

	PhotoURLs []string
}

// UpdateCapsuleParams is the input for CapsuleService.Update. Nil pointers
// leave the stored value untouched. AddPhotoURLs are appended to the
// existing references, never replacing them, so re-uploading can never
// lose prior photos.
type UpdateCapsuleParams struct {
	Title    *string
	OpenDate *time.Time
	Letter   *string
	Secret   *string
	Feeling  *string
	Rating   *int
	Song     *string

	AddPhotoURLs []string
}

// CapsuleService orchestrates capsule CRUD over the repositories and the
// lifecycle engine. All multi-row writes go through dbx.WithTx; the derived
// open state is recomputed on every read from a single UTC clock sample.
type CapsuleService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	blobs       BlobStore
	logger      logging.Logger

	// now is the clock used for every open/locked decision. Swappable in
	// tests; always normalized to UTC at the point of use.
	now func() time.Time
}

// NewCapsuleService constructs a CapsuleService on a live DB handle.
func NewCapsuleService(db *sql.DB, m repomanager.RepositoryManager, blobs BlobStore, l logging.Logger) *CapsuleService {
	return &CapsuleService{
		db:          db,
		repomanager: m,
		blobs:       blobs,
		logger:      l.With("module", "capsules"),
		now:         time.Now,
	}
}

// List returns every capsule owned by userID, newest first, annotated with
// the derived open state and redacted accordingly.
func (s *CapsuleService) List(ctx context.Context, userID string) ([]*models.CapsuleRecord, error) {
	repo := s.repomanager.Capsules(s.db)
	recs, err := repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing capsules: %w", err)
	}

	now := s.now().UTC()
	for _, rec := range recs {
		rec.IsOpen = lifecycle.IsOpen(rec.OpenDate, now)
		lifecycle.Redact(rec)
	}
	if recs == nil {
		recs = []*models.CapsuleRecord{}
	}
	return recs, nil
}

// Create writes the capsule row and its content row as one atomic unit and
// returns the new capsule id. Missing title or open date fails with
// common.ErrValidation before the store is touched.
func (s *CapsuleService) Create(ctx context.Context, userID string, params CreateCapsuleParams) (string, error) {
	if params.Title == "" || params.OpenDate.IsZero() {
		return "", fmt.Errorf("%w: title and open date are required", common.ErrValidation)
	}

	capsule := &models.Capsule{
		UserID:   userID,
		Title:    params.Title,
		OpenDate: params.OpenDate.UTC(),
	}

	feeling := params.Feeling
	if feeling == "" {
		feeling = models.DefaultFeeling
	}
	photoURLs := params.PhotoURLs
	if photoURLs == nil {
		photoURLs = []string{}
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repomanager.Capsules(tx).Create(ctx, capsule); err != nil {
			return err
		}
		content := &models.Content{
			CapsuleID: capsule.ID,
			Letter:    params.Letter,
			Secret:    params.Secret,
			Feeling:   feeling,
			Rating:    params.Rating,
			Song:      params.Song,
			PhotoURLs: photoURLs,
		}
		_, err := s.repomanager.Contents(tx).Create(ctx, content)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("error creating capsule: %w", err)
	}

	return capsule.ID, nil
}

// Get returns one owned capsule, annotated and redacted. Ownership is part
// of the lookup, so someone else's capsule id reads as not found.
func (s *CapsuleService) Get(ctx context.Context, userID, id string) (*models.CapsuleRecord, error) {
	repo := s.repomanager.Capsules(s.db)
	rec, err := repo.GetByIDAndUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	rec.IsOpen = lifecycle.IsOpen(rec.OpenDate, s.now().UTC())
	lifecycle.Redact(rec)
	return rec, nil
}

// Update mutates an owned, still-locked capsule. The capsule metadata and
// content updates commit together or not at all. Once the open date has
// passed the capsule is immutable and the call fails with ErrCapsuleSealed.
func (s *CapsuleService) Update(ctx context.Context, userID, id string, params UpdateCapsuleParams) error {
	repo := s.repomanager.Capsules(s.db)
	rec, err := repo.GetByIDAndUser(ctx, id, userID)
	if err != nil {
		return err
	}

	if err := lifecycle.AuthorizeMutation(rec.OpenDate, s.now().UTC()); err != nil {
		return err
	}

	title := rec.Title
	if params.Title != nil && *params.Title != "" {
		title = *params.Title
	}
	openDate := rec.OpenDate
	if params.OpenDate != nil && !params.OpenDate.IsZero() {
		openDate = params.OpenDate.UTC()
	}

	content := &models.Content{
		CapsuleID: id,
		Letter:    mergeString(params.Letter, rec.Letter),
		Secret:    mergeString(params.Secret, rec.Secret),
		Feeling:   mergeFeeling(params.Feeling, rec.Feeling),
		Rating:    mergeInt(params.Rating, rec.Rating),
		Song:      mergeString(params.Song, rec.Song),
		PhotoURLs: append(append([]string{}, rec.PhotoURLs...), params.AddPhotoURLs...),
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Capsules(tx).UpdateMeta(ctx, id, title, openDate); err != nil {
			return err
		}
		return s.repomanager.Contents(tx).Update(ctx, content)
	})
	if err != nil {
		return fmt.Errorf("error updating capsule: %w", err)
	}
	return nil
}

// Delete removes an owned capsule with its content and notification rows in
// one transaction. The cascade is explicit: children first, then the
// ownership-scoped capsule delete; a failed ownership check rolls the
// child deletes back. Allowed in both lifecycle states.
func (s *CapsuleService) Delete(ctx context.Context, userID, id string) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Notifications(tx).DeleteByCapsule(ctx, id); err != nil {
			return err
		}
		if err := s.repomanager.Contents(tx).DeleteByCapsule(ctx, id); err != nil {
			return err
		}
		return s.repomanager.Capsules(tx).Delete(ctx, id, userID)
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("error deleting capsule: %w", err)
	}
	return nil
}

// RecentlyOpened returns owned capsules whose open date has passed, for the
// client's "you have a capsule ready" poll. With unseenOnly, each opening
// is reported at most once: the returned capsules are recorded in the
// notifications table inside the same transaction that read them.
func (s *CapsuleService) RecentlyOpened(ctx context.Context, userID string, unseenOnly bool) ([]*models.OpenedCapsule, error) {
	now := s.now().UTC()

	if !unseenOnly {
		opened, err := s.repomanager.Capsules(s.db).ListOpened(ctx, userID, now)
		if err != nil {
			return nil, fmt.Errorf("error listing opened capsules: %w", err)
		}
		if opened == nil {
			opened = []*models.OpenedCapsule{}
		}
		return opened, nil
	}

	var opened []*models.OpenedCapsule
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		opened, err = s.repomanager.Capsules(tx).ListOpenedUnseen(ctx, userID, now)
		if err != nil {
			return err
		}
		if len(opened) == 0 {
			return nil
		}
		ids := make([]string, len(opened))
		for i, c := range opened {
			ids[i] = c.ID
		}
		return s.repomanager.Notifications(tx).MarkNotified(ctx, userID, ids)
	})
	if err != nil {
		return nil, fmt.Errorf("error listing opened capsules: %w", err)
	}
	if opened == nil {
		opened = []*models.OpenedCapsule{}
	}
	return opened, nil
}

// StorePhotos pushes uploads to the blob store best-effort: a file that
// fails to land is dropped with a warning and the rest proceed. The
// surrounding record write never fails because of a photo.
func (s *CapsuleService) StorePhotos(ctx context.Context, uploads []PhotoUpload) ([]string, error) {
	urls := make([]string, 0, len(uploads))
	for _, u := range uploads {
		url, err := s.blobs.Upload(ctx, u.Name, u.Body)
		if err != nil {
			s.logger.Warn(ctx, "photo upload failed, dropping file", "name", u.Name, "error", err.Error())
			continue
		}
		urls = append(urls, url)
	}
	return urls, nil
}

func mergeString(param *string, existing *string) string {
	if param != nil {
		return *param
	}
	if existing != nil {
		return *existing
	}
	return ""
}

func mergeFeeling(param *string, existing *string) string {
	v := mergeString(param, existing)
	if v == "" {
		return models.DefaultFeeling
	}
	return v
}

func mergeInt(param *int, existing *int) int {
	if param != nil {
		return *param
	}
	if existing != nil {
		return *existing
	}
	return 0
}
