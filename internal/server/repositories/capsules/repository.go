package capsules

import (
	"context"
	"time"

	"github.com/cloudcapsule/cloudcapsule/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, capsule *models.Capsule) (*models.Capsule, error)
	ListByUser(ctx context.Context, userID string) ([]*models.CapsuleRecord, error)
	GetByIDAndUser(ctx context.Context, id, userID string) (*models.CapsuleRecord, error)
	UpdateMeta(ctx context.Context, id string, title string, openDate time.Time) error
	Delete(ctx context.Context, id, userID string) error
	ListOpened(ctx context.Context, userID string, now time.Time) ([]*models.OpenedCapsule, error)
	ListOpenedUnseen(ctx context.Context, userID string, now time.Time) ([]*models.OpenedCapsule, error)
}
