package contents

import (
	"context"

	"github.com/cloudcapsule/cloudcapsule/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, content *models.Content) (*models.Content, error)
	Update(ctx context.Context, content *models.Content) error
	DeleteByCapsule(ctx context.Context, capsuleID string) error
}
