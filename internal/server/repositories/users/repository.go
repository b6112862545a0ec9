package users

import (
	"context"
	"time"

	"github.com/cloudcapsule/cloudcapsule/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	SetResetToken(ctx context.Context, userID string, token string, expires time.Time) error
	GetByResetToken(ctx context.Context, token string) (*models.User, error)
	UpdatePassword(ctx context.Context, userID string, passwordHash string) error
}
