package notifications

import "context"

type Repository interface {
	MarkNotified(ctx context.Context, userID string, capsuleIDs []string) error
	DeleteByCapsule(ctx context.Context, capsuleID string) error
}
