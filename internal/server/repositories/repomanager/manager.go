package repomanager

import (
	"context"
	"database/sql"

	"github.com/cloudcapsule/cloudcapsule/internal/dbx"
	"github.com/cloudcapsule/cloudcapsule/internal/server/repositories/capsules"
	"github.com/cloudcapsule/cloudcapsule/internal/server/repositories/contents"
	"github.com/cloudcapsule/cloudcapsule/internal/server/repositories/notifications"
	"github.com/cloudcapsule/cloudcapsule/internal/server/repositories/refreshtokens"
	"github.com/cloudcapsule/cloudcapsule/internal/server/repositories/users"
)

// RepositoryManager hands out repositories bound to a DBTX, so the same
// factory serves plain reads (*sql.DB) and transactional writes (*sql.Tx).
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Capsules(db dbx.DBTX) capsules.Repository
	Contents(db dbx.DBTX) contents.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Notifications(db dbx.DBTX) notifications.Repository
}
