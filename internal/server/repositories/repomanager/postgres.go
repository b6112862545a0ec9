package repomanager

import (
	"context"
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/cloudcapsule/cloudcapsule/internal/dbx"
	"github.com/cloudcapsule/cloudcapsule/internal/server/migrations"
	"github.com/cloudcapsule/cloudcapsule/internal/server/repositories/capsules"
	"github.com/cloudcapsule/cloudcapsule/internal/server/repositories/contents"
	"github.com/cloudcapsule/cloudcapsule/internal/server/repositories/notifications"
	"github.com/cloudcapsule/cloudcapsule/internal/server/repositories/refreshtokens"
	"github.com/cloudcapsule/cloudcapsule/internal/server/repositories/users"
)

type PostgresRepositoryManager struct {
}

func NewPostgresRepositoryManager() *PostgresRepositoryManager {
	return &PostgresRepositoryManager{}
}

func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Capsules(db dbx.DBTX) capsules.Repository {
	return capsules.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Contents(db dbx.DBTX) contents.Repository {
	return contents.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository {
	return refreshtokens.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Notifications(db dbx.DBTX) notifications.Repository {
	return notifications.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}

	if err := goose.UpContext(ctx, db, "."); err != nil {
		return err
	}

	return nil
}
