package services

import (
	"context"
	"database/sql"
	"io"
	"time"

	"github.com/cloudcapsule/cloudcapsule/internal/dbx"
	"github.com/cloudcapsule/cloudcapsule/internal/logging"
	"github.com/cloudcapsule/cloudcapsule/internal/server/models"
	"github.com/cloudcapsule/cloudcapsule/internal/server/repositories/capsules"
	"github.com/cloudcapsule/cloudcapsule/internal/server/repositories/contents"
	"github.com/cloudcapsule/cloudcapsule/internal/server/repositories/notifications"
	"github.com/cloudcapsule/cloudcapsule/internal/server/repositories/refreshtokens"
	"github.com/cloudcapsule/cloudcapsule/internal/server/repositories/users"
)

// fakeRepoManager hands out the same fake repositories regardless of the
// DBTX it is given, which lets service tests drive transactional flows
// against a sqlmock connection.
type fakeRepoManager struct {
	users         users.Repository
	capsules      capsules.Repository
	contents      contents.Repository
	refreshTokens refreshtokens.Repository
	notifications notifications.Repository
}

func (m *fakeRepoManager) RunMigrations(ctx context.Context, db *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) users.Repository                  { return m.users }
func (m *fakeRepoManager) Capsules(db dbx.DBTX) capsules.Repository            { return m.capsules }
func (m *fakeRepoManager) Contents(db dbx.DBTX) contents.Repository            { return m.contents }
func (m *fakeRepoManager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository {
	return m.refreshTokens
}
func (m *fakeRepoManager) Notifications(db dbx.DBTX) notifications.Repository {
	return m.notifications
}

type fakeCapsuleRepo struct {
	createFn           func(ctx context.Context, capsule *models.Capsule) (*models.Capsule, error)
	listByUserFn       func(ctx context.Context, userID string) ([]*models.CapsuleRecord, error)
	getByIDAndUserFn   func(ctx context.Context, id, userID string) (*models.CapsuleRecord, error)
	updateMetaFn       func(ctx context.Context, id string, title string, openDate time.Time) error
	deleteFn           func(ctx context.Context, id, userID string) error
	listOpenedFn       func(ctx context.Context, userID string, now time.Time) ([]*models.OpenedCapsule, error)
	listOpenedUnseenFn func(ctx context.Context, userID string, now time.Time) ([]*models.OpenedCapsule, error)
}

func (f *fakeCapsuleRepo) Create(ctx context.Context, capsule *models.Capsule) (*models.Capsule, error) {
	return f.createFn(ctx, capsule)
}
func (f *fakeCapsuleRepo) ListByUser(ctx context.Context, userID string) ([]*models.CapsuleRecord, error) {
	return f.listByUserFn(ctx, userID)
}
func (f *fakeCapsuleRepo) GetByIDAndUser(ctx context.Context, id, userID string) (*models.CapsuleRecord, error) {
	return f.getByIDAndUserFn(ctx, id, userID)
}
func (f *fakeCapsuleRepo) UpdateMeta(ctx context.Context, id string, title string, openDate time.Time) error {
	return f.updateMetaFn(ctx, id, title, openDate)
}
func (f *fakeCapsuleRepo) Delete(ctx context.Context, id, userID string) error {
	return f.deleteFn(ctx, id, userID)
}
func (f *fakeCapsuleRepo) ListOpened(ctx context.Context, userID string, now time.Time) ([]*models.OpenedCapsule, error) {
	return f.listOpenedFn(ctx, userID, now)
}
func (f *fakeCapsuleRepo) ListOpenedUnseen(ctx context.Context, userID string, now time.Time) ([]*models.OpenedCapsule, error) {
	return f.listOpenedUnseenFn(ctx, userID, now)
}

type fakeContentRepo struct {
	createFn          func(ctx context.Context, content *models.Content) (*models.Content, error)
	updateFn          func(ctx context.Context, content *models.Content) error
	deleteByCapsuleFn func(ctx context.Context, capsuleID string) error
}

func (f *fakeContentRepo) Create(ctx context.Context, content *models.Content) (*models.Content, error) {
	return f.createFn(ctx, content)
}
func (f *fakeContentRepo) Update(ctx context.Context, content *models.Content) error {
	return f.updateFn(ctx, content)
}
func (f *fakeContentRepo) DeleteByCapsule(ctx context.Context, capsuleID string) error {
	return f.deleteByCapsuleFn(ctx, capsuleID)
}

type fakeNotificationRepo struct {
	markNotifiedFn    func(ctx context.Context, userID string, capsuleIDs []string) error
	deleteByCapsuleFn func(ctx context.Context, capsuleID string) error
}

func (f *fakeNotificationRepo) MarkNotified(ctx context.Context, userID string, capsuleIDs []string) error {
	return f.markNotifiedFn(ctx, userID, capsuleIDs)
}
func (f *fakeNotificationRepo) DeleteByCapsule(ctx context.Context, capsuleID string) error {
	return f.deleteByCapsuleFn(ctx, capsuleID)
}

type fakeUserRepo struct {
	createFn          func(ctx context.Context, user *models.User) (*models.User, error)
	getByEmailFn      func(ctx context.Context, email string) (*models.User, error)
	getByIDFn         func(ctx context.Context, id string) (*models.User, error)
	setResetTokenFn   func(ctx context.Context, userID string, token string, expires time.Time) error
	getByResetTokenFn func(ctx context.Context, token string) (*models.User, error)
	updatePasswordFn  func(ctx context.Context, userID string, passwordHash string) error
}

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	return f.createFn(ctx, user)
}
func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return f.getByEmailFn(ctx, email)
}
func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	return f.getByIDFn(ctx, id)
}
func (f *fakeUserRepo) SetResetToken(ctx context.Context, userID string, token string, expires time.Time) error {
	return f.setResetTokenFn(ctx, userID, token, expires)
}
func (f *fakeUserRepo) GetByResetToken(ctx context.Context, token string) (*models.User, error) {
	return f.getByResetTokenFn(ctx, token)
}
func (f *fakeUserRepo) UpdatePassword(ctx context.Context, userID string, passwordHash string) error {
	return f.updatePasswordFn(ctx, userID, passwordHash)
}

type fakeRefreshTokenRepo struct {
	createFn func(ctx context.Context, userID string, token string, validity time.Duration) error
	findFn   func(ctx context.Context, token string) (*models.RefreshToken, error)
	deleteFn func(ctx context.Context, token string) error
}

func (f *fakeRefreshTokenRepo) Create(ctx context.Context, userID string, token string, validity time.Duration) error {
	return f.createFn(ctx, userID, token, validity)
}
func (f *fakeRefreshTokenRepo) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	return f.findFn(ctx, token)
}
func (f *fakeRefreshTokenRepo) Delete(ctx context.Context, token string) error {
	return f.deleteFn(ctx, token)
}

type fakeBlobStore struct {
	uploadFn func(ctx context.Context, name string, body io.Reader) (string, error)
}

func (f *fakeBlobStore) Upload(ctx context.Context, name string, body io.Reader) (string, error) {
	return f.uploadFn(ctx, name, body)
}

type nopLogger struct{}

func (nopLogger) Debug(ctx context.Context, msg string, args ...any) {}
func (nopLogger) Info(ctx context.Context, msg string, args ...any)  {}
func (nopLogger) Warn(ctx context.Context, msg string, args ...any)  {}
func (nopLogger) Error(ctx context.Context, msg string, args ...any) {}
func (l nopLogger) With(args ...any) logging.Logger                  { return l }
