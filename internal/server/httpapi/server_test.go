package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/cloudcapsule/cloudcapsule/internal/logging"
	"github.com/cloudcapsule/cloudcapsule/internal/server/auth"
	"github.com/cloudcapsule/cloudcapsule/internal/server/models"
	"github.com/cloudcapsule/cloudcapsule/internal/server/services"
)

const testSecret = "test-secret"

type fakeUserSvc struct {
	registerFn      func(ctx context.Context, username, email, password string) (*models.User, error)
	loginFn         func(ctx context.Context, email, password string) (*services.TokenPair, error)
	refreshFn       func(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	getByIDFn       func(ctx context.Context, id string) (*models.User, error)
	requestResetFn  func(ctx context.Context, email string) error
	resetPasswordFn func(ctx context.Context, token, newPassword string) error
}

func (f *fakeUserSvc) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	return f.registerFn(ctx, username, email, password)
}
func (f *fakeUserSvc) Login(ctx context.Context, email, password string) (*services.TokenPair, error) {
	return f.loginFn(ctx, email, password)
}
func (f *fakeUserSvc) RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error) {
	return f.refreshFn(ctx, refreshToken)
}
func (f *fakeUserSvc) GetByID(ctx context.Context, id string) (*models.User, error) {
	return f.getByIDFn(ctx, id)
}
func (f *fakeUserSvc) RequestPasswordReset(ctx context.Context, email string) error {
	return f.requestResetFn(ctx, email)
}
func (f *fakeUserSvc) ResetPassword(ctx context.Context, token, newPassword string) error {
	return f.resetPasswordFn(ctx, token, newPassword)
}

type fakeCapsuleSvc struct {
	listFn           func(ctx context.Context, userID string) ([]*models.CapsuleRecord, error)
	createFn         func(ctx context.Context, userID string, params services.CreateCapsuleParams) (string, error)
	getFn            func(ctx context.Context, userID, id string) (*models.CapsuleRecord, error)
	updateFn         func(ctx context.Context, userID, id string, params services.UpdateCapsuleParams) error
	deleteFn         func(ctx context.Context, userID, id string) error
	recentlyOpenedFn func(ctx context.Context, userID string, unseenOnly bool) ([]*models.OpenedCapsule, error)
	storePhotosFn    func(ctx context.Context, uploads []services.PhotoUpload) ([]string, error)
}

func (f *fakeCapsuleSvc) List(ctx context.Context, userID string) ([]*models.CapsuleRecord, error) {
	return f.listFn(ctx, userID)
}
func (f *fakeCapsuleSvc) Create(ctx context.Context, userID string, params services.CreateCapsuleParams) (string, error) {
	return f.createFn(ctx, userID, params)
}
func (f *fakeCapsuleSvc) Get(ctx context.Context, userID, id string) (*models.CapsuleRecord, error) {
	return f.getFn(ctx, userID, id)
}
func (f *fakeCapsuleSvc) Update(ctx context.Context, userID, id string, params services.UpdateCapsuleParams) error {
	return f.updateFn(ctx, userID, id, params)
}
func (f *fakeCapsuleSvc) Delete(ctx context.Context, userID, id string) error {
	return f.deleteFn(ctx, userID, id)
}
func (f *fakeCapsuleSvc) RecentlyOpened(ctx context.Context, userID string, unseenOnly bool) ([]*models.OpenedCapsule, error) {
	return f.recentlyOpenedFn(ctx, userID, unseenOnly)
}
func (f *fakeCapsuleSvc) StorePhotos(ctx context.Context, uploads []services.PhotoUpload) ([]string, error) {
	return f.storePhotosFn(ctx, uploads)
}

type nopLogger struct{}

func (nopLogger) Debug(ctx context.Context, msg string, args ...any) {}
func (nopLogger) Info(ctx context.Context, msg string, args ...any)  {}
func (nopLogger) Warn(ctx context.Context, msg string, args ...any)  {}
func (nopLogger) Error(ctx context.Context, msg string, args ...any) {}
func (l nopLogger) With(args ...any) logging.Logger                  { return l }

// newTestServer wires the routing table onto httptest with fakes behind
// the service interfaces.
func newTestServer(us userSvc, cs capsuleSvc) *httptest.Server {
	s := NewServer(":0", nopLogger{}, us, cs, testSecret)
	return httptest.NewServer(s.Router())
}

// bearerFor mints a real access token for the given user so requests pass
// the auth middleware the same way production traffic does.
func bearerFor(userID string) string {
	token, _ := auth.GenerateToken(userID, []byte(testSecret), time.Minute)
	return "Bearer " + token
}

func doJSON(ts *httptest.Server, method, path, authz, body string) (*http.Response, error) {
	req, err := http.NewRequest(method, ts.URL+path, strings.NewReader(body))
	if err != nil {
		return nil, err
	}
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	req.Header.Set("Content-Type", "application/json")
	return ts.Client().Do(req)
}
