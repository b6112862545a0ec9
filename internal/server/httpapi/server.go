// Package httpapi is the HTTP/JSON transport shell around the user and
// capsule services. It owns routing, bearer-token authentication and the
// error-to-status mapping; all business rules live below it.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/cloudcapsule/cloudcapsule/internal/logging"
	"github.com/cloudcapsule/cloudcapsule/internal/server/models"
	"github.com/cloudcapsule/cloudcapsule/internal/server/services"
)

// userSvc is the slice of UserService the handlers need.
type userSvc interface {
	Register(ctx context.Context, username, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}

// capsuleSvc is the slice of CapsuleService the handlers need.
type capsuleSvc interface {
	List(ctx context.Context, userID string) ([]*models.CapsuleRecord, error)
	Create(ctx context.Context, userID string, params services.CreateCapsuleParams) (string, error)
	Get(ctx context.Context, userID, id string) (*models.CapsuleRecord, error)
	Update(ctx context.Context, userID, id string, params services.UpdateCapsuleParams) error
	Delete(ctx context.Context, userID, id string) error
	RecentlyOpened(ctx context.Context, userID string, unseenOnly bool) ([]*models.OpenedCapsule, error)
	StorePhotos(ctx context.Context, uploads []services.PhotoUpload) ([]string, error)
}

type Server struct {
	address   string
	logger    logging.Logger
	users     userSvc
	capsules  capsuleSvc
	jwtSecret []byte
}

func NewServer(a string, l logging.Logger, us userSvc, cs capsuleSvc, secretKey string) *Server {
	return &Server{
		address:   a,
		logger:    l.With("module", "http_server"),
		users:     us,
		capsules:  cs,
		jwtSecret: []byte(secretKey),
	}
}

// Router wires all routes. Split out from Run so tests can hit the full
// routing table through httptest.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/auth/register", s.handleRegister).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)
	api.HandleFunc("/auth/refresh", s.handleRefresh).Methods(http.MethodPost)
	api.HandleFunc("/auth/forgot-password", s.handleForgotPassword).Methods(http.MethodPost)
	api.HandleFunc("/auth/reset-password", s.handleResetPassword).Methods(http.MethodPost)

	protected := api.NewRoute().Subrouter()
	protected.Use(s.authMiddleware)
	protected.HandleFunc("/auth/me", s.handleMe).Methods(http.MethodGet)
	protected.HandleFunc("/upload", s.handleUpload).Methods(http.MethodPost)
	protected.HandleFunc("/capsules", s.handleListCapsules).Methods(http.MethodGet)
	protected.HandleFunc("/capsules", s.handleCreateCapsule).Methods(http.MethodPost)
	// registered before /capsules/{id} so "check-opened" never matches as an id
	protected.HandleFunc("/capsules/check-opened", s.handleCheckOpened).Methods(http.MethodGet)
	protected.HandleFunc("/capsules/{id}", s.handleGetCapsule).Methods(http.MethodGet)
	protected.HandleFunc("/capsules/{id}", s.handleUpdateCapsule).Methods(http.MethodPut)
	protected.HandleFunc("/capsules/{id}", s.handleDeleteCapsule).Methods(http.MethodDelete)

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}
