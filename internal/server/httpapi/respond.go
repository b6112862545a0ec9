package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cloudcapsule/cloudcapsule/internal/common"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// respondError maps service errors onto HTTP statuses. Store and other
// unexpected failures are logged and surfaced as an opaque 500 so internal
// detail never reaches the caller.
func (s *Server) respondError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, common.ErrorAlreadyExists):
		writeError(w, http.StatusConflict, "user with this email or username already exists")
	case errors.Is(err, common.ErrResetTokenExpired):
		writeError(w, http.StatusBadRequest, "reset token expired")
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrRefreshTokenExpired):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, common.ErrCapsuleSealed):
		writeError(w, http.StatusForbidden, "cannot edit an opened capsule")
	case errors.Is(err, common.ErrorNotFound):
		writeError(w, http.StatusNotFound, "not found")
	default:
		s.logger.Error(ctx, "request failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
