package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/cloudcapsule/cloudcapsule/internal/common"
	"github.com/cloudcapsule/cloudcapsule/internal/server/services"
)

// maxUploadMemory bounds the in-memory part of multipart parsing; larger
// files spill to disk.
const maxUploadMemory = 10 << 20

type createCapsuleRequest struct {
	Title     string   `json:"title"`
	OpenDate  string   `json:"open_date"`
	Letter    string   `json:"letter"`
	Secret    string   `json:"secret"`
	Feeling   string   `json:"feeling"`
	Rating    int      `json:"rating"`
	Song      string   `json:"song"`
	PhotoURLs []string `json:"photo_urls"`
}

type updateCapsuleRequest struct {
	Title     *string  `json:"title"`
	OpenDate  *string  `json:"open_date"`
	Letter    *string  `json:"letter"`
	Secret    *string  `json:"secret"`
	Feeling   *string  `json:"feeling"`
	Rating    *int     `json:"rating"`
	Song      *string  `json:"song"`
	PhotoURLs []string `json:"photo_urls"`
}

// openDateLayouts are the accepted client formats, tried in order. Layouts
// without an offset are interpreted as UTC so there is exactly one
// comparison timezone in the system.
var openDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseOpenDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: title and open date are required", common.ErrValidation)
	}
	for _, layout := range openDateLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unrecognized open_date format", common.ErrValidation)
}

func (s *Server) handleListCapsules(w http.ResponseWriter, r *http.Request) {
	recs, err := s.capsules.List(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		s.respondError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func (s *Server) handleCreateCapsule(w http.ResponseWriter, r *http.Request) {
	var req createCapsuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	params := services.CreateCapsuleParams{
		Title:     req.Title,
		Letter:    req.Letter,
		Secret:    req.Secret,
		Feeling:   req.Feeling,
		Rating:    req.Rating,
		Song:      req.Song,
		PhotoURLs: req.PhotoURLs,
	}
	if req.OpenDate != "" {
		openDate, err := parseOpenDate(req.OpenDate)
		if err != nil {
			s.respondError(r.Context(), w, err)
			return
		}
		params.OpenDate = openDate
	}

	id, err := s.capsules.Create(r.Context(), userIDFrom(r.Context()), params)
	if err != nil {
		s.respondError(r.Context(), w, err)
		return
	}

	s.logger.Info(r.Context(), "capsule created", "capsule_id", id)
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) handleGetCapsule(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	rec, err := s.capsules.Get(r.Context(), userIDFrom(r.Context()), id)
	if err != nil {
		s.respondError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleUpdateCapsule(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req updateCapsuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	params := services.UpdateCapsuleParams{
		Title:        req.Title,
		Letter:       req.Letter,
		Secret:       req.Secret,
		Feeling:      req.Feeling,
		Rating:       req.Rating,
		Song:         req.Song,
		AddPhotoURLs: req.PhotoURLs,
	}
	if req.OpenDate != nil && *req.OpenDate != "" {
		openDate, err := parseOpenDate(*req.OpenDate)
		if err != nil {
			s.respondError(r.Context(), w, err)
			return
		}
		params.OpenDate = &openDate
	}

	if err := s.capsules.Update(r.Context(), userIDFrom(r.Context()), id, params); err != nil {
		s.respondError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "capsule updated"})
}

func (s *Server) handleDeleteCapsule(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := s.capsules.Delete(r.Context(), userIDFrom(r.Context()), id); err != nil {
		s.respondError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "capsule deleted"})
}

func (s *Server) handleCheckOpened(w http.ResponseWriter, r *http.Request) {
	unseenOnly := r.URL.Query().Get("unseen") == "true"

	opened, err := s.capsules.RecentlyOpened(r.Context(), userIDFrom(r.Context()), unseenOnly)
	if err != nil {
		s.respondError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, opened)
}

// handleUpload receives multipart photos, forwards them to the blob store
// and returns the reference URLs. Failed files are dropped, not retried:
// the response simply omits them.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}

	var uploads []services.PhotoUpload
	if r.MultipartForm != nil {
		for _, header := range r.MultipartForm.File["photos"] {
			file, err := header.Open()
			if err != nil {
				s.logger.Warn(r.Context(), "skipping unreadable upload", "name", header.Filename)
				continue
			}
			defer file.Close()
			uploads = append(uploads, services.PhotoUpload{Name: header.Filename, Body: file})
		}
	}

	urls, err := s.capsules.StorePhotos(r.Context(), uploads)
	if err != nil {
		s.respondError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"urls": urls})
}
