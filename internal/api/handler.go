// Package api exposes people searches and stored profiles over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/aliro/scout/internal/model"
)

const (
	defaultProfileLimit = 100
	maxProfileLimit     = 1000
)

// Searcher runs one people search for a job.
type Searcher interface {
	Run(ctx context.Context, jobID string) (*model.SearchResult, error)
}

// ProfileLister reads stored profiles.
type ProfileLister interface {
	FindProfilesByJobTitle(ctx context.Context, title string) ([]model.Profile, error)
	ListProfiles(ctx context.Context, limit int) ([]model.Profile, error)
}

// Handler wires the HTTP endpoints to the searcher and the store.
type Handler struct {
	searcher Searcher
	profiles ProfileLister
	logger   *slog.Logger
}

func New(searcher Searcher, profiles ProfileLister, logger *slog.Logger) *Handler {
	return &Handler{
		searcher: searcher,
		profiles: profiles,
		logger:   logger,
	}
}

// Register mounts the endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/health", h.HandleHealth)
	r.Post("/jobs/{jobID}/people-search", h.HandlePeopleSearch)
	r.Get("/profiles", h.HandleListProfiles)
}

func (h *Handler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandlePeopleSearch handles POST /jobs/{jobID}/people-search. It blocks
// until the search has finished.
func (h *Handler) HandlePeopleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	jobID := chi.URLParam(r, "jobID")
	start := time.Now()

	result, err := h.searcher.Run(ctx, jobID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			writeError(w, http.StatusNotFound, "job not found")
			return
		}
		h.logger.ErrorContext(ctx, "people search failed", "job", jobID, "error", err)
		writeError(w, http.StatusBadGateway, "people search failed")
		return
	}

	h.logger.InfoContext(ctx, "people search served",
		"job", jobID,
		"matches", len(result.Matches),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	writeJSON(w, http.StatusOK, result)
}

// HandleListProfiles handles GET /profiles. With ?title= it returns profiles
// whose job titles contain title, otherwise the most recently updated ones.
func (h *Handler) HandleListProfiles(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := defaultProfileLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > maxProfileLimit {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 1000")
			return
		}
		limit = n
	}

	var (
		profiles []model.Profile
		err      error
	)
	if title := r.URL.Query().Get("title"); title != "" {
		profiles, err = h.profiles.FindProfilesByJobTitle(ctx, title)
		if len(profiles) > limit {
			profiles = profiles[:limit]
		}
	} else {
		profiles, err = h.profiles.ListProfiles(ctx, limit)
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "listing profiles failed", "error", err)
		writeError(w, http.StatusInternalServerError, "listing profiles failed")
		return
	}
	if profiles == nil {
		profiles = []model.Profile{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"profiles": profiles,
		"count":    len(profiles),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
