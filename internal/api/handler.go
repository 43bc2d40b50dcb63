// internal/api/handler.go
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	trackererrors "github-repo-tracker/internal/errors"
	"github-repo-tracker/internal/store"
	"github-repo-tracker/internal/tracker"
)

// Handler is the container for API dependencies.
type Handler struct {
	store   store.Store
	tracker *tracker.Tracker
	logger  *slog.Logger
}

// NewRouter creates and configures a new chi router with all API routes.
func NewRouter(st store.Store, tr *tracker.Tracker, logger *slog.Logger) http.Handler {
	h := &Handler{
		store:   st,
		tracker: tr,
		logger:  logger,
	}

	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger) // Chi's default logger
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// API Routes
	r.Get("/health", h.healthCheck)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/status", h.getStatus)
		r.Route("/domains/{domain}/accounts", func(r chi.Router) {
			r.Get("/", h.listAccounts)
			r.Post("/", h.startTracking)
			r.Delete("/{login}", h.stopTracking)
		})
	})

	return r
}

// healthCheck is a simple health endpoint.
func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// getStatus reports scheduler health: cycle counters and degraded accounts.
// GET /v1/status
func (h *Handler) getStatus(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.tracker.Status())
}

// listAccounts lists the accounts tracked within one domain.
// GET /v1/domains/{domain}/accounts
func (h *Handler) listAccounts(w http.ResponseWriter, r *http.Request) {
	domain := chi.URLParam(r, "domain")

	accounts, err := h.store.ListAccountsByDomain(r.Context(), domain)
	if err != nil {
		h.logger.Error("Failed to list accounts", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondWithJSON(w, http.StatusOK, accounts)
}

type startTrackingRequest struct {
	Login string `json:"login"`
}

type startTrackingResponse struct {
	Login     string `json:"login"`
	DomainID  string `json:"domain_id"`
	RepoCount int    `json:"repo_count"`
}

// startTracking begins tracking a GitHub account in a domain. The login is
// validated against the provider and stored in its canonical form.
// POST /v1/domains/{domain}/accounts
func (h *Handler) startTracking(w http.ResponseWriter, r *http.Request) {
	domain := chi.URLParam(r, "domain")

	var req startTrackingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Login == "" {
		respondWithError(w, http.StatusBadRequest, "Request body must be JSON with a non-empty 'login'")
		return
	}

	account, repoCount, err := h.tracker.StartTracking(r.Context(), domain, req.Login)
	if err != nil {
		h.respondTrackingError(w, err, req.Login)
		return
	}

	respondWithJSON(w, http.StatusCreated, startTrackingResponse{
		Login:     account.Login,
		DomainID:  account.DomainID,
		RepoCount: repoCount,
	})
}

// stopTracking removes an account and all its snapshots.
// DELETE /v1/domains/{domain}/accounts/{login}
func (h *Handler) stopTracking(w http.ResponseWriter, r *http.Request) {
	domain := chi.URLParam(r, "domain")
	login := chi.URLParam(r, "login")

	if err := h.tracker.StopTracking(r.Context(), domain, login); err != nil {
		if errors.Is(err, store.ErrAccountNotTracked) {
			respondWithError(w, http.StatusNotFound, "Account is not tracked in this domain")
			return
		}
		h.logger.Error("Failed to stop tracking", "login", login, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondTrackingError(w http.ResponseWriter, err error, login string) {
	var invalidDomain *trackererrors.ErrInvalidDomainID
	var unavailable *trackererrors.ProviderUnavailableError

	switch {
	case errors.As(err, &invalidDomain):
		respondWithError(w, http.StatusBadRequest, invalidDomain.Error())
	case errors.Is(err, trackererrors.ErrAccountNotFound):
		respondWithError(w, http.StatusNotFound, "User not found on GitHub")
	case errors.Is(err, store.ErrAccountExists):
		respondWithError(w, http.StatusConflict, "User is already being tracked in this domain")
	case errors.As(err, &unavailable):
		respondWithError(w, http.StatusBadGateway, "GitHub is currently unavailable")
	default:
		h.logger.Error("Failed to start tracking", "login", login, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Failed to encode JSON response", "error", err)
	}
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}
