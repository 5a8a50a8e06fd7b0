// Package api provides the JSON API mirror of the admin panel operations.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"user-admin/internal/domain"
	"user-admin/internal/middleware"
	"user-admin/internal/service"
)

// Handler serves /v1/users for programmatic clients. It reuses the same
// services as the HTML panel, so tokens, validation, and delete semantics
// are identical across both surfaces.
type Handler struct {
	Users   *service.UserService
	Listing *service.ListingService
	Logger  *slog.Logger
}

func NewHandler(users *service.UserService, listing *service.ListingService, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{Users: users, Listing: listing, Logger: logger}
}

// MountRoutes attaches the API under /v1. The caller wraps the group in
// session auth.
func MountRoutes(r chi.Router, h *Handler) {
	r.Route("/v1/users", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{token}", h.Get)
		r.Delete("/{token}", h.Delete)
	})
}

// User is the API projection of a user. The opaque token stands in for
// the row id.
type User struct {
	Token         string  `json:"token"`
	Username      string  `json:"username"`
	Email         string  `json:"email"`
	Active        bool    `json:"active"`
	CreatedAt     string  `json:"created_at"`
	PermissionIDs []int64 `json:"permission_ids,omitempty"`
	GroupIDs      []int64 `json:"group_ids,omitempty"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := domain.ListingQuery{
		Name:  q.Get("name"),
		Email: q.Get("email"),
	}
	if v, err := strconv.Atoi(q.Get("draw")); err == nil {
		query.Draw = v
	}
	if v, err := strconv.Atoi(q.Get("start")); err == nil {
		query.Start = v
	}
	if v, err := strconv.Atoi(q.Get("length")); err == nil {
		query.Length = v
	}

	result, err := h.Listing.Fetch(r.Context(), query)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	tok := chi.URLParam(r, "token")
	view, err := h.Users.GetForEdit(r.Context(), tok)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, User{
		Token:         view.Token,
		Username:      view.User.Username,
		Email:         view.User.Email,
		Active:        view.User.Active,
		CreatedAt:     view.User.CreatedAt.Format("2006-01-02 15:04:05"),
		PermissionIDs: view.PermissionIDs,
		GroupIDs:      view.GroupIDs,
	})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	tok := chi.URLParam(r, "token")
	if err := h.Users.Destroy(r.Context(), tok); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"code":    http.StatusOK,
		"message": "user deleted",
	})
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := httpStatusFromDomainError(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal server error"
		h.Logger.Error("unhandled api error",
			"error", err,
			"path", r.URL.Path,
			"request_id", middleware.RequestIDFromContext(r.Context()),
		)
	}
	h.writeJSON(w, status, map[string]interface{}{
		"code":    status,
		"message": message,
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
