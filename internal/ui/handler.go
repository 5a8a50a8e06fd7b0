// Package ui serves the server-rendered admin panel: the user table,
// create/edit forms, and the login flow.
package ui

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"user-admin/internal/domain"
	"user-admin/internal/middleware"
	"user-admin/internal/service"

	gomponents "maragu.dev/gomponents"
)

type Handler struct {
	Users      *service.UserService
	Listing    *service.ListingService
	Sessions   *middleware.SessionManager
	Logger     *slog.Logger
	Production bool
}

func NewHandler(users *service.UserService, listing *service.ListingService, sessions *middleware.SessionManager, logger *slog.Logger, production bool) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		Users:      users,
		Listing:    listing,
		Sessions:   sessions,
		Logger:     logger,
		Production: production,
	}
}

// listingQueryFromRequest reads the table parameters from the POSTed
// form body (query parameters also work, which keeps tests simple).
func listingQueryFromRequest(r *http.Request) domain.ListingQuery {
	_ = r.ParseForm()
	query := domain.ListingQuery{
		Name:  r.Form.Get("name"),
		Email: r.Form.Get("email"),
	}
	if v, err := strconv.Atoi(r.Form.Get("draw")); err == nil {
		query.Draw = v
	}
	if v, err := strconv.Atoi(r.Form.Get("start")); err == nil {
		query.Start = v
	}
	if v, err := strconv.Atoi(r.Form.Get("length")); err == nil {
		query.Length = v
	}
	return query
}

func renderHTML(w http.ResponseWriter, status int, node gomponents.Node) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = node.Render(w)
}

func sessionFromContext(ctx context.Context) domain.SessionUser {
	u, ok := domain.SessionUserFromContext(ctx)
	if !ok {
		return domain.SessionUser{Username: "unknown"}
	}
	return u
}

// renderServiceError maps domain errors to an error page. Unexpected
// errors are logged with the request id and shown as a generic message so
// storage internals never reach the browser.
func (h *Handler) renderServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	title := "Unexpected Error"
	message := "An unexpected error occurred while processing this request."

	var notFound *domain.NotFoundError
	var accessDenied *domain.AccessDeniedError
	var validation *domain.ValidationError
	var conflict *domain.ConflictError
	switch {
	case errors.As(err, &notFound):
		status = http.StatusNotFound
		title = "Not Found"
		message = notFound.Error()
	case errors.As(err, &accessDenied):
		status = http.StatusForbidden
		title = "Access Denied"
		message = accessDenied.Error()
	case errors.As(err, &validation):
		status = http.StatusBadRequest
		title = "Invalid Request"
		message = validation.Error()
	case errors.As(err, &conflict):
		status = http.StatusConflict
		title = "Conflict"
		message = conflict.Error()
	default:
		h.Logger.Error("unhandled ui error",
			"error", err,
			"path", r.URL.Path,
			"request_id", middleware.RequestIDFromContext(r.Context()),
		)
	}

	renderHTML(w, status, errorPage(title, message))
}
