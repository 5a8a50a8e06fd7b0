package ui

import (
	"errors"
	"net/http"
	"strings"

	"user-admin/internal/domain"
	"user-admin/internal/middleware"
)

func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil {
		if _, err := h.Sessions.Validate(cookie.Value); err == nil {
			http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
			return
		}
	}
	renderHTML(w, http.StatusOK, loginPage("", csrfField(r)))
}

func (h *Handler) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		renderHTML(w, http.StatusBadRequest, loginPage("Unable to parse the login form.", csrfField(r)))
		return
	}
	username := formString(r.Form, "username")
	password := first(r.Form["password"])
	if username == "" || strings.TrimSpace(password) == "" {
		renderHTML(w, http.StatusBadRequest, loginPage("Username and password are required.", csrfField(r)))
		return
	}

	u, err := h.Users.Authenticate(r.Context(), username, password)
	if err != nil {
		var denied *domain.AccessDeniedError
		if errors.As(err, &denied) {
			renderHTML(w, http.StatusUnauthorized, loginPage("Invalid username or password.", csrfField(r)))
			return
		}
		h.renderServiceError(w, r, err)
		return
	}

	token, err := h.Sessions.Issue(domain.SessionUser{ID: u.ID, Username: u.Username})
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	h.Sessions.SetCookie(w, token)
	http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.Sessions.ClearCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
