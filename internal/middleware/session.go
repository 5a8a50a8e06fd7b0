// Package middleware provides HTTP middleware for sessions, request ids,
// and rate limiting.
package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"user-admin/internal/domain"
)

// SessionCookieName is the cookie carrying the signed admin session.
const SessionCookieName = "admin_session"

// SessionManager issues and validates HS256-signed session tokens for the
// admin panel. The token carries the user id (sub) and username (name).
type SessionManager struct {
	secret []byte
	ttl    time.Duration
	secure bool
}

// NewSessionManager creates a SessionManager. secure controls the Secure
// flag on issued cookies and should be true in production.
func NewSessionManager(secret string, ttl time.Duration, secure bool) (*SessionManager, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("session secret must not be empty")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionManager{secret: []byte(secret), ttl: ttl, secure: secure}, nil
}

// Issue signs a session token for the given user.
func (m *SessionManager) Issue(u domain.SessionUser) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  strconv.FormatInt(u.ID, 10),
		"name": u.Username,
		"iat":  now.Unix(),
		"exp":  now.Add(m.ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Validate parses and verifies a session token.
func (m *SessionManager) Validate(tokenString string) (domain.SessionUser, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return domain.SessionUser{}, domain.ErrAccessDenied("invalid session")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return domain.SessionUser{}, domain.ErrAccessDenied("invalid session")
	}
	sub, _ := claims["sub"].(string)
	id, err := strconv.ParseInt(sub, 10, 64)
	if err != nil || id <= 0 {
		return domain.SessionUser{}, domain.ErrAccessDenied("invalid session")
	}
	name, _ := claims["name"].(string)
	return domain.SessionUser{ID: id, Username: name}, nil
}

// SetCookie writes the session cookie on the response.
func (m *SessionManager) SetCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(m.ttl),
	})
}

// ClearCookie removes the session cookie.
func (m *SessionManager) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// RequireSession guards routes behind a valid session cookie. Browser
// requests are redirected to loginPath; API requests (under /v1) get a
// 401 JSON body.
func RequireSession(m *SessionManager, loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || strings.TrimSpace(cookie.Value) == "" {
				deny(w, r, loginPath)
				return
			}
			u, err := m.Validate(cookie.Value)
			if err != nil {
				deny(w, r, loginPath)
				return
			}
			next.ServeHTTP(w, r.WithContext(domain.WithSessionUser(r.Context(), u)))
		})
	}
}

func deny(w http.ResponseWriter, r *http.Request, loginPath string) {
	if strings.HasPrefix(r.URL.Path, "/v1/") {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"code":    http.StatusUnauthorized,
			"message": "authentication required",
		})
		return
	}
	http.Redirect(w, r, loginPath, http.StatusSeeOther)
}
