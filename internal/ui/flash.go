package ui

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
)

const flashCookieName = "admin_flash"

// Flash is a one-shot status message carried across a redirect.
type Flash struct {
	Kind    string `json:"kind"` // "success" or "error"
	Message string `json:"message"`
}

func (h *Handler) setFlash(w http.ResponseWriter, f Flash) {
	payload, err := json.Marshal(f)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    base64.RawURLEncoding.EncodeToString(payload),
		Path:     "/",
		HttpOnly: true,
		Secure:   h.Production,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   60,
	})
}

// popFlash reads and clears the flash cookie. Returns nil when no flash
// is pending or the cookie does not decode.
func (h *Handler) popFlash(w http.ResponseWriter, r *http.Request) *Flash {
	cookie, err := r.Cookie(flashCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.Production,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
	payload, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}
	var f Flash
	if err := json.Unmarshal(payload, &f); err != nil {
		return nil
	}
	if f.Message == "" {
		return nil
	}
	return &f
}
