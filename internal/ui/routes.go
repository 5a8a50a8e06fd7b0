package ui

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"

	"user-admin/internal/ui/assets"
)

// MountRoutes attaches the admin panel to the router. authMiddleware
// guards everything under /admin; the login pair stays public so the
// session cookie can be obtained.
func MountRoutes(r chi.Router, h *Handler, authMiddleware func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(h.EnsureCSRFToken)
		r.Use(h.RequireCSRF)

		r.Get("/login", h.LoginPage)
		r.Post("/login", h.LoginSubmit)
		r.Post("/logout", h.Logout)

		r.Route("/admin/users", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Get("/", h.Index)
			r.Post("/fetch", h.Fetch)
			r.Get("/create", h.NewForm)
			r.Post("/store", h.Store)
			r.Get("/edit/{token}", h.EditForm)
			r.Post("/update/{token}", h.Update)
			r.Post("/destroy/{token}", h.Destroy)
		})
	})

	staticFS, err := fs.Sub(assets.StaticFS(), "static")
	if err == nil {
		r.Handle("/admin/static/*", http.StripPrefix("/admin/static/", http.FileServer(http.FS(staticFS))))
	}

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
	})
}
