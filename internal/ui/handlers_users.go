package ui

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"user-admin/internal/domain"
	"user-admin/internal/middleware"
)

func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	flash := h.popFlash(w, r)
	renderHTML(w, http.StatusOK, usersListPage(
		sessionFromContext(r.Context()),
		flash,
		"/admin/users/fetch",
		csrfTokenFromRequest(r),
	))
}

// Fetch serves the table-data endpoint consumed by the list page script:
// filtered, offset-paginated rows plus the totals and the echoed draw
// token.
func (h *Handler) Fetch(w http.ResponseWriter, r *http.Request) {
	result, err := h.Listing.Fetch(r.Context(), listingQueryFromRequest(r))
	if err != nil {
		h.writeJSONError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) NewForm(w http.ResponseWriter, r *http.Request) {
	data, err := h.formCatalog(r, userFormData{
		Title:  "New User",
		Action: "/admin/users/store",
		Active: true,
	})
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	renderHTML(w, http.StatusOK, userFormPage(sessionFromContext(r.Context()), data, csrfField(r)))
}

func (h *Handler) Store(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		renderHTML(w, http.StatusBadRequest, errorPage("Invalid Request", "Unable to parse form."))
		return
	}
	req := domain.CreateUserRequest{
		Active:      formBool(r.Form, "active"),
		Username:    formString(r.Form, "username"),
		Email:       formString(r.Form, "email"),
		Password:    first(r.Form["password"]),
		PassConfirm: first(r.Form["pass_confirm"]),
		Permissions: formInt64s(r.Form, "permissions"),
		Groups:      formInt64s(r.Form, "groups"),
	}

	if err := h.Users.Create(r.Context(), req); err != nil {
		var validation *domain.ValidationError
		if errors.As(err, &validation) {
			data, catErr := h.formCatalog(r, userFormData{
				Title:    "New User",
				Action:   "/admin/users/store",
				Username: req.Username,
				Email:    req.Email,
				Active:   req.Active,
				Errors:   validation.Fields,
			})
			if catErr != nil {
				h.renderServiceError(w, r, catErr)
				return
			}
			data.CheckedPerm = int64Set(req.Permissions)
			data.CheckedGrp = int64Set(req.Groups)
			renderHTML(w, http.StatusUnprocessableEntity, userFormPage(sessionFromContext(r.Context()), data, csrfField(r)))
			return
		}
		h.renderServiceError(w, r, err)
		return
	}

	h.setFlash(w, Flash{Kind: "success", Message: "User created."})
	http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
}

func (h *Handler) EditForm(w http.ResponseWriter, r *http.Request) {
	tok := chi.URLParam(r, "token")
	view, err := h.Users.GetForEdit(r.Context(), tok)
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	data, err := h.formCatalog(r, userFormData{
		Title:    "Edit User",
		Action:   "/admin/users/update/" + view.Token,
		Username: view.User.Username,
		Email:    view.User.Email,
		Active:   view.User.Active,
		IsEdit:   true,
	})
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	data.CheckedPerm = int64Set(view.PermissionIDs)
	data.CheckedGrp = int64Set(view.GroupIDs)
	renderHTML(w, http.StatusOK, userFormPage(sessionFromContext(r.Context()), data, csrfField(r)))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	tok := chi.URLParam(r, "token")
	if err := r.ParseForm(); err != nil {
		renderHTML(w, http.StatusBadRequest, errorPage("Invalid Request", "Unable to parse form."))
		return
	}
	req := domain.UpdateUserRequest{
		Active:      formBool(r.Form, "active"),
		Username:    formString(r.Form, "username"),
		Email:       formString(r.Form, "email"),
		Password:    first(r.Form["password"]),
		PassConfirm: first(r.Form["pass_confirm"]),
		Permissions: formInt64s(r.Form, "permissions"),
		Groups:      formInt64s(r.Form, "groups"),
	}

	if err := h.Users.Update(r.Context(), tok, req); err != nil {
		var validation *domain.ValidationError
		if errors.As(err, &validation) {
			data, catErr := h.formCatalog(r, userFormData{
				Title:    "Edit User",
				Action:   "/admin/users/update/" + tok,
				Username: req.Username,
				Email:    req.Email,
				Active:   req.Active,
				Errors:   validation.Fields,
				IsEdit:   true,
			})
			if catErr != nil {
				h.renderServiceError(w, r, catErr)
				return
			}
			data.CheckedPerm = int64Set(req.Permissions)
			data.CheckedGrp = int64Set(req.Groups)
			renderHTML(w, http.StatusUnprocessableEntity, userFormPage(sessionFromContext(r.Context()), data, csrfField(r)))
			return
		}
		h.renderServiceError(w, r, err)
		return
	}

	h.setFlash(w, Flash{Kind: "success", Message: "User updated."})
	http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
}

// Destroy deletes a user and answers JSON for the list page script.
func (h *Handler) Destroy(w http.ResponseWriter, r *http.Request) {
	tok := chi.URLParam(r, "token")
	if err := h.Users.Destroy(r.Context(), tok); err != nil {
		h.writeJSONError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  true,
		"message": "User deleted.",
	})
}

// formCatalog fills the permission and role option lists on form data.
func (h *Handler) formCatalog(r *http.Request, data userFormData) (userFormData, error) {
	perms, err := h.Users.Permissions(r.Context())
	if err != nil {
		return data, err
	}
	groups, err := h.Users.Groups(r.Context())
	if err != nil {
		return data, err
	}
	data.Permissions = perms
	data.Groups = groups
	if data.Errors == nil {
		data.Errors = map[string]string{}
	}
	return data, nil
}

func (h *Handler) writeJSONError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	message := "An unexpected error occurred while processing this request."

	var notFound *domain.NotFoundError
	var validation *domain.ValidationError
	switch {
	case errors.As(err, &notFound):
		status = http.StatusNotFound
		message = notFound.Error()
	case errors.As(err, &validation):
		status = http.StatusBadRequest
		message = validation.Error()
	default:
		h.Logger.Error("unhandled ui error",
			"error", err,
			"path", r.URL.Path,
			"request_id", middleware.RequestIDFromContext(r.Context()),
		)
	}

	writeJSON(w, status, map[string]interface{}{
		"status":  false,
		"message": message,
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func int64Set(ids []int64) map[int64]bool {
	set := make(map[int64]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
