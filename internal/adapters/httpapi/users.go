package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"usergate/internal/core"
)

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.users.List(r.Context()))
}

func (h *Handler) createUser(v core.Version) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in core.Input
		if !h.decodeBody(w, r, &in) {
			return
		}
		user, err := h.users.Create(r.Context(), v, in)
		if err != nil {
			h.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, user)
	}
}

func (h *Handler) readUser(v core.Version) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := h.users.Read(r.Context(), v, chi.URLParam(r, "id"))
		if err != nil {
			h.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}

func (h *Handler) updateUser(v core.Version) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in core.Input
		if !h.decodeBody(w, r, &in) {
			return
		}
		user, err := h.users.Update(r.Context(), v, chi.URLParam(r, "id"), in)
		if err != nil {
			h.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}

type deleteResponse struct {
	Message string    `json:"message"`
	User    core.User `json:"user"`
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, deleteResponse{Message: "User deleted successfully", User: user})
}
