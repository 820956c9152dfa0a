package handlers

import (
	"net/http"

	"github.com/gotodo/gotodo/internal/models"
	"github.com/gotodo/gotodo/internal/services"
)

// TagHandler handles tag endpoints. Tags are shared by all users.
type TagHandler struct {
	service services.TagService
}

// NewTagHandler creates a new TagHandler.
func NewTagHandler(svc services.TagService) *TagHandler {
	return &TagHandler{service: svc}
}

// List handles GET /api/v1/tags.
func (h *TagHandler) List(w http.ResponseWriter, r *http.Request) {
	tags, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tags)
}

// Create handles POST /api/v1/tags.
func (h *TagHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in models.TagCreate
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}

	tag, err := h.service.Create(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tag)
}

// Delete handles DELETE /api/v1/tags/{id}.
func (h *TagHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
