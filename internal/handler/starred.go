package handler

import (
	"log/slog"
	"net/http"

	models "studiodrive/internal/domain/models/drive"
	driveSvc "studiodrive/internal/domain/services/drive"
	"studiodrive/internal/httputil"
)

// StarHandler handles starring
type StarHandler struct {
	starService driveSvc.StarService
	logger      *slog.Logger
}

// NewStarHandler creates a new star handler
func NewStarHandler(starService driveSvc.StarService, logger *slog.Logger) *StarHandler {
	return &StarHandler{
		starService: starService,
		logger:      logger,
	}
}

type setStarredRequest struct {
	IsStarred *bool `json:"is_starred"`
}

// SetStarred stars or unstars a folder or file
// PUT /api/drive/{kind}/{id}/star
func (h *StarHandler) SetStarred(w http.ResponseWriter, r *http.Request) {
	email, ok := principal(w, r)
	if !ok {
		return
	}
	kind, err := models.ParseResourceKind(r.PathValue("kind"))
	if err != nil {
		httputil.RespondError(w, http.StatusNotFound, err.Error())
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req setStarredRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleError(w, err)
		return
	}
	if req.IsStarred == nil {
		httputil.RespondError(w, http.StatusBadRequest, "is_starred is required")
		return
	}

	ref := models.ResourceRef{Kind: kind, ID: id}
	if err := h.starService.SetStarred(r.Context(), email, ref, *req.IsStarred); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]any{
		"item_id":    id,
		"item_type":  kind,
		"is_starred": *req.IsStarred,
	})
}

// ListStarred lists the caller's starred folders and files
// GET /api/drive/starred
func (h *StarHandler) ListStarred(w http.ResponseWriter, r *http.Request) {
	email, ok := principal(w, r)
	if !ok {
		return
	}

	items, err := h.starService.ListStarred(r.Context(), email)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, items)
}
