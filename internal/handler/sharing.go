package handler

import (
	"log/slog"
	"net/http"

	"studiodrive/internal/config"
	models "studiodrive/internal/domain/models/drive"
	driveSvc "studiodrive/internal/domain/services/drive"
	"studiodrive/internal/httputil"
)

// SharingHandler exposes the grant ledger
type SharingHandler struct {
	sharingService driveSvc.SharingService
	logger         *slog.Logger
}

// NewSharingHandler creates a new sharing handler
func NewSharingHandler(sharingService driveSvc.SharingService, logger *slog.Logger) *SharingHandler {
	return &SharingHandler{
		sharingService: sharingService,
		logger:         logger,
	}
}

// Share grants levels on one resource to a batch of recipients
// POST /api/drive/shares
func (h *SharingHandler) Share(w http.ResponseWriter, r *http.Request) {
	email, ok := principal(w, r)
	if !ok {
		return
	}

	var req driveSvc.ShareRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleError(w, err)
		return
	}

	grants, err := h.sharingService.Share(r.Context(), email, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, grants)
}

// ListFolderGrants lists grants on a folder
// GET /api/drive/folders/{id}/grants
func (h *SharingHandler) ListFolderGrants(w http.ResponseWriter, r *http.Request) {
	h.listGrants(w, r, models.KindFolder)
}

// ListFileGrants lists grants on a file
// GET /api/drive/files/{id}/grants
func (h *SharingHandler) ListFileGrants(w http.ResponseWriter, r *http.Request) {
	h.listGrants(w, r, models.KindFile)
}

func (h *SharingHandler) listGrants(w http.ResponseWriter, r *http.Request, kind models.ResourceKind) {
	email, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	grants, err := h.sharingService.ListGrants(r.Context(), email, models.ResourceRef{Kind: kind, ID: id})
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, grants)
}

// UpdateGrant changes the level or public flag of a grant
// PATCH /api/drive/grants/{id}
func (h *SharingHandler) UpdateGrant(w http.ResponseWriter, r *http.Request) {
	email, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req driveSvc.UpdateGrantRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleError(w, err)
		return
	}

	grant, err := h.sharingService.UpdateGrant(r.Context(), email, id, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, grant)
}

// Revoke deletes a grant
// DELETE /api/drive/grants/{id}
func (h *SharingHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	email, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.sharingService.Revoke(r.Context(), email, id); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type granteesRequest struct {
	Items []models.ResourceRef `json:"items"`
}

// ListGrantees returns grantees with profiles for a batch of resources
// POST /api/drive/grantees
func (h *SharingHandler) ListGrantees(w http.ResponseWriter, r *http.Request) {
	email, ok := principal(w, r)
	if !ok {
		return
	}

	var req granteesRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleError(w, err)
		return
	}
	if len(req.Items) > config.MaxGranteeLookupResources {
		httputil.RespondError(w, http.StatusBadRequest, "too many items")
		return
	}

	// Accept "folders"/"files" as well as the singular forms
	for i, item := range req.Items {
		if kind, err := models.ParseResourceKind(string(item.Kind)); err == nil {
			req.Items[i].Kind = kind
		}
	}

	result, err := h.sharingService.ListGranteesWithProfile(r.Context(), email, req.Items)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// SharedByMe lists the caller's shared folders and files
// GET /api/drive/shared/by-me
func (h *SharingHandler) SharedByMe(w http.ResponseWriter, r *http.Request) {
	email, ok := principal(w, r)
	if !ok {
		return
	}

	result, err := h.sharingService.SharedByMe(r.Context(), email)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// SharedWithMe lists folders and files granted to the caller
// GET /api/drive/shared/with-me
func (h *SharingHandler) SharedWithMe(w http.ResponseWriter, r *http.Request) {
	email, ok := principal(w, r)
	if !ok {
		return
	}

	result, err := h.sharingService.SharedWithMe(r.Context(), email)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}
