package handler

import (
	"log/slog"
	"net/http"

	models "studiodrive/internal/domain/models/drive"
	driveSvc "studiodrive/internal/domain/services/drive"
	"studiodrive/internal/httputil"
)

// FolderHandler handles folder HTTP requests
type FolderHandler struct {
	folderService driveSvc.FolderService
	logger        *slog.Logger
}

// NewFolderHandler creates a new folder handler
func NewFolderHandler(folderService driveSvc.FolderService, logger *slog.Logger) *FolderHandler {
	return &FolderHandler{
		folderService: folderService,
		logger:        logger,
	}
}

// CreateFolder creates a new folder owned by the caller
// POST /api/drive/folders
func (h *FolderHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	email, ok := principal(w, r)
	if !ok {
		return
	}

	var req driveSvc.CreateFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleError(w, err)
		return
	}

	folder, err := h.folderService.CreateFolder(r.Context(), email, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, folder)
}

// ListFolders lists folders owned by or shared with the caller
// GET /api/drive/folders
func (h *FolderHandler) ListFolders(w http.ResponseWriter, r *http.Request) {
	email, ok := principal(w, r)
	if !ok {
		return
	}

	folders, err := h.folderService.ListFolders(r.Context(), email)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folders)
}

// GetFolder retrieves a folder
// GET /api/drive/folders/{id}
func (h *FolderHandler) GetFolder(w http.ResponseWriter, r *http.Request) {
	email, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	folder, err := h.folderService.GetFolder(r.Context(), email, id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folder)
}

// UpdateFolder renames a folder or changes its shared flag
// PATCH /api/drive/folders/{id}
func (h *FolderHandler) UpdateFolder(w http.ResponseWriter, r *http.Request) {
	email, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req driveSvc.UpdateFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleError(w, err)
		return
	}

	folder, err := h.folderService.UpdateFolder(r.Context(), email, id, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folder)
}

// DeleteFolder deletes a folder with its files and grants
// DELETE /api/drive/folders/{id}
func (h *FolderHandler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	email, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.folderService.DeleteFolder(r.Context(), email, id); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListSubfolders lists the immediate children of a folder
// GET /api/drive/folders/{id}/subfolders
func (h *FolderHandler) ListSubfolders(w http.ResponseWriter, r *http.Request) {
	email, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	folders, err := h.folderService.ListSubfolders(r.Context(), email, id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folders)
}

type addSubfolderRequest struct {
	ChildFolderID string `json:"child_folder_id"`
}

// AddSubfolder nests an existing folder under this one
// POST /api/drive/folders/{id}/subfolders
func (h *FolderHandler) AddSubfolder(w http.ResponseWriter, r *http.Request) {
	email, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req addSubfolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleError(w, err)
		return
	}

	edge := models.FolderEdge{ParentFolderID: id, ChildFolderID: req.ChildFolderID}
	if err := h.folderService.AddSubfolder(r.Context(), email, edge); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, edge)
}

// RemoveSubfolder removes a nesting edge; the child folder is kept
// DELETE /api/drive/folders/{id}/subfolders/{childID}
func (h *FolderHandler) RemoveSubfolder(w http.ResponseWriter, r *http.Request) {
	email, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	childID, ok := pathID(w, r, "childID")
	if !ok {
		return
	}

	edge := models.FolderEdge{ParentFolderID: id, ChildFolderID: childID}
	if err := h.folderService.RemoveSubfolder(r.Context(), email, edge); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
