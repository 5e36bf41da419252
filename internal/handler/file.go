package handler

import (
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	driveSvc "studiodrive/internal/domain/services/drive"
	"studiodrive/internal/httputil"
)

// FileHandler handles file HTTP requests
type FileHandler struct {
	fileService    driveSvc.FileService
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewFileHandler creates a new file handler
func NewFileHandler(fileService driveSvc.FileService, maxUploadBytes int64, logger *slog.Logger) *FileHandler {
	return &FileHandler{
		fileService:    fileService,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// UploadFile stores a multipart upload in a folder.
// Form fields: file (required), file_name and is_shared (optional).
// POST /api/drive/folders/{id}/files
func (h *FileHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	email, ok := principal(w, r)
	if !ok {
		return
	}
	folderID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	upload, err := httputil.ParseUploadedFile(w, r, "file", h.maxUploadBytes)
	if err != nil {
		handleError(w, err)
		return
	}

	req := &driveSvc.UploadFileRequest{
		ParentFolderID: folderID,
		Name:           upload.Name,
		Type:           upload.ContentType,
		Content:        upload.Content,
	}
	if name := r.FormValue("file_name"); name != "" {
		req.Name = name
	}
	if shared := r.FormValue("is_shared"); shared != "" {
		req.IsShared, _ = strconv.ParseBool(shared)
	}

	file, err := h.fileService.UploadFile(r.Context(), email, req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, file)
}

// ListFiles lists file metadata in a folder
// GET /api/drive/folders/{id}/files
func (h *FileHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	email, ok := principal(w, r)
	if !ok {
		return
	}
	folderID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	files, err := h.fileService.ListFiles(r.Context(), email, folderID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, files)
}

// GetFile retrieves file metadata
// GET /api/drive/files/{id}
func (h *FileHandler) GetFile(w http.ResponseWriter, r *http.Request) {
	email, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	file, err := h.fileService.GetFile(r.Context(), email, id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, file)
}

// DownloadFile streams the content as an attachment
// GET /api/drive/files/{id}/content
func (h *FileHandler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	h.serveContent(w, r, "attachment")
}

// PreviewFile streams the content for inline display
// GET /api/drive/files/{id}/preview
func (h *FileHandler) PreviewFile(w http.ResponseWriter, r *http.Request) {
	h.serveContent(w, r, "inline")
}

func (h *FileHandler) serveContent(w http.ResponseWriter, r *http.Request, disposition string) {
	email, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	content, err := h.fileService.OpenFile(r.Context(), email, id)
	if err != nil {
		handleError(w, err)
		return
	}
	defer content.Content.Close()

	file := content.File
	w.Header().Set("Content-Type", file.Type)
	w.Header().Set("Content-Length", strconv.FormatInt(file.Size, 10))
	w.Header().Set("Content-Disposition", mime.FormatMediaType(disposition, map[string]string{"filename": file.Name}))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, content.Content); err != nil {
		// Headers are gone; all that is left is to log
		h.logger.Warn("stream file content", "file_id", id, "error", err)
	}
}

// UpdateFile renames a file or changes its shared flag
// PATCH /api/drive/files/{id}
func (h *FileHandler) UpdateFile(w http.ResponseWriter, r *http.Request) {
	email, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req driveSvc.UpdateFileRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleError(w, err)
		return
	}

	file, err := h.fileService.UpdateFile(r.Context(), email, id, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, file)
}

// DeleteFile deletes a file and its grants
// DELETE /api/drive/files/{id}
func (h *FileHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	email, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.fileService.DeleteFile(r.Context(), email, id); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
