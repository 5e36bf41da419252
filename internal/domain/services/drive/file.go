package drive

import (
	"context"
	"io"

	"studiodrive/internal/domain/models/drive"
)

// FileService handles file business logic
type FileService interface {
	// UploadFile stores content under a folder (write on the folder)
	UploadFile(ctx context.Context, principal string, req *UploadFileRequest) (*drive.File, error)

	// ListFiles lists file metadata in a folder (read on the folder)
	ListFiles(ctx context.Context, principal, folderID string) ([]drive.File, error)

	// GetFile retrieves file metadata (read)
	GetFile(ctx context.Context, principal, fileID string) (*drive.File, error)

	// OpenFile returns metadata and a content stream (read); caller closes Content
	OpenFile(ctx context.Context, principal, fileID string) (*FileContent, error)

	// UpdateFile renames a file or flips is_shared (write)
	UpdateFile(ctx context.Context, principal, fileID string, req *UpdateFileRequest) (*drive.File, error)

	// DeleteFile deletes a file and its grants (admin)
	DeleteFile(ctx context.Context, principal, fileID string) error
}

// UploadFileRequest carries an uploaded file
type UploadFileRequest struct {
	ParentFolderID string
	Name           string
	// Type is the client supplied MIME type; sniffed from Content when empty or generic
	Type     string
	IsShared bool
	Content  []byte
}

// UpdateFileRequest represents a file update request; nil fields are left unchanged
type UpdateFileRequest struct {
	Name     *string `json:"file_name,omitempty"`
	IsShared *bool   `json:"is_shared,omitempty"`
}

// FileContent is an opened file
type FileContent struct {
	File    *drive.File
	Content io.ReadCloser
}
