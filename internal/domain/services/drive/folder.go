package drive

import (
	"context"

	"studiodrive/internal/domain/models/drive"
)

// FolderService handles folder business logic
type FolderService interface {
	// CreateFolder creates a folder owned by principal, optionally nested under a parent
	CreateFolder(ctx context.Context, principal string, req *CreateFolderRequest) (*drive.Folder, error)

	// ListFolders lists folders owned by or shared with principal
	ListFolders(ctx context.Context, principal string) ([]drive.Folder, error)

	// GetFolder retrieves a folder (read)
	GetFolder(ctx context.Context, principal, folderID string) (*drive.Folder, error)

	// UpdateFolder renames a folder or flips is_shared (write)
	UpdateFolder(ctx context.Context, principal, folderID string, req *UpdateFolderRequest) (*drive.Folder, error)

	// DeleteFolder deletes a folder with its files, grants and edges (admin)
	DeleteFolder(ctx context.Context, principal, folderID string) error

	// AddSubfolder nests child under parent (write on parent, read on child)
	AddSubfolder(ctx context.Context, principal string, edge drive.FolderEdge) error

	// RemoveSubfolder removes a nesting edge (write on parent)
	RemoveSubfolder(ctx context.Context, principal string, edge drive.FolderEdge) error

	// ListSubfolders lists the immediate children of a folder (read)
	ListSubfolders(ctx context.Context, principal, parentID string) ([]drive.Folder, error)
}

// CreateFolderRequest represents a folder creation request
type CreateFolderRequest struct {
	Name           string  `json:"folder_name"`
	IsRoot         bool    `json:"is_root"`
	IsShared       bool    `json:"is_shared"`
	ParentFolderID *string `json:"parent_folder_id,omitempty"`
}

// UpdateFolderRequest represents a folder update request; nil fields are left unchanged
type UpdateFolderRequest struct {
	Name     *string `json:"folder_name,omitempty"`
	IsShared *bool   `json:"is_shared,omitempty"`
}
