package drive

import (
	"context"

	"studiodrive/internal/domain/models/drive"
)

// FolderRepository defines data access operations for folders
type FolderRepository interface {
	// Create inserts a folder and fills its generated ID and timestamps
	Create(ctx context.Context, folder *drive.Folder) error

	// GetByID retrieves a folder by ID
	GetByID(ctx context.Context, id string) (*drive.Folder, error)

	// GetOwner returns the owner email of a folder.
	// Inside a transaction the folder row is share-locked until commit.
	GetOwner(ctx context.Context, id string) (string, error)

	// ListByIDs retrieves the folders with the given IDs; missing IDs are skipped
	ListByIDs(ctx context.Context, ids []string) ([]drive.Folder, error)

	// ListAccessible lists folders owned by email or granted to email
	ListAccessible(ctx context.Context, email string) ([]drive.Folder, error)

	// ListSharedByOwner lists owned folders flagged is_shared
	ListSharedByOwner(ctx context.Context, email string) ([]drive.Folder, error)

	// ListStarredByOwner lists owned folders flagged is_starred
	ListStarredByOwner(ctx context.Context, email string) ([]drive.Folder, error)

	// Update persists name, is_shared and modified_by
	Update(ctx context.Context, folder *drive.Folder) error

	// SetShared sets the denormalized is_shared flag
	SetShared(ctx context.Context, id string, shared bool) error

	// SetStarred sets the is_starred flag
	SetStarred(ctx context.Context, id string, starred bool) error

	// Delete removes a folder together with its files, grants and structure edges
	Delete(ctx context.Context, id string) error
}

// FolderStructureRepository manages the parent/child edge table.
// Lookups walk exactly one level.
type FolderStructureRepository interface {
	// AddEdge nests child under parent; duplicate edges return a ConflictError
	AddEdge(ctx context.Context, edge drive.FolderEdge) error

	// RemoveEdge deletes one edge; returns domain.ErrNotFound when absent
	RemoveEdge(ctx context.Context, edge drive.FolderEdge) error

	// ListChildren returns the immediate child folders of parent
	ListChildren(ctx context.Context, parentID string) ([]drive.Folder, error)
}
