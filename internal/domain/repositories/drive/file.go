package drive

import (
	"context"

	"studiodrive/internal/domain/models/drive"
)

// FileRepository defines data access operations for file metadata.
// Content bytes are kept in the BlobStore under File.BlobKey.
type FileRepository interface {
	// Create inserts a file row and fills its generated ID and timestamps
	Create(ctx context.Context, file *drive.File) error

	// GetByID retrieves a file with the owner of its parent folder
	GetByID(ctx context.Context, id string) (*drive.File, error)

	// GetOwnership returns the parent folder and its owner for a file.
	// Inside a transaction the file and folder rows are share-locked until commit.
	GetOwnership(ctx context.Context, id string) (*drive.FileOwnership, error)

	// ListByFolder lists files whose parent is folderID
	ListByFolder(ctx context.Context, folderID string) ([]drive.File, error)

	// ListByIDs retrieves the files with the given IDs; missing IDs are skipped
	ListByIDs(ctx context.Context, ids []string) ([]drive.File, error)

	// ListSharedByOwner lists files under folders owned by email flagged is_shared
	ListSharedByOwner(ctx context.Context, email string) ([]drive.File, error)

	// ListStarredByOwner lists files under folders owned by email flagged is_starred
	ListStarredByOwner(ctx context.Context, email string) ([]drive.File, error)

	// Update persists name, is_shared and modified_by
	Update(ctx context.Context, file *drive.File) error

	// SetShared sets the denormalized is_shared flag
	SetShared(ctx context.Context, id string, shared bool) error

	// SetStarred sets the is_starred flag
	SetStarred(ctx context.Context, id string, starred bool) error

	// Delete removes a file and its grants
	Delete(ctx context.Context, id string) error

	// CountByBlobKey counts file rows still referencing a blob
	CountByBlobKey(ctx context.Context, key string) (int, error)
}
