package drive

import (
	"time"
)

type File struct {
	ID             string `json:"file_id" db:"id"`
	Name           string `json:"file_name" db:"file_name"`
	Size           int64  `json:"file_size" db:"file_size"`
	Type           string `json:"file_type" db:"file_type"` // MIME type
	ParentFolderID string `json:"parent_folder_id" db:"parent_folder_id"`
	// BlobKey is the SHA-256 hex digest of the content; the bytes live in the blob store
	BlobKey    string    `json:"content_hash" db:"blob_key"`
	OwnerEmail string    `json:"owner_email,omitempty"` // owner of the parent folder, joined on read
	IsShared   bool      `json:"is_shared" db:"is_shared"`
	IsStarred  bool      `json:"is_starred" db:"is_starred"`
	CreatedBy  string    `json:"created_by" db:"created_by"`
	ModifiedBy string    `json:"modified_by" db:"modified_by"`
	CreatedAt  time.Time `json:"created_date" db:"created_at"`
	UpdatedAt  time.Time `json:"modified_date" db:"updated_at"`
}

// FileOwnership is the minimal projection the permission evaluator needs for a file
type FileOwnership struct {
	FileID         string
	ParentFolderID string
	OwnerEmail     string
}
