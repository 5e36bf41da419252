package drive

import (
	"time"
)

type Folder struct {
	ID         string    `json:"folder_id" db:"id"`
	Name       string    `json:"folder_name" db:"folder_name"`
	OwnerEmail string    `json:"owner_email" db:"owner_email"`
	IsRoot     bool      `json:"is_root" db:"is_root"` // per-user top-level folder
	IsShared   bool      `json:"is_shared" db:"is_shared"`
	IsStarred  bool      `json:"is_starred" db:"is_starred"`
	CreatedBy  string    `json:"created_by" db:"created_by"`
	ModifiedBy string    `json:"modified_by" db:"modified_by"`
	CreatedAt  time.Time `json:"created_date" db:"created_at"`
	UpdatedAt  time.Time `json:"modified_date" db:"updated_at"`
}

// FolderEdge nests child under parent. A folder may have several parents.
type FolderEdge struct {
	ParentFolderID string `json:"parent_folder_id" db:"parent_folder_id"`
	ChildFolderID  string `json:"child_folder_id" db:"child_folder_id"`
}
