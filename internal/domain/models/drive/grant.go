package drive

import (
	"time"
)

// Grant is an access ledger row delegating a permission level on exactly one
// folder or file to another principal. It never implies ownership.
type Grant struct {
	ID           string          `json:"id" db:"id"`
	FolderID     *string         `json:"folder_id" db:"folder_id"`
	FileID       *string         `json:"file_id" db:"file_id"`
	GranteeEmail string          `json:"user_email" db:"shared_with"`
	Permission   PermissionLevel `json:"permission" db:"permission"`
	SharedPublic bool            `json:"shared_public" db:"shared_public"`
	SharedBy     string          `json:"shared_by" db:"shared_by"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
}

// Resource returns the folder or file the grant applies to
func (g *Grant) Resource() ResourceRef {
	if g.FolderID != nil {
		return FolderRef(*g.FolderID)
	}
	if g.FileID != nil {
		return FileRef(*g.FileID)
	}
	return ResourceRef{}
}

// NewGrant builds an unsaved grant for ref
func NewGrant(ref ResourceRef, grantee string, level PermissionLevel, sharedPublic bool, sharedBy string) *Grant {
	g := &Grant{
		GranteeEmail: grantee,
		Permission:   level,
		SharedPublic: sharedPublic,
		SharedBy:     sharedBy,
	}
	id := ref.ID
	switch ref.Kind {
	case KindFolder:
		g.FolderID = &id
	case KindFile:
		g.FileID = &id
	}
	return g
}
