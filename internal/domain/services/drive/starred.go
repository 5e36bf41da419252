package drive

import (
	"context"

	"studiodrive/internal/domain/models/drive"
)

// StarService toggles and lists starred items. Only owners star their own items.
type StarService interface {
	SetStarred(ctx context.Context, principal string, ref drive.ResourceRef, starred bool) error
	ListStarred(ctx context.Context, principal string) (*drive.StarredItems, error)
}
