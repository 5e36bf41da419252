package services

import (
	"context"

	"studiodrive/internal/domain/models/drive"
)

// ShareNotice is what a grantee is told about a new grant
type ShareNotice struct {
	Owner        string
	ResourceName string
	ResourceKind drive.ResourceKind
	ResourceID   string
	Grantee      string
	Level        drive.PermissionLevel
	FileSize     int64 // 0 for folders
}

// ShareNotifier delivers share notifications (email).
// Delivery is best effort: callers log the error and carry on.
type ShareNotifier interface {
	NotifyShare(ctx context.Context, notice ShareNotice) error
}

// Broadcaster pushes events to connected realtime clients.
// Fire-and-forget: no acknowledgement, no ordering relative to the HTTP response.
// With recipients the event reaches only clients authenticated as one of them;
// without, every client. Access events always name their recipients.
type Broadcaster interface {
	Broadcast(event string, payload any, recipients ...string)
}

// Realtime event names
const (
	EventAccessGranted = "drive_access_granted"
	EventAccessUpdated = "drive_access_updated"
	EventAccessRevoked = "drive_access_revoked"
	EventFolderChanged = "drive_folder_changed"
	EventFileChanged   = "drive_file_changed"
)
