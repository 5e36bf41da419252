package drive

import (
	"context"

	"studiodrive/internal/domain/models/drive"
)

// SharingService is the access grant ledger: create, list, update and revoke
// grants, plus the shared-by/with-me listings.
type SharingService interface {
	// Share grants one ledger row per recipient (owner only) and marks the resource shared once
	Share(ctx context.Context, principal string, req *ShareRequest) ([]drive.Grant, error)

	// ListGrants lists grants on a resource (owner only)
	ListGrants(ctx context.Context, principal string, ref drive.ResourceRef) ([]drive.Grant, error)

	// UpdateGrant changes permission/shared_public (owner of the grant's resource only)
	UpdateGrant(ctx context.Context, principal, grantID string, req *UpdateGrantRequest) (*drive.Grant, error)

	// Revoke deletes a grant (owner of the grant's resource only)
	Revoke(ctx context.Context, principal, grantID string) error

	// ListGranteesWithProfile lists grantees with display profiles for a batch of resources
	ListGranteesWithProfile(ctx context.Context, principal string, refs []drive.ResourceRef) ([]drive.ResourceGrantees, error)

	// SharedByMe lists owned resources flagged is_shared
	SharedByMe(ctx context.Context, principal string) (*drive.SharedByMe, error)

	// SharedWithMe lists resources granted to principal with sharer details
	SharedWithMe(ctx context.Context, principal string) (*drive.SharedWithMe, error)
}

// ShareRequest is a batch grant on one resource
type ShareRequest struct {
	ItemID       string           `json:"item_id"`
	ItemType     string           `json:"item_type"`
	SharedPublic bool             `json:"shared_public"`
	ShareWith    []ShareRecipient `json:"share_with"`
}

// ShareRecipient is one grantee of a ShareRequest
type ShareRecipient struct {
	Email      string `json:"email"`
	Permission string `json:"permission"`
}

// UpdateGrantRequest represents a grant update; nil fields are left unchanged
type UpdateGrantRequest struct {
	Permission   *string `json:"permission,omitempty"`
	SharedPublic *bool   `json:"shared_public,omitempty"`
}
