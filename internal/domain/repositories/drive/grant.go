package drive

import (
	"context"

	"studiodrive/internal/domain/models/drive"
)

// GrantRepository is the access grant ledger.
// No uniqueness is enforced on (resource, grantee): repeated grants accumulate rows.
type GrantRepository interface {
	// Create inserts one ledger row
	Create(ctx context.Context, grant *drive.Grant) error

	// GetByID retrieves a grant
	GetByID(ctx context.Context, id string) (*drive.Grant, error)

	// Update persists permission and shared_public
	Update(ctx context.Context, grant *drive.Grant) error

	// Delete removes a grant; returns domain.ErrNotFound when absent
	Delete(ctx context.Context, id string) error

	// ListByResource lists grants on one resource
	ListByResource(ctx context.Context, ref drive.ResourceRef) ([]drive.Grant, error)

	// ListByResources lists grants on several resources in one round trip
	ListByResources(ctx context.Context, refs []drive.ResourceRef) ([]drive.Grant, error)

	// ListForGrantee lists grants delegated to email
	ListForGrantee(ctx context.Context, email string) ([]drive.Grant, error)

	// LevelsFor returns the permission level of every grant on ref for email.
	// Inside a transaction the matching rows are share-locked until commit.
	LevelsFor(ctx context.Context, ref drive.ResourceRef, email string) ([]drive.PermissionLevel, error)
}

// ProfileRepository reads display profiles from the owners table
type ProfileRepository interface {
	// GetByEmails returns the profiles of the given emails keyed by email, in one lookup
	GetByEmails(ctx context.Context, emails []string) (map[string]drive.Profile, error)
}
