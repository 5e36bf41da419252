package services

import (
	"context"

	"studiodrive/internal/domain/models/drive"
)

// PermissionEvaluator decides whether a principal may act on a folder or file.
// Every drive operation consults it; there are no per-endpoint predicates.
//
// A missing resource or an empty principal evaluates to Deny, indistinguishable
// from a real permission failure. Store failures are returned as errors.
type PermissionEvaluator interface {
	// Evaluate returns Allow iff principal owns ref (a file is owned by its
	// parent folder's owner) or holds a grant on ref with level >= required.
	// Files also inherit their parent folder's grants; the best level wins.
	Evaluate(ctx context.Context, principal string, ref drive.ResourceRef, required drive.PermissionLevel) (drive.Decision, error)

	// Require is Evaluate returning a wrapped domain.ErrForbidden on Deny
	Require(ctx context.Context, principal string, ref drive.ResourceRef, required drive.PermissionLevel) error

	// Owns reports whether principal owns ref. Missing resources report false.
	Owns(ctx context.Context, principal string, ref drive.ResourceRef) (bool, error)

	// RequireOwner is Owns returning a wrapped domain.ErrForbidden on false
	RequireOwner(ctx context.Context, principal string, ref drive.ResourceRef) error
}
