package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"studiodrive/internal/domain"
	models "studiodrive/internal/domain/models/drive"
	driveRepo "studiodrive/internal/domain/repositories/drive"
	"studiodrive/internal/domain/services"
)

// GrantEvaluator implements PermissionEvaluator over the folder, file and
// grant repositories. It holds no state of its own.
//
// Access to a folder: its owner, or a grant on the folder.
// Access to a file: the owner of its parent folder, or a grant on the file,
// or a grant on the parent folder. The most permissive grant wins.
//
// Called inside ExecTx, every read share-locks the rows it depends on.
type GrantEvaluator struct {
	folderRepo driveRepo.FolderRepository
	fileRepo   driveRepo.FileRepository
	grantRepo  driveRepo.GrantRepository
	logger     *slog.Logger
}

// NewGrantEvaluator creates a new permission evaluator
func NewGrantEvaluator(
	folderRepo driveRepo.FolderRepository,
	fileRepo driveRepo.FileRepository,
	grantRepo driveRepo.GrantRepository,
	logger *slog.Logger,
) services.PermissionEvaluator {
	return &GrantEvaluator{
		folderRepo: folderRepo,
		fileRepo:   fileRepo,
		grantRepo:  grantRepo,
		logger:     logger,
	}
}

// Evaluate decides whether principal holds at least required on ref
func (e *GrantEvaluator) Evaluate(ctx context.Context, principal string, ref models.ResourceRef, required models.PermissionLevel) (models.Decision, error) {
	if principal == "" || ref.ID == "" || !required.Valid() {
		return models.Deny, nil
	}

	switch ref.Kind {
	case models.KindFolder:
		return e.evaluateFolder(ctx, principal, ref.ID, required)
	case models.KindFile:
		return e.evaluateFile(ctx, principal, ref.ID, required)
	default:
		return models.Deny, nil
	}
}

func (e *GrantEvaluator) evaluateFolder(ctx context.Context, principal, folderID string, required models.PermissionLevel) (models.Decision, error) {
	owner, err := e.folderRepo.GetOwner(ctx, folderID)
	if err != nil {
		return denyIfMissing(err)
	}
	if owner == principal {
		return models.Allow, nil
	}

	best, err := e.bestLevel(ctx, principal, models.FolderRef(folderID))
	if err != nil {
		return models.Deny, err
	}
	return models.Decision(best.Satisfies(required)), nil
}

func (e *GrantEvaluator) evaluateFile(ctx context.Context, principal, fileID string, required models.PermissionLevel) (models.Decision, error) {
	own, err := e.fileRepo.GetOwnership(ctx, fileID)
	if err != nil {
		return denyIfMissing(err)
	}
	if own.OwnerEmail == principal {
		return models.Allow, nil
	}

	direct, err := e.bestLevel(ctx, principal, models.FileRef(fileID))
	if err != nil {
		return models.Deny, err
	}
	if direct.Satisfies(required) {
		return models.Allow, nil
	}

	inherited, err := e.bestLevel(ctx, principal, models.FolderRef(own.ParentFolderID))
	if err != nil {
		return models.Deny, err
	}
	return models.Decision(models.MaxPermission(direct, inherited).Satisfies(required)), nil
}

// bestLevel folds every grant principal holds on ref into the highest level.
// Returns "" when there is none.
func (e *GrantEvaluator) bestLevel(ctx context.Context, principal string, ref models.ResourceRef) (models.PermissionLevel, error) {
	levels, err := e.grantRepo.LevelsFor(ctx, ref, principal)
	if err != nil {
		return "", fmt.Errorf("read grants for %s: %w", ref, err)
	}

	var best models.PermissionLevel
	for _, level := range levels {
		best = models.MaxPermission(best, level)
	}
	return best, nil
}

// Require returns an error wrapping domain.ErrForbidden unless Evaluate allows
func (e *GrantEvaluator) Require(ctx context.Context, principal string, ref models.ResourceRef, required models.PermissionLevel) error {
	decision, err := e.Evaluate(ctx, principal, ref, required)
	if err != nil {
		return err
	}
	if decision == models.Deny {
		e.logger.Debug("permission denied",
			"principal", principal,
			"resource", ref.String(),
			"required", required,
		)
		return fmt.Errorf("%s permission required on %s %s: %w", required, ref.Kind, ref.ID, domain.ErrForbidden)
	}
	return nil
}

// Owns reports whether principal owns ref. A file is owned by its parent folder's owner.
func (e *GrantEvaluator) Owns(ctx context.Context, principal string, ref models.ResourceRef) (bool, error) {
	if principal == "" || ref.ID == "" {
		return false, nil
	}

	var owner string
	switch ref.Kind {
	case models.KindFolder:
		o, err := e.folderRepo.GetOwner(ctx, ref.ID)
		if err != nil {
			return falseIfMissing(err)
		}
		owner = o
	case models.KindFile:
		own, err := e.fileRepo.GetOwnership(ctx, ref.ID)
		if err != nil {
			return falseIfMissing(err)
		}
		owner = own.OwnerEmail
	default:
		return false, nil
	}

	return owner == principal, nil
}

// RequireOwner returns an error wrapping domain.ErrForbidden unless principal owns ref
func (e *GrantEvaluator) RequireOwner(ctx context.Context, principal string, ref models.ResourceRef) error {
	owns, err := e.Owns(ctx, principal, ref)
	if err != nil {
		return err
	}
	if !owns {
		return fmt.Errorf("only the owner can manage %s %s: %w", ref.Kind, ref.ID, domain.ErrForbidden)
	}
	return nil
}

// denyIfMissing turns a missing resource into Deny; other errors propagate
func denyIfMissing(err error) (models.Decision, error) {
	if errors.Is(err, domain.ErrNotFound) {
		return models.Deny, nil
	}
	return models.Deny, fmt.Errorf("evaluate permission: %w", err)
}

func falseIfMissing(err error) (bool, error) {
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	return false, fmt.Errorf("check ownership: %w", err)
}
