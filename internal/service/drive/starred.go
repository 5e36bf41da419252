package drive

import (
	"context"
	"log/slog"

	models "studiodrive/internal/domain/models/drive"
	"studiodrive/internal/domain/repositories"
	driveRepo "studiodrive/internal/domain/repositories/drive"
	"studiodrive/internal/domain/services"
	driveSvc "studiodrive/internal/domain/services/drive"
)

type starService struct {
	folderRepo driveRepo.FolderRepository
	fileRepo   driveRepo.FileRepository
	evaluator  services.PermissionEvaluator
	txManager  repositories.TransactionManager
	logger     *slog.Logger
}

// NewStarService creates a new star service
func NewStarService(
	folderRepo driveRepo.FolderRepository,
	fileRepo driveRepo.FileRepository,
	evaluator services.PermissionEvaluator,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) driveSvc.StarService {
	return &starService{
		folderRepo: folderRepo,
		fileRepo:   fileRepo,
		evaluator:  evaluator,
		txManager:  txManager,
		logger:     logger,
	}
}

// SetStarred flags a resource the principal owns
func (s *starService) SetStarred(ctx context.Context, principal string, ref models.ResourceRef, starred bool) error {
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		if err := s.evaluator.RequireOwner(ctx, principal, ref); err != nil {
			return err
		}
		if ref.Kind == models.KindFile {
			return s.fileRepo.SetStarred(ctx, ref.ID, starred)
		}
		return s.folderRepo.SetStarred(ctx, ref.ID, starred)
	})
	if err != nil {
		return err
	}

	s.logger.Info("star updated", "resource", ref.String(), "starred", starred, "by", principal)
	return nil
}

// ListStarred lists starred folders and files owned by the principal
func (s *starService) ListStarred(ctx context.Context, principal string) (*models.StarredItems, error) {
	folders, err := s.folderRepo.ListStarredByOwner(ctx, principal)
	if err != nil {
		return nil, err
	}
	files, err := s.fileRepo.ListStarredByOwner(ctx, principal)
	if err != nil {
		return nil, err
	}
	return &models.StarredItems{
		Folders: nonNil(folders),
		Files:   nonNil(files),
	}, nil
}
