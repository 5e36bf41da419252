package drive

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"studiodrive/internal/domain"
	models "studiodrive/internal/domain/models/drive"
	"studiodrive/internal/domain/repositories"
	driveRepo "studiodrive/internal/domain/repositories/drive"
	"studiodrive/internal/domain/services"
	driveSvc "studiodrive/internal/domain/services/drive"
)

type folderService struct {
	folderRepo    driveRepo.FolderRepository
	structureRepo driveRepo.FolderStructureRepository
	fileRepo      driveRepo.FileRepository
	evaluator     services.PermissionEvaluator
	txManager     repositories.TransactionManager
	broadcaster   services.Broadcaster
	blobs         *blobReleaser
	logger        *slog.Logger
}

// NewFolderService creates a new folder service
func NewFolderService(
	folderRepo driveRepo.FolderRepository,
	structureRepo driveRepo.FolderStructureRepository,
	fileRepo driveRepo.FileRepository,
	blobStore repositories.BlobStore,
	evaluator services.PermissionEvaluator,
	txManager repositories.TransactionManager,
	broadcaster services.Broadcaster,
	logger *slog.Logger,
) driveSvc.FolderService {
	return &folderService{
		folderRepo:    folderRepo,
		structureRepo: structureRepo,
		fileRepo:      fileRepo,
		evaluator:     evaluator,
		txManager:     txManager,
		broadcaster:   broadcaster,
		blobs:         newBlobReleaser(fileRepo, blobStore, logger),
		logger:        logger,
	}
}

// CreateFolder creates a folder owned by principal.
// With a parent, write on the parent is required and the edge is added in the same transaction.
func (s *folderService) CreateFolder(ctx context.Context, principal string, req *driveSvc.CreateFolderRequest) (*models.Folder, error) {
	if err := validateCreateFolder(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	folder := &models.Folder{
		Name:       strings.TrimSpace(req.Name),
		OwnerEmail: principal,
		IsRoot:     req.IsRoot,
		IsShared:   req.IsShared,
		CreatedBy:  principal,
		ModifiedBy: principal,
	}

	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		if req.ParentFolderID != nil {
			if err := s.evaluator.Require(ctx, principal, models.FolderRef(*req.ParentFolderID), models.PermissionWrite); err != nil {
				return err
			}
		}

		if err := s.folderRepo.Create(ctx, folder); err != nil {
			return err
		}

		if req.ParentFolderID != nil {
			return s.structureRepo.AddEdge(ctx, models.FolderEdge{
				ParentFolderID: *req.ParentFolderID,
				ChildFolderID:  folder.ID,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("folder created",
		"id", folder.ID,
		"name", folder.Name,
		"owner", principal,
		"parent_folder_id", req.ParentFolderID,
	)
	s.broadcaster.Broadcast(services.EventFolderChanged, folderEvent("created", folder.ID))

	return folder, nil
}

// ListFolders lists folders owned by or shared with principal
func (s *folderService) ListFolders(ctx context.Context, principal string) ([]models.Folder, error) {
	return s.folderRepo.ListAccessible(ctx, principal)
}

// GetFolder retrieves a folder the principal can read
func (s *folderService) GetFolder(ctx context.Context, principal, folderID string) (*models.Folder, error) {
	if err := s.evaluator.Require(ctx, principal, models.FolderRef(folderID), models.PermissionRead); err != nil {
		return nil, err
	}
	return s.folderRepo.GetByID(ctx, folderID)
}

// UpdateFolder renames a folder or flips its is_shared flag
func (s *folderService) UpdateFolder(ctx context.Context, principal, folderID string, req *driveSvc.UpdateFolderRequest) (*models.Folder, error) {
	if err := validateUpdateFolder(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	var folder *models.Folder
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		if err := s.evaluator.Require(ctx, principal, models.FolderRef(folderID), models.PermissionWrite); err != nil {
			return err
		}

		var err error
		folder, err = s.folderRepo.GetByID(ctx, folderID)
		if err != nil {
			return err
		}

		if req.Name != nil {
			folder.Name = strings.TrimSpace(*req.Name)
		}
		if req.IsShared != nil {
			folder.IsShared = *req.IsShared
		}
		folder.ModifiedBy = principal

		return s.folderRepo.Update(ctx, folder)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("folder updated",
		"id", folder.ID,
		"name", folder.Name,
		"is_shared", folder.IsShared,
		"modified_by", principal,
	)
	s.broadcaster.Broadcast(services.EventFolderChanged, folderEvent("updated", folder.ID))

	return folder, nil
}

// DeleteFolder deletes a folder together with its files, their grants, the
// folder's grants and every structure edge touching it. Child folders survive.
func (s *folderService) DeleteFolder(ctx context.Context, principal, folderID string) error {
	var blobKeys []string
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		ctx = repositories.WithWriteIntent(ctx)
		if err := s.evaluator.Require(ctx, principal, models.FolderRef(folderID), models.PermissionAdmin); err != nil {
			return err
		}

		files, err := s.fileRepo.ListByFolder(ctx, folderID)
		if err != nil {
			return err
		}
		for _, f := range files {
			blobKeys = append(blobKeys, f.BlobKey)
		}

		return s.folderRepo.Delete(ctx, folderID)
	})
	if err != nil {
		return err
	}

	s.blobs.release(ctx, blobKeys...)

	s.logger.Info("folder deleted",
		"id", folderID,
		"files_deleted", len(blobKeys),
		"deleted_by", principal,
	)
	s.broadcaster.Broadcast(services.EventFolderChanged, folderEvent("deleted", folderID))

	return nil
}

// AddSubfolder nests child under parent
func (s *folderService) AddSubfolder(ctx context.Context, principal string, edge models.FolderEdge) error {
	if edge.ParentFolderID == "" || edge.ChildFolderID == "" {
		return fmt.Errorf("parent and child folder ids are required: %w", domain.ErrValidation)
	}
	if edge.ParentFolderID == edge.ChildFolderID {
		return fmt.Errorf("a folder cannot contain itself: %w", domain.ErrValidation)
	}

	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		if err := s.evaluator.Require(ctx, principal, models.FolderRef(edge.ParentFolderID), models.PermissionWrite); err != nil {
			return err
		}
		if err := s.evaluator.Require(ctx, principal, models.FolderRef(edge.ChildFolderID), models.PermissionRead); err != nil {
			return err
		}
		return s.structureRepo.AddEdge(ctx, edge)
	})
	if err != nil {
		return err
	}

	s.logger.Info("subfolder added",
		"parent_folder_id", edge.ParentFolderID,
		"child_folder_id", edge.ChildFolderID,
		"by", principal,
	)
	s.broadcaster.Broadcast(services.EventFolderChanged, folderEvent("nested", edge.ParentFolderID))

	return nil
}

// RemoveSubfolder removes a nesting edge; the child folder is kept
func (s *folderService) RemoveSubfolder(ctx context.Context, principal string, edge models.FolderEdge) error {
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		if err := s.evaluator.Require(ctx, principal, models.FolderRef(edge.ParentFolderID), models.PermissionWrite); err != nil {
			return err
		}
		return s.structureRepo.RemoveEdge(ctx, edge)
	})
	if err != nil {
		return err
	}

	s.logger.Info("subfolder removed",
		"parent_folder_id", edge.ParentFolderID,
		"child_folder_id", edge.ChildFolderID,
		"by", principal,
	)
	s.broadcaster.Broadcast(services.EventFolderChanged, folderEvent("unnested", edge.ParentFolderID))

	return nil
}

// ListSubfolders lists the immediate children of parent. Deeper levels take repeated calls.
func (s *folderService) ListSubfolders(ctx context.Context, principal, parentID string) ([]models.Folder, error) {
	if err := s.evaluator.Require(ctx, principal, models.FolderRef(parentID), models.PermissionRead); err != nil {
		return nil, err
	}
	return s.structureRepo.ListChildren(ctx, parentID)
}

func folderEvent(action, folderID string) map[string]string {
	return map[string]string{"action": action, "folder_id": folderID}
}
