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
	"studiodrive/internal/storage"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
)

type fileService struct {
	fileRepo    driveRepo.FileRepository
	blobStore   repositories.BlobStore
	evaluator   services.PermissionEvaluator
	txManager   repositories.TransactionManager
	broadcaster services.Broadcaster
	blobs       *blobReleaser
	logger      *slog.Logger
}

// NewFileService creates a new file service
func NewFileService(
	fileRepo driveRepo.FileRepository,
	blobStore repositories.BlobStore,
	evaluator services.PermissionEvaluator,
	txManager repositories.TransactionManager,
	broadcaster services.Broadcaster,
	logger *slog.Logger,
) driveSvc.FileService {
	return &fileService{
		fileRepo:    fileRepo,
		blobStore:   blobStore,
		evaluator:   evaluator,
		txManager:   txManager,
		broadcaster: broadcaster,
		blobs:       newBlobReleaser(fileRepo, blobStore, logger),
		logger:      logger,
	}
}

// UploadFile stores content under its hash and records a file in the parent folder.
// The content key stays held from Put until the row commits so a concurrent
// delete of identical bytes cannot release the blob in between. If the insert
// fails the blob is released again unless another file references it.
func (s *fileService) UploadFile(ctx context.Context, principal string, req *driveSvc.UploadFileRequest) (*models.File, error) {
	if err := validateUpload(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	parent := models.FolderRef(req.ParentFolderID)
	if err := s.evaluator.Require(ctx, principal, parent, models.PermissionWrite); err != nil {
		return nil, err
	}

	contentType := detectContentType(req.Type, req.Content)
	unlock := s.blobs.hold(storage.Key(req.Content))
	defer unlock()

	key, err := s.blobStore.Put(ctx, req.Content, contentType)
	if err != nil {
		return nil, fmt.Errorf("store file content: %w", err)
	}

	file := &models.File{
		Name:           strings.TrimSpace(req.Name),
		Size:           int64(len(req.Content)),
		Type:           contentType,
		ParentFolderID: req.ParentFolderID,
		BlobKey:        key,
		IsShared:       req.IsShared,
		CreatedBy:      principal,
		ModifiedBy:     principal,
	}

	err = s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		if err := s.evaluator.Require(ctx, principal, parent, models.PermissionWrite); err != nil {
			return err
		}
		return s.fileRepo.Create(ctx, file)
	})
	if err != nil {
		s.blobs.releaseHeld(ctx, key)
		return nil, err
	}

	s.logger.Info("file uploaded",
		"id", file.ID,
		"name", file.Name,
		"parent_folder_id", file.ParentFolderID,
		"size", humanize.Bytes(uint64(file.Size)),
		"type", file.Type,
		"by", principal,
	)
	s.broadcaster.Broadcast(services.EventFileChanged, fileEvent("created", file))

	return file, nil
}

// ListFiles lists file metadata in a folder
func (s *fileService) ListFiles(ctx context.Context, principal, folderID string) ([]models.File, error) {
	if err := s.evaluator.Require(ctx, principal, models.FolderRef(folderID), models.PermissionRead); err != nil {
		return nil, err
	}
	return s.fileRepo.ListByFolder(ctx, folderID)
}

// GetFile retrieves file metadata
func (s *fileService) GetFile(ctx context.Context, principal, fileID string) (*models.File, error) {
	if err := s.evaluator.Require(ctx, principal, models.FileRef(fileID), models.PermissionRead); err != nil {
		return nil, err
	}
	return s.fileRepo.GetByID(ctx, fileID)
}

// OpenFile returns metadata and a content stream; the caller closes Content
func (s *fileService) OpenFile(ctx context.Context, principal, fileID string) (*driveSvc.FileContent, error) {
	file, err := s.GetFile(ctx, principal, fileID)
	if err != nil {
		return nil, err
	}

	rc, err := s.blobStore.Open(ctx, file.BlobKey)
	if err != nil {
		return nil, fmt.Errorf("open content of file %s: %w", fileID, err)
	}

	return &driveSvc.FileContent{File: file, Content: rc}, nil
}

// UpdateFile renames a file or flips its is_shared flag
func (s *fileService) UpdateFile(ctx context.Context, principal, fileID string, req *driveSvc.UpdateFileRequest) (*models.File, error) {
	if err := validateUpdateFile(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	var file *models.File
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		if err := s.evaluator.Require(ctx, principal, models.FileRef(fileID), models.PermissionWrite); err != nil {
			return err
		}

		var err error
		file, err = s.fileRepo.GetByID(ctx, fileID)
		if err != nil {
			return err
		}

		if req.Name != nil {
			file.Name = strings.TrimSpace(*req.Name)
		}
		if req.IsShared != nil {
			file.IsShared = *req.IsShared
		}
		file.ModifiedBy = principal

		return s.fileRepo.Update(ctx, file)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("file updated",
		"id", file.ID,
		"name", file.Name,
		"is_shared", file.IsShared,
		"modified_by", principal,
	)
	s.broadcaster.Broadcast(services.EventFileChanged, fileEvent("updated", file))

	return file, nil
}

// DeleteFile deletes a file and its grants
func (s *fileService) DeleteFile(ctx context.Context, principal, fileID string) error {
	var file *models.File
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		ctx = repositories.WithWriteIntent(ctx)
		if err := s.evaluator.Require(ctx, principal, models.FileRef(fileID), models.PermissionAdmin); err != nil {
			return err
		}

		var err error
		file, err = s.fileRepo.GetByID(ctx, fileID)
		if err != nil {
			return err
		}
		return s.fileRepo.Delete(ctx, fileID)
	})
	if err != nil {
		return err
	}

	s.blobs.release(ctx, file.BlobKey)

	s.logger.Info("file deleted",
		"id", fileID,
		"parent_folder_id", file.ParentFolderID,
		"deleted_by", principal,
	)
	s.broadcaster.Broadcast(services.EventFileChanged, fileEvent("deleted", file))

	return nil
}

// detectContentType keeps a client supplied type unless it is missing or the generic octet-stream
func detectContentType(declared string, content []byte) string {
	declared = strings.TrimSpace(declared)
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	return mimetype.Detect(content).String()
}

func fileEvent(action string, file *models.File) map[string]string {
	return map[string]string{
		"action":           action,
		"file_id":          file.ID,
		"parent_folder_id": file.ParentFolderID,
	}
}
