package drive

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"studiodrive/internal/domain"
	models "studiodrive/internal/domain/models/drive"
	driveRepo "studiodrive/internal/domain/repositories/drive"
	"studiodrive/internal/repository/postgres"
)

// fileSelect joins the parent folder for OwnerEmail; callers append WHERE/ORDER
const fileSelect = `
	SELECT fi.id, fi.file_name, fi.file_size, fi.file_type, fi.parent_folder_id, fi.blob_key,
	       fo.owner_email, fi.is_shared, fi.is_starred, fi.created_by, fi.modified_by,
	       fi.created_at, fi.updated_at
	FROM %s fi
	JOIN %s fo ON fo.id = fi.parent_folder_id`

// PostgresFileRepository implements the FileRepository interface
type PostgresFileRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewFileRepository creates a new file repository
func NewFileRepository(config *postgres.RepositoryConfig) driveRepo.FileRepository {
	return &PostgresFileRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create inserts file metadata; content is already in the blob store
func (r *PostgresFileRepository) Create(ctx context.Context, file *models.File) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (file_name, file_size, file_type, parent_folder_id, blob_key,
		                is_shared, is_starred, created_by, modified_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`, r.tables.Files)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		file.Name,
		file.Size,
		file.Type,
		file.ParentFolderID,
		file.BlobKey,
		file.IsShared,
		file.IsStarred,
		file.CreatedBy,
		file.ModifiedBy,
	).Scan(&file.ID, &file.CreatedAt, &file.UpdatedAt)
	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("folder %s: %w", file.ParentFolderID, domain.ErrNotFound)
		}
		return fmt.Errorf("create file: %w", err)
	}

	return nil
}

// GetByID retrieves a file with the owner of its parent folder
func (r *PostgresFileRepository) GetByID(ctx context.Context, id string) (*models.File, error) {
	query := fmt.Sprintf(fileSelect+` WHERE fi.id = $1`, r.tables.Files, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	file, err := scanFile(executor.QueryRow(ctx, query, id))
	if err != nil {
		if postgres.IsPgNoRowsError(err) || postgres.IsPgInvalidTextError(err) {
			return nil, fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get file: %w", err)
	}

	return file, nil
}

// GetOwnership returns the parent folder and its owner for a file
func (r *PostgresFileRepository) GetOwnership(ctx context.Context, id string) (*models.FileOwnership, error) {
	query := fmt.Sprintf(`
		SELECT fi.id, fi.parent_folder_id, fo.owner_email
		FROM %s fi
		JOIN %s fo ON fo.id = fi.parent_folder_id
		WHERE fi.id = $1
		%s %s
	`, r.tables.Files, r.tables.Folders, postgres.RowLock(ctx, "fi"), postgres.KeyShareLock(ctx, "fo"))

	var own models.FileOwnership
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id).Scan(&own.FileID, &own.ParentFolderID, &own.OwnerEmail)
	if err != nil {
		if postgres.IsPgNoRowsError(err) || postgres.IsPgInvalidTextError(err) {
			return nil, fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get file ownership: %w", err)
	}

	return &own, nil
}

// ListByFolder lists files whose parent is folderID
func (r *PostgresFileRepository) ListByFolder(ctx context.Context, folderID string) ([]models.File, error) {
	query := fmt.Sprintf(fileSelect+` WHERE fi.parent_folder_id = $1 ORDER BY fi.file_name`,
		r.tables.Files, r.tables.Folders)
	return r.list(ctx, "list files", query, folderID)
}

// ListByIDs retrieves files by ID, skipping unknown and malformed IDs
func (r *PostgresFileRepository) ListByIDs(ctx context.Context, ids []string) ([]models.File, error) {
	valid := postgres.ValidUUIDs(ids)
	if len(valid) == 0 {
		return []models.File{}, nil
	}

	query := fmt.Sprintf(fileSelect+` WHERE fi.id = ANY($1::uuid[]) ORDER BY fi.created_at DESC`,
		r.tables.Files, r.tables.Folders)
	return r.list(ctx, "list files by id", query, valid)
}

// ListSharedByOwner lists files under folders owned by email flagged is_shared
func (r *PostgresFileRepository) ListSharedByOwner(ctx context.Context, email string) ([]models.File, error) {
	query := fmt.Sprintf(fileSelect+` WHERE fo.owner_email = $1 AND fi.is_shared ORDER BY fi.updated_at DESC`,
		r.tables.Files, r.tables.Folders)
	return r.list(ctx, "list shared files", query, email)
}

// ListStarredByOwner lists files under folders owned by email flagged is_starred
func (r *PostgresFileRepository) ListStarredByOwner(ctx context.Context, email string) ([]models.File, error) {
	query := fmt.Sprintf(fileSelect+` WHERE fo.owner_email = $1 AND fi.is_starred ORDER BY fi.updated_at DESC`,
		r.tables.Files, r.tables.Folders)
	return r.list(ctx, "list starred files", query, email)
}

// Update persists name, is_shared and modified_by
func (r *PostgresFileRepository) Update(ctx context.Context, file *models.File) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET file_name = $1, is_shared = $2, modified_by = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING updated_at
	`, r.tables.Files)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		file.Name,
		file.IsShared,
		file.ModifiedBy,
		file.ID,
	).Scan(&file.UpdatedAt)
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return fmt.Errorf("file %s: %w", file.ID, domain.ErrNotFound)
		}
		return fmt.Errorf("update file: %w", err)
	}

	return nil
}

// SetShared sets the denormalized is_shared flag
func (r *PostgresFileRepository) SetShared(ctx context.Context, id string, shared bool) error {
	return r.setFlag(ctx, "is_shared", id, shared)
}

// SetStarred sets the is_starred flag
func (r *PostgresFileRepository) SetStarred(ctx context.Context, id string, starred bool) error {
	return r.setFlag(ctx, "is_starred", id, starred)
}

// Delete removes a file; its grants go with it through ON DELETE CASCADE
func (r *PostgresFileRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Files)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil && !postgres.IsPgInvalidTextError(err) {
		return fmt.Errorf("delete file: %w", err)
	}

	if err != nil || result.RowsAffected() == 0 {
		return fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// CountByBlobKey counts file rows still referencing a blob
func (r *PostgresFileRepository) CountByBlobKey(ctx context.Context, key string) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE blob_key = $1`, r.tables.Files)

	var count int
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, key).Scan(&count); err != nil {
		return 0, fmt.Errorf("count blob references: %w", err)
	}

	return count, nil
}

// setFlag updates one boolean column. column is never user input.
func (r *PostgresFileRepository) setFlag(ctx context.Context, column, id string, value bool) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $1, updated_at = NOW() WHERE id = $2`, r.tables.Files, column)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, value, id)
	if err != nil && !postgres.IsPgInvalidTextError(err) {
		return fmt.Errorf("set file %s: %w", column, err)
	}

	if err != nil || result.RowsAffected() == 0 {
		return fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

func (r *PostgresFileRepository) list(ctx context.Context, op, query string, args ...any) ([]models.File, error) {
	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		if postgres.IsPgInvalidTextError(err) {
			return []models.File{}, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	files := []models.File{}
	for rows.Next() {
		file, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		files = append(files, *file)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate files: %w", err)
	}

	return files, nil
}

func scanFile(row pgx.Row) (*models.File, error) {
	var file models.File
	err := row.Scan(
		&file.ID,
		&file.Name,
		&file.Size,
		&file.Type,
		&file.ParentFolderID,
		&file.BlobKey,
		&file.OwnerEmail,
		&file.IsShared,
		&file.IsStarred,
		&file.CreatedBy,
		&file.ModifiedBy,
		&file.CreatedAt,
		&file.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &file, nil
}
