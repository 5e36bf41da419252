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

const folderColumns = `id, folder_name, owner_email, is_root, is_shared, is_starred,
	created_by, modified_by, created_at, updated_at`

// PostgresFolderRepository implements the FolderRepository interface
type PostgresFolderRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewFolderRepository creates a new folder repository
func NewFolderRepository(config *postgres.RepositoryConfig) driveRepo.FolderRepository {
	return &PostgresFolderRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create creates a new folder
func (r *PostgresFolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (folder_name, owner_email, is_root, is_shared, is_starred, created_by, modified_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		folder.Name,
		folder.OwnerEmail,
		folder.IsRoot,
		folder.IsShared,
		folder.IsStarred,
		folder.CreatedBy,
		folder.ModifiedBy,
	).Scan(&folder.ID, &folder.CreatedAt, &folder.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create folder: %w", err)
	}

	return nil
}

// GetByID retrieves a folder by ID
func (r *PostgresFolderRepository) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, folderColumns, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	folder, err := scanFolder(executor.QueryRow(ctx, query, id))
	if err != nil {
		if postgres.IsPgNoRowsError(err) || postgres.IsPgInvalidTextError(err) {
			return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get folder: %w", err)
	}

	return folder, nil
}

// GetOwner returns the owner email of a folder
func (r *PostgresFolderRepository) GetOwner(ctx context.Context, id string) (string, error) {
	query := fmt.Sprintf(`SELECT owner_email FROM %s WHERE id = $1 %s`,
		r.tables.Folders, postgres.RowLock(ctx))

	var owner string
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, id).Scan(&owner); err != nil {
		if postgres.IsPgNoRowsError(err) || postgres.IsPgInvalidTextError(err) {
			return "", fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
		}
		return "", fmt.Errorf("get folder owner: %w", err)
	}

	return owner, nil
}

// ListByIDs retrieves folders by ID, skipping unknown and malformed IDs
func (r *PostgresFolderRepository) ListByIDs(ctx context.Context, ids []string) ([]models.Folder, error) {
	valid := postgres.ValidUUIDs(ids)
	if len(valid) == 0 {
		return []models.Folder{}, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = ANY($1::uuid[]) ORDER BY created_at DESC`,
		folderColumns, r.tables.Folders)
	return r.list(ctx, "list folders by id", query, valid)
}

// ListAccessible lists folders owned by email or granted to email
func (r *PostgresFolderRepository) ListAccessible(ctx context.Context, email string) ([]models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE owner_email = $1
		   OR id IN (SELECT folder_id FROM %s WHERE shared_with = $1 AND folder_id IS NOT NULL)
		ORDER BY created_at DESC
	`, folderColumns, r.tables.Folders, r.tables.AccessGrants)
	return r.list(ctx, "list accessible folders", query, email)
}

// ListSharedByOwner lists owned folders flagged is_shared
func (r *PostgresFolderRepository) ListSharedByOwner(ctx context.Context, email string) ([]models.Folder, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE owner_email = $1 AND is_shared ORDER BY updated_at DESC`,
		folderColumns, r.tables.Folders)
	return r.list(ctx, "list shared folders", query, email)
}

// ListStarredByOwner lists owned folders flagged is_starred
func (r *PostgresFolderRepository) ListStarredByOwner(ctx context.Context, email string) ([]models.Folder, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE owner_email = $1 AND is_starred ORDER BY updated_at DESC`,
		folderColumns, r.tables.Folders)
	return r.list(ctx, "list starred folders", query, email)
}

// Update persists name, is_shared and modified_by
func (r *PostgresFolderRepository) Update(ctx context.Context, folder *models.Folder) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET folder_name = $1, is_shared = $2, modified_by = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING updated_at
	`, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		folder.Name,
		folder.IsShared,
		folder.ModifiedBy,
		folder.ID,
	).Scan(&folder.UpdatedAt)
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return fmt.Errorf("folder %s: %w", folder.ID, domain.ErrNotFound)
		}
		return fmt.Errorf("update folder: %w", err)
	}

	return nil
}

// SetShared sets the denormalized is_shared flag
func (r *PostgresFolderRepository) SetShared(ctx context.Context, id string, shared bool) error {
	return r.setFlag(ctx, "is_shared", id, shared)
}

// SetStarred sets the is_starred flag
func (r *PostgresFolderRepository) SetStarred(ctx context.Context, id string, starred bool) error {
	return r.setFlag(ctx, "is_starred", id, starred)
}

// Delete removes a folder. Files, grants and structure edges go with it through ON DELETE CASCADE.
func (r *PostgresFolderRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		if postgres.IsPgInvalidTextError(err) {
			return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
		}
		return fmt.Errorf("delete folder: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// setFlag updates one boolean column. column is never user input.
func (r *PostgresFolderRepository) setFlag(ctx context.Context, column, id string, value bool) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $1, updated_at = NOW() WHERE id = $2`, r.tables.Folders, column)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, value, id)
	if err != nil {
		if postgres.IsPgInvalidTextError(err) {
			return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
		}
		return fmt.Errorf("set folder %s: %w", column, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

func (r *PostgresFolderRepository) list(ctx context.Context, op, query string, args ...any) ([]models.Folder, error) {
	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	folders := []models.Folder{}
	for rows.Next() {
		folder, err := scanFolder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		folders = append(folders, *folder)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folders: %w", err)
	}

	return folders, nil
}

func scanFolder(row pgx.Row) (*models.Folder, error) {
	var folder models.Folder
	err := row.Scan(
		&folder.ID,
		&folder.Name,
		&folder.OwnerEmail,
		&folder.IsRoot,
		&folder.IsShared,
		&folder.IsStarred,
		&folder.CreatedBy,
		&folder.ModifiedBy,
		&folder.CreatedAt,
		&folder.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &folder, nil
}
