package drive

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"studiodrive/internal/domain"
	models "studiodrive/internal/domain/models/drive"
	driveRepo "studiodrive/internal/domain/repositories/drive"
	"studiodrive/internal/repository/postgres"
)

// PostgresFolderStructureRepository implements FolderStructureRepository
// over the parent/child edge table
type PostgresFolderStructureRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewFolderStructureRepository creates a new folder structure repository
func NewFolderStructureRepository(config *postgres.RepositoryConfig) driveRepo.FolderStructureRepository {
	return &PostgresFolderStructureRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// AddEdge nests child under parent
func (r *PostgresFolderStructureRepository) AddEdge(ctx context.Context, edge models.FolderEdge) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (parent_folder_id, child_folder_id)
		VALUES ($1, $2)
	`, r.tables.FolderStructure)

	executor := postgres.GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query, edge.ParentFolderID, edge.ChildFolderID)
	if err != nil {
		switch {
		case postgres.IsPgDuplicateError(err):
			return &domain.ConflictError{
				Message:      fmt.Sprintf("folder %s is already nested under %s", edge.ChildFolderID, edge.ParentFolderID),
				ResourceType: "folder_structure",
				ResourceID:   edge.ChildFolderID,
			}
		case postgres.IsPgForeignKeyError(err), postgres.IsPgInvalidTextError(err):
			return fmt.Errorf("folder edge %s -> %s: %w", edge.ParentFolderID, edge.ChildFolderID, domain.ErrNotFound)
		case postgres.IsPgCheckViolation(err):
			return fmt.Errorf("a folder cannot contain itself: %w", domain.ErrValidation)
		}
		return fmt.Errorf("add folder edge: %w", err)
	}

	return nil
}

// RemoveEdge deletes one edge
func (r *PostgresFolderStructureRepository) RemoveEdge(ctx context.Context, edge models.FolderEdge) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE parent_folder_id = $1 AND child_folder_id = $2
	`, r.tables.FolderStructure)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, edge.ParentFolderID, edge.ChildFolderID)
	if err != nil && !postgres.IsPgInvalidTextError(err) {
		return fmt.Errorf("remove folder edge: %w", err)
	}

	if err != nil || result.RowsAffected() == 0 {
		return fmt.Errorf("folder edge %s -> %s: %w", edge.ParentFolderID, edge.ChildFolderID, domain.ErrNotFound)
	}

	return nil
}

// ListChildren returns the immediate child folders of parent. One level only.
func (r *PostgresFolderStructureRepository) ListChildren(ctx context.Context, parentID string) ([]models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT f.id, f.folder_name, f.owner_email, f.is_root, f.is_shared, f.is_starred,
		       f.created_by, f.modified_by, f.created_at, f.updated_at
		FROM %s s
		JOIN %s f ON f.id = s.child_folder_id
		WHERE s.parent_folder_id = $1
		ORDER BY f.folder_name
	`, r.tables.FolderStructure, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, parentID)
	if err != nil {
		return nil, fmt.Errorf("list child folders: %w", err)
	}
	defer rows.Close()

	children := []models.Folder{}
	for rows.Next() {
		folder, err := scanFolder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		children = append(children, *folder)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate child folders: %w", err)
	}

	return children, nil
}
