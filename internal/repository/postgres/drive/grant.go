package drive

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"studiodrive/internal/domain"
	models "studiodrive/internal/domain/models/drive"
	driveRepo "studiodrive/internal/domain/repositories/drive"
	"studiodrive/internal/repository/postgres"
)

const grantColumns = `id, folder_id, file_id, shared_with, permission, shared_public, shared_by, created_at`

// PostgresGrantRepository implements the access grant ledger
type PostgresGrantRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewGrantRepository creates a new grant repository
func NewGrantRepository(config *postgres.RepositoryConfig) driveRepo.GrantRepository {
	return &PostgresGrantRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create inserts one ledger row
func (r *PostgresGrantRepository) Create(ctx context.Context, grant *models.Grant) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (folder_id, file_id, shared_with, permission, shared_public, shared_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, r.tables.AccessGrants)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		grant.FolderID,
		grant.FileID,
		grant.GranteeEmail,
		string(grant.Permission),
		grant.SharedPublic,
		grant.SharedBy,
	).Scan(&grant.ID, &grant.CreatedAt)
	if err != nil {
		switch {
		case postgres.IsPgForeignKeyError(err):
			return fmt.Errorf("%s: %w", grant.Resource(), domain.ErrNotFound)
		case postgres.IsPgCheckViolation(err):
			return fmt.Errorf("grant must reference exactly one folder or file with a valid permission: %w", domain.ErrValidation)
		}
		return fmt.Errorf("create grant: %w", err)
	}

	return nil
}

// GetByID retrieves a grant
func (r *PostgresGrantRepository) GetByID(ctx context.Context, id string) (*models.Grant, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1 %s`,
		grantColumns, r.tables.AccessGrants, postgres.RowLock(ctx))

	executor := postgres.GetExecutor(ctx, r.pool)
	grant, err := scanGrant(executor.QueryRow(ctx, query, id))
	if err != nil {
		if postgres.IsPgNoRowsError(err) || postgres.IsPgInvalidTextError(err) {
			return nil, fmt.Errorf("grant %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get grant: %w", err)
	}

	return grant, nil
}

// Update persists permission and shared_public
func (r *PostgresGrantRepository) Update(ctx context.Context, grant *models.Grant) error {
	query := fmt.Sprintf(`
		UPDATE %s SET permission = $1, shared_public = $2
		WHERE id = $3
	`, r.tables.AccessGrants)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, string(grant.Permission), grant.SharedPublic, grant.ID)
	if err != nil {
		if postgres.IsPgCheckViolation(err) {
			return fmt.Errorf("invalid permission %q: %w", grant.Permission, domain.ErrValidation)
		}
		return fmt.Errorf("update grant: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("grant %s: %w", grant.ID, domain.ErrNotFound)
	}

	return nil
}

// Delete removes a grant
func (r *PostgresGrantRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.AccessGrants)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil && !postgres.IsPgInvalidTextError(err) {
		return fmt.Errorf("delete grant: %w", err)
	}

	if err != nil || result.RowsAffected() == 0 {
		return fmt.Errorf("grant %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// ListByResource lists grants on one resource
func (r *PostgresGrantRepository) ListByResource(ctx context.Context, ref models.ResourceRef) ([]models.Grant, error) {
	column, err := grantColumnFor(ref.Kind)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 ORDER BY created_at`,
		grantColumns, r.tables.AccessGrants, column)
	return r.list(ctx, "list grants", query, ref.ID)
}

// ListByResources lists grants on several resources in one round trip
func (r *PostgresGrantRepository) ListByResources(ctx context.Context, refs []models.ResourceRef) ([]models.Grant, error) {
	var folderIDs, fileIDs []string
	for _, ref := range refs {
		switch ref.Kind {
		case models.KindFolder:
			folderIDs = append(folderIDs, ref.ID)
		case models.KindFile:
			fileIDs = append(fileIDs, ref.ID)
		}
	}
	folderIDs = postgres.ValidUUIDs(folderIDs)
	fileIDs = postgres.ValidUUIDs(fileIDs)
	if len(folderIDs) == 0 && len(fileIDs) == 0 {
		return []models.Grant{}, nil
	}

	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE folder_id = ANY($1::uuid[]) OR file_id = ANY($2::uuid[])
		ORDER BY created_at
	`, grantColumns, r.tables.AccessGrants)
	return r.list(ctx, "list grants by resources", query, folderIDs, fileIDs)
}

// ListForGrantee lists grants delegated to email
func (r *PostgresGrantRepository) ListForGrantee(ctx context.Context, email string) ([]models.Grant, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE shared_with = $1 ORDER BY created_at DESC`,
		grantColumns, r.tables.AccessGrants)
	return r.list(ctx, "list grants for grantee", query, email)
}

// LevelsFor returns the level of every grant on ref for email
func (r *PostgresGrantRepository) LevelsFor(ctx context.Context, ref models.ResourceRef, email string) ([]models.PermissionLevel, error) {
	column, err := grantColumnFor(ref.Kind)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT permission FROM %s WHERE %s = $1 AND shared_with = $2 %s`,
		r.tables.AccessGrants, column, postgres.GrantLevelLock(ctx))

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, ref.ID, email)
	if err != nil {
		if postgres.IsPgInvalidTextError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read grant levels: %w", err)
	}
	defer rows.Close()

	var levels []models.PermissionLevel
	for rows.Next() {
		var level string
		if err := rows.Scan(&level); err != nil {
			return nil, fmt.Errorf("scan grant level: %w", err)
		}
		levels = append(levels, models.PermissionLevel(strings.ToLower(level)))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate grant levels: %w", err)
	}

	return levels, nil
}

func (r *PostgresGrantRepository) list(ctx context.Context, op, query string, args ...any) ([]models.Grant, error) {
	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		if postgres.IsPgInvalidTextError(err) {
			return []models.Grant{}, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	grants := []models.Grant{}
	for rows.Next() {
		grant, err := scanGrant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan grant: %w", err)
		}
		grants = append(grants, *grant)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate grants: %w", err)
	}

	return grants, nil
}

func grantColumnFor(kind models.ResourceKind) (string, error) {
	switch kind {
	case models.KindFolder:
		return "folder_id", nil
	case models.KindFile:
		return "file_id", nil
	default:
		return "", fmt.Errorf("unknown resource kind %q: %w", kind, domain.ErrValidation)
	}
}

func scanGrant(row pgx.Row) (*models.Grant, error) {
	var grant models.Grant
	var permission string
	err := row.Scan(
		&grant.ID,
		&grant.FolderID,
		&grant.FileID,
		&grant.GranteeEmail,
		&permission,
		&grant.SharedPublic,
		&grant.SharedBy,
		&grant.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	grant.Permission = models.PermissionLevel(permission)
	return &grant, nil
}
