package drive

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	models "studiodrive/internal/domain/models/drive"
	driveRepo "studiodrive/internal/domain/repositories/drive"
	"studiodrive/internal/repository/postgres"
)

// PostgresProfileRepository reads display profiles from the owners table
type PostgresProfileRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(config *postgres.RepositoryConfig) driveRepo.ProfileRepository {
	return &PostgresProfileRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// GetByEmails returns profiles keyed by email in a single query.
// Emails without a profile row are absent from the map.
func (r *PostgresProfileRepository) GetByEmails(ctx context.Context, emails []string) (map[string]models.Profile, error) {
	profiles := make(map[string]models.Profile, len(emails))
	if len(emails) == 0 {
		return profiles, nil
	}

	query := fmt.Sprintf(`
		SELECT user_email, user_name, user_profile_image
		FROM %s
		WHERE user_email = ANY($1)
	`, r.tables.Owners)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, emails)
	if err != nil {
		return nil, fmt.Errorf("get profiles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p models.Profile
		if err := rows.Scan(&p.Email, &p.Name, &p.ProfileImage); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		profiles[p.Email] = p
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate profiles: %w", err)
	}

	return profiles, nil
}
