package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"studiodrive/internal/domain"
	models "studiodrive/internal/domain/models/drive"
)

type grantRepo struct {
	s *Store
}

func (r *grantRepo) Create(ctx context.Context, grant *models.Grant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if (grant.FolderID == nil) == (grant.FileID == nil) {
		return fmt.Errorf("grant must reference exactly one folder or file: %w", domain.ErrValidation)
	}
	if !grant.Permission.Valid() {
		return fmt.Errorf("invalid permission %q: %w", grant.Permission, domain.ErrValidation)
	}
	if grant.FolderID != nil {
		if _, ok := r.s.data.folders[*grant.FolderID]; !ok {
			return fmt.Errorf("folder %s: %w", *grant.FolderID, domain.ErrNotFound)
		}
	}
	if grant.FileID != nil {
		if _, ok := r.s.data.files[*grant.FileID]; !ok {
			return fmt.Errorf("file %s: %w", *grant.FileID, domain.ErrNotFound)
		}
	}

	grant.ID = uuid.NewString()
	grant.CreatedAt = r.s.now()
	r.s.data.grants[grant.ID] = grantRow{Grant: *grant, seq: r.s.nextSeq()}
	return nil
}

func (r *grantRepo) GetByID(ctx context.Context, id string) (*models.Grant, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	row, ok := r.s.data.grants[id]
	if !ok {
		return nil, fmt.Errorf("grant %s: %w", id, domain.ErrNotFound)
	}
	grant := row.Grant
	return &grant, nil
}

func (r *grantRepo) Update(ctx context.Context, grant *models.Grant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.data.grants[grant.ID]
	if !ok {
		return fmt.Errorf("grant %s: %w", grant.ID, domain.ErrNotFound)
	}
	if !grant.Permission.Valid() {
		return fmt.Errorf("invalid permission %q: %w", grant.Permission, domain.ErrValidation)
	}
	row.Permission = grant.Permission
	row.SharedPublic = grant.SharedPublic
	r.s.data.grants[grant.ID] = row
	return nil
}

func (r *grantRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.data.grants[id]; !ok {
		return fmt.Errorf("grant %s: %w", id, domain.ErrNotFound)
	}
	delete(r.s.data.grants, id)
	return nil
}

func (r *grantRepo) ListByResource(ctx context.Context, ref models.ResourceRef) ([]models.Grant, error) {
	return r.filter(func(g models.Grant) bool { return g.Resource() == ref }, false), nil
}

func (r *grantRepo) ListByResources(ctx context.Context, refs []models.ResourceRef) ([]models.Grant, error) {
	wanted := make(map[models.ResourceRef]bool, len(refs))
	for _, ref := range refs {
		wanted[ref] = true
	}
	return r.filter(func(g models.Grant) bool { return wanted[g.Resource()] }, false), nil
}

func (r *grantRepo) ListForGrantee(ctx context.Context, email string) ([]models.Grant, error) {
	return r.filter(func(g models.Grant) bool { return g.GranteeEmail == email }, true), nil
}

func (r *grantRepo) LevelsFor(ctx context.Context, ref models.ResourceRef, email string) ([]models.PermissionLevel, error) {
	var levels []models.PermissionLevel
	for _, g := range r.filter(func(g models.Grant) bool {
		return g.Resource() == ref && g.GranteeEmail == email
	}, false) {
		levels = append(levels, g.Permission)
	}
	return levels, nil
}

func (r *grantRepo) filter(keep func(models.Grant) bool, newestFirst bool) []models.Grant {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var rows []grantRow
	for _, row := range r.s.data.grants {
		if keep(row.Grant) {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if newestFirst {
			return rows[i].seq > rows[j].seq
		}
		return rows[i].seq < rows[j].seq
	})

	grants := make([]models.Grant, 0, len(rows))
	for _, row := range rows {
		grants = append(grants, row.Grant)
	}
	return grants
}

type profileRepo struct {
	s *Store
}

func (r *profileRepo) GetByEmails(ctx context.Context, emails []string) (map[string]models.Profile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	profiles := make(map[string]models.Profile, len(emails))
	for _, email := range emails {
		if p, ok := r.s.data.profiles[email]; ok {
			profiles[email] = p
		}
	}
	return profiles, nil
}
