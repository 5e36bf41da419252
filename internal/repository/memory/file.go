package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"studiodrive/internal/domain"
	models "studiodrive/internal/domain/models/drive"
)

type fileRepo struct {
	s *Store
}

func (r *fileRepo) Create(ctx context.Context, file *models.File) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	parent, ok := r.s.data.folders[file.ParentFolderID]
	if !ok {
		return fmt.Errorf("folder %s: %w", file.ParentFolderID, domain.ErrNotFound)
	}

	now := r.s.now()
	file.ID = uuid.NewString()
	file.CreatedAt = now
	file.UpdatedAt = now
	file.OwnerEmail = parent.OwnerEmail
	row := fileRow{File: *file, seq: r.s.nextSeq()}
	row.OwnerEmail = ""
	r.s.data.files[file.ID] = row
	return nil
}

func (r *fileRepo) GetByID(ctx context.Context, id string) (*models.File, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	row, ok := r.s.data.files[id]
	if !ok {
		return nil, fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
	}
	file := r.s.fileWithOwnerLocked(row)
	return &file, nil
}

func (r *fileRepo) GetOwnership(ctx context.Context, id string) (*models.FileOwnership, error) {
	file, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.FileOwnership{
		FileID:         file.ID,
		ParentFolderID: file.ParentFolderID,
		OwnerEmail:     file.OwnerEmail,
	}, nil
}

func (r *fileRepo) ListByFolder(ctx context.Context, folderID string) ([]models.File, error) {
	files := r.filter(func(f models.File) bool { return f.ParentFolderID == folderID })
	sort.SliceStable(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

func (r *fileRepo) ListByIDs(ctx context.Context, ids []string) ([]models.File, error) {
	wanted := map[string]bool{}
	for _, id := range ids {
		wanted[id] = true
	}
	return r.filter(func(f models.File) bool { return wanted[f.ID] }), nil
}

func (r *fileRepo) ListSharedByOwner(ctx context.Context, email string) ([]models.File, error) {
	return r.filter(func(f models.File) bool { return f.OwnerEmail == email && f.IsShared }), nil
}

func (r *fileRepo) ListStarredByOwner(ctx context.Context, email string) ([]models.File, error) {
	return r.filter(func(f models.File) bool { return f.OwnerEmail == email && f.IsStarred }), nil
}

func (r *fileRepo) Update(ctx context.Context, file *models.File) error {
	return r.mutate(file.ID, func(row *fileRow) {
		row.Name = file.Name
		row.IsShared = file.IsShared
		row.ModifiedBy = file.ModifiedBy
		row.UpdatedAt = r.s.now()
		file.UpdatedAt = row.UpdatedAt
	})
}

func (r *fileRepo) SetShared(ctx context.Context, id string, shared bool) error {
	return r.mutate(id, func(row *fileRow) {
		row.IsShared = shared
		row.UpdatedAt = r.s.now()
	})
}

func (r *fileRepo) SetStarred(ctx context.Context, id string, starred bool) error {
	return r.mutate(id, func(row *fileRow) {
		row.IsStarred = starred
		row.UpdatedAt = r.s.now()
	})
}

func (r *fileRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.data.files[id]; !ok {
		return fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
	}
	r.s.deleteFileLocked(id)
	return nil
}

func (r *fileRepo) CountByBlobKey(ctx context.Context, key string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	count := 0
	for _, row := range r.s.data.files {
		if row.BlobKey == key {
			count++
		}
	}
	return count, nil
}

func (r *fileRepo) mutate(id string, fn func(row *fileRow)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.data.files[id]
	if !ok {
		return fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
	}
	fn(&row)
	r.s.data.files[id] = row
	return nil
}

// filter returns matching files, owner joined, newest first
func (r *fileRepo) filter(keep func(models.File) bool) []models.File {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var rows []fileRow
	for _, row := range r.s.data.files {
		joined := row
		joined.File = r.s.fileWithOwnerLocked(row)
		if keep(joined.File) {
			rows = append(rows, joined)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq > rows[j].seq })

	files := make([]models.File, 0, len(rows))
	for _, row := range rows {
		files = append(files, row.File)
	}
	return files
}
