package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"studiodrive/internal/domain"
	models "studiodrive/internal/domain/models/drive"
)

type folderRepo struct {
	s *Store
}

func (r *folderRepo) Create(ctx context.Context, folder *models.Folder) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now()
	folder.ID = uuid.NewString()
	folder.CreatedAt = now
	folder.UpdatedAt = now
	r.s.data.folders[folder.ID] = folderRow{Folder: *folder, seq: r.s.nextSeq()}
	return nil
}

func (r *folderRepo) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	row, ok := r.s.data.folders[id]
	if !ok {
		return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	folder := row.Folder
	return &folder, nil
}

func (r *folderRepo) GetOwner(ctx context.Context, id string) (string, error) {
	folder, err := r.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return folder.OwnerEmail, nil
}

func (r *folderRepo) ListByIDs(ctx context.Context, ids []string) ([]models.Folder, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	seen := map[string]bool{}
	var rows []folderRow
	for _, id := range ids {
		if row, ok := r.s.data.folders[id]; ok && !seen[id] {
			seen[id] = true
			rows = append(rows, row)
		}
	}
	return sortFoldersDesc(rows), nil
}

func (r *folderRepo) ListAccessible(ctx context.Context, email string) ([]models.Folder, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	granted := map[string]bool{}
	for _, g := range r.s.data.grants {
		if g.FolderID != nil && g.GranteeEmail == email {
			granted[*g.FolderID] = true
		}
	}

	var rows []folderRow
	for id, row := range r.s.data.folders {
		if row.OwnerEmail == email || granted[id] {
			rows = append(rows, row)
		}
	}
	return sortFoldersDesc(rows), nil
}

func (r *folderRepo) ListSharedByOwner(ctx context.Context, email string) ([]models.Folder, error) {
	return r.filter(func(f models.Folder) bool { return f.OwnerEmail == email && f.IsShared }), nil
}

func (r *folderRepo) ListStarredByOwner(ctx context.Context, email string) ([]models.Folder, error) {
	return r.filter(func(f models.Folder) bool { return f.OwnerEmail == email && f.IsStarred }), nil
}

func (r *folderRepo) Update(ctx context.Context, folder *models.Folder) error {
	return r.mutate(folder.ID, func(row *folderRow) {
		row.Name = folder.Name
		row.IsShared = folder.IsShared
		row.ModifiedBy = folder.ModifiedBy
		row.UpdatedAt = r.s.now()
		folder.UpdatedAt = row.UpdatedAt
	})
}

func (r *folderRepo) SetShared(ctx context.Context, id string, shared bool) error {
	return r.mutate(id, func(row *folderRow) {
		row.IsShared = shared
		row.UpdatedAt = r.s.now()
	})
}

func (r *folderRepo) SetStarred(ctx context.Context, id string, starred bool) error {
	return r.mutate(id, func(row *folderRow) {
		row.IsStarred = starred
		row.UpdatedAt = r.s.now()
	})
}

func (r *folderRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.data.folders[id]; !ok {
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	r.s.deleteFolderLocked(id)
	return nil
}

func (r *folderRepo) mutate(id string, fn func(row *folderRow)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.data.folders[id]
	if !ok {
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	fn(&row)
	r.s.data.folders[id] = row
	return nil
}

func (r *folderRepo) filter(keep func(models.Folder) bool) []models.Folder {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var rows []folderRow
	for _, row := range r.s.data.folders {
		if keep(row.Folder) {
			rows = append(rows, row)
		}
	}
	return sortFoldersDesc(rows)
}

type structureRepo struct {
	s *Store
}

func (r *structureRepo) AddEdge(ctx context.Context, edge models.FolderEdge) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if edge.ParentFolderID == edge.ChildFolderID {
		return fmt.Errorf("a folder cannot contain itself: %w", domain.ErrValidation)
	}
	_, parentOK := r.s.data.folders[edge.ParentFolderID]
	_, childOK := r.s.data.folders[edge.ChildFolderID]
	if !parentOK || !childOK {
		return fmt.Errorf("folder edge %s -> %s: %w", edge.ParentFolderID, edge.ChildFolderID, domain.ErrNotFound)
	}
	if _, exists := r.s.data.edges[edge]; exists {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("folder %s is already nested under %s", edge.ChildFolderID, edge.ParentFolderID),
			ResourceType: "folder_structure",
			ResourceID:   edge.ChildFolderID,
		}
	}
	r.s.data.edges[edge] = r.s.nextSeq()
	return nil
}

func (r *structureRepo) RemoveEdge(ctx context.Context, edge models.FolderEdge) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.data.edges[edge]; !exists {
		return fmt.Errorf("folder edge %s -> %s: %w", edge.ParentFolderID, edge.ChildFolderID, domain.ErrNotFound)
	}
	delete(r.s.data.edges, edge)
	return nil
}

func (r *structureRepo) ListChildren(ctx context.Context, parentID string) ([]models.Folder, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	children := []models.Folder{}
	for edge := range r.s.data.edges {
		if edge.ParentFolderID != parentID {
			continue
		}
		if row, ok := r.s.data.folders[edge.ChildFolderID]; ok {
			children = append(children, row.Folder)
		}
	}
	sort.Slice(children, func(i, j int) bool { return children[i].Name < children[j].Name })
	return children, nil
}
