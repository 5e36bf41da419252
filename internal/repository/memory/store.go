// Package memory is an in-process implementation of the drive repositories.
// It mirrors the PostgreSQL cascades and is used by tests and by local runs
// without DATABASE_URL.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	models "studiodrive/internal/domain/models/drive"
	"studiodrive/internal/domain/repositories"
	driveRepo "studiodrive/internal/domain/repositories/drive"
)

type folderRow struct {
	models.Folder
	seq int
}

type fileRow struct {
	models.File
	seq int
}

type grantRow struct {
	models.Grant
	seq int
}

type state struct {
	folders  map[string]folderRow
	files    map[string]fileRow
	edges    map[models.FolderEdge]int
	grants   map[string]grantRow
	profiles map[string]models.Profile
}

func newState() state {
	return state{
		folders:  map[string]folderRow{},
		files:    map[string]fileRow{},
		edges:    map[models.FolderEdge]int{},
		grants:   map[string]grantRow{},
		profiles: map[string]models.Profile{},
	}
}

// clone copies every map. Row values hold no shared mutable state apart from
// the grant *string ids, which are never mutated in place.
func (s state) clone() state {
	c := newState()
	for k, v := range s.folders {
		c.folders[k] = v
	}
	for k, v := range s.files {
		c.files[k] = v
	}
	for k, v := range s.edges {
		c.edges[k] = v
	}
	for k, v := range s.grants {
		c.grants[k] = v
	}
	for k, v := range s.profiles {
		c.profiles[k] = v
	}
	return c
}

// Store holds all drive tables in memory
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	data state
	seq  int
	now  func() time.Time
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{data: newState(), now: time.Now}
}

func (s *Store) nextSeq() int {
	s.seq++
	return s.seq
}

// PutProfile inserts or replaces a display profile in the owners table
func (s *Store) PutProfile(p models.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.profiles[p.Email] = p
}

// Folders returns the folder repository view
func (s *Store) Folders() driveRepo.FolderRepository { return &folderRepo{s: s} }

// Structure returns the folder structure repository view
func (s *Store) Structure() driveRepo.FolderStructureRepository { return &structureRepo{s: s} }

// Files returns the file repository view
func (s *Store) Files() driveRepo.FileRepository { return &fileRepo{s: s} }

// Grants returns the grant ledger view
func (s *Store) Grants() driveRepo.GrantRepository { return &grantRepo{s: s} }

// Profiles returns the profile repository view
func (s *Store) Profiles() driveRepo.ProfileRepository { return &profileRepo{s: s} }

// TxManager returns a transaction manager over the store
func (s *Store) TxManager() repositories.TransactionManager { return &txManager{s: s} }

// txManager serializes transactions and restores a snapshot when fn fails
type txManager struct {
	s *Store
}

func (tm *txManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	if repositories.InTx(ctx) {
		return fn(ctx)
	}

	tm.s.txMu.Lock()
	defer tm.s.txMu.Unlock()

	tm.s.mu.RLock()
	snapshot := tm.s.data.clone()
	tm.s.mu.RUnlock()

	if err := fn(repositories.MarkInTx(ctx)); err != nil {
		tm.s.mu.Lock()
		tm.s.data = snapshot
		tm.s.mu.Unlock()
		return err
	}
	return nil
}

// deleteFolderLocked removes a folder with its files, grants and edges
func (s *Store) deleteFolderLocked(id string) {
	delete(s.data.folders, id)
	for fid, f := range s.data.files {
		if f.ParentFolderID == id {
			s.deleteFileLocked(fid)
		}
	}
	for gid, g := range s.data.grants {
		if g.FolderID != nil && *g.FolderID == id {
			delete(s.data.grants, gid)
		}
	}
	for edge := range s.data.edges {
		if edge.ParentFolderID == id || edge.ChildFolderID == id {
			delete(s.data.edges, edge)
		}
	}
}

// deleteFileLocked removes a file with its grants
func (s *Store) deleteFileLocked(id string) {
	delete(s.data.files, id)
	for gid, g := range s.data.grants {
		if g.FileID != nil && *g.FileID == id {
			delete(s.data.grants, gid)
		}
	}
}

// fileWithOwnerLocked joins the parent folder owner like the SQL implementation
func (s *Store) fileWithOwnerLocked(row fileRow) models.File {
	f := row.File
	if parent, ok := s.data.folders[f.ParentFolderID]; ok {
		f.OwnerEmail = parent.OwnerEmail
	}
	return f
}

func sortFoldersDesc(rows []folderRow) []models.Folder {
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq > rows[j].seq })
	out := make([]models.Folder, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Folder)
	}
	return out
}
