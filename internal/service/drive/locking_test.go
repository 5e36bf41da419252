package drive

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	models "studiodrive/internal/domain/models/drive"
	"studiodrive/internal/domain/repositories"
	driveRepo "studiodrive/internal/domain/repositories/drive"
	driveSvc "studiodrive/internal/domain/services/drive"
	authSvc "studiodrive/internal/service/auth"

	"github.com/google/go-cmp/cmp"
)

// lockLog records the row reads made inside a transaction and the lock they imply
type lockLog struct {
	mu    sync.Mutex
	steps []string
}

func (l *lockLog) add(ctx context.Context, row string) {
	if !repositories.InTx(ctx) {
		return
	}
	mode := "key share"
	if repositories.HasWriteIntent(ctx) {
		mode = "for update"
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.steps = append(l.steps, row+" "+mode)
}

func (l *lockLog) take() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	steps := l.steps
	l.steps = nil
	return steps
}

type loggedFolders struct {
	driveRepo.FolderRepository
	log *lockLog
}

func (f loggedFolders) GetOwner(ctx context.Context, id string) (string, error) {
	f.log.add(ctx, "folder")
	return f.FolderRepository.GetOwner(ctx, id)
}

type loggedGrants struct {
	driveRepo.GrantRepository
	log *lockLog
}

func (g loggedGrants) GetByID(ctx context.Context, id string) (*models.Grant, error) {
	g.log.add(ctx, "grant")
	return g.GrantRepository.GetByID(ctx, id)
}

func TestRowLockOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	log := &lockLog{}
	folders := loggedFolders{FolderRepository: f.store.Folders(), log: log}
	grants := loggedGrants{GrantRepository: f.store.Grants(), log: log}
	evaluator := authSvc.NewGrantEvaluator(folders, f.store.Files(), grants, logger)
	tx := f.store.TxManager()

	sharing := NewSharingService(folders, f.store.Files(), grants, f.store.Profiles(), evaluator, tx, f.notifier, f.broadcaster, logger)
	folderSvc := NewFolderService(folders, f.store.Structure(), f.store.Files(), f.blobs, evaluator, tx, f.broadcaster, logger)

	folder := f.folder(t, alice, "Album")
	first := f.share(t, alice, models.FolderRef(folder.ID), bob, "read")
	second := f.share(t, alice, models.FolderRef(folder.ID), carol, "read")

	level := "write"
	tests := []struct {
		name string
		run  func() error
		want []string
	}{
		{
			name: "update grant locks resource then grant",
			run: func() error {
				_, err := sharing.UpdateGrant(ctx, alice, first.ID, &driveSvc.UpdateGrantRequest{Permission: &level})
				return err
			},
			want: []string{"folder key share", "grant for update"},
		},
		{
			name: "revoke locks resource then grant",
			run:  func() error { return sharing.Revoke(ctx, alice, second.ID) },
			want: []string{"folder key share", "grant for update"},
		},
		{
			name: "delete locks folder for update",
			run:  func() error { return folderSvc.DeleteFolder(ctx, alice, folder.ID) },
			want: []string{"folder for update"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log.take()
			if err := tt.run(); err != nil {
				t.Fatalf("error = %v", err)
			}
			if diff := cmp.Diff(tt.want, log.take()); diff != "" {
				t.Errorf("locks mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
