package drive

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	models "studiodrive/internal/domain/models/drive"
	driveRepo "studiodrive/internal/domain/repositories/drive"
	"studiodrive/internal/domain/services"
	driveSvc "studiodrive/internal/domain/services/drive"
	"studiodrive/internal/repository/memory"
	authSvc "studiodrive/internal/service/auth"
	"studiodrive/internal/storage"
)

const (
	alice = "alice@studio.test"
	bob   = "bob@studio.test"
	carol = "carol@studio.test"
)

type recordingNotifier struct {
	mu      sync.Mutex
	notices []services.ShareNotice
}

func (n *recordingNotifier) NotifyShare(ctx context.Context, notice services.ShareNotice) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice)
	return nil
}

type broadcastEvent struct {
	event      string
	payload    any
	recipients []string
}

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []broadcastEvent
}

func (b *recordingBroadcaster) Broadcast(event string, payload any, recipients ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, broadcastEvent{event: event, payload: payload, recipients: recipients})
}

// last returns the most recent event
func (b *recordingBroadcaster) last() broadcastEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.events) == 0 {
		return broadcastEvent{}
	}
	return b.events[len(b.events)-1]
}

func (b *recordingBroadcaster) names() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.events))
	for _, e := range b.events {
		out = append(out, e.event)
	}
	return out
}

// countingProfiles counts batch lookups
type countingProfiles struct {
	driveRepo.ProfileRepository
	calls int
}

func (p *countingProfiles) GetByEmails(ctx context.Context, emails []string) (map[string]models.Profile, error) {
	p.calls++
	return p.ProfileRepository.GetByEmails(ctx, emails)
}

// countingFolders counts is_shared writes
type countingFolders struct {
	driveRepo.FolderRepository
	setShared int
}

func (f *countingFolders) SetShared(ctx context.Context, id string, shared bool) error {
	f.setShared++
	return f.FolderRepository.SetShared(ctx, id, shared)
}

type fixture struct {
	store       *memory.Store
	blobs       *storage.MemoryStore
	notifier    *recordingNotifier
	broadcaster *recordingBroadcaster
	profiles    *countingProfiles
	folderRepo  *countingFolders

	folders driveSvc.FolderService
	files   driveSvc.FileService
	sharing driveSvc.SharingService
	stars   driveSvc.StarService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.NewStore()
	blobs := storage.NewMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	f := &fixture{
		store:       store,
		blobs:       blobs,
		notifier:    &recordingNotifier{},
		broadcaster: &recordingBroadcaster{},
		profiles:    &countingProfiles{ProfileRepository: store.Profiles()},
		folderRepo:  &countingFolders{FolderRepository: store.Folders()},
	}

	evaluator := authSvc.NewGrantEvaluator(store.Folders(), store.Files(), store.Grants(), logger)
	tx := store.TxManager()

	f.folders = NewFolderService(f.folderRepo, store.Structure(), store.Files(), blobs, evaluator, tx, f.broadcaster, logger)
	f.files = NewFileService(store.Files(), blobs, evaluator, tx, f.broadcaster, logger)
	f.sharing = NewSharingService(f.folderRepo, store.Files(), store.Grants(), f.profiles, evaluator, tx, f.notifier, f.broadcaster, logger)
	f.stars = NewStarService(store.Folders(), store.Files(), evaluator, tx, logger)
	return f
}

func (f *fixture) folder(t *testing.T, owner, name string) *models.Folder {
	t.Helper()
	folder, err := f.folders.CreateFolder(context.Background(), owner, &driveSvc.CreateFolderRequest{Name: name, IsRoot: true})
	if err != nil {
		t.Fatalf("CreateFolder(%s): %v", name, err)
	}
	return folder
}

func (f *fixture) upload(t *testing.T, owner, folderID, name, content string) *models.File {
	t.Helper()
	file, err := f.files.UploadFile(context.Background(), owner, &driveSvc.UploadFileRequest{
		ParentFolderID: folderID,
		Name:           name,
		Content:        []byte(content),
	})
	if err != nil {
		t.Fatalf("UploadFile(%s): %v", name, err)
	}
	return file
}

func (f *fixture) share(t *testing.T, owner string, ref models.ResourceRef, grantee, level string) models.Grant {
	t.Helper()
	grants, err := f.sharing.Share(context.Background(), owner, &driveSvc.ShareRequest{
		ItemID:    ref.ID,
		ItemType:  string(ref.Kind),
		ShareWith: []driveSvc.ShareRecipient{{Email: grantee, Permission: level}},
	})
	if err != nil {
		t.Fatalf("Share(%s -> %s): %v", ref, grantee, err)
	}
	return grants[0]
}
