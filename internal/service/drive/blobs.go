package drive

import (
	"context"
	"log/slog"
	"sync"

	"studiodrive/internal/domain/repositories"
	driveRepo "studiodrive/internal/domain/repositories/drive"
)

// keyLocks serializes work on one blob key. An upload holds the key from Put
// until its file row commits; a release holds it from the reference count
// until the delete. Entries are dropped once nobody holds or waits on them.
type keyLocks struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	sync.Mutex
	refs int
}

// contentLocks is shared by every service in the process: folder and file
// deletes release the same keys that uploads write.
var contentLocks = &keyLocks{locks: make(map[string]*keyLock)}

// lock blocks until key is free and returns its unlock func
func (k *keyLocks) lock(key string) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &keyLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

// blobReleaser removes blobs that no file row references any more.
// Runs after commit; failures leave an orphaned object and are only logged.
type blobReleaser struct {
	fileRepo driveRepo.FileRepository
	blobs    repositories.BlobStore
	locks    *keyLocks
	logger   *slog.Logger
}

func newBlobReleaser(fileRepo driveRepo.FileRepository, blobs repositories.BlobStore, logger *slog.Logger) *blobReleaser {
	return &blobReleaser{fileRepo: fileRepo, blobs: blobs, locks: contentLocks, logger: logger}
}

// hold locks key for an upload; the caller must run the returned func
func (b *blobReleaser) hold(key string) func() {
	return b.locks.lock(key)
}

func (b *blobReleaser) release(ctx context.Context, keys ...string) {
	seen := make(map[string]bool, len(keys))
	for _, key := range keys {
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true

		unlock := b.locks.lock(key)
		b.releaseHeld(ctx, key)
		unlock()
	}
}

// releaseHeld deletes key when unreferenced. The caller holds the key.
func (b *blobReleaser) releaseHeld(ctx context.Context, key string) {
	refs, err := b.fileRepo.CountByBlobKey(ctx, key)
	if err != nil {
		b.logger.Warn("count blob references", "blob_key", key, "error", err)
		return
	}
	if refs > 0 {
		return
	}
	if err := b.blobs.Delete(ctx, key); err != nil {
		b.logger.Warn("delete unreferenced blob", "blob_key", key, "error", err)
		return
	}
	b.logger.Debug("blob released", "blob_key", key)
}
