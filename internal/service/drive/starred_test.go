package drive

import (
	"context"
	"errors"
	"testing"

	"studiodrive/internal/domain"
	models "studiodrive/internal/domain/models/drive"
)

func TestStarring(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	folder := f.folder(t, alice, "Favourites")
	file := f.upload(t, alice, folder.ID, "hook.wav", "hook")
	f.share(t, alice, models.FolderRef(folder.ID), bob, "admin")

	if err := f.stars.SetStarred(ctx, alice, models.FolderRef(folder.ID), true); err != nil {
		t.Fatalf("SetStarred(folder) error = %v", err)
	}
	if err := f.stars.SetStarred(ctx, alice, models.FileRef(file.ID), true); err != nil {
		t.Fatalf("SetStarred(file) error = %v", err)
	}
	if err := f.stars.SetStarred(ctx, bob, models.FileRef(file.ID), true); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("grantee SetStarred() error = %v, want ErrForbidden", err)
	}

	starred, err := f.stars.ListStarred(ctx, alice)
	if err != nil {
		t.Fatalf("ListStarred() error = %v", err)
	}
	if len(starred.Folders) != 1 || len(starred.Files) != 1 || !starred.Files[0].IsStarred {
		t.Errorf("ListStarred() = %+v", starred)
	}

	if err := f.stars.SetStarred(ctx, alice, models.FolderRef(folder.ID), false); err != nil {
		t.Fatalf("unstar error = %v", err)
	}
	starred, _ = f.stars.ListStarred(ctx, alice)
	if len(starred.Folders) != 0 {
		t.Errorf("unstarred folder still listed")
	}

	none, _ := f.stars.ListStarred(ctx, bob)
	if none.Folders == nil || none.Files == nil {
		t.Errorf("ListStarred() should return empty lists, got %+v", none)
	}
}
