package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"studiodrive/internal/domain"
	models "studiodrive/internal/domain/models/drive"
	driveRepo "studiodrive/internal/domain/repositories/drive"
	"studiodrive/internal/repository/memory"
)

const (
	owner   = "a@x.com"
	grantee = "b@x.com"
	other   = "c@x.com"
)

type fixture struct {
	store     *memory.Store
	evaluator *GrantEvaluator
	folder    *models.Folder
	file      *models.File
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	folder := &models.Folder{Name: "F", OwnerEmail: owner, IsRoot: true, CreatedBy: owner, ModifiedBy: owner}
	if err := store.Folders().Create(ctx, folder); err != nil {
		t.Fatalf("create folder: %v", err)
	}
	file := &models.File{Name: "doc.pdf", ParentFolderID: folder.ID, BlobKey: "k", CreatedBy: owner, ModifiedBy: owner}
	if err := store.Files().Create(ctx, file); err != nil {
		t.Fatalf("create file: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	evaluator := NewGrantEvaluator(store.Folders(), store.Files(), store.Grants(), logger).(*GrantEvaluator)

	return &fixture{store: store, evaluator: evaluator, folder: folder, file: file}
}

func (f *fixture) grant(t *testing.T, ref models.ResourceRef, email string, level models.PermissionLevel) *models.Grant {
	t.Helper()
	g := models.NewGrant(ref, email, level, false, owner)
	if err := f.store.Grants().Create(context.Background(), g); err != nil {
		t.Fatalf("create grant: %v", err)
	}
	return g
}

func (f *fixture) decide(t *testing.T, principal string, ref models.ResourceRef, level models.PermissionLevel) models.Decision {
	t.Helper()
	d, err := f.evaluator.Evaluate(context.Background(), principal, ref, level)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	return d
}

func TestEvaluateFolderReadGrant(t *testing.T) {
	f := newFixture(t)
	f.grant(t, models.FolderRef(f.folder.ID), grantee, models.PermissionRead)

	tests := []struct {
		name      string
		principal string
		ref       models.ResourceRef
		level     models.PermissionLevel
		want      models.Decision
	}{
		{"grantee read folder", grantee, models.FolderRef(f.folder.ID), models.PermissionRead, models.Allow},
		{"grantee write folder", grantee, models.FolderRef(f.folder.ID), models.PermissionWrite, models.Deny},
		{"grantee read file via folder", grantee, models.FileRef(f.file.ID), models.PermissionRead, models.Allow},
		{"grantee write file via folder", grantee, models.FileRef(f.file.ID), models.PermissionWrite, models.Deny},
		{"owner admin folder", owner, models.FolderRef(f.folder.ID), models.PermissionAdmin, models.Allow},
		{"owner admin file", owner, models.FileRef(f.file.ID), models.PermissionAdmin, models.Allow},
		{"stranger read", other, models.FolderRef(f.folder.ID), models.PermissionRead, models.Deny},
		{"unauthenticated", "", models.FolderRef(f.folder.ID), models.PermissionRead, models.Deny},
		{"missing folder", owner, models.FolderRef("missing"), models.PermissionRead, models.Deny},
		{"missing file", owner, models.FileRef("missing"), models.PermissionRead, models.Deny},
		{"unknown kind", owner, models.ResourceRef{Kind: "calendar", ID: f.folder.ID}, models.PermissionRead, models.Deny},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.decide(t, tt.principal, tt.ref, tt.level); got != tt.want {
				t.Errorf("Evaluate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluateFileTakesBestOfDirectAndInherited(t *testing.T) {
	f := newFixture(t)
	f.grant(t, models.FolderRef(f.folder.ID), grantee, models.PermissionRead)
	f.grant(t, models.FileRef(f.file.ID), grantee, models.PermissionWrite)

	if got := f.decide(t, grantee, models.FileRef(f.file.ID), models.PermissionWrite); got != models.Allow {
		t.Errorf("direct write grant should allow write, got %v", got)
	}
	if got := f.decide(t, grantee, models.FolderRef(f.folder.ID), models.PermissionWrite); got != models.Deny {
		t.Errorf("file grant must not leak to folder, got %v", got)
	}
	if got := f.decide(t, grantee, models.FileRef(f.file.ID), models.PermissionAdmin); got != models.Deny {
		t.Errorf("admin should be denied, got %v", got)
	}
}

func TestEvaluateAccumulatedGrants(t *testing.T) {
	f := newFixture(t)
	f.grant(t, models.FolderRef(f.folder.ID), grantee, models.PermissionRead)
	f.grant(t, models.FolderRef(f.folder.ID), grantee, models.PermissionAdmin)

	if got := f.decide(t, grantee, models.FolderRef(f.folder.ID), models.PermissionAdmin); got != models.Allow {
		t.Errorf("most permissive grant should win, got %v", got)
	}
}

func TestGrantThenRevokeDenies(t *testing.T) {
	f := newFixture(t)
	g := f.grant(t, models.FolderRef(f.folder.ID), grantee, models.PermissionRead)

	if got := f.decide(t, grantee, models.FolderRef(f.folder.ID), models.PermissionRead); got != models.Allow {
		t.Fatalf("expected allow before revoke, got %v", got)
	}
	if err := f.store.Grants().Delete(context.Background(), g.ID); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if got := f.decide(t, grantee, models.FolderRef(f.folder.ID), models.PermissionRead); got != models.Deny {
		t.Errorf("expected deny after revoke, got %v", got)
	}
	if got := f.decide(t, grantee, models.FileRef(f.file.ID), models.PermissionRead); got != models.Deny {
		t.Errorf("expected inherited deny after revoke, got %v", got)
	}
}

func TestRequireAndOwner(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.grant(t, models.FolderRef(f.folder.ID), grantee, models.PermissionAdmin)

	if err := f.evaluator.Require(ctx, other, models.FolderRef(f.folder.ID), models.PermissionRead); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("Require() = %v, want ErrForbidden", err)
	}
	if err := f.evaluator.Require(ctx, grantee, models.FolderRef(f.folder.ID), models.PermissionAdmin); err != nil {
		t.Errorf("Require() = %v, want nil", err)
	}

	// An admin grant never implies ownership
	if err := f.evaluator.RequireOwner(ctx, grantee, models.FolderRef(f.folder.ID)); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("RequireOwner(grantee) = %v, want ErrForbidden", err)
	}
	if err := f.evaluator.RequireOwner(ctx, owner, models.FileRef(f.file.ID)); err != nil {
		t.Errorf("RequireOwner(owner, file) = %v, want nil", err)
	}
	owns, err := f.evaluator.Owns(ctx, owner, models.FolderRef("missing"))
	if err != nil || owns {
		t.Errorf("Owns(missing) = %v, %v", owns, err)
	}
}

// failingGrants simulates a store outage on the ledger
type failingGrants struct {
	driveRepo.GrantRepository
}

func (failingGrants) LevelsFor(context.Context, models.ResourceRef, string) ([]models.PermissionLevel, error) {
	return nil, errors.New("connection reset")
}

func TestEvaluatePropagatesStoreErrors(t *testing.T) {
	f := newFixture(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	e := NewGrantEvaluator(f.store.Folders(), f.store.Files(), failingGrants{f.store.Grants()}, logger)

	_, err := e.Evaluate(context.Background(), grantee, models.FolderRef(f.folder.ID), models.PermissionRead)
	if err == nil || errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected store error, got %v", err)
	}

	// Owners short-circuit before the ledger is read
	d, err := e.Evaluate(context.Background(), owner, models.FolderRef(f.folder.ID), models.PermissionAdmin)
	if err != nil || d != models.Allow {
		t.Errorf("owner Evaluate() = %v, %v", d, err)
	}
}
