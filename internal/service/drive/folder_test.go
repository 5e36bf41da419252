package drive

import (
	"context"
	"errors"
	"testing"

	"studiodrive/internal/domain"
	models "studiodrive/internal/domain/models/drive"
	"studiodrive/internal/domain/services"
	driveSvc "studiodrive/internal/domain/services/drive"

	"github.com/google/go-cmp/cmp"
)

func TestCreateFolderValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  driveSvc.CreateFolderRequest
	}{
		{"empty name", driveSvc.CreateFolderRequest{Name: ""}},
		{"blank name", driveSvc.CreateFolderRequest{Name: "   "}},
		{"slash in name", driveSvc.CreateFolderRequest{Name: "a/b"}},
		{"empty parent id", driveSvc.CreateFolderRequest{Name: "ok", ParentFolderID: new(string)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.folders.CreateFolder(ctx, alice, &tt.req)
			if !errors.Is(err, domain.ErrValidation) {
				t.Errorf("CreateFolder() error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestCreateFolderUnderParent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	root := f.folder(t, alice, "Projects")

	child, err := f.folders.CreateFolder(ctx, alice, &driveSvc.CreateFolderRequest{Name: "Scripts", ParentFolderID: &root.ID})
	if err != nil {
		t.Fatalf("CreateFolder() error = %v", err)
	}
	if child.OwnerEmail != alice || child.CreatedBy != alice || child.ModifiedBy != alice {
		t.Errorf("unexpected audit fields: %+v", child)
	}

	subs, err := f.folders.ListSubfolders(ctx, alice, root.ID)
	if err != nil {
		t.Fatalf("ListSubfolders() error = %v", err)
	}
	if len(subs) != 1 || subs[0].ID != child.ID {
		t.Errorf("ListSubfolders() = %+v, want [%s]", subs, child.ID)
	}

	// A reader of the parent cannot create inside it, and nothing is left behind
	f.share(t, alice, models.FolderRef(root.ID), bob, "read")
	_, err = f.folders.CreateFolder(ctx, bob, &driveSvc.CreateFolderRequest{Name: "Nope", ParentFolderID: &root.ID})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("CreateFolder() by reader error = %v, want ErrForbidden", err)
	}
	owned, _ := f.folders.ListFolders(ctx, bob)
	for _, folder := range owned {
		if folder.OwnerEmail == bob {
			t.Errorf("forbidden create left folder %+v", folder)
		}
	}
}

func TestListFoldersOwnedAndGranted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mine := f.folder(t, bob, "Mine")
	shared := f.folder(t, alice, "Shared")
	f.folder(t, alice, "Private")

	// Two grants on one folder must not duplicate it
	f.share(t, alice, models.FolderRef(shared.ID), bob, "read")
	f.share(t, alice, models.FolderRef(shared.ID), bob, "write")

	folders, err := f.folders.ListFolders(ctx, bob)
	if err != nil {
		t.Fatalf("ListFolders() error = %v", err)
	}

	var ids []string
	for _, folder := range folders {
		ids = append(ids, folder.ID)
	}
	want := []string{shared.ID, mine.ID}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Errorf("ListFolders() mismatch (-want +got):\n%s", diff)
	}
}

func TestFolderPermissionLevels(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	folder := f.folder(t, alice, "Studio")
	f.share(t, alice, models.FolderRef(folder.ID), bob, "read")
	f.share(t, alice, models.FolderRef(folder.ID), carol, "write")

	rename := func(name string) *driveSvc.UpdateFolderRequest {
		return &driveSvc.UpdateFolderRequest{Name: &name}
	}

	tests := []struct {
		name      string
		principal string
		op        func(principal string) error
		wantErr   error
	}{
		{"reader gets", bob, func(p string) error { _, err := f.folders.GetFolder(ctx, p, folder.ID); return err }, nil},
		{"stranger get", "dave@studio.test", func(p string) error { _, err := f.folders.GetFolder(ctx, p, folder.ID); return err }, domain.ErrForbidden},
		{"reader rename", bob, func(p string) error { _, err := f.folders.UpdateFolder(ctx, p, folder.ID, rename("x")); return err }, domain.ErrForbidden},
		{"writer rename", carol, func(p string) error { _, err := f.folders.UpdateFolder(ctx, p, folder.ID, rename("Renamed")); return err }, nil},
		{"writer delete", carol, func(p string) error { return f.folders.DeleteFolder(ctx, p, folder.ID) }, domain.ErrForbidden},
		{"missing folder", alice, func(p string) error { _, err := f.folders.GetFolder(ctx, p, "missing"); return err }, domain.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.op(tt.principal)
			if tt.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	got, err := f.folders.GetFolder(ctx, alice, folder.ID)
	if err != nil {
		t.Fatalf("GetFolder() error = %v", err)
	}
	if got.Name != "Renamed" || got.ModifiedBy != carol {
		t.Errorf("GetFolder() = name %q modified_by %q", got.Name, got.ModifiedBy)
	}
}

func TestUpdateFolderRequiresAField(t *testing.T) {
	f := newFixture(t)
	folder := f.folder(t, alice, "Studio")

	_, err := f.folders.UpdateFolder(context.Background(), alice, folder.ID, &driveSvc.UpdateFolderRequest{})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("UpdateFolder() error = %v, want ErrValidation", err)
	}
}

func TestDeleteFolderCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	parent := f.folder(t, alice, "Parent")
	child := f.folder(t, alice, "Child")
	if err := f.folders.AddSubfolder(ctx, alice, models.FolderEdge{ParentFolderID: parent.ID, ChildFolderID: child.ID}); err != nil {
		t.Fatalf("AddSubfolder() error = %v", err)
	}
	file := f.upload(t, alice, parent.ID, "take1.wav", "take one")
	f.share(t, alice, models.FolderRef(parent.ID), bob, "admin")
	f.share(t, alice, models.FileRef(file.ID), carol, "read")

	// An admin grantee may delete
	if err := f.folders.DeleteFolder(ctx, bob, parent.ID); err != nil {
		t.Fatalf("DeleteFolder() error = %v", err)
	}

	if _, err := f.folders.GetFolder(ctx, alice, parent.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("deleted folder GetFolder() error = %v, want ErrForbidden", err)
	}
	if _, err := f.files.GetFile(ctx, carol, file.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("file of deleted folder still readable: %v", err)
	}
	if _, err := f.folders.GetFolder(ctx, alice, child.ID); err != nil {
		t.Errorf("child folder should survive: %v", err)
	}
	withMe, err := f.sharing.SharedWithMe(ctx, carol)
	if err != nil {
		t.Fatalf("SharedWithMe() error = %v", err)
	}
	if len(withMe.Files) != 0 {
		t.Errorf("file grant survived folder delete: %+v", withMe.Files)
	}
	if f.blobs.Len() != 0 {
		t.Errorf("blob store holds %d objects, want 0", f.blobs.Len())
	}
}

func TestSubfolderEdges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	parent := f.folder(t, alice, "Parent")
	child := f.folder(t, alice, "Child")
	foreign := f.folder(t, carol, "Foreign")
	edge := models.FolderEdge{ParentFolderID: parent.ID, ChildFolderID: child.ID}

	if err := f.folders.AddSubfolder(ctx, alice, edge); err != nil {
		t.Fatalf("AddSubfolder() error = %v", err)
	}

	tests := []struct {
		name    string
		edge    models.FolderEdge
		wantErr error
	}{
		{"duplicate", edge, domain.ErrConflict},
		{"self edge", models.FolderEdge{ParentFolderID: parent.ID, ChildFolderID: parent.ID}, domain.ErrValidation},
		{"child not readable", models.FolderEdge{ParentFolderID: parent.ID, ChildFolderID: foreign.ID}, domain.ErrForbidden},
		{"missing child", models.FolderEdge{ParentFolderID: parent.ID, ChildFolderID: "missing"}, domain.ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := f.folders.AddSubfolder(ctx, alice, tt.edge); !errors.Is(err, tt.wantErr) {
				t.Errorf("AddSubfolder() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if err := f.folders.RemoveSubfolder(ctx, alice, edge); err != nil {
		t.Fatalf("RemoveSubfolder() error = %v", err)
	}
	if err := f.folders.RemoveSubfolder(ctx, alice, edge); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("second RemoveSubfolder() error = %v, want ErrNotFound", err)
	}
	if _, err := f.folders.GetFolder(ctx, alice, child.ID); err != nil {
		t.Errorf("child should survive edge removal: %v", err)
	}
}

func TestFolderMutationsBroadcast(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	folder := f.folder(t, alice, "Studio")
	name := "Studio B"
	if _, err := f.folders.UpdateFolder(ctx, alice, folder.ID, &driveSvc.UpdateFolderRequest{Name: &name}); err != nil {
		t.Fatalf("UpdateFolder() error = %v", err)
	}
	if err := f.folders.DeleteFolder(ctx, alice, folder.ID); err != nil {
		t.Fatalf("DeleteFolder() error = %v", err)
	}

	want := []string{services.EventFolderChanged, services.EventFolderChanged, services.EventFolderChanged}
	if diff := cmp.Diff(want, f.broadcaster.names()); diff != "" {
		t.Errorf("broadcast events mismatch (-want +got):\n%s", diff)
	}
}
