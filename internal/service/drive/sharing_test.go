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
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestShareBatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	folder := f.folder(t, alice, "Album")
	f.folderRepo.setShared = 0

	grants, err := f.sharing.Share(ctx, alice, &driveSvc.ShareRequest{
		ItemID:   folder.ID,
		ItemType: "folder",
		ShareWith: []driveSvc.ShareRecipient{
			{Email: " Bob@Studio.test ", Permission: "read"},
			{Email: carol, Permission: "FULL"},
		},
	})
	if err != nil {
		t.Fatalf("Share() error = %v", err)
	}

	type row struct {
		Grantee    string
		Permission models.PermissionLevel
		SharedBy   string
	}
	var got []row
	for _, g := range grants {
		got = append(got, row{g.GranteeEmail, g.Permission, g.SharedBy})
	}
	want := []row{
		{bob, models.PermissionRead, alice},
		{carol, models.PermissionAdmin, alice},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Share() grants mismatch (-want +got):\n%s", diff)
	}

	if f.folderRepo.setShared != 1 {
		t.Errorf("is_shared written %d times, want 1", f.folderRepo.setShared)
	}
	shared, _ := f.folders.GetFolder(ctx, alice, folder.ID)
	if !shared.IsShared {
		t.Errorf("folder not flagged is_shared")
	}

	var notified []string
	for _, n := range f.notifier.notices {
		notified = append(notified, n.Grantee)
		if n.ResourceName != "Album" || n.Owner != alice {
			t.Errorf("unexpected notice %+v", n)
		}
	}
	if diff := cmp.Diff([]string{bob, carol}, notified); diff != "" {
		t.Errorf("notified mismatch (-want +got):\n%s", diff)
	}

	var granted int
	for _, name := range f.broadcaster.names() {
		if name == services.EventAccessGranted {
			granted++
		}
	}
	if granted != 1 {
		t.Errorf("%s broadcast %d times, want 1", services.EventAccessGranted, granted)
	}
}

func TestShareRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	folder := f.folder(t, alice, "Album")
	f.share(t, alice, models.FolderRef(folder.ID), bob, "admin")

	recipients := []driveSvc.ShareRecipient{{Email: carol, Permission: "read"}}
	tests := []struct {
		name      string
		principal string
		req       driveSvc.ShareRequest
		wantErr   error
	}{
		{"admin grantee is not owner", bob, driveSvc.ShareRequest{ItemID: folder.ID, ItemType: "folder", ShareWith: recipients}, domain.ErrForbidden},
		{"missing resource", alice, driveSvc.ShareRequest{ItemID: "missing", ItemType: "folder", ShareWith: recipients}, domain.ErrForbidden},
		{"bad permission", alice, driveSvc.ShareRequest{ItemID: folder.ID, ItemType: "folder", ShareWith: []driveSvc.ShareRecipient{{Email: carol, Permission: "owner"}}}, domain.ErrValidation},
		{"bad email", alice, driveSvc.ShareRequest{ItemID: folder.ID, ItemType: "folder", ShareWith: []driveSvc.ShareRecipient{{Email: "carol", Permission: "read"}}}, domain.ErrValidation},
		{"bad item type", alice, driveSvc.ShareRequest{ItemID: folder.ID, ItemType: "calendar", ShareWith: recipients}, domain.ErrValidation},
		{"no recipients", alice, driveSvc.ShareRequest{ItemID: folder.ID, ItemType: "folder"}, domain.ErrValidation},
		{"self share", alice, driveSvc.ShareRequest{ItemID: folder.ID, ItemType: "folder", ShareWith: []driveSvc.ShareRecipient{{Email: alice, Permission: "read"}}}, domain.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.sharing.Share(ctx, tt.principal, &tt.req); !errors.Is(err, tt.wantErr) {
				t.Errorf("Share() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	grants, err := f.sharing.ListGrants(ctx, alice, models.FolderRef(folder.ID))
	if err != nil {
		t.Fatalf("ListGrants() error = %v", err)
	}
	if len(grants) != 1 {
		t.Errorf("rejected shares wrote grants: %+v", grants)
	}
}

func TestListGrantsOwnerOnly(t *testing.T) {
	f := newFixture(t)
	folder := f.folder(t, alice, "Album")
	f.share(t, alice, models.FolderRef(folder.ID), bob, "admin")

	if _, err := f.sharing.ListGrants(context.Background(), bob, models.FolderRef(folder.ID)); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("ListGrants() by grantee error = %v, want ErrForbidden", err)
	}
}

func TestUpdateGrant(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	folder := f.folder(t, alice, "Album")
	g := f.share(t, alice, models.FolderRef(folder.ID), bob, "read")

	write := "write"
	if _, err := f.sharing.UpdateGrant(ctx, bob, g.ID, &driveSvc.UpdateGrantRequest{Permission: &write}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("grantee UpdateGrant() error = %v, want ErrForbidden", err)
	}

	updated, err := f.sharing.UpdateGrant(ctx, alice, g.ID, &driveSvc.UpdateGrantRequest{Permission: &write})
	if err != nil {
		t.Fatalf("UpdateGrant() error = %v", err)
	}
	if updated.Permission != models.PermissionWrite {
		t.Errorf("Permission = %q, want write", updated.Permission)
	}

	name := "Album (final)"
	if _, err := f.folders.UpdateFolder(ctx, bob, folder.ID, &driveSvc.UpdateFolderRequest{Name: &name}); err != nil {
		t.Errorf("upgraded grantee cannot write: %v", err)
	}

	bogus := "owner"
	if _, err := f.sharing.UpdateGrant(ctx, alice, g.ID, &driveSvc.UpdateGrantRequest{Permission: &bogus}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("UpdateGrant(owner) error = %v, want ErrValidation", err)
	}
	if _, err := f.sharing.UpdateGrant(ctx, alice, "missing", &driveSvc.UpdateGrantRequest{Permission: &write}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("UpdateGrant(missing) error = %v, want ErrNotFound", err)
	}
}

func TestRevokeClearsSharedFlag(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	folder := f.folder(t, alice, "Album")
	first := f.share(t, alice, models.FolderRef(folder.ID), bob, "read")
	second := f.share(t, alice, models.FolderRef(folder.ID), carol, "read")

	if err := f.sharing.Revoke(ctx, bob, second.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("grantee Revoke() error = %v, want ErrForbidden", err)
	}

	if err := f.sharing.Revoke(ctx, alice, first.ID); err != nil {
		t.Fatalf("Revoke() error = %v", err)
	}
	if _, err := f.folders.GetFolder(ctx, bob, folder.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("revoked grantee still reads: %v", err)
	}
	got, _ := f.folders.GetFolder(ctx, alice, folder.ID)
	if !got.IsShared {
		t.Errorf("is_shared cleared while a grant remains")
	}

	if err := f.sharing.Revoke(ctx, alice, second.ID); err != nil {
		t.Fatalf("Revoke() error = %v", err)
	}
	got, _ = f.folders.GetFolder(ctx, alice, folder.ID)
	if got.IsShared {
		t.Errorf("is_shared kept after last grant revoked")
	}

	last := f.broadcaster.last()
	if last.event != services.EventAccessRevoked {
		t.Errorf("last event = %q, want %q", last.event, services.EventAccessRevoked)
	}
	if diff := cmp.Diff([]string{alice, carol}, last.recipients); diff != "" {
		t.Errorf("revoke recipients mismatch (-want +got):\n%s", diff)
	}
}

func TestListGranteesWithProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.store.PutProfile(models.Profile{Email: bob, Name: "Bob", ProfileImage: "bob.png"})
	f.store.PutProfile(models.Profile{Email: carol, Name: "Carol"})

	album := f.folder(t, alice, "Album")
	demo := f.upload(t, alice, album.ID, "demo.wav", "demo")
	private := f.folder(t, carol, "Private")
	f.share(t, alice, models.FolderRef(album.ID), bob, "read")
	f.share(t, alice, models.FolderRef(album.ID), carol, "write")
	f.share(t, alice, models.FileRef(demo.ID), bob, "write")
	f.profiles.calls = 0

	refs := []models.ResourceRef{
		models.FolderRef(album.ID),
		models.FileRef(demo.ID),
		models.FolderRef(private.ID),
		models.FolderRef(album.ID),
	}
	got, err := f.sharing.ListGranteesWithProfile(ctx, alice, refs)
	if err != nil {
		t.Fatalf("ListGranteesWithProfile() error = %v", err)
	}
	if f.profiles.calls != 1 {
		t.Errorf("profile lookups = %d, want 1", f.profiles.calls)
	}

	type grantee struct {
		Email, Name, Image string
		Level              models.PermissionLevel
	}
	type entry struct {
		Ref      models.ResourceRef
		Grantees []grantee
	}
	var flat []entry
	for _, rg := range got {
		e := entry{Ref: rg.ResourceRef}
		for _, g := range rg.Grantees {
			e.Grantees = append(e.Grantees, grantee{g.GranteeEmail, g.Name, g.ProfileImage, g.Permission})
		}
		flat = append(flat, e)
	}

	want := []entry{
		{Ref: models.FolderRef(album.ID), Grantees: []grantee{
			{bob, "Bob", "bob.png", models.PermissionRead},
			{carol, "Carol", "", models.PermissionWrite},
		}},
		{Ref: models.FileRef(demo.ID), Grantees: []grantee{
			{bob, "Bob", "bob.png", models.PermissionWrite},
		}},
	}
	if diff := cmp.Diff(want, flat); diff != "" {
		t.Errorf("ListGranteesWithProfile() mismatch (-want +got):\n%s", diff)
	}

	if _, err := f.sharing.ListGranteesWithProfile(ctx, alice, nil); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("empty refs error = %v, want ErrValidation", err)
	}
}

func TestSharedByMeAndWithMe(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.store.PutProfile(models.Profile{Email: alice, Name: "Alice", ProfileImage: "alice.png"})

	album := f.folder(t, alice, "Album")
	f.folder(t, alice, "Unshared")
	demo := f.upload(t, alice, album.ID, "demo.wav", "demo")
	f.share(t, alice, models.FolderRef(album.ID), bob, "read")
	f.share(t, alice, models.FolderRef(album.ID), bob, "admin")
	f.share(t, alice, models.FileRef(demo.ID), bob, "write")

	byMe, err := f.sharing.SharedByMe(ctx, alice)
	if err != nil {
		t.Fatalf("SharedByMe() error = %v", err)
	}
	if len(byMe.Folders) != 1 || byMe.Folders[0].ID != album.ID || len(byMe.Files) != 1 {
		t.Errorf("SharedByMe() = %+v", byMe)
	}

	f.profiles.calls = 0
	withMe, err := f.sharing.SharedWithMe(ctx, bob)
	if err != nil {
		t.Fatalf("SharedWithMe() error = %v", err)
	}
	if f.profiles.calls != 1 {
		t.Errorf("profile lookups = %d, want 1", f.profiles.calls)
	}

	ignore := cmpopts.IgnoreFields(models.Folder{}, "CreatedAt", "UpdatedAt", "IsShared")
	wantFolder := models.SharedFolder{
		Folder:               *album,
		SharedBy:             alice,
		SharedByProfileImage: "alice.png",
		Permission:           models.PermissionAdmin,
	}
	if len(withMe.Folders) != 1 {
		t.Fatalf("SharedWithMe() folders = %+v", withMe.Folders)
	}
	if diff := cmp.Diff(wantFolder, withMe.Folders[0], ignore); diff != "" {
		t.Errorf("shared folder mismatch (-want +got):\n%s", diff)
	}
	if len(withMe.Files) != 1 || withMe.Files[0].Permission != models.PermissionWrite {
		t.Errorf("SharedWithMe() files = %+v", withMe.Files)
	}

	empty, err := f.sharing.SharedWithMe(ctx, carol)
	if err != nil {
		t.Fatalf("SharedWithMe(carol) error = %v", err)
	}
	if empty.Folders == nil || empty.Files == nil || len(empty.Folders)+len(empty.Files) != 0 {
		t.Errorf("SharedWithMe(carol) = %+v, want empty lists", empty)
	}
}

func TestRepeatedShareAccumulatesRows(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	folder := f.folder(t, alice, "Stems")
	ref := models.FolderRef(folder.ID)

	first := f.share(t, alice, ref, bob, "read")
	second := f.share(t, alice, ref, bob, "read")
	if first.ID == second.ID {
		t.Fatalf("second Share() reused grant %s", first.ID)
	}

	grants, err := f.sharing.ListGrants(ctx, alice, ref)
	if err != nil {
		t.Fatalf("ListGrants() error = %v", err)
	}
	if len(grants) != 2 {
		t.Fatalf("ListGrants() returned %d rows, want 2", len(grants))
	}

	gotIDs := []string{grants[0].ID, grants[1].ID}
	wantIDs := []string{first.ID, second.ID}
	less := func(a, b string) bool { return a < b }
	if diff := cmp.Diff(wantIDs, gotIDs, cmpopts.SortSlices(less)); diff != "" {
		t.Errorf("grant ids mismatch (-want +got):\n%s", diff)
	}
	for _, g := range grants {
		if g.GranteeEmail != bob || g.Permission != models.PermissionRead {
			t.Errorf("grant %s = (%s, %s), want (%s, read)", g.ID, g.GranteeEmail, g.Permission, bob)
		}
	}
}
