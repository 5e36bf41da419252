package drive

import (
	"context"
	"fmt"
	"log/slog"

	"studiodrive/internal/domain"
	models "studiodrive/internal/domain/models/drive"
	"studiodrive/internal/domain/repositories"
	driveRepo "studiodrive/internal/domain/repositories/drive"
	"studiodrive/internal/domain/services"
	driveSvc "studiodrive/internal/domain/services/drive"
)

type sharingService struct {
	folderRepo  driveRepo.FolderRepository
	fileRepo    driveRepo.FileRepository
	grantRepo   driveRepo.GrantRepository
	profileRepo driveRepo.ProfileRepository
	evaluator   services.PermissionEvaluator
	txManager   repositories.TransactionManager
	notifier    services.ShareNotifier
	broadcaster services.Broadcaster
	logger      *slog.Logger
}

// NewSharingService creates the access grant ledger service
func NewSharingService(
	folderRepo driveRepo.FolderRepository,
	fileRepo driveRepo.FileRepository,
	grantRepo driveRepo.GrantRepository,
	profileRepo driveRepo.ProfileRepository,
	evaluator services.PermissionEvaluator,
	txManager repositories.TransactionManager,
	notifier services.ShareNotifier,
	broadcaster services.Broadcaster,
	logger *slog.Logger,
) driveSvc.SharingService {
	return &sharingService{
		folderRepo:  folderRepo,
		fileRepo:    fileRepo,
		grantRepo:   grantRepo,
		profileRepo: profileRepo,
		evaluator:   evaluator,
		txManager:   txManager,
		notifier:    notifier,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// Share grants every recipient a level on one resource the principal owns.
// All grants and the is_shared flag are written in one transaction.
// Notifications and the realtime event go out after commit.
func (s *sharingService) Share(ctx context.Context, principal string, req *driveSvc.ShareRequest) ([]models.Grant, error) {
	for i := range req.ShareWith {
		req.ShareWith[i].Email = normalizeEmail(req.ShareWith[i].Email)
	}
	if err := validateShare(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	kind, _ := models.ParseResourceKind(req.ItemType)
	ref := models.ResourceRef{Kind: kind, ID: req.ItemID}

	pending := make([]*models.Grant, 0, len(req.ShareWith))
	for _, r := range req.ShareWith {
		if r.Email == principal {
			return nil, fmt.Errorf("%w: cannot share with yourself", domain.ErrValidation)
		}
		level, _ := models.ParsePermissionLevel(r.Permission)
		pending = append(pending, models.NewGrant(ref, r.Email, level, req.SharedPublic, principal))
	}

	var (
		name string
		size int64
	)
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		if err := s.evaluator.RequireOwner(ctx, principal, ref); err != nil {
			return err
		}

		var err error
		name, size, err = s.describe(ctx, ref)
		if err != nil {
			return err
		}

		for _, g := range pending {
			if err := s.grantRepo.Create(ctx, g); err != nil {
				return err
			}
		}
		return s.setShared(ctx, ref, true)
	})
	if err != nil {
		return nil, err
	}

	grants := make([]models.Grant, 0, len(pending))
	grantees := make([]string, 0, len(pending))
	for _, g := range pending {
		grants = append(grants, *g)
		grantees = append(grantees, g.GranteeEmail)
	}

	s.logger.Info("resource shared",
		"resource", ref.String(),
		"owner", principal,
		"grantees", grantees,
		"shared_public", req.SharedPublic,
	)

	for _, g := range pending {
		notice := services.ShareNotice{
			Owner:        principal,
			ResourceName: name,
			ResourceKind: ref.Kind,
			ResourceID:   ref.ID,
			Grantee:      g.GranteeEmail,
			Level:        g.Permission,
			FileSize:     size,
		}
		if err := s.notifier.NotifyShare(ctx, notice); err != nil {
			s.logger.Warn("share notification failed", "resource", ref.String(), "grantee", g.GranteeEmail, "error", err)
		}
	}
	s.broadcaster.Broadcast(services.EventAccessGranted, map[string]any{
		"item_id":   ref.ID,
		"item_type": ref.Kind,
		"owner":     principal,
		"grantees":  grantees,
	}, append([]string{principal}, grantees...)...)

	return grants, nil
}

// ListGrants lists the ledger rows of a resource the principal owns
func (s *sharingService) ListGrants(ctx context.Context, principal string, ref models.ResourceRef) ([]models.Grant, error) {
	if err := s.evaluator.RequireOwner(ctx, principal, ref); err != nil {
		return nil, err
	}
	return s.grantRepo.ListByResource(ctx, ref)
}

// UpdateGrant changes the level or public flag of one grant
func (s *sharingService) UpdateGrant(ctx context.Context, principal, grantID string, req *driveSvc.UpdateGrantRequest) (*models.Grant, error) {
	if err := validateUpdateGrant(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	ref, err := s.grantResource(ctx, grantID)
	if err != nil {
		return nil, err
	}

	var grant *models.Grant
	err = s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		if err := s.evaluator.RequireOwner(ctx, principal, ref); err != nil {
			return err
		}

		var err error
		grant, err = s.grantRepo.GetByID(repositories.WithWriteIntent(ctx), grantID)
		if err != nil {
			return err
		}

		if req.Permission != nil {
			grant.Permission, _ = models.ParsePermissionLevel(*req.Permission)
		}
		if req.SharedPublic != nil {
			grant.SharedPublic = *req.SharedPublic
		}
		return s.grantRepo.Update(ctx, grant)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("grant updated",
		"id", grant.ID,
		"resource", grant.Resource().String(),
		"grantee", grant.GranteeEmail,
		"permission", grant.Permission,
	)
	s.broadcaster.Broadcast(services.EventAccessUpdated, grantEvent(grant), principal, grant.GranteeEmail)

	return grant, nil
}

// Revoke removes one grant. Removing the last grant clears the resource's is_shared flag.
func (s *sharingService) Revoke(ctx context.Context, principal, grantID string) error {
	ref, err := s.grantResource(ctx, grantID)
	if err != nil {
		return err
	}

	var grant *models.Grant
	err = s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		if err := s.evaluator.RequireOwner(ctx, principal, ref); err != nil {
			return err
		}

		var err error
		grant, err = s.grantRepo.GetByID(repositories.WithWriteIntent(ctx), grantID)
		if err != nil {
			return err
		}

		if err := s.grantRepo.Delete(ctx, grantID); err != nil {
			return err
		}

		remaining, err := s.grantRepo.ListByResource(ctx, ref)
		if err != nil {
			return err
		}
		if len(remaining) == 0 {
			return s.setShared(ctx, ref, false)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("grant revoked",
		"id", grant.ID,
		"resource", grant.Resource().String(),
		"grantee", grant.GranteeEmail,
		"by", principal,
	)
	s.broadcaster.Broadcast(services.EventAccessRevoked, grantEvent(grant), principal, grant.GranteeEmail)

	return nil
}

// ListGranteesWithProfile returns the grantees of each resource joined with their
// profiles. Resources the principal cannot read are left out of the result.
func (s *sharingService) ListGranteesWithProfile(ctx context.Context, principal string, refs []models.ResourceRef) ([]models.ResourceGrantees, error) {
	if err := validateRefs(refs); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	readable := make([]models.ResourceRef, 0, len(refs))
	seen := make(map[models.ResourceRef]bool, len(refs))
	for _, ref := range refs {
		if seen[ref] {
			continue
		}
		seen[ref] = true

		decision, err := s.evaluator.Evaluate(ctx, principal, ref, models.PermissionRead)
		if err != nil {
			return nil, err
		}
		if decision == models.Allow {
			readable = append(readable, ref)
		}
	}
	if len(readable) == 0 {
		return []models.ResourceGrantees{}, nil
	}

	grants, err := s.grantRepo.ListByResources(ctx, readable)
	if err != nil {
		return nil, err
	}

	byResource := make(map[models.ResourceRef][]models.Grant, len(readable))
	var emails []string
	for _, g := range grants {
		ref := g.Resource()
		byResource[ref] = append(byResource[ref], g)
		emails = append(emails, g.GranteeEmail)
	}

	profiles, err := s.profileRepo.GetByEmails(ctx, distinct(emails))
	if err != nil {
		return nil, err
	}

	result := make([]models.ResourceGrantees, 0, len(readable))
	for _, ref := range readable {
		entry := models.ResourceGrantees{ResourceRef: ref, Grantees: []models.GranteeProfile{}}
		for _, g := range byResource[ref] {
			p := profiles[g.GranteeEmail]
			entry.Grantees = append(entry.Grantees, models.GranteeProfile{
				Grant:        g,
				Name:         p.Name,
				ProfileImage: p.ProfileImage,
			})
		}
		result = append(result, entry)
	}

	return result, nil
}

// SharedByMe lists the principal's folders and files flagged is_shared
func (s *sharingService) SharedByMe(ctx context.Context, principal string) (*models.SharedByMe, error) {
	folders, err := s.folderRepo.ListSharedByOwner(ctx, principal)
	if err != nil {
		return nil, err
	}
	files, err := s.fileRepo.ListSharedByOwner(ctx, principal)
	if err != nil {
		return nil, err
	}
	return &models.SharedByMe{
		Folders: nonNil(folders),
		Files:   nonNil(files),
	}, nil
}

// SharedWithMe lists everything granted to the principal. When several grants
// cover the same resource the most permissive one supplies permission and shared_by.
func (s *sharingService) SharedWithMe(ctx context.Context, principal string) (*models.SharedWithMe, error) {
	grants, err := s.grantRepo.ListForGrantee(ctx, principal)
	if err != nil {
		return nil, err
	}

	best := make(map[models.ResourceRef]models.Grant, len(grants))
	var folderIDs, fileIDs []string
	for _, g := range grants {
		ref := g.Resource()
		current, ok := best[ref]
		if !ok {
			switch ref.Kind {
			case models.KindFolder:
				folderIDs = append(folderIDs, ref.ID)
			case models.KindFile:
				fileIDs = append(fileIDs, ref.ID)
			}
		}
		if !ok || models.MaxPermission(current.Permission, g.Permission) != current.Permission {
			best[ref] = g
		}
	}

	result := &models.SharedWithMe{
		Folders: []models.SharedFolder{},
		Files:   []models.SharedFile{},
	}
	if len(best) == 0 {
		return result, nil
	}

	sharers := make([]string, 0, len(best))
	for _, g := range best {
		sharers = append(sharers, g.SharedBy)
	}
	profiles, err := s.profileRepo.GetByEmails(ctx, distinct(sharers))
	if err != nil {
		return nil, err
	}

	if len(folderIDs) > 0 {
		folders, err := s.folderRepo.ListByIDs(ctx, folderIDs)
		if err != nil {
			return nil, err
		}
		for _, f := range folders {
			g := best[models.FolderRef(f.ID)]
			result.Folders = append(result.Folders, models.SharedFolder{
				Folder:               f,
				SharedBy:             g.SharedBy,
				SharedByProfileImage: profiles[g.SharedBy].ProfileImage,
				Permission:           g.Permission,
			})
		}
	}

	if len(fileIDs) > 0 {
		files, err := s.fileRepo.ListByIDs(ctx, fileIDs)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			g := best[models.FileRef(f.ID)]
			result.Files = append(result.Files, models.SharedFile{
				File:                 f,
				SharedBy:             g.SharedBy,
				SharedByProfileImage: profiles[g.SharedBy].ProfileImage,
				Permission:           g.Permission,
			})
		}
	}

	return result, nil
}

// grantResource resolves the resource a grant covers before the transaction.
// A grant never moves between resources, so the transaction can lock the
// resource row first and the grant row second, the order deletes use.
func (s *sharingService) grantResource(ctx context.Context, grantID string) (models.ResourceRef, error) {
	grant, err := s.grantRepo.GetByID(ctx, grantID)
	if err != nil {
		return models.ResourceRef{}, err
	}
	return grant.Resource(), nil
}

// describe returns the display name and size used in share notifications
func (s *sharingService) describe(ctx context.Context, ref models.ResourceRef) (string, int64, error) {
	switch ref.Kind {
	case models.KindFolder:
		folder, err := s.folderRepo.GetByID(ctx, ref.ID)
		if err != nil {
			return "", 0, err
		}
		return folder.Name, 0, nil
	case models.KindFile:
		file, err := s.fileRepo.GetByID(ctx, ref.ID)
		if err != nil {
			return "", 0, err
		}
		return file.Name, file.Size, nil
	default:
		return "", 0, fmt.Errorf("%w: unknown item type %q", domain.ErrValidation, ref.Kind)
	}
}

func (s *sharingService) setShared(ctx context.Context, ref models.ResourceRef, shared bool) error {
	if ref.Kind == models.KindFile {
		return s.fileRepo.SetShared(ctx, ref.ID, shared)
	}
	return s.folderRepo.SetShared(ctx, ref.ID, shared)
}

func grantEvent(g *models.Grant) map[string]any {
	ref := g.Resource()
	return map[string]any{
		"grant_id":   g.ID,
		"item_id":    ref.ID,
		"item_type":  ref.Kind,
		"user_email": g.GranteeEmail,
		"permission": g.Permission,
	}
}

func distinct(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
