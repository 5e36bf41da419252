package drive

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"studiodrive/internal/config"
	models "studiodrive/internal/domain/models/drive"
	driveSvc "studiodrive/internal/domain/services/drive"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// noSlashes rejects names that would read as paths in download headers and links
var noSlashes = regexp.MustCompile(`^[^/\\]+$`)

func folderNameRules() []validation.Rule {
	return []validation.Rule{
		validation.Required,
		validation.By(notBlank),
		validation.RuneLength(1, config.MaxFolderNameLength),
		validation.Match(noSlashes).Error("folder name cannot contain slashes"),
	}
}

func fileNameRules() []validation.Rule {
	return []validation.Rule{
		validation.Required,
		validation.By(notBlank),
		validation.RuneLength(1, config.MaxFileNameLength),
		validation.Match(noSlashes).Error("file name cannot contain slashes"),
	}
}

func notBlank(value any) error {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case *string:
		if v == nil {
			return nil
		}
		s = *v
	}
	if strings.TrimSpace(s) == "" {
		return errors.New("cannot be blank")
	}
	return nil
}

func validateCreateFolder(req *driveSvc.CreateFolderRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Name, folderNameRules()...),
		validation.Field(&req.ParentFolderID, validation.NilOrNotEmpty),
	)
}

func validateUpdateFolder(req *driveSvc.UpdateFolderRequest) error {
	if req.Name == nil && req.IsShared == nil {
		return errors.New("at least one of folder_name or is_shared is required")
	}
	return validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.When(req.Name != nil, folderNameRules()...)),
	)
}

func validateUpload(req *driveSvc.UploadFileRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.ParentFolderID, validation.Required),
		validation.Field(&req.Name, fileNameRules()...),
	)
}

func validateUpdateFile(req *driveSvc.UpdateFileRequest) error {
	if req.Name == nil && req.IsShared == nil {
		return errors.New("at least one of file_name or is_shared is required")
	}
	return validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.When(req.Name != nil, fileNameRules()...)),
	)
}

func validateShare(req *driveSvc.ShareRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.ItemID, validation.Required),
		validation.Field(&req.ItemType, validation.Required, validation.By(validResourceKind)),
		validation.Field(&req.ShareWith,
			validation.Required,
			validation.Length(1, config.MaxShareRecipients),
			validation.Each(validation.By(validRecipient)),
		),
	)
}

func validateUpdateGrant(req *driveSvc.UpdateGrantRequest) error {
	if req.Permission == nil && req.SharedPublic == nil {
		return errors.New("at least one of permission or shared_public is required")
	}
	if req.Permission != nil {
		if _, err := models.ParsePermissionLevel(*req.Permission); err != nil {
			return fmt.Errorf("permission: %w", err)
		}
	}
	return nil
}

func validateRefs(refs []models.ResourceRef) error {
	return validation.Validate(refs,
		validation.Required,
		validation.Length(1, config.MaxGranteeLookupResources),
		validation.Each(validation.By(func(value any) error {
			ref, _ := value.(models.ResourceRef)
			if ref.ID == "" {
				return errors.New("item_id is required")
			}
			return validResourceKind(string(ref.Kind))
		})),
	)
}

func validResourceKind(value any) error {
	s, _ := value.(string)
	_, err := models.ParseResourceKind(s)
	return err
}

func validRecipient(value any) error {
	r, ok := value.(driveSvc.ShareRecipient)
	if !ok {
		return errors.New("invalid recipient")
	}
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.EmailFormat),
		validation.Field(&r.Permission, validation.Required, validation.By(func(value any) error {
			s, _ := value.(string)
			_, err := models.ParsePermissionLevel(s)
			return err
		})),
	)
}

// normalizeEmail lowercases and trims so grants match the authenticated principal
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
