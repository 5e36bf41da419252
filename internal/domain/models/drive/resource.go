package drive

import "fmt"

// ResourceKind distinguishes the two resource types of the drive
type ResourceKind string

const (
	KindFolder ResourceKind = "folder"
	KindFile   ResourceKind = "file"
)

// ParseResourceKind accepts the singular and plural forms used by the HTTP surface
func ParseResourceKind(s string) (ResourceKind, error) {
	switch s {
	case "folder", "folders":
		return KindFolder, nil
	case "file", "files":
		return KindFile, nil
	default:
		return "", fmt.Errorf("invalid item type %q (supported: folder, file)", s)
	}
}

// ResourceRef identifies a folder or a file
type ResourceRef struct {
	Kind ResourceKind `json:"item_type"`
	ID   string       `json:"item_id"`
}

func FolderRef(id string) ResourceRef { return ResourceRef{Kind: KindFolder, ID: id} }
func FileRef(id string) ResourceRef   { return ResourceRef{Kind: KindFile, ID: id} }

func (r ResourceRef) String() string {
	return string(r.Kind) + ":" + r.ID
}
