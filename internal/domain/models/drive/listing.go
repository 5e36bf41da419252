package drive

// SharedFolder is a folder shared with the principal, annotated with who shared it
type SharedFolder struct {
	Folder
	SharedBy             string          `json:"shared_by"`
	SharedByProfileImage string          `json:"shared_by_profile_image,omitempty"`
	Permission           PermissionLevel `json:"permission"`
}

// SharedFile is a file shared with the principal, annotated with who shared it
type SharedFile struct {
	File
	SharedBy             string          `json:"shared_by"`
	SharedByProfileImage string          `json:"shared_by_profile_image,omitempty"`
	Permission           PermissionLevel `json:"permission"`
}

// SharedWithMe is the "shared with me" listing
type SharedWithMe struct {
	Folders []SharedFolder `json:"shared_folders"`
	Files   []SharedFile   `json:"shared_files"`
}

// SharedByMe is the "shared by me" listing
type SharedByMe struct {
	Folders []Folder `json:"shared_folders"`
	Files   []File   `json:"shared_files"`
}

// StarredItems is the starred listing
type StarredItems struct {
	Folders []Folder `json:"starred_folders"`
	Files   []File   `json:"starred_files"`
}
