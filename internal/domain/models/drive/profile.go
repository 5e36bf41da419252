package drive

// Profile is the display identity of a principal, read from the owners table
type Profile struct {
	Email        string `json:"user_email" db:"user_email"`
	Name         string `json:"user_name" db:"user_name"`
	ProfileImage string `json:"user_profile_image,omitempty" db:"user_profile_image"`
}

// GranteeProfile is a grant joined with the grantee's display profile
type GranteeProfile struct {
	Grant
	Name         string `json:"user_name,omitempty"`
	ProfileImage string `json:"user_profile_image,omitempty"`
}

// ResourceGrantees lists the grantees of one resource
type ResourceGrantees struct {
	ResourceRef
	Grantees []GranteeProfile `json:"grantees"`
}
