package config

const (
	// MaxFolderNameLength is the maximum length for folder names.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255).
	MaxFolderNameLength = 255

	// MaxFileNameLength is the maximum length for file names.
	// Same as folder names for consistency.
	MaxFileNameLength = 255

	// MaxShareRecipients bounds a single batch share request.
	MaxShareRecipients = 100

	// MaxGranteeLookupResources bounds a single batch grantee/avatar lookup.
	MaxGranteeLookupResources = 500

	// DefaultMaxUploadBytes is the 200mb request body limit.
	DefaultMaxUploadBytes = 200 << 20
)
