package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port        string
	Environment string
	DatabaseURL string
	CORSOrigins string
	TablePrefix string
	// Auth
	JWTJWKSURL string // RS256/ES256 keys; takes precedence over JWTSecret
	JWTSecret  string // HS256 shared secret
	// Blob storage (MinIO / S3 compatible)
	Blob BlobConfig
	// Outgoing mail for share notifications
	Mail MailConfig
	// AppBaseURL is used for links in notification emails
	AppBaseURL string
	// MaxUploadBytes caps a single file upload
	MaxUploadBytes int64
	// Optional rotated log files
	LogDir      string
	LogMaxFiles int
}

// BlobConfig holds object storage settings
type BlobConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Enabled reports whether an object store endpoint is configured
func (b BlobConfig) Enabled() bool {
	return b.Endpoint != ""
}

// MailConfig holds SMTP settings
type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Enabled reports whether an SMTP relay is configured
func (m MailConfig) Enabled() bool {
	return m.Host != ""
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: env,
		DatabaseURL: getEnv("DATABASE_URL", ""),
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000"),
		TablePrefix: getTablePrefix(env),
		JWTJWKSURL:  getEnv("JWT_JWKS_URL", ""),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		Blob: BlobConfig{
			Endpoint:  getEnv("BLOB_ENDPOINT", ""),
			AccessKey: getEnv("BLOB_ACCESS_KEY", ""),
			SecretKey: getEnv("BLOB_SECRET_KEY", ""),
			Bucket:    getEnv("BLOB_BUCKET", "studio-drive"),
			UseSSL:    getEnv("BLOB_USE_SSL", "false") == "true",
		},
		Mail: MailConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnvInt("SMTP_PORT", 587),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("MAIL_FROM", "no-reply@studio.local"),
		},
		AppBaseURL:     getEnv("APP_BASE_URL", "http://localhost:3000"),
		MaxUploadBytes: int64(getEnvInt("MAX_UPLOAD_BYTES", DefaultMaxUploadBytes)),
		LogDir:         getEnv("LOG_DIR", ""),
		LogMaxFiles:    getEnvInt("LOG_MAX_FILES", 10),
	}
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
