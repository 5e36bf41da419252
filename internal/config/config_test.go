package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestGetTablePrefix(t *testing.T) {
	tests := []struct {
		env      string
		override string
		want     string
	}{
		{"dev", "", "dev_"},
		{"test", "", "test_"},
		{"prod", "", "prod_"},
		{"staging", "", "dev_"},
		{"prod", "local_", "local_"},
	}
	for _, tt := range tests {
		t.Run(tt.env+"/"+tt.override, func(t *testing.T) {
			t.Setenv("TABLE_PREFIX", tt.override)
			if got := getTablePrefix(tt.env); got != tt.want {
				t.Errorf("getTablePrefix(%q) = %q, want %q", tt.env, got, tt.want)
			}
		})
	}
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("SD_INT_OK", "42")
	t.Setenv("SD_INT_BAD", "forty")

	if got := getEnvInt("SD_INT_OK", 1); got != 42 {
		t.Errorf("valid value = %d, want 42", got)
	}
	if got := getEnvInt("SD_INT_BAD", 7); got != 7 {
		t.Errorf("malformed value = %d, want default 7", got)
	}
	if got := getEnvInt("SD_INT_UNSET", 9); got != 9 {
		t.Errorf("unset value = %d, want default 9", got)
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("TABLE_PREFIX", "")
	t.Setenv("PORT", "9090")
	t.Setenv("BLOB_ENDPOINT", "localhost:9000")
	t.Setenv("BLOB_USE_SSL", "true")
	t.Setenv("SMTP_HOST", "")
	t.Setenv("MAX_UPLOAD_BYTES", "1024")

	cfg := Load()

	if cfg.Port != "9090" || cfg.TablePrefix != "test_" {
		t.Errorf("Port, TablePrefix = %q, %q", cfg.Port, cfg.TablePrefix)
	}
	wantBlob := BlobConfig{Endpoint: "localhost:9000", Bucket: "studio-drive", UseSSL: true}
	wantBlob.AccessKey = cfg.Blob.AccessKey
	wantBlob.SecretKey = cfg.Blob.SecretKey
	if diff := cmp.Diff(wantBlob, cfg.Blob); diff != "" {
		t.Errorf("Blob mismatch (-want +got):\n%s", diff)
	}
	if !cfg.Blob.Enabled() {
		t.Error("Blob.Enabled() = false with an endpoint set")
	}
	if cfg.Mail.Enabled() {
		t.Error("Mail.Enabled() = true without SMTP_HOST")
	}
	if cfg.MaxUploadBytes != 1024 {
		t.Errorf("MaxUploadBytes = %d, want 1024", cfg.MaxUploadBytes)
	}
}

func TestCleanupOldLogs(t *testing.T) {
	dir := t.TempDir()
	names := []string{
		"studiodrive-2026-01-01T00-00-00.log",
		"studiodrive-2026-01-02T00-00-00.log",
		"studiodrive-2026-01-03T00-00-00.log",
		"unrelated.log",
	}
	for _, n := range names {
		if err := os.WriteFile(filepath.Join(dir, n), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	if err := cleanupOldLogs(dir, 2); err != nil {
		t.Fatalf("cleanupOldLogs: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, e := range entries {
		got = append(got, e.Name())
	}
	want := []string{
		"studiodrive-2026-01-02T00-00-00.log",
		"studiodrive-2026-01-03T00-00-00.log",
		"unrelated.log",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("remaining files (-want +got):\n%s", diff)
	}
}
