package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the drive tables if they don't exist.
//
// Cascades: deleting a folder removes its files, its grants and every
// structure edge touching it; deleting a file removes its grants. Child
// folders are never deleted through an edge.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames, logger *slog.Logger) error {
	statements := []struct {
		name string
		sql  string
	}{
		{"uuid extension", `CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`},
		{tables.Owners, fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				user_email TEXT PRIMARY KEY,
				user_name TEXT NOT NULL DEFAULT '',
				user_profile_image TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`, tables.Owners)},
		{tables.Folders, fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
				folder_name VARCHAR(255) NOT NULL,
				owner_email TEXT NOT NULL,
				is_root BOOLEAN NOT NULL DEFAULT FALSE,
				is_shared BOOLEAN NOT NULL DEFAULT FALSE,
				is_starred BOOLEAN NOT NULL DEFAULT FALSE,
				created_by TEXT NOT NULL,
				modified_by TEXT NOT NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`, tables.Folders)},
		{tables.Folders + " owner index", fmt.Sprintf(
			`CREATE INDEX IF NOT EXISTS %s_owner_idx ON %s (owner_email)`, tables.Folders, tables.Folders)},
		{tables.Files, fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
				file_name VARCHAR(255) NOT NULL,
				file_size BIGINT NOT NULL DEFAULT 0,
				file_type TEXT NOT NULL DEFAULT 'application/octet-stream',
				parent_folder_id UUID NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
				blob_key CHAR(64) NOT NULL,
				is_shared BOOLEAN NOT NULL DEFAULT FALSE,
				is_starred BOOLEAN NOT NULL DEFAULT FALSE,
				created_by TEXT NOT NULL,
				modified_by TEXT NOT NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`, tables.Files, tables.Folders)},
		{tables.Files + " parent index", fmt.Sprintf(
			`CREATE INDEX IF NOT EXISTS %s_parent_idx ON %s (parent_folder_id)`, tables.Files, tables.Files)},
		{tables.Files + " blob index", fmt.Sprintf(
			`CREATE INDEX IF NOT EXISTS %s_blob_idx ON %s (blob_key)`, tables.Files, tables.Files)},
		{tables.FolderStructure, fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				parent_folder_id UUID NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
				child_folder_id UUID NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				PRIMARY KEY (parent_folder_id, child_folder_id),
				CHECK (parent_folder_id <> child_folder_id)
			)`, tables.FolderStructure, tables.Folders, tables.Folders)},
		{tables.FolderStructure + " child index", fmt.Sprintf(
			`CREATE INDEX IF NOT EXISTS %s_child_idx ON %s (child_folder_id)`, tables.FolderStructure, tables.FolderStructure)},
		// No unique key on (resource, grantee): repeated grants accumulate
		{tables.AccessGrants, fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
				folder_id UUID REFERENCES %s(id) ON DELETE CASCADE,
				file_id UUID REFERENCES %s(id) ON DELETE CASCADE,
				shared_with TEXT NOT NULL,
				permission TEXT NOT NULL CHECK (permission IN ('read', 'write', 'admin')),
				shared_public BOOLEAN NOT NULL DEFAULT FALSE,
				shared_by TEXT NOT NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				CHECK (num_nonnulls(folder_id, file_id) = 1)
			)`, tables.AccessGrants, tables.Folders, tables.Files)},
		{tables.AccessGrants + " folder index", fmt.Sprintf(
			`CREATE INDEX IF NOT EXISTS %s_folder_idx ON %s (folder_id, shared_with)`, tables.AccessGrants, tables.AccessGrants)},
		{tables.AccessGrants + " file index", fmt.Sprintf(
			`CREATE INDEX IF NOT EXISTS %s_file_idx ON %s (file_id, shared_with)`, tables.AccessGrants, tables.AccessGrants)},
		{tables.AccessGrants + " grantee index", fmt.Sprintf(
			`CREATE INDEX IF NOT EXISTS %s_grantee_idx ON %s (shared_with)`, tables.AccessGrants, tables.AccessGrants)},
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt.sql); err != nil {
			return fmt.Errorf("create %s: %w", stmt.name, err)
		}
		logger.Debug("schema statement applied", "name", stmt.name)
	}
	return nil
}

// DropSchema drops every drive table for the configured prefix
func DropSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames, logger *slog.Logger) error {
	for _, table := range tables.All() {
		if _, err := pool.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", table)); err != nil {
			return fmt.Errorf("drop %s: %w", table, err)
		}
		logger.Info("dropped table", "table", table)
	}
	return nil
}
