package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"studiodrive/internal/domain/repositories"
)

// RepositoryConfig holds configuration for repository implementations
type RepositoryConfig struct {
	Pool   *pgxpool.Pool
	Tables *TableNames
	Logger *slog.Logger
}

// TableNames holds dynamically prefixed table names
type TableNames struct {
	Owners          string
	Folders         string
	Files           string
	FolderStructure string
	AccessGrants    string
}

// NewTableNames creates table names with the given prefix
func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		Owners:          fmt.Sprintf("%sowners", prefix),
		Folders:         fmt.Sprintf("%sfolders", prefix),
		Files:           fmt.Sprintf("%sfiles", prefix),
		FolderStructure: fmt.Sprintf("%sfolder_structure", prefix),
		AccessGrants:    fmt.Sprintf("%saccess_grants", prefix),
	}
}

// All returns every table, children before parents (safe drop order)
func (t *TableNames) All() []string {
	return []string{t.AccessGrants, t.FolderStructure, t.Files, t.Folders, t.Owners}
}

// CreateConnectionPool creates a pgx connection pool.
//
// PgBouncer in transaction pooling mode (port 6543) does not support prepared
// statements, so that port switches to QueryExecModeCacheDescribe unless the
// connection string already sets default_query_exec_mode.
//
// Table names are interpolated with fmt.Sprintf before the SQL reaches the
// server, so every prefix gets its own cached statements.
func CreateConnectionPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 2

	if config.ConnConfig.Port == 6543 && config.ConnConfig.DefaultQueryExecMode == pgx.QueryExecModeCacheStatement {
		config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheDescribe
		slog.Debug("auto-configured cache_describe mode for PgBouncer compatibility", "port", 6543)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// GetExecutor returns the transaction stored in ctx, or pool when there is none.
// Repositories call it on every query so they join an ExecTx transaction automatically.
func GetExecutor(ctx context.Context, pool *pgxpool.Pool) repositories.DBTX {
	if tx := repositories.GetTx(ctx); tx != nil {
		return tx
	}
	return pool
}

// RowLock returns the lock clause for a folder, file or grant row read during a
// permission check. Outside a transaction a lock would be released immediately,
// so it is omitted.
//
// FOR KEY SHARE keeps the row from being deleted until commit but lets the same
// or another transaction run non-key UPDATEs (is_shared, rename, star) on it.
// Under WithWriteIntent the row is about to be deleted or rewritten, so it is
// locked FOR UPDATE.
// Optional tables restrict the clause to those aliases of a join.
func RowLock(ctx context.Context, tables ...string) string {
	if !repositories.InTx(ctx) {
		return ""
	}
	if repositories.HasWriteIntent(ctx) {
		return lockClause("FOR UPDATE", tables)
	}
	return lockClause("FOR KEY SHARE", tables)
}

// KeyShareLock returns FOR KEY SHARE inside a transaction regardless of write intent
func KeyShareLock(ctx context.Context, tables ...string) string {
	if !repositories.InTx(ctx) {
		return ""
	}
	return lockClause("FOR KEY SHARE", tables)
}

// GrantLevelLock returns the lock clause for grant levels read by the evaluator.
// FOR SHARE also blocks a concurrent downgrade of the grant until commit.
func GrantLevelLock(ctx context.Context) string {
	if !repositories.InTx(ctx) {
		return ""
	}
	return "FOR SHARE"
}

func lockClause(mode string, tables []string) string {
	if len(tables) == 0 {
		return mode
	}
	return mode + " OF " + strings.Join(tables, ", ")
}

// ValidUUIDs filters ids down to well-formed UUIDs so ANY($1::uuid[]) never fails on client input
func ValidUUIDs(ids []string) []string {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, err := uuid.Parse(id); err == nil {
			valid = append(valid, id)
		}
	}
	return valid
}
