package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"

	"studiodrive/internal/config"
	models "studiodrive/internal/domain/models/drive"
	"studiodrive/internal/domain/repositories"
	driveSvc "studiodrive/internal/domain/services/drive"
	"studiodrive/internal/notify"
	"studiodrive/internal/repository/postgres"
	postgresDrive "studiodrive/internal/repository/postgres/drive"
	authService "studiodrive/internal/service/auth"
	driveService "studiodrive/internal/service/drive"
	"studiodrive/internal/storage"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

// silentHub drops realtime events; nobody is connected during seeding
type silentHub struct{}

func (silentHub) Broadcast(string, any, ...string) {}

func main() {
	// Parse command-line flags
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed drive data")
	clearData := flag.Bool("clear-data", false, "Delete all folders, files and grants (keep schema and owners)")
	flag.Parse()

	// Load .env file
	_ = godotenv.Load()

	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && (*dropTables || *clearData) {
		log.Fatalf("🚫 BLOCKED: Cannot run destructive operations (--drop-tables or --clear-data) in production environment")
	}
	if cfg.DatabaseURL == "" {
		log.Fatalf("DATABASE_URL is required")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	switch {
	case *clearData:
		log.Printf("🧹 Clearing drive data (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	case *schemaOnly:
		log.Printf("🏗️  Setting up schema only (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	default:
		log.Printf("🌱 Seeding drive (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	}

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)

	if *dropTables {
		log.Println("🗑️  Dropping all tables...")
		if err := postgres.DropSchema(ctx, pool, tables, logger); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		log.Println("✅ Tables dropped")
	}

	log.Println("📋 Ensuring database schema is up to date...")
	if err := postgres.EnsureSchema(ctx, pool, tables, logger); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}
	log.Println("✅ Schema ready")

	if *schemaOnly {
		log.Println("✅ Schema setup complete (schema-only mode)")
		return
	}

	if *clearData {
		if err := clearDriveData(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to clear data: %v", err)
		}
		log.Println("✅ Data cleared successfully")
		return
	}

	log.Println("👤 Upserting owner profiles...")
	for _, p := range seedProfiles {
		if err := upsertProfile(ctx, pool, tables, p); err != nil {
			log.Fatalf("Failed to upsert profile %s: %v", p.Email, err)
		}
	}

	var blobStore repositories.BlobStore = storage.NewMemoryStore()
	if cfg.Blob.Enabled() {
		blobStore, err = storage.NewMinIOStore(ctx, cfg.Blob, logger)
		if err != nil {
			log.Fatalf("Failed to connect blob store: %v", err)
		}
	} else {
		log.Println("⚠️  BLOB_ENDPOINT not set, seeded file content will not be downloadable")
	}

	templates, err := notify.LoadTemplates(cfg.AppBaseURL)
	if err != nil {
		log.Fatalf("Failed to load templates: %v", err)
	}

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	folderRepo := postgresDrive.NewFolderRepository(repoConfig)
	structureRepo := postgresDrive.NewFolderStructureRepository(repoConfig)
	fileRepo := postgresDrive.NewFileRepository(repoConfig)
	grantRepo := postgresDrive.NewGrantRepository(repoConfig)
	profileRepo := postgresDrive.NewProfileRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool, logger)

	// Seed through the service layer so permissions and flags stay consistent
	evaluator := authService.NewGrantEvaluator(folderRepo, fileRepo, grantRepo, logger)
	folderService := driveService.NewFolderService(folderRepo, structureRepo, fileRepo, blobStore, evaluator, txManager, silentHub{}, logger)
	fileService := driveService.NewFileService(fileRepo, blobStore, evaluator, txManager, silentHub{}, logger)
	sharingService := driveService.NewSharingService(folderRepo, fileRepo, grantRepo, profileRepo, evaluator, txManager,
		notify.NewLogNotifier(templates, logger), silentHub{}, logger)

	owner := seedProfiles[0].Email
	roots := map[string]*models.Folder{}
	for _, name := range []string{"Sessions", "Artwork"} {
		folder, err := folderService.CreateFolder(ctx, owner, &driveSvc.CreateFolderRequest{Name: name, IsRoot: true})
		if err != nil {
			log.Fatalf("❌ Failed to create folder %q: %v", name, err)
		}
		roots[name] = folder
		log.Printf("✅ Created folder %s (ID: %s)", name, folder.ID)
	}

	takes, err := folderService.CreateFolder(ctx, owner, &driveSvc.CreateFolderRequest{
		Name:           "Takes",
		ParentFolderID: &roots["Sessions"].ID,
	})
	if err != nil {
		log.Fatalf("❌ Failed to create subfolder: %v", err)
	}
	log.Printf("✅ Created subfolder Sessions/Takes (ID: %s)", takes.ID)

	for _, f := range seedFiles {
		file, err := fileService.UploadFile(ctx, owner, &driveSvc.UploadFileRequest{
			ParentFolderID: roots[f.folder].ID,
			Name:           f.name,
			Content:        []byte(f.content),
		})
		if err != nil {
			log.Printf("❌ Failed to upload %s/%s: %v", f.folder, f.name, err)
			continue
		}
		log.Printf("✅ Uploaded %s/%s (ID: %s, type: %s)", f.folder, f.name, file.ID, file.Type)
	}

	_, err = sharingService.Share(ctx, owner, &driveSvc.ShareRequest{
		ItemID:   roots["Sessions"].ID,
		ItemType: string(models.KindFolder),
		ShareWith: []driveSvc.ShareRecipient{
			{Email: seedProfiles[1].Email, Permission: string(models.PermissionWrite)},
			{Email: seedProfiles[2].Email, Permission: string(models.PermissionRead)},
		},
	})
	if err != nil {
		log.Fatalf("❌ Failed to share Sessions: %v", err)
	}
	log.Printf("✅ Shared Sessions with %s (write) and %s (read)", seedProfiles[1].Email, seedProfiles[2].Email)

	log.Println("🎉 Seeding complete!")
}

var seedProfiles = []models.Profile{
	{Email: "producer@studio.local", Name: "Producer"},
	{Email: "engineer@studio.local", Name: "Engineer"},
	{Email: "artist@studio.local", Name: "Artist"},
}

type seedFile struct {
	folder  string
	name    string
	content string
}

var seedFiles = []seedFile{
	{"Sessions", "tracklist.txt", "1. Intro\n2. Verse\n3. Outro\n"},
	{"Sessions", "session-notes.md", "# Day 1\n\nDrums tracked, bass overdubs tomorrow.\n"},
	{"Artwork", "palette.json", `{"primary":"#1d3557","accent":"#e63946"}`},
}

// upsertProfile writes a display profile into the owners table
func upsertProfile(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames, p models.Profile) error {
	query := `
		INSERT INTO ` + tables.Owners + ` (user_email, user_name, user_profile_image)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_email) DO UPDATE SET user_name = EXCLUDED.user_name
	`
	_, err := pool.Exec(ctx, query, p.Email, p.Name, p.ProfileImage)
	return err
}

// clearDriveData deletes every folder; files, grants and edges follow by cascade
func clearDriveData(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	_, err := pool.Exec(ctx, "DELETE FROM "+tables.Folders)
	return err
}
