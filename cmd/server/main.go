package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"studiodrive/internal/auth"
	"studiodrive/internal/config"
	"studiodrive/internal/domain/repositories"
	driveRepo "studiodrive/internal/domain/repositories/drive"
	"studiodrive/internal/domain/services"
	"studiodrive/internal/handler"
	"studiodrive/internal/middleware"
	"studiodrive/internal/notify"
	"studiodrive/internal/realtime"
	"studiodrive/internal/repository/memory"
	"studiodrive/internal/repository/postgres"
	postgresDrive "studiodrive/internal/repository/postgres/drive"
	authService "studiodrive/internal/service/auth"
	driveService "studiodrive/internal/service/drive"
	"studiodrive/internal/storage"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

// stores bundles the repositories the services are built from
type stores struct {
	folders   driveRepo.FolderRepository
	structure driveRepo.FolderStructureRepository
	files     driveRepo.FileRepository
	grants    driveRepo.GrantRepository
	profiles  driveRepo.ProfileRepository
	tx        repositories.TransactionManager
	pinger    handler.Pinger
	close     func()
}

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	logger, logCloser, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to setup logging: %v", err)
	}
	defer logCloser.Close()
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	jwtVerifier, err := auth.NewJWTVerifier(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to create JWT verifier: %v", err)
	}
	defer jwtVerifier.Close()

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to open stores: %v", err)
	}
	defer st.close()

	var blobStore repositories.BlobStore
	if cfg.Blob.Enabled() {
		blobStore, err = storage.NewMinIOStore(ctx, cfg.Blob, logger)
		if err != nil {
			log.Fatalf("Failed to connect blob store: %v", err)
		}
	} else {
		logger.Warn("BLOB_ENDPOINT not set, file content is kept in memory")
		blobStore = storage.NewMemoryStore()
	}

	templates, err := notify.LoadTemplates(cfg.AppBaseURL)
	if err != nil {
		log.Fatalf("Failed to load notification templates: %v", err)
	}
	var delivery services.ShareNotifier
	if cfg.Mail.Enabled() {
		delivery = notify.NewSMTPNotifier(cfg.Mail, templates, logger)
	} else {
		logger.Warn("SMTP_HOST not set, share notifications are only logged")
		delivery = notify.NewLogNotifier(templates, logger)
	}
	notifier := notify.NewAsyncNotifier(delivery, logger)

	origins := strings.Split(cfg.CORSOrigins, ",")
	hub := realtime.NewHub(origins, logger)

	// Services
	evaluator := authService.NewGrantEvaluator(st.folders, st.files, st.grants, logger)
	folderService := driveService.NewFolderService(st.folders, st.structure, st.files, blobStore, evaluator, st.tx, hub, logger)
	fileService := driveService.NewFileService(st.files, blobStore, evaluator, st.tx, hub, logger)
	sharingService := driveService.NewSharingService(st.folders, st.files, st.grants, st.profiles, evaluator, st.tx, notifier, hub, logger)
	starService := driveService.NewStarService(st.folders, st.files, evaluator, st.tx, logger)

	logger.Info("services initialized")

	routes := &handler.Routes{
		Health:   handler.NewHealthHandler(st.pinger),
		Folders:  handler.NewFolderHandler(folderService, logger),
		Files:    handler.NewFileHandler(fileService, cfg.MaxUploadBytes, logger),
		Sharing:  handler.NewSharingHandler(sharingService, logger),
		Stars:    handler.NewStarHandler(starService, logger),
		Realtime: http.HandlerFunc(hub.ServeWS),
	}

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()
	routes.Register(mux)

	// Build middleware chain
	var h http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → RequestLogger → Auth → Routes
	h = middleware.AuthMiddleware(jwtVerifier, logger)(h)
	h = middleware.RequestLogger(logger)(h)
	h = middleware.Recovery(logger)(h)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  60 * time.Second, // uploads
		WriteTimeout: 0,                // Disabled for downloads and websockets
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	notifier.Wait()
	logger.Info("server stopped")
}

// openStores connects PostgreSQL when DATABASE_URL is set and falls back to the
// in-memory store otherwise.
func openStores(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*stores, error) {
	if cfg.DatabaseURL == "" {
		logger.Warn("DATABASE_URL not set, using the in-memory store (data is lost on restart)")
		mem := memory.NewStore()
		return &stores{
			folders:   mem.Folders(),
			structure: mem.Structure(),
			files:     mem.Files(),
			grants:    mem.Grants(),
			profiles:  mem.Profiles(),
			tx:        mem.TxManager(),
			close:     func() {},
		}, nil
	}

	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	stat := pool.Stat()
	logger.Info("database connected",
		"max_conns", stat.MaxConns(),
		"total_conns", stat.TotalConns(),
	)

	tables := postgres.NewTableNames(cfg.TablePrefix)
	if err := postgres.EnsureSchema(ctx, pool, tables, logger); err != nil {
		pool.Close()
		return nil, err
	}

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	return &stores{
		folders:   postgresDrive.NewFolderRepository(repoConfig),
		structure: postgresDrive.NewFolderStructureRepository(repoConfig),
		files:     postgresDrive.NewFileRepository(repoConfig),
		grants:    postgresDrive.NewGrantRepository(repoConfig),
		profiles:  postgresDrive.NewProfileRepository(repoConfig),
		tx:        postgres.NewTransactionManager(pool, logger),
		pinger:    pool,
		close:     pool.Close,
	}, nil
}
