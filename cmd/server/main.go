package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"ogarx/internal/batch"
	"ogarx/internal/config"
	noopemail "ogarx/internal/email/noop"
	sesemail "ogarx/internal/email/ses"
	"ogarx/internal/handler"
	"ogarx/internal/invoker"
	_ "ogarx/internal/invoker/claude"
	_ "ogarx/internal/invoker/gemini"
	_ "ogarx/internal/invoker/openai"
	"ogarx/internal/port"
	"ogarx/internal/prompt"
	"ogarx/internal/raster"
	"ogarx/internal/repository/memory"
	"ogarx/internal/repository/postgres"
	"ogarx/internal/router"
	"ogarx/internal/service"
	s3storage "ogarx/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize user store
	var db *sqlx.DB
	var userRepo port.UserRepository
	switch cfg.Auth.Store {
	case "postgres":
		db, err = postgres.NewDB(&cfg.DB)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()
		userRepo = postgres.NewUserRepo(db)
	case "memory", "":
		userRepo = memory.NewUserRepo()
	default:
		return fmt.Errorf("unknown auth store: %s", cfg.Auth.Store)
	}

	// Initialize storage
	var storage port.ObjectStorage
	if cfg.S3.Enabled() {
		storage, err = s3storage.NewS3Client(&cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 client: %w", err)
		}
	} else {
		log.Println("S3 bucket not configured, storage extraction and export publishing disabled")
	}

	// Initialize email sender
	var emailSender port.EmailSender
	if cfg.Email.Provider == "ses" {
		emailSender, err = sesemail.NewSESSender(cfg.Email.Region, cfg.Email.FromAddress, cfg.Email.FromName)
		if err != nil {
			return fmt.Errorf("failed to initialize SES sender: %w", err)
		}
	} else {
		emailSender = noopemail.NewNoopSender()
	}

	// Initialize model client; the server still starts without one
	var modelName string
	inv, err := invoker.New(&cfg.Model)
	if err != nil {
		log.Printf("WARNING: model client unavailable, extraction disabled: %v", err)
		inv = nil
	} else {
		modelName = inv.Name()
	}

	promptText, err := prompt.Load(cfg.Extraction.PromptFile)
	if err != nil {
		return err
	}

	rasterizer := raster.New(raster.Config{
		Pdftoppm:    cfg.Raster.Pdftoppm,
		DPI:         cfg.Raster.DPI,
		MaxPages:    cfg.Raster.MaxPages,
		MaxPixelDim: cfg.Raster.MaxPixelDim,
		TempDir:     cfg.Raster.TempDir,
	})

	// Initialize services
	identitySvc := service.NewIdentityService(userRepo, emailSender)
	authSvc := service.NewAuthService(identitySvc, cfg.JWT)
	extractionSvc := service.NewExtractionService(rasterizer, inv, storage, cfg.S3.Bucket, promptText, cfg.Extraction)
	exportSvc := service.NewExportService(storage, emailSender, cfg.S3.Bucket, cfg.Export)

	if cfg.Auth.SeedUsername != "" {
		seed := service.RegisterInput{
			Username: cfg.Auth.SeedUsername,
			Email:    cfg.Auth.SeedEmail,
			Password: cfg.Auth.SeedPassword,
		}
		if err := identitySvc.EnsureUser(context.Background(), seed); err != nil {
			return fmt.Errorf("failed to seed user: %w", err)
		}
	}

	registry := batch.NewRegistry(cfg.Session.BatchTTL, cfg.Session.CleanupInterval)

	// Initialize handlers
	authH := handler.NewAuthHandler(authSvc, identitySvc)
	extractionH := handler.NewExtractionHandler(extractionSvc, registry, cfg.Extraction.MaxFiles)
	batchH := handler.NewBatchHandler(exportSvc, registry)
	healthH := handler.NewHealthHandler(db, registry, modelName)

	// Setup router
	r := router.Setup(authSvc, authH, extractionH, batchH, healthH,
		cfg.CORS.AllowedOrigins, cfg.Extraction.MaxFileSizeMB*1024*1024)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
