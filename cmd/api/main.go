package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"campus-connect-backend/config"
	_ "campus-connect-backend/docs" // registers swagger docs
	v1 "campus-connect-backend/internal/delivery/http/v1"
	"campus-connect-backend/internal/domain"
	"campus-connect-backend/internal/repository/memory"
	"campus-connect-backend/internal/repository/postgres"
	"campus-connect-backend/internal/usecase"
	"campus-connect-backend/pkg/database"
	"campus-connect-backend/pkg/logger"
	"campus-connect-backend/pkg/redis"
	"campus-connect-backend/pkg/security"
	"campus-connect-backend/pkg/security/antivirus"
	"campus-connect-backend/pkg/storage"
	"campus-connect-backend/pkg/validation"

	"github.com/gin-gonic/gin"
)

// @title           Campus Connect API
// @version         1.0
// @description     Student profile service: profile, address, education, experience, achievements, certifications and resume.
// @host            localhost:8080
// @BasePath        /v1
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Loggers
	logger.Init(cfg.LogLevel)
	audit := security.NewAuditLogger("campus-connect-backend", cfg.Environment)
	security.SetDefaultAudit(audit)
	defer audit.Sync()
	logger.Log.Info("Starting campus connect backend", "port", cfg.Port, "env", cfg.Environment)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()
	checks := map[string]usecase.HealthCheck{}

	// 3. Setup Persistence
	var uow domain.UnitOfWork
	if cfg.DBUrl == "" {
		logger.Log.Warn("DATABASE_URL not configured, profiles are kept in memory only")
		uow = memory.NewStore()
	} else {
		dbPool, err := database.NewPostgresConnection(ctx, cfg.DBUrl)
		if err != nil {
			logger.Log.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer dbPool.Close()

		if cfg.RunMigrations {
			if err := database.RunMigrations(ctx, dbPool); err != nil {
				logger.Log.Error("Failed to migrate database", "error", err)
				os.Exit(1)
			}
		}
		uow = postgres.NewUnitOfWork(dbPool)
		checks["database"] = dbPool.Ping
	}

	// 4. Setup Redis (optional, rate limiting falls back to memory)
	if cfg.RedisURL != "" {
		if err := redis.Initialize(redis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword}); err != nil {
			logger.Log.Warn("Redis unavailable, rate limiting uses in-memory fallback", "error", err)
		} else {
			defer redis.Close()
			checks["redis"] = redis.HealthCheck
		}
	}

	// 5. Setup Resume Storage
	resumes, err := newResumeStorage(ctx, cfg)
	if err != nil {
		logger.Log.Error("Failed to set up resume storage", "error", err)
		os.Exit(1)
	}

	// 6. Setup Antivirus
	var scanner antivirus.Scanner = antivirus.NewNoOpScanner()
	if cfg.ClamAVAddress != "" {
		clam := antivirus.NewClamAVScanner(cfg.ClamAVAddress, cfg.ClamAVTimeout)
		if !clam.Available(ctx) {
			logger.Log.Warn("ClamAV not reachable at startup; uploads fail until it is", "address", cfg.ClamAVAddress)
		}
		scanner = clam
		checks["clamav"] = func(ctx context.Context) error {
			if !clam.Available(ctx) {
				return errors.New("clamd not reachable")
			}
			return nil
		}
	}

	// 7. Setup UseCases
	profileUC := usecase.NewStudentProfileUsecase(uow, resumes, validation.New())
	exportUC := usecase.NewProfileExportUsecase(profileUC)
	healthUC := usecase.NewHealthUsecase(checks)

	// 8. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		ProfileUC: profileUC,
		ExportUC:  exportUC,
		HealthUC:  healthUC,
		Scanner:   scanner,
		Config:    cfg,
	})

	// 9. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("Listen failed", "error", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}

func newResumeStorage(ctx context.Context, cfg *config.Config) (domain.ResumeStorage, error) {
	if cfg.ResumeStorage != "s3" {
		return storage.NewLocalResumeStorage(cfg.ResumeDir)
	}

	client, err := storage.NewS3Client(ctx, storage.S3Config{
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretKey,
		Region:          cfg.S3Region,
		Bucket:          cfg.S3Bucket,
		Endpoint:        cfg.S3Endpoint,
	})
	if err != nil {
		return nil, err
	}
	return storage.NewS3ResumeStorage(client, cfg.S3Bucket), nil
}
