package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/TheNeikos/neikos.moe/internal/config"
	"github.com/TheNeikos/neikos.moe/internal/domain/image"
	"github.com/TheNeikos/neikos.moe/internal/middleware"
	"github.com/TheNeikos/neikos.moe/internal/pkg/database"
	"github.com/TheNeikos/neikos.moe/internal/pkg/imaging"
	"github.com/TheNeikos/neikos.moe/internal/pkg/logger"
	"github.com/TheNeikos/neikos.moe/internal/pkg/response"
	"github.com/TheNeikos/neikos.moe/internal/pkg/storage"
)

func main() {
	cfg := config.Load()
	logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env})

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Str("storage", cfg.StorageBackend).
		Msg("Starting image API")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	if err := image.EnsureSchema(context.Background(), db); err != nil {
		log.Fatal().Err(err).Msg("Failed to ensure database schema")
	}

	rdb, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(rdb)

	store, err := newStorage(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create storage backend")
	}

	codec := imaging.NewCodec(cfg.JPEGQuality)

	imageRepo := image.NewRepository(db)
	placer := image.NewPlacer(codec, store, cfg.InlineMaxDimension)
	imageService := image.NewService(imageRepo, store, codec, placer, rdb, cfg.MaxUploadBytes)
	imageHandler := image.NewHandler(imageService, cfg.MaxUploadBytes)

	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))
	r.Use(chimw.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.OK(w, map[string]string{
			"status":  "ok",
			"version": "1.0.0",
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))
		r.Mount("/images", imageHandler.Routes())
	})

	// The local backend serves uploaded files itself; S3 and R2 hand out
	// their own public URLs.
	if local, ok := store.(*storage.LocalStorage); ok {
		prefix := strings.TrimSuffix(cfg.UploadsBaseURL, "/") + "/"
		files := http.StripPrefix(prefix, http.FileServer(http.Dir(local.BasePath())))
		r.Get(prefix+"*", files.ServeHTTP)
	}

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}

// newStorage picks the storage backend from configuration.
func newStorage(cfg *config.Config) (storage.Storage, error) {
	switch cfg.StorageBackend {
	case "s3":
		return storage.NewS3Storage(storage.S3Config{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	case "r2":
		return storage.NewR2Storage(storage.R2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			AccessKeySecret: cfg.R2AccessKeySecret,
			BucketName:      cfg.R2BucketName,
			PublicURL:       cfg.R2PublicURL,
		})
	default:
		return storage.NewLocalStorage(cfg.UploadsDir, cfg.UploadsBaseURL)
	}
}
