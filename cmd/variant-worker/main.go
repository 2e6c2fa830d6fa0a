package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/TheNeikos/neikos.moe/internal/config"
	"github.com/TheNeikos/neikos.moe/internal/domain/image"
	"github.com/TheNeikos/neikos.moe/internal/pkg/database"
	"github.com/TheNeikos/neikos.moe/internal/pkg/imaging"
	"github.com/TheNeikos/neikos.moe/internal/pkg/logger"
	"github.com/TheNeikos/neikos.moe/internal/pkg/storage"
)

// listLimit caps how many originals a single cycle inspects.
const listLimit = 100

type worker struct {
	cfg   *config.Config
	repo  image.Repository
	store storage.Storage
	svc   *image.Service
}

func main() {
	cfg := config.Load()
	logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env})

	log.Info().
		Str("storage", cfg.StorageBackend).
		Ints("prewarm_sizes", cfg.PrewarmSizes).
		Dur("interval", cfg.WorkerInterval).
		Msg("Starting variant-worker")

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
	repo := image.NewRepository(db)
	placer := image.NewPlacer(codec, store, cfg.InlineMaxDimension)

	// The worker never ingests, so it never publishes wake-ups itself.
	svc := image.NewService(repo, store, codec, placer, nil, cfg.MaxUploadBytes)

	w := &worker{cfg: cfg, repo: repo, store: store, svc: svc}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Optional: Redis pub/sub wake-up (polling still runs)
	wake := make(chan struct{}, 1)
	if rdb != nil {
		go subscribeWakeups(ctx, rdb, wake)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		<-sigChan
		log.Info().Msg("Shutdown signal received")
		cancel()
	}()

	ticker := time.NewTicker(cfg.WorkerInterval)
	defer ticker.Stop()

	w.runCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("variant-worker stopped")
			return
		case <-wake:
			// immediate cycle
		case <-ticker.C:
		}

		w.runCycle(ctx)
	}
}

func (w *worker) runCycle(ctx context.Context) {
	start := time.Now()

	ensured, failed := w.prewarmVariants(ctx)
	removed := w.sweepOrphans(ctx)

	log.Debug().
		Int("variants", ensured).
		Int("failed", failed).
		Int("orphans_removed", removed).
		Dur("took", time.Since(start)).
		Msg("Cycle complete")
}

// prewarmVariants makes sure every recent original has a variant for each
// configured size. Resolving is idempotent: existing variants and originals
// that already fit are returned as-is, so repeat cycles are cheap.
func (w *worker) prewarmVariants(ctx context.Context) (ensured, failed int) {
	since := time.Now().Add(-w.cfg.PrewarmWindow)
	originals, err := w.repo.ListRecentOriginals(ctx, since, listLimit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list recent originals")
		return 0, 0
	}

	for _, original := range originals {
		if ctx.Err() != nil {
			return ensured, failed
		}

		if original.Kind == image.KindFileBacked {
			ok, err := w.store.Exists(ctx, original.Locator)
			if err != nil {
				log.Error().Err(err).Int64("image_id", original.ID).Msg("Failed to check original in storage")
				continue
			}
			if !ok {
				log.Warn().
					Int64("image_id", original.ID).
					Str("locator", original.Locator).
					Msg("Original file missing from storage, skipping")
				continue
			}
		}

		for _, size := range w.cfg.PrewarmSizes {
			if _, err := w.svc.Resolve(ctx, original, size, size); err != nil {
				failed++
				log.Error().
					Err(err).
					Int64("image_id", original.ID).
					Int("size", size).
					Msg("Failed to prewarm variant")
				continue
			}
			ensured++
		}
	}

	return ensured, failed
}

// sweepOrphans deletes stored files old enough to be settled that no image
// row references. Backends that clean up via lifecycle rules list nothing.
func (w *worker) sweepOrphans(ctx context.Context) int {
	stale, err := w.store.ListOlderThan(ctx, w.cfg.OrphanMaxAge)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list stale files")
		return 0
	}

	removed := 0
	for _, key := range stale {
		if ctx.Err() != nil {
			return removed
		}

		referenced, err := w.repo.ExistsByFileLocator(ctx, key)
		if err != nil {
			log.Error().Err(err).Str("key", key).Msg("Failed to check file reference")
			continue
		}
		if referenced {
			continue
		}

		if err := w.store.Delete(ctx, key); err != nil {
			log.Error().Err(err).Str("key", key).Msg("Failed to delete orphaned file")
			continue
		}

		removed++
		log.Info().Str("key", key).Msg("Deleted orphaned file")
	}

	return removed
}

func subscribeWakeups(ctx context.Context, rdb *redis.Client, wake chan<- struct{}) {
	// Polling still runs; pub/sub only shortens the wait.
	sub := rdb.Subscribe(ctx, image.WakeChannel)
	defer func() { _ = sub.Close() }()

	for {
		select {
		case <-ctx.Done():
			return
		case <-sub.Channel():
			// non-blocking wake-up
			select {
			case wake <- struct{}{}:
			default:
			}
		}
	}
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
