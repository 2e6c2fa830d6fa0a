package main

import (
	"testing"

	"github.com/TheNeikos/neikos.moe/internal/config"
	"github.com/TheNeikos/neikos.moe/internal/pkg/storage"
)

func TestNewStorageSelectsBackend(t *testing.T) {
	t.Run("local is the default", func(t *testing.T) {
		cfg := &config.Config{
			StorageBackend: "local",
			UploadsDir:     t.TempDir(),
			UploadsBaseURL: "/assets/uploads",
		}
		st, err := newStorage(cfg)
		if err != nil {
			t.Fatalf("create local storage: %v", err)
		}
		if _, ok := st.(*storage.LocalStorage); !ok {
			t.Fatalf("expected local storage, got %T", st)
		}
	})

	t.Run("unknown backend falls back to local", func(t *testing.T) {
		cfg := &config.Config{
			StorageBackend: "ftp",
			UploadsDir:     t.TempDir(),
			UploadsBaseURL: "/assets/uploads",
		}
		st, err := newStorage(cfg)
		if err != nil {
			t.Fatalf("create storage: %v", err)
		}
		if _, ok := st.(*storage.LocalStorage); !ok {
			t.Fatalf("expected local storage, got %T", st)
		}
	})

	t.Run("s3", func(t *testing.T) {
		cfg := &config.Config{
			StorageBackend: "s3",
			S3Region:       "us-east-1",
			S3Bucket:       "test-bucket",
			S3AccessKey:    "test",
			S3SecretKey:    "test",
		}
		st, err := newStorage(cfg)
		if err != nil {
			t.Fatalf("create s3 storage: %v", err)
		}
		if _, ok := st.(*storage.S3Storage); !ok {
			t.Fatalf("expected s3 storage, got %T", st)
		}
	})

	t.Run("r2", func(t *testing.T) {
		cfg := &config.Config{
			StorageBackend:    "r2",
			R2AccountID:       "test-account",
			R2AccessKeyID:     "test",
			R2AccessKeySecret: "test",
			R2BucketName:      "test-bucket",
		}
		st, err := newStorage(cfg)
		if err != nil {
			t.Fatalf("create r2 storage: %v", err)
		}
		if _, ok := st.(*storage.R2Storage); !ok {
			t.Fatalf("expected r2 storage, got %T", st)
		}
	})
}
