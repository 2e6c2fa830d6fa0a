package storage

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLocalStorageRoundTrip(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	st, err := NewLocalStorage(base, "/assets/uploads")
	if err != nil {
		t.Fatalf("NewLocalStorage: %v", err)
	}

	ctx := context.Background()
	key := "100_80-1700000000-orig_1.png"
	content := "png-bytes"

	if err := st.Put(ctx, key, bytes.NewReader([]byte(content)), "image/png"); err != nil {
		t.Fatalf("Put: %v", err)
	}

	exists, err := st.Exists(ctx, key)
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if !exists {
		t.Fatalf("key missing after Put")
	}

	rc, err := st.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(data) != content {
		t.Fatalf("unexpected content: got %q want %q", string(data), content)
	}

	if got, want := st.GetURL(key), "/assets/uploads/"+key; got != want {
		t.Fatalf("GetURL = %q, want %q", got, want)
	}

	if err := st.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	exists, err = st.Exists(ctx, key)
	if err != nil {
		t.Fatalf("Exists after delete: %v", err)
	}
	if exists {
		t.Fatalf("key still exists after Delete")
	}

	// Deleting a missing key is not an error
	if err := st.Delete(ctx, key); err != nil {
		t.Fatalf("Delete missing key: %v", err)
	}
}

func TestLocalStorageListOlderThan(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	st, err := NewLocalStorage(base, "/assets/uploads")
	if err != nil {
		t.Fatalf("NewLocalStorage: %v", err)
	}

	ctx := context.Background()
	oldKey := "640_480-1600000000-orig_2.png"
	newKey := "200_150-1700000000-orig_2.png"

	for _, key := range []string{oldKey, newKey} {
		if err := st.Put(ctx, key, bytes.NewReader([]byte("x")), "image/png"); err != nil {
			t.Fatalf("Put %s: %v", key, err)
		}
	}

	// Age the first file past the cutoff
	stale := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(filepath.Join(base, oldKey), stale, stale); err != nil {
		t.Fatalf("Chtimes: %v", err)
	}

	keys, err := st.ListOlderThan(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("ListOlderThan: %v", err)
	}
	if len(keys) != 1 || keys[0] != oldKey {
		t.Fatalf("ListOlderThan = %v, want [%s]", keys, oldKey)
	}
}

func TestSniffImage(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	pngBytes := buf.Bytes()

	data, mime, err := SniffImage(bytes.NewReader(pngBytes), 1<<20)
	if err != nil {
		t.Fatalf("SniffImage: %v", err)
	}
	if mime != "image/png" {
		t.Fatalf("mime = %q, want image/png", mime)
	}
	if !bytes.Equal(data, pngBytes) {
		t.Fatalf("returned data differs from input")
	}

	if _, _, err := SniffImage(bytes.NewReader(nil), 1<<20); err != ErrEmptyFile {
		t.Fatalf("empty file: got %v, want ErrEmptyFile", err)
	}

	if _, _, err := SniffImage(bytes.NewReader(pngBytes), 10); err != ErrFileTooLarge {
		t.Fatalf("oversized file: got %v, want ErrFileTooLarge", err)
	}

	if _, _, err := SniffImage(bytes.NewReader([]byte("plain text, not an image")), 1<<20); err != ErrInvalidMimeType {
		t.Fatalf("text payload: got %v, want ErrInvalidMimeType", err)
	}
}
