package image

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/TheNeikos/neikos.moe/internal/pkg/imaging"
)

func TestShouldInlineIsStrict(t *testing.T) {
	t.Parallel()

	placer := NewPlacer(imaging.NewCodec(85), &storageStub{}, 200)

	cases := []struct {
		w, h int
		want bool
	}{
		{199, 199, true},
		{1, 1, true},
		{200, 199, false}, // at the threshold is file-backed
		{199, 200, false},
		{200, 200, false},
		{640, 480, false},
	}
	for _, c := range cases {
		if got := placer.ShouldInline(c.w, c.h); got != c.want {
			t.Errorf("ShouldInline(%d, %d) = %v, want %v", c.w, c.h, got, c.want)
		}
	}
}

func TestNewPlacerThresholdFallback(t *testing.T) {
	t.Parallel()

	placer := NewPlacer(imaging.NewCodec(85), &storageStub{}, 0)
	if !placer.ShouldInline(199, 199) || placer.ShouldInline(200, 200) {
		t.Error("zero threshold should fall back to 200")
	}
}

func TestPlaceInlineIsAlwaysPNG(t *testing.T) {
	t.Parallel()

	st := &storageStub{}
	placer := NewPlacer(imaging.NewCodec(85), st, 200)

	// Even a JPEG-formatted image inlines as PNG
	placed, err := placer.Place(context.Background(), testRaster(100, 80), FormatJPEG, "orig_9")
	if err != nil {
		t.Fatalf("Place: %v", err)
	}

	if placed.Kind != KindInline {
		t.Fatalf("kind = %s, want inline", placed.Kind)
	}
	if placed.Format != FormatPNG {
		t.Errorf("format = %s, want png", placed.Format)
	}
	if placed.Width != 100 || placed.Height != 80 {
		t.Errorf("size = %dx%d, want 100x80", placed.Width, placed.Height)
	}
	if len(st.puts) != 0 {
		t.Errorf("inline placement wrote to storage: %v", st.puts)
	}

	payload, err := base64.StdEncoding.DecodeString(placed.Locator)
	if err != nil {
		t.Fatalf("locator is not standard base64: %v", err)
	}
	if _, format, err := imaging.NewCodec(85).Decode(payload); err != nil || format != "png" {
		t.Errorf("payload decode = %q, %v", format, err)
	}
}

func TestPlaceFileBacked(t *testing.T) {
	t.Parallel()

	st := &storageStub{}
	placer := NewPlacer(imaging.NewCodec(85), st, 200)

	placed, err := placer.Place(context.Background(), testRaster(640, 480), FormatGIF, "orig_9")
	if err != nil {
		t.Fatalf("Place: %v", err)
	}

	if placed.Kind != KindFileBacked {
		t.Fatalf("kind = %s, want file", placed.Kind)
	}
	if placed.Format != FormatGIF {
		t.Errorf("format = %s, want gif", placed.Format)
	}
	if !strings.HasPrefix(placed.Locator, "640_480-") || !strings.HasSuffix(placed.Locator, "-orig_9.gif") {
		t.Errorf("unexpected key %q", placed.Locator)
	}
	if _, ok := st.objects[placed.Locator]; !ok {
		t.Errorf("bytes not written under %q", placed.Locator)
	}
}

func TestFileKey(t *testing.T) {
	t.Parallel()

	ts := time.Unix(1700000000, 0)
	got := FileKey(640, 480, ts, "orig_7", FormatJPEG)
	if got != "640_480-1700000000-orig_7.jpg" {
		t.Errorf("FileKey = %q", got)
	}
}

func TestSuffixes(t *testing.T) {
	t.Parallel()

	if got := VariantSuffix(42); got != "orig_42" {
		t.Errorf("VariantSuffix(42) = %q", got)
	}
	first := UploadSuffix()
	second := UploadSuffix()
	if !strings.HasPrefix(first, "up_") {
		t.Errorf("UploadSuffix() = %q, want up_ prefix", first)
	}
	if first == second {
		t.Errorf("upload suffixes must be unique, got %q twice", first)
	}
}
