package artwork_test

import (
	"bytes"
	"errors"
	"image"
	"testing"

	"ghplayer/internal/artwork"
	"ghplayer/internal/testsupport"
)

func decodeConfig(t *testing.T, data []byte) (image.Config, string) {
	t.Helper()
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	return cfg, format
}

func TestRecompressDownscalesOpaqueToJPEG(t *testing.T) {
	r := artwork.Recompressor{MaxDimension: 512, Quality: 85}
	out, format, err := r.Recompress(testsupport.OpaqueJPEG(t, 1024, 600))
	if err != nil {
		t.Fatalf("Recompress returned error: %v", err)
	}
	if format != artwork.FormatJPEG {
		t.Fatalf("expected jpeg, got %s", format)
	}
	cfg, decoded := decodeConfig(t, out)
	if decoded != "jpeg" || cfg.Width != 512 || cfg.Height != 300 {
		t.Fatalf("unexpected output %s %dx%d", decoded, cfg.Width, cfg.Height)
	}
}

func TestRecompressKeepsTransparencyAsPNG(t *testing.T) {
	r := artwork.Recompressor{MaxDimension: 512, Quality: 85}
	out, format, err := r.Recompress(testsupport.TranslucentPNG(t, 300, 900))
	if err != nil {
		t.Fatalf("Recompress returned error: %v", err)
	}
	if format != artwork.FormatPNG {
		t.Fatalf("expected png, got %s", format)
	}
	cfg, decoded := decodeConfig(t, out)
	if decoded != "png" || cfg.Width != 171 || cfg.Height != 512 {
		t.Fatalf("unexpected output %s %dx%d", decoded, cfg.Width, cfg.Height)
	}
}

func TestRecompressSmallOpaquePNGBecomesJPEGAtSameSize(t *testing.T) {
	r := artwork.Recompressor{MaxDimension: 512, Quality: 85}
	out, format, err := r.Recompress(testsupport.OpaquePNG(t, 64, 32))
	if err != nil {
		t.Fatalf("Recompress returned error: %v", err)
	}
	cfg, decoded := decodeConfig(t, out)
	if format != artwork.FormatJPEG || decoded != "jpeg" || cfg.Width != 64 || cfg.Height != 32 {
		t.Fatalf("unexpected output %s/%s %dx%d", format, decoded, cfg.Width, cfg.Height)
	}
}

func TestRecompressRejectsUndecodableInput(t *testing.T) {
	r := artwork.Recompressor{MaxDimension: 512, Quality: 85}
	for _, input := range [][]byte{nil, []byte("definitely not an image")} {
		if _, _, err := r.Recompress(input); !errors.Is(err, artwork.ErrDecode) {
			t.Fatalf("expected ErrDecode, got %v", err)
		}
	}
}

func TestRecompressRejectsOversizedResult(t *testing.T) {
	r := artwork.Recompressor{MaxDimension: 512, Quality: 85, MaxBytes: 16}
	if _, _, err := r.Recompress(testsupport.OpaqueJPEG(t, 64, 64)); !errors.Is(err, artwork.ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
}

func TestTargetSize(t *testing.T) {
	r := artwork.Recompressor{MaxDimension: 512}
	tests := []struct{ w, h, wantW, wantH int }{
		{512, 512, 512, 512},
		{100, 50, 100, 50},
		{1024, 1024, 512, 512},
		{2000, 1, 512, 1},
		{3, 1536, 1, 512},
	}
	for _, tt := range tests {
		w, h := r.TargetSize(tt.w, tt.h)
		if w != tt.wantW || h != tt.wantH {
			t.Fatalf("TargetSize(%d,%d) = %d,%d want %d,%d", tt.w, tt.h, w, h, tt.wantW, tt.wantH)
		}
	}
}

func TestRecompressRejectsOversizedDimensionsBeforeDecoding(t *testing.T) {
	r := artwork.Recompressor{MaxDimension: 512, Quality: 85}
	header := testsupport.PNGHeader(t, 20000, 20000)

	if _, _, err := r.Recompress(header); !errors.Is(err, artwork.ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge for 20000x20000 source, got %v", err)
	}

	limited := artwork.Recompressor{MaxDimension: 512, Quality: 85, MaxPixels: 100}
	if _, _, err := limited.Recompress(testsupport.OpaqueJPEG(t, 20, 20)); !errors.Is(err, artwork.ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge above a custom pixel budget, got %v", err)
	}
	if _, _, err := limited.Recompress(testsupport.OpaqueJPEG(t, 10, 10)); err != nil {
		t.Fatalf("expected image within budget to recompress, got %v", err)
	}
}
