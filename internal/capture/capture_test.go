package capture

import (
	"bytes"
	"image"
	"image/jpeg"
	"testing"
)

func TestDownscale(t *testing.T) {
	tests := []struct {
		name  string
		w, h  int
		wantW int
		wantH int
	}{
		{"4k-ish frame halved", 2560, 1440, 1280, 720},
		{"tall frame fits height", 800, 1600, 360, 720},
		{"wide frame fits width", 3840, 1080, 1280, 360},
		{"small frame untouched", 640, 480, 640, 480},
		{"exact fit untouched", 1280, 720, 1280, 720},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := image.NewRGBA(image.Rect(0, 0, tt.w, tt.h))
			got := Downscale(src)
			b := got.Bounds()
			if b.Dx() != tt.wantW || b.Dy() != tt.wantH {
				t.Errorf("Downscale(%dx%d) = %dx%d, want %dx%d",
					tt.w, tt.h, b.Dx(), b.Dy(), tt.wantW, tt.wantH)
			}
		})
	}
}

func TestDownscalePassThroughIdentity(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 100, 100))
	if got := Downscale(src); got != image.Image(src) {
		t.Error("small frame should be returned unchanged")
	}
}

func TestEncodeJPEG(t *testing.T) {
	data, err := EncodeJPEG(horizontalRamp(320, 200, true))
	if err != nil {
		t.Fatalf("EncodeJPEG() error = %v", err)
	}
	if len(data) == 0 {
		t.Fatal("EncodeJPEG() returned empty data")
	}

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("encoded data is not valid jpeg: %v", err)
	}
	if cfg.Width != 320 || cfg.Height != 200 {
		t.Errorf("decoded dimensions = %dx%d, want 320x200", cfg.Width, cfg.Height)
	}
}
