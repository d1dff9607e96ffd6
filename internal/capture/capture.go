package capture

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"time"

	"github.com/kbinani/screenshot"
	"golang.org/x/image/draw"
)

const (
	captureTimeout = 15 * time.Second
	maxFrameWidth  = 1280
	maxFrameHeight = 720
	jpegQuality    = 85
)

// CaptureScreen grabs the primary display. When the primary capture fails
// the remaining displays are tried in order and the primary error is kept
// if none of them succeeds.
func CaptureScreen() (image.Image, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return nil, fmt.Errorf("no active displays found")
	}

	img, err := captureDisplay(0)
	if err == nil {
		return img, nil
	}
	for i := 1; i < n; i++ {
		if fallback, ferr := captureDisplay(i); ferr == nil {
			return fallback, nil
		}
	}
	return nil, err
}

// captureDisplay wraps the blocking capture call with a timeout so a stuck
// compositor cannot wedge the monitoring loop.
func captureDisplay(displayID int) (image.Image, error) {
	bounds := screenshot.GetDisplayBounds(displayID)

	ctx, cancel := context.WithTimeout(context.Background(), captureTimeout)
	defer cancel()

	var img image.Image
	done := make(chan error, 1)
	go func() {
		var err error
		img, err = screenshot.CaptureRect(bounds)
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			return nil, fmt.Errorf("failed to capture display %d (bounds %v): %w", displayID, bounds, err)
		}
		return img, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("capture of display %d timed out after %v", displayID, captureTimeout)
	}
}

// Downscale fits the frame within 1280x720 preserving aspect ratio.
// Frames that already fit pass through untouched.
func Downscale(img image.Image) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxFrameWidth && h <= maxFrameHeight {
		return img
	}

	scale := float64(maxFrameWidth) / float64(w)
	if s := float64(maxFrameHeight) / float64(h); s < scale {
		scale = s
	}
	dstW := int(float64(w) * scale)
	dstH := int(float64(h) * scale)
	if dstW < 1 {
		dstW = 1
	}
	if dstH < 1 {
		dstH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// EncodeJPEG compresses a frame for storage and LLM upload.
func EncodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// CaptureFrame captures the screen and returns the JPEG to store together
// with the perceptual hash of the downscaled frame.
func CaptureFrame() ([]byte, uint64, error) {
	img, err := CaptureScreen()
	if err != nil {
		return nil, 0, err
	}
	frame := Downscale(img)
	hash := ComputeDHash(frame)
	data, err := EncodeJPEG(frame)
	if err != nil {
		return nil, 0, err
	}
	return data, hash, nil
}
