package capture

import (
	"image"
	"image/color"
	"testing"
)

// horizontalRamp builds a grayscale image whose luminance falls from left
// to right when falling is true, and rises otherwise.
func horizontalRamp(width, height int, falling bool) image.Image {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		level := uint8(x * 255 / (width - 1))
		if falling {
			level = 255 - level
		}
		for y := 0; y < height; y++ {
			img.SetGray(x, y, color.Gray{Y: level})
		}
	}
	return img
}

func uniformImage(width, height int, level uint8) image.Image {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.SetGray(x, y, color.Gray{Y: level})
		}
	}
	return img
}

func TestComputeDHashDeterministic(t *testing.T) {
	img := horizontalRamp(90, 80, true)

	first := ComputeDHash(img)
	second := ComputeDHash(img)
	if first != second {
		t.Errorf("same image hashed twice: %016x vs %016x", first, second)
	}

	// A separately constructed identical image must agree too.
	other := ComputeDHash(horizontalRamp(90, 80, true))
	if first != other {
		t.Errorf("identical images disagree: %016x vs %016x", first, other)
	}
}

func TestComputeDHashRampDirection(t *testing.T) {
	// Falling luminance means every left pixel outshines its neighbour.
	if got := ComputeDHash(horizontalRamp(90, 80, true)); got != ^uint64(0) {
		t.Errorf("falling ramp hash = %016x, want ffffffffffffffff", got)
	}
	// Rising luminance never sets a bit.
	if got := ComputeDHash(horizontalRamp(90, 80, false)); got != 0 {
		t.Errorf("rising ramp hash = %016x, want 0", got)
	}
	if got := ComputeDHash(uniformImage(90, 80, 128)); got != 0 {
		t.Errorf("uniform image hash = %016x, want 0", got)
	}
}

func TestComputeDHashDistinguishesImages(t *testing.T) {
	falling := ComputeDHash(horizontalRamp(90, 80, true))
	rising := ComputeDHash(horizontalRamp(90, 80, false))
	if d := HashDistance(falling, rising); d != 64 {
		t.Errorf("opposite ramps distance = %d, want 64", d)
	}
}

func TestHashDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b uint64
		want int
	}{
		{"both zero", 0, 0, 0},
		{"identical", 0xdeadbeefcafe1234, 0xdeadbeefcafe1234, 0},
		{"single bit", 0, 1, 1},
		{"all bits", 0, ^uint64(0), 64},
		{"nibble", 0xf0, 0x0f, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HashDistance(tt.a, tt.b); got != tt.want {
				t.Errorf("HashDistance(%016x, %016x) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
			if got := HashDistance(tt.b, tt.a); got != tt.want {
				t.Errorf("HashDistance is not symmetric for %016x, %016x", tt.a, tt.b)
			}
		})
	}
}

func TestHashDistanceBounds(t *testing.T) {
	values := []uint64{0, 1, 0xff, 0xdeadbeef, ^uint64(0), 0x8000000000000001}
	for _, a := range values {
		for _, b := range values {
			d := HashDistance(a, b)
			if d < 0 || d > 64 {
				t.Errorf("HashDistance(%016x, %016x) = %d, out of range", a, b, d)
			}
			if a == b && d != 0 {
				t.Errorf("HashDistance(%016x, itself) = %d, want 0", a, d)
			}
		}
	}
}

func TestHashHex(t *testing.T) {
	tests := []struct {
		hash uint64
		want string
	}{
		{0, "0000000000000000"},
		{0xdeadbeef, "00000000deadbeef"},
		{^uint64(0), "ffffffffffffffff"},
		{1, "0000000000000001"},
	}

	for _, tt := range tests {
		if got := HashHex(tt.hash); got != tt.want {
			t.Errorf("HashHex(%d) = %q, want %q", tt.hash, got, tt.want)
		}
	}
}
