package capture

import (
	"fmt"
	"image"
	"math/bits"

	"golang.org/x/image/draw"
)

// hashSize is the comparison grid width: the frame is reduced to 9x8 gray
// pixels and each of the 8 rows contributes 8 adjacent-column comparisons.
const hashSize = 8

// ComputeDHash returns the 64-bit difference hash of the image. Bit
// position y*8+x is set when the pixel at column x is brighter than its
// right neighbour. The same image always yields the same hash, and frames
// that differ only by noise or a cursor move land within a small Hamming
// distance of each other.
func ComputeDHash(img image.Image) uint64 {
	small := image.NewGray(image.Rect(0, 0, hashSize+1, hashSize))
	draw.CatmullRom.Scale(small, small.Bounds(), img, img.Bounds(), draw.Src, nil)

	var hash uint64
	for y := 0; y < hashSize; y++ {
		for x := 0; x < hashSize; x++ {
			if small.GrayAt(x, y).Y > small.GrayAt(x+1, y).Y {
				hash |= 1 << uint(y*hashSize+x)
			}
		}
	}
	return hash
}

// HashDistance returns the Hamming distance between two hashes, 0 to 64.
func HashDistance(a, b uint64) int {
	return bits.OnesCount64(a ^ b)
}

// HashHex renders a hash as a fixed-width 16-digit lowercase hex string.
func HashHex(hash uint64) string {
	return fmt.Sprintf("%016x", hash)
}
