package frames

import (
	"image"
	"math/bits"

	"github.com/corona10/goimagehash"
)

// Hash is a fixed-width perceptual summary of an image's visual content.
// Visually similar images have small hamming distance between their hashes.
type Hash uint64

// Distance returns the hamming distance (count of differing bits) to other.
func (h Hash) Distance(other Hash) int {
	return bits.OnesCount64(uint64(h ^ other))
}

// Hasher computes a perceptual hash for an image.
type Hasher interface {
	Hash(img image.Image) (Hash, error)
}

// PerceptionHasher computes 64-bit pHash values via goimagehash.
type PerceptionHasher struct{}

func (PerceptionHasher) Hash(img image.Image) (Hash, error) {
	h, err := goimagehash.PerceptionHash(img)
	if err != nil {
		return 0, err
	}
	return Hash(h.GetHash()), nil
}
