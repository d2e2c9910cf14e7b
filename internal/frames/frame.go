package frames

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
)

// Frame is one sampled video frame awaiting deduplication. Frames are
// transient: the image lives on disk only until the kept subset has been
// promoted to screenshots.
type Frame struct {
	// Index is the position in the sampled sequence.
	Index int
	// Timestamp is seconds from the start of the video.
	Timestamp float64
	// Path is the on-disk location of the sampled image.
	Path string

	hash   Hash
	hashed bool
}

// HashWith returns the frame's perceptual hash, computing and caching it on
// first use.
func (f *Frame) HashWith(hasher Hasher) (Hash, error) {
	if f.hashed {
		return f.hash, nil
	}
	img, err := loadImage(f.Path)
	if err != nil {
		return 0, err
	}
	h, err := hasher.Hash(img)
	if err != nil {
		return 0, fmt.Errorf("hash frame %s: %w", f.Path, err)
	}
	f.hash = h
	f.hashed = true
	return h, nil
}

func loadImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open frame: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decode frame %s: %w", path, err)
	}
	return img, nil
}
