package surface

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
)

// File replays an image from disk, decoded afresh on every call. Useful on headless
// hosts and for exercising the bridge end to end.
type File struct {
	Path string
}

func (f *File) CurrentFrame() (image.Image, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open frame: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode frame %s: %w", f.Path, err)
	}

	return img, nil
}
