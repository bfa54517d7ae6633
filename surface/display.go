package surface

import (
	"fmt"
	"image"

	"github.com/kbinani/screenshot"
)

// Display captures one active display of the local machine.
type Display struct {
	Index int
}

func (d *Display) CurrentFrame() (image.Image, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return nil, ErrNoDisplay
	}
	if d.Index >= n {
		return nil, fmt.Errorf("%w: display %d is out of range (max: %d)", ErrNoDisplay, d.Index, n-1)
	}

	bounds := d.Bounds()
	if bounds.Empty() {
		return nil, fmt.Errorf("%w: display %d has no area", ErrNoDisplay, d.Index)
	}

	img, err := screenshot.CaptureRect(bounds)
	if err != nil {
		return nil, fmt.Errorf("unable to capture display %d: %w", d.Index, err)
	}

	return img, nil
}

// Bounds reports the geometry of the display, or an empty rectangle if it is gone.
func (d *Display) Bounds() image.Rectangle {
	if d.Index < 0 || d.Index >= screenshot.NumActiveDisplays() {
		return image.Rectangle{}
	}
	return screenshot.GetDisplayBounds(d.Index)
}
