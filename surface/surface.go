// Package surface provides rendering surfaces the bridge can snapshot.
package surface

import (
	"errors"
	"fmt"
	"image"
	"strings"
)

// ErrNoDisplay is returned when there is nothing to capture.
var ErrNoDisplay = errors.New("no active display")

const (
	KindDisplay = "display"
	KindFile    = "file"
)

// Options select and configure a surface.
type Options struct {
	Kind    string
	Display int
	File    string
}

// Surface is what the bridge snapshots.
type Surface interface {
	CurrentFrame() (image.Image, error)
}

// Open builds the surface named by opts.Kind. An empty kind means the live display.
func Open(opts Options) (Surface, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Kind)) {
	case "", KindDisplay:
		if opts.Display < 0 {
			return nil, fmt.Errorf("invalid display index %d", opts.Display)
		}
		return &Display{Index: opts.Display}, nil
	case KindFile:
		if opts.File == "" {
			return nil, fmt.Errorf("file surface requires a path")
		}
		return &File{Path: opts.File}, nil
	default:
		return nil, fmt.Errorf("unknown surface type '%s'. Supported types are 'display' and 'file'", opts.Kind)
	}
}
