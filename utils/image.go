package utils

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"strings"
)

const (
	FormatPNG  = "png"
	FormatJPEG = "jpeg"
)

// ParseImageFormat normalizes a user supplied format name. Empty means png.
func ParseImageFormat(format string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatPNG:
		return FormatPNG, nil
	case FormatJPEG, "jpg":
		return FormatJPEG, nil
	default:
		return "", fmt.Errorf("invalid format '%s'. Supported formats are 'png' and 'jpeg'", format)
	}
}

// FileExtension returns the file extension used for a format, without the dot.
func FileExtension(format string) string {
	if format == FormatJPEG {
		return "jpg"
	}
	return "png"
}

// WriteImage encodes img to w. PNG is lossless and ignores quality; JPEG quality is
// handed to the encoder as is, which clamps it to 1..100.
func WriteImage(w io.Writer, img image.Image, format string, quality int) error {
	switch format {
	case FormatPNG:
		return png.Encode(w, img)
	case FormatJPEG:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: quality})
	default:
		return fmt.Errorf("unsupported image format: %s", format)
	}
}

func EncodeImage(img image.Image, format string, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteImage(&buf, img, format, quality); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
