package commands

import (
	"encoding/base64"
	"fmt"

	"github.com/mobile-next/nativescreenshot/bridge"
	"github.com/mobile-next/nativescreenshot/utils"
)

// ScreenshotResponse is returned by takeScreenshot
type ScreenshotResponse struct {
	FilePath string `json:"filePath"`
}

// ScreenshotImageRequest represents the parameters for takeScreenshotImage
type ScreenshotImageRequest struct {
	Quality *int   `json:"quality,omitempty"` // defaults to 100
	Format  string `json:"format,omitempty"`  // "png" or "jpeg"
}

// ScreenshotImageResponse carries the encoded frame
type ScreenshotImageResponse struct {
	Format string `json:"format"`
	Data   string `json:"data"` // base64 encoded image data
}

// OutcomeError describes a bridge outcome that produced no value
func OutcomeError(outcome bridge.Outcome) error {
	if outcome.Err != nil {
		return fmt.Errorf("%s: %w", outcome.Status, outcome.Err)
	}
	return fmt.Errorf("%s", outcome.Status)
}

// ScreenshotCommand saves the current frame to shared storage
func ScreenshotCommand() *CommandResponse {
	h, err := requireHost()
	if err != nil {
		return NewErrorResponse(err)
	}

	outcome := h.Bridge.TakeScreenshot()
	if !outcome.OK() {
		return NewErrorResponse(OutcomeError(outcome))
	}

	return NewSuccessResponse(ScreenshotResponse{FilePath: outcome.Path})
}

// ScreenshotImageCommand returns the current frame as encoded bytes
func ScreenshotImageCommand(req ScreenshotImageRequest) *CommandResponse {
	h, err := requireHost()
	if err != nil {
		return NewErrorResponse(err)
	}

	format, err := utils.ParseImageFormat(req.Format)
	if err != nil {
		return NewErrorResponse(err)
	}

	quality := bridge.DefaultQuality
	if req.Quality != nil {
		quality = *req.Quality
	}

	outcome := h.Bridge.TakeScreenshotImageAs(format, quality)
	if !outcome.OK() {
		return NewErrorResponse(OutcomeError(outcome))
	}

	return NewSuccessResponse(ScreenshotImageResponse{
		Format: format,
		Data:   base64.StdEncoding.EncodeToString(outcome.Data),
	})
}
