package cli

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mobile-next/nativescreenshot/commands"
	"github.com/mobile-next/nativescreenshot/utils"
	"github.com/spf13/cobra"
)

var screenshotCmd = &cobra.Command{
	Use:   "screenshot",
	Short: "Save the current frame to shared storage",
	Long:  `Takes a snapshot of the rendering surface and saves it as a PNG under <storage>/<app name>/native_screenshot_ext-<timestamp>.png. Requires write permission to shared storage.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printResponse(commands.ScreenshotCommand())
	},
}

var screenshotImageCmd = &cobra.Command{
	Use:   "image",
	Short: "Capture the current frame as encoded bytes",
	Long:  `Takes a snapshot of the rendering surface and returns it encoded in memory, without touching shared storage. Use '-o -' to write the raw image to stdout.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		req := commands.ScreenshotImageRequest{Format: screenshotFormat}
		if cmd.Flags().Changed("quality") {
			req.Quality = &screenshotQuality
		}

		response := commands.ScreenshotImageCommand(req)
		if response.Status == "error" || screenshotOutputPath == "" {
			return printResponse(response)
		}

		imageResp, ok := response.Data.(commands.ScreenshotImageResponse)
		if !ok {
			return printResponse(response)
		}

		imageBytes, err := base64.StdEncoding.DecodeString(imageResp.Data)
		if err != nil {
			return fmt.Errorf("failed to decode image data: %v", err)
		}

		if screenshotOutputPath == "-" {
			if _, err := os.Stdout.Write(imageBytes); err != nil {
				return fmt.Errorf("failed to write to stdout: %v", err)
			}
			return nil
		}

		outPath := outputPath(screenshotOutputPath, imageResp.Format)
		if err := os.WriteFile(outPath, imageBytes, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %v", outPath, err)
		}

		printJson(commands.NewSuccessResponse(map[string]interface{}{
			"format":   imageResp.Format,
			"filePath": outPath,
		}))
		return nil
	},
}

// outputPath adds the format's extension when path has none
func outputPath(path, format string) string {
	if filepath.Ext(path) != "" {
		return path
	}
	return path + "." + utils.FileExtension(format)
}

func init() {
	rootCmd.AddCommand(screenshotCmd)
	screenshotCmd.AddCommand(screenshotImageCmd)

	screenshotImageCmd.Flags().StringVarP(&screenshotOutputPath, "output", "o", "", "Output file path for the image (e.g., screen.png, or '-' for stdout)")
	screenshotImageCmd.Flags().StringVarP(&screenshotFormat, "format", "f", "png", "Output format (png or jpeg)")
	screenshotImageCmd.Flags().IntVarP(&screenshotQuality, "quality", "q", 100, "Encoder quality (only applies if format is jpeg)")
}
