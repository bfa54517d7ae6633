package cli

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/mobile-next/nativescreenshot/commands"
	"github.com/mobile-next/nativescreenshot/config"
	"github.com/mobile-next/nativescreenshot/host"
	"github.com/mobile-next/nativescreenshot/server"
	"github.com/mobile-next/nativescreenshot/utils"
	"github.com/spf13/cobra"
)

const version = "dev"

// loadedConfig is the configuration the current command runs with
var loadedConfig *config.Config

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "nativescreenshot",
	Short: "Capture the rendering surface to shared storage or as encoded bytes",
	Long:  `Captures the current frame of a display or image surface, saves it as a PNG under the shared pictures directory, or returns it as encoded bytes. Can also serve the takeScreenshot and takeScreenshotImage calls over JSON-RPC.`,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	Version:           version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initHost,
}

func initConfig() {
	utils.SetVerbose(verbose)
}

// initHost loads the configuration and attaches a bridge for the command to drive
func initHost(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	if cfg.Log.Verbose {
		utils.SetVerbose(true)
	}
	if surfaceType != "" {
		cfg.Surface.Type = surfaceType
	}
	if surfaceFile != "" {
		cfg.Surface.File = surfaceFile
		if surfaceType == "" {
			cfg.Surface.Type = "file"
		}
	}

	h, err := host.New(cfg)
	if err != nil {
		return fmt.Errorf("error initializing screenshot bridge: %w", err)
	}

	loadedConfig = cfg
	commands.SetHost(h)
	return nil
}

// Close releases the host created for the command, if any
func Close() {
	if h := commands.GetHost(); h != nil {
		if err := h.Close(); err != nil {
			utils.Error("Error closing host: %v", err)
		}
		commands.SetHost(nil)
	}
}

func init() {
	server.Version = version

	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", fmt.Sprintf("path to config file (default: %s)", config.DefaultPath()))
	rootCmd.PersistentFlags().StringVar(&surfaceType, "surface", "", "rendering surface to capture ('display' or 'file')")
	rootCmd.PersistentFlags().StringVar(&surfaceFile, "surface-file", "", "image file to use as the rendering surface")
}

// Execute runs the root command
func Execute() error {
	// enable microseconds in logs
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	return rootCmd.Execute()
}

// printJson is a helper function to print JSON responses
func printJson(data interface{}) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(string(jsonData))
}

// printResponse prints a command response and turns an error status into an error
func printResponse(response *commands.CommandResponse) error {
	printJson(response)
	if response.Status == "error" {
		return fmt.Errorf("%s", response.Error)
	}
	return nil
}
