package cli

import (
	"fmt"
	"strings"

	"github.com/mobile-next/nativescreenshot/config"
	"github.com/mobile-next/nativescreenshot/daemon"
	"github.com/mobile-next/nativescreenshot/server"
	"github.com/mobile-next/nativescreenshot/utils"
	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Server management commands",
	Long:  `Commands for managing the nativescreenshot JSON-RPC server.`,
}

// listenAddress picks the --listen flag, then the config file, then the default
func listenAddress(cmd *cobra.Command) string {
	// GetString cannot fail for defined flags
	if addr, _ := cmd.Flags().GetString("listen"); addr != "" {
		return addr
	}
	if loadedConfig != nil && loadedConfig.Server.Listen != "" {
		return loadedConfig.Server.Listen
	}
	return config.DefaultServerAddress
}

var serverStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the nativescreenshot server",
	Long:  `Starts a JSON-RPC server answering takeScreenshot and takeScreenshotImage over HTTP (/rpc) and WebSocket (/ws).`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		listenAddr := listenAddress(cmd)

		// GetBool cannot fail for defined flags
		enableCORS, _ := cmd.Flags().GetBool("cors")
		if !cmd.Flags().Changed("cors") && loadedConfig != nil {
			enableCORS = loadedConfig.Server.CORS
		}
		isDaemon, _ := cmd.Flags().GetBool("daemon")

		if isDaemon && !daemon.IsChild() {
			// the child cannot report a busy port once detached
			bindAddr := listenAddr
			if !strings.Contains(bindAddr, ":") {
				bindAddr = ":" + bindAddr
			}
			if err := utils.CheckListenAddress(bindAddr); err != nil {
				return err
			}

			_, err := daemon.Daemonize()
			if err != nil {
				return fmt.Errorf("failed to start daemon: %w", err)
			}

			fmt.Printf("Server daemon spawned, attempting to listen on %s\n", listenAddr)
			return nil
		}

		return server.StartServer(listenAddr, enableCORS)
	},
}

var serverKillCmd = &cobra.Command{
	Use:   "kill",
	Short: "Stop the daemonized nativescreenshot server",
	Long:  `Connects to the server and sends a shutdown command via JSON-RPC.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		err := daemon.KillServer(listenAddress(cmd))
		if err != nil {
			return err
		}

		fmt.Printf("Server shutdown command sent successfully\n")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)

	// add server subcommands
	serverCmd.AddCommand(serverStartCmd)
	serverCmd.AddCommand(serverKillCmd)

	// server start flags
	serverStartCmd.Flags().String("listen", "", fmt.Sprintf("Address to listen on (default: %s)", config.DefaultServerAddress))
	serverStartCmd.Flags().Bool("cors", false, "Enable CORS support")
	serverStartCmd.Flags().BoolP("daemon", "d", false, "Run server in daemon mode (background)")

	// server kill flags
	serverKillCmd.Flags().String("listen", "", fmt.Sprintf("Address of server to kill (default: %s)", config.DefaultServerAddress))
}
