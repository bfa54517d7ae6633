package cli

import (
	"github.com/mobile-next/nativescreenshot/commands"
	"github.com/spf13/cobra"
)

var permissionCmd = &cobra.Command{
	Use:   "permission",
	Short: "Manage write permission to shared storage",
	Long:  `Answers pending write permission requests. A grant is only consulted when [permissions] require_grant is enabled; otherwise access is decided by the filesystem.`,
}

func permissionActionCmd(action, short string) *cobra.Command {
	return &cobra.Command{
		Use:   action,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printResponse(commands.PermissionCommand(action))
		},
	}
}

func init() {
	rootCmd.AddCommand(permissionCmd)

	permissionCmd.AddCommand(permissionActionCmd(commands.PermissionGrant, "Allow screenshots to be saved"))
	permissionCmd.AddCommand(permissionActionCmd(commands.PermissionDeny, "Refuse saving screenshots"))
	permissionCmd.AddCommand(permissionActionCmd(commands.PermissionRevoke, "Forget the stored answer"))
	permissionCmd.AddCommand(permissionActionCmd(commands.PermissionStatus, "Show the stored answer"))
}
