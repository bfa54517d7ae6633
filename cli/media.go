package cli

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mobile-next/nativescreenshot/commands"
	"github.com/mobile-next/nativescreenshot/media"
	"github.com/spf13/cobra"
)

var mediaCmd = &cobra.Command{
	Use:   "media",
	Short: "Inspect screenshots saved to shared storage",
}

var mediaListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved screenshots, newest first",
	Long:  `Lists screenshots announced to the media index. By default reads the in-process recent cache; use --index to read the persistent SQLite index.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		response := commands.MediaListCommand(commands.MediaListRequest{
			Limit: mediaLimit,
			Index: mediaIndex,
		})
		if mediaJSON || response.Status == "error" {
			return printResponse(response)
		}

		data, _ := response.Data.(map[string]interface{})
		entries, _ := data["entries"].([]media.Entry)
		fmt.Println(renderEntries(entries))
		return nil
	},
}

var mediaPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Drop index entries whose files no longer exist",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printResponse(commands.MediaPruneCommand())
	},
}

func renderEntries(entries []media.Entry) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Name", "Size", "Created", "Path"})

	for _, e := range entries {
		t.AppendRow(table.Row{
			e.ID,
			e.Name,
			e.Size,
			e.CreatedAt.Format("2006-01-02 15:04:05"),
			e.Path,
		})
	}
	t.AppendFooter(table.Row{"", "", "", "Total", len(entries)})

	return t.Render()
}

func init() {
	rootCmd.AddCommand(mediaCmd)

	mediaCmd.AddCommand(mediaListCmd)
	mediaCmd.AddCommand(mediaPruneCmd)

	mediaListCmd.Flags().IntVarP(&mediaLimit, "limit", "n", 0, "Maximum number of entries to list (0 for all)")
	mediaListCmd.Flags().BoolVar(&mediaIndex, "index", false, "Read the persistent media index instead of the recent cache")
	mediaListCmd.Flags().BoolVar(&mediaJSON, "json", false, "Print the raw JSON response")
}
