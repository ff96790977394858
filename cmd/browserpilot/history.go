package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/neboloop/browserpilot/internal/db"
	"github.com/neboloop/browserpilot/internal/db/migrations"
	"github.com/neboloop/browserpilot/internal/logic/history"
	"github.com/neboloop/browserpilot/internal/types"
)

// HistoryCmd prints visited pages from the local database
func HistoryCmd() *cobra.Command {
	var (
		limit  int
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List visited pages, newest first",
		Example: `  browserpilot history
  browserpilot history --limit 5 --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			migrations.QuietMode = true
			store, err := db.NewSQLite(ServerConfig.Database.SQLitePath)
			if err != nil {
				return err
			}
			defer store.Close()

			rows, err := store.ListHistory(cmd.Context())
			if err != nil {
				return err
			}
			if limit > 0 && len(rows) > limit {
				rows = rows[:limit]
			}
			entries := make([]types.HistoryEntry, 0, len(rows))
			for _, row := range rows {
				entries = append(entries, history.ToEntry(row))
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}
			if len(entries) == 0 {
				fmt.Fprintln(out, "No history yet.")
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tVISITED\tTITLE\tURL")
			for _, e := range entries {
				title := ""
				if e.Title != nil {
					title = *e.Title
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", e.Id, e.VisitTime, title, e.Url)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum rows (0 for all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}
