package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-codecollab/cmd/config"
	"github.com/mattsolo1/grove-codecollab/pkg/service"
)

func NewSearchCmd(svc **service.Service) *cobra.Command {
	var (
		searchAll   bool
		searchLimit int
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search file paths and contents",
		Long: `Search the files of saved rooms.

Examples:
  codecollab search "useEffect"          # Search in the current room
  codecollab search "TODO" --all         # Search every room`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")

			opts := []service.SearchOption{service.WithLimit(searchLimit)}
			if !searchAll {
				room, err := config.Room()
				if err != nil {
					return err
				}
				opts = append(opts, service.InRoom(room))
			}

			results, err := (*svc).Search(query, opts...)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(results) == 0 {
				fmt.Fprintln(out, "No results found")
				return nil
			}

			fmt.Fprintf(out, "Found %d results:\n", len(results))
			for i, m := range results {
				if searchAll {
					fmt.Fprintf(out, "%d. %s:%s\n", i+1, m.Room, m.Path)
				} else {
					fmt.Fprintf(out, "%d. %s\n", i+1, m.Path)
				}
				if m.Snippet != "" {
					fmt.Fprintf(out, "   %s\n", m.Snippet)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&searchAll, "all", false, "Search all rooms")
	cmd.Flags().IntVar(&searchLimit, "limit", 50, "Maximum results")
	return cmd
}
