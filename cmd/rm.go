package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-codecollab/pkg/service"
	"github.com/mattsolo1/grove-codecollab/pkg/workspace"
)

func NewRmCmd(svc **service.Service) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <path>...",
		Short: "Delete files or directories",
		Long: `Delete nodes. Directories are removed with everything below them, and
any open tabs for removed files are closed.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return update(svc, func(ws *workspace.Workspace) error {
				for _, p := range args {
					id, err := resolve(ws, p)
					if err != nil {
						return err
					}
					removed, err := ws.Delete(id)
					if err != nil {
						return fmt.Errorf("delete %s: %w", p, err)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s (%d nodes)\n", p, len(removed))
				}
				return nil
			})
		},
	}
}
