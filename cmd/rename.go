package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-codecollab/pkg/service"
	"github.com/mattsolo1/grove-codecollab/pkg/workspace"
)

func NewRenameCmd(svc **service.Service) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <path> <new-name>",
		Short: "Rename a file or directory in place",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return update(svc, func(ws *workspace.Workspace) error {
				id, err := resolve(ws, args[0])
				if err != nil {
					return err
				}
				if err := ws.Rename(id, args[1]); err != nil {
					return fmt.Errorf("rename %s: %w", args[0], err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s -> %s\n", args[0], pathOf(ws, id))
				return nil
			})
		},
	}
}
