package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-codecollab/pkg/service"
	"github.com/mattsolo1/grove-codecollab/pkg/tree"
	"github.com/mattsolo1/grove-codecollab/pkg/workspace"
)

func NewToggleCmd(svc **service.Service) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <directory>...",
		Short: "Expand or collapse directories",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return update(svc, func(ws *workspace.Workspace) error {
				for _, p := range args {
					id, err := resolve(ws, p+tree.Separator)
					if err != nil {
						return err
					}
					if err := ws.ToggleDirectory(id); err != nil {
						return err
					}
					state := "collapsed"
					if n, ok := ws.Tree().Get(id); ok && n.IsOpen {
						state = "expanded"
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", p, state)
				}
				return nil
			})
		},
	}
}
