package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-codecollab/pkg/service"
	"github.com/mattsolo1/grove-codecollab/pkg/workspace"
)

func NewOpenCmd(svc **service.Service) *cobra.Command {
	return &cobra.Command{
		Use:   "open [path]...",
		Short: "Open files in tabs, or list open tabs",
		Long: `Open files in editor tabs; the last one becomes active. Without
arguments, list the open tabs in order.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return view(svc, func(ws *workspace.Workspace) error {
					active, _ := ws.Active()
					for _, id := range ws.OpenFiles() {
						mark := " "
						if id == active {
							mark = ">"
						}
						draft := ""
						if _, ok := ws.Draft(id); ok {
							draft = " (unsaved)"
						}
						fmt.Fprintf(cmd.OutOrStdout(), "%s %s%s\n", mark, pathOf(ws, id), draft)
					}
					return nil
				})
			}

			return update(svc, func(ws *workspace.Workspace) error {
				for _, p := range args {
					id, err := resolveFile(ws, p)
					if err != nil {
						return err
					}
					ws.OpenFile(id)
				}
				return nil
			})
		},
	}
}
