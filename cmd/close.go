package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-codecollab/pkg/service"
	"github.com/mattsolo1/grove-codecollab/pkg/workspace"
)

func NewCloseCmd(svc **service.Service) *cobra.Command {
	var (
		noFocus bool
		all     bool
	)

	cmd := &cobra.Command{
		Use:   "close [path]...",
		Short: "Close tabs",
		Long: `Close editor tabs, saving unsaved text. Closing the active tab
activates its right neighbour, or its left one when it was last.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && !all {
				return fmt.Errorf("nothing to close: pass paths or --all")
			}
			return update(svc, func(ws *workspace.Workspace) error {
				if all {
					for _, id := range ws.OpenFiles() {
						ws.CloseFile(id)
					}
					return nil
				}
				for _, p := range args {
					id, err := resolveFile(ws, p)
					if err != nil {
						return err
					}
					var closed bool
					if noFocus {
						closed = ws.CloseFile(id)
					} else {
						closed = ws.CloseFileAndFocusNext(id)
					}
					if !closed {
						return fmt.Errorf("%s is not open", p)
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&noFocus, "no-focus", false, "Leave no active tab when closing the active one")
	cmd.Flags().BoolVar(&all, "all", false, "Close every tab")
	return cmd
}
