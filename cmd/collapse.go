package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-codecollab/pkg/service"
	"github.com/mattsolo1/grove-codecollab/pkg/workspace"
)

func NewCollapseCmd(svc **service.Service) *cobra.Command {
	return &cobra.Command{
		Use:   "collapse",
		Short: "Collapse every directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return update(svc, func(ws *workspace.Workspace) error {
				ws.CollapseAll()
				return nil
			})
		},
	}
}
