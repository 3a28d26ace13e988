package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-codecollab/pkg/service"
	"github.com/mattsolo1/grove-codecollab/pkg/workspace"
)

func NewActivateCmd(svc **service.Service) *cobra.Command {
	return &cobra.Command{
		Use:   "activate <path>",
		Short: "Switch to an open tab",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return update(svc, func(ws *workspace.Workspace) error {
				id, err := resolveFile(ws, args[0])
				if err != nil {
					return err
				}
				if !ws.SetActive(id) {
					return fmt.Errorf("%s is not open", args[0])
				}
				return nil
			})
		},
	}
}
