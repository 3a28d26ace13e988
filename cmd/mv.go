package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-codecollab/pkg/service"
	"github.com/mattsolo1/grove-codecollab/pkg/tree"
	"github.com/mattsolo1/grove-codecollab/pkg/workspace"
)

func NewMvCmd(svc **service.Service) *cobra.Command {
	return &cobra.Command{
		Use:   "mv <path>... <directory>",
		Short: "Move files or directories into another directory",
		Long: `Move nodes into a directory. Use "/" for the room root.

Examples:
  codecollab mv src/a.js lib
  codecollab mv notes.md todo.md /`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return update(svc, func(ws *workspace.Workspace) error {
				dest := args[len(args)-1]
				target, err := resolve(ws, dest+tree.Separator)
				if err != nil {
					return err
				}
				for _, p := range args[:len(args)-1] {
					id, err := resolve(ws, p)
					if err != nil {
						return err
					}
					if err := ws.Move(id, target); err != nil {
						return fmt.Errorf("move %s: %w", p, err)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Moved %s -> %s\n", p, pathOf(ws, id))
				}
				return nil
			})
		},
	}
}
