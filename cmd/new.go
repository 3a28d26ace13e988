package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-codecollab/pkg/service"
	"github.com/mattsolo1/grove-codecollab/pkg/tree"
	"github.com/mattsolo1/grove-codecollab/pkg/workspace"
)

func NewNewCmd(svc **service.Service) *cobra.Command {
	var (
		isDir   bool
		parents bool
		open    bool
	)

	cmd := &cobra.Command{
		Use:   "new <path>",
		Short: "Create a file or directory",
		Long: `Create an empty file, or a directory with --dir.

Examples:
  codecollab new src/index.js           # File in an existing directory
  codecollab new -p lib/util/strings.go # Create missing parents
  codecollab new --dir docs`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return update(svc, func(ws *workspace.Workspace) error {
				parentPath, name := splitParent(args[0])
				parent, err := resolveParent(ws, parentPath, parents)
				if err != nil {
					return err
				}

				var id tree.ID
				if isDir {
					id, err = ws.CreateDirectory(parent, name)
				} else {
					id, err = ws.CreateFile(parent, name)
				}
				if err != nil {
					return fmt.Errorf("create %s: %w", args[0], err)
				}
				if open && !isDir {
					ws.OpenFile(id)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", pathOf(ws, id))
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&isDir, "dir", "d", false, "Create a directory")
	cmd.Flags().BoolVarP(&parents, "parents", "p", false, "Create missing parent directories")
	cmd.Flags().BoolVar(&open, "open", false, "Open the new file in a tab")
	return cmd
}

// resolveParent finds the directory at p, creating the chain when mkdir is
// set.
func resolveParent(ws *workspace.Workspace, p string, mkdir bool) (tree.ID, error) {
	id, err := ws.Tree().Lookup(p + tree.Separator)
	if err == nil {
		return id, nil
	}
	if !mkdir || !errors.Is(err, tree.ErrNotFound) {
		return "", fmt.Errorf("%s: %w", p, err)
	}
	grandparent, name := splitParent(p)
	gid, err := resolveParent(ws, grandparent, true)
	if err != nil {
		return "", err
	}
	return ws.CreateDirectory(gid, name)
}
