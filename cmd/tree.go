package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-codecollab/pkg/service"
	"github.com/mattsolo1/grove-codecollab/pkg/tree"
	"github.com/mattsolo1/grove-codecollab/pkg/workspace"
)

func NewTreeCmd(svc **service.Service) *cobra.Command {
	var showAll bool

	cmd := &cobra.Command{
		Use:   "tree [path]",
		Short: "Print the room's file tree",
		Long: `Print the file tree, directories first. Collapsed directories are
shown with a "+" and not descended into unless --all is given. Open tabs are
marked with "*", the active tab with ">".`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return view(svc, func(ws *workspace.Workspace) error {
				root := ws.Tree().Sorted()
				if len(args) == 1 {
					id, err := resolve(ws, args[0])
					if err != nil {
						return err
					}
					if n := root.Find(id); n != nil {
						root = n
					}
				}

				marks := make(map[tree.ID]string)
				for _, id := range ws.OpenFiles() {
					marks[id] = "*"
				}
				if id, ok := ws.Active(); ok {
					marks[id] = ">"
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%s/\n", root.Name)
				printTree(out, root, "", marks, showAll)
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&showAll, "all", "a", false, "Descend into collapsed directories")
	return cmd
}

func printTree(out io.Writer, n *tree.Node, indent string, marks map[tree.ID]string, all bool) {
	for i, c := range n.Children {
		branch, next := "├── ", "│   "
		if i == len(n.Children)-1 {
			branch, next = "└── ", "    "
		}
		var label strings.Builder
		label.WriteString(c.Name)
		if c.IsDirectory() {
			label.WriteString("/")
			if !c.IsOpen {
				label.WriteString(" +")
			}
		} else if m, ok := marks[c.ID]; ok {
			label.WriteString(" " + m)
		}
		fmt.Fprintf(out, "%s%s%s\n", indent, branch, label.String())
		if c.IsDirectory() && (c.IsOpen || all) {
			printTree(out, c, indent+next, marks, all)
		}
	}
}
