package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-codecollab/pkg/service"
	"github.com/mattsolo1/grove-codecollab/pkg/tree"
	"github.com/mattsolo1/grove-codecollab/pkg/upload"
	"github.com/mattsolo1/grove-codecollab/pkg/workspace"
)

func NewImportCmd(svc **service.Service) *cobra.Command {
	var (
		into    string
		noRoot  bool
		maxSize int64
		workers int
	)

	cmd := &cobra.Command{
		Use:   "import <local-dir>",
		Short: "Upload a local folder into the room",
		Long: `Read every text file below a local directory and add it to the room.
The folder itself becomes a directory in the room unless --no-root is given.
Existing files with the same path get their content replaced. Hidden
directories, .git, binary files and files over the size limit are skipped.

Examples:
  codecollab import ./myproject
  codecollab import ./assets --into src --no-root`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, skipped, err := upload.FilesFromDir(cmd.Context(), args[0], &upload.Options{
				IncludeRoot: !noRoot,
				MaxFileSize: maxSize,
				Workers:     workers,
			})
			if err != nil {
				return err
			}
			for _, s := range skipped {
				fmt.Fprintf(cmd.ErrOrStderr(), "skipped %s: %s\n", s.Path, s.Reason)
			}

			return update(svc, func(ws *workspace.Workspace) error {
				parent, err := resolve(ws, into+tree.Separator)
				if err != nil {
					return err
				}
				ids, err := upload.Import(ws, parent, files)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d files\n", len(ids))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&into, "into", "", "Room directory to import into (default is the root)")
	cmd.Flags().BoolVar(&noRoot, "no-root", false, "Import the folder's contents without the folder itself")
	cmd.Flags().Int64Var(&maxSize, "max-size", upload.MaxFileSize, "Skip files larger than this many bytes")
	cmd.Flags().IntVar(&workers, "workers", 8, "Concurrent file reads")
	return cmd
}
