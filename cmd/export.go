package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-codecollab/cmd/config"
	"github.com/mattsolo1/grove-codecollab/pkg/export"
	"github.com/mattsolo1/grove-codecollab/pkg/service"
	"github.com/mattsolo1/grove-codecollab/pkg/workspace"
)

func NewExportCmd(svc **service.Service) *cobra.Command {
	var (
		output string
		format string
	)

	cmd := &cobra.Command{
		Use:   "export [path]",
		Short: "Download the room, or one directory, as an archive",
		Long: `Write the room's files to a zip (default) or tar.gz archive. A directory
argument exports only that subtree, keeping its name as the top folder.

Examples:
  codecollab export                    # <room>.zip
  codecollab export src -o src.tar.gz --format tar.gz
  codecollab export -o - > room.zip`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			room, err := config.Room()
			if err != nil {
				return err
			}
			subtree := ""
			if len(args) == 1 {
				subtree = args[0]
			}
			if format == "" {
				format = (*svc).Config.ExportFormat
			}
			if output == "" {
				output = room + export.Extension(format)
			}

			return view(svc, func(ws *workspace.Workspace) error {
				if output == "-" {
					return (*svc).Export(ws, subtree, format, cmd.OutOrStdout())
				}
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				if err := (*svc).Export(ws, subtree, format, f); err != nil {
					f.Close()
					os.Remove(output)
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", output)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Archive path, - for stdout (default <room>.<ext>)")
	cmd.Flags().StringVar(&format, "format", "", "zip or tar.gz (default from config)")
	return cmd
}
