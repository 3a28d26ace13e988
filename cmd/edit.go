package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-codecollab/pkg/service"
	"github.com/mattsolo1/grove-codecollab/pkg/workspace"
)

func NewEditCmd(svc **service.Service) *cobra.Command {
	var (
		content string
		file    string
		draft   bool
		show    bool
	)

	cmd := &cobra.Command{
		Use:   "edit <path>",
		Short: "Set or show a file's content",
		Long: `Replace a file's content from --content or --file ("-" reads stdin).
With --draft the text is kept as unsaved editor text on the file's tab
(opening it) instead of being written to the file.

Examples:
  codecollab edit src/index.js --content 'console.log(1)'
  cat main.py | codecollab edit main.py --file -
  codecollab edit main.py --show`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if show {
				return view(svc, func(ws *workspace.Workspace) error {
					id, err := resolveFile(ws, args[0])
					if err != nil {
						return err
					}
					n, _ := ws.File(id)
					_, err = io.WriteString(cmd.OutOrStdout(), n.Content)
					return err
				})
			}

			text, err := readContent(cmd, content, file)
			if err != nil {
				return err
			}
			return update(svc, func(ws *workspace.Workspace) error {
				id, err := resolveFile(ws, args[0])
				if err != nil {
					return err
				}
				if draft {
					ws.OpenFile(id)
					ws.EditDraft(id, text)
					return nil
				}
				ws.UpdateFileContent(id, text)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&content, "content", "c", "", "New content")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Read new content from a local file, - for stdin")
	cmd.Flags().BoolVar(&draft, "draft", false, "Store as unsaved tab text")
	cmd.Flags().BoolVar(&show, "show", false, "Print the current content")
	cmd.MarkFlagsMutuallyExclusive("content", "file")
	return cmd
}

func readContent(cmd *cobra.Command, content, file string) (string, error) {
	switch {
	case file == "-":
		data, err := io.ReadAll(cmd.InOrStdin())
		return string(data), err
	case file != "":
		data, err := os.ReadFile(file)
		return string(data), err
	case cmd.Flags().Changed("content"):
		return content, nil
	}
	return "", fmt.Errorf("pass --content or --file")
}
