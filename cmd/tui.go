package cmd

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-codecollab/internal/tui/browser"
	"github.com/mattsolo1/grove-codecollab/pkg/service"
)

// NewTuiCmd creates the `codecollab tui` command.
func NewTuiCmd(svc **service.Service) *cobra.Command {
	var create bool

	cmd := &cobra.Command{
		Use:   "tui [room]",
		Short: "Browse and edit a room interactively",
		Long: `Launch an interactive Terminal User Interface for a room.
The left pane shows the file tree, the right pane the open tabs and the
active file. Every change is saved as it is made.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Check for TTY
			if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
				return fmt.Errorf("TUI mode requires an interactive terminal")
			}

			room, err := roomArg(args)
			if err != nil {
				return err
			}
			if create {
				if _, err := (*svc).OpenRoom(room, true); err != nil {
					return err
				}
			}

			model, err := browser.New(*svc, room)
			if err != nil {
				return err
			}
			p := tea.NewProgram(model, tea.WithAltScreen())
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("error running TUI: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&create, "create", false, "Create the room if it does not exist")
	return cmd
}
