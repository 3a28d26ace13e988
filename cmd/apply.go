package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-codecollab/cmd/config"
	"github.com/mattsolo1/grove-codecollab/pkg/collab"
	"github.com/mattsolo1/grove-codecollab/pkg/service"
	"github.com/mattsolo1/grove-codecollab/pkg/workspace"
)

func NewApplyCmd(svc **service.Service) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "apply <events.ndjson>",
		Short: "Replay collaboration events into the room",
		Long: `Apply newline-delimited JSON events, as broadcast between room members,
one per line ("-" reads stdin). Events for nodes the room no longer has are
skipped. Rejected events are reported; with --strict the room is left
untouched when any event is rejected.

Example line:
  {"type":"file-updated","payload":{"fileId":"...","newContent":"x"}}`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			events, err := collab.ReadEvents(in)
			if err != nil {
				return err
			}

			applier := collab.NewApplier(config.NewLogger())
			return update(svc, func(ws *workspace.Workspace) error {
				st, err := applier.Replay(ws, events)
				fmt.Fprintf(cmd.OutOrStdout(), "applied %d, skipped %d, rejected %d\n", st.Applied, st.Skipped, st.Failed)
				if err != nil && strict {
					return err
				}
				if err != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), err)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Fail without saving if any event is rejected")
	return cmd
}
