package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-codecollab/cmd/config"
	"github.com/mattsolo1/grove-codecollab/pkg/service"
	"github.com/mattsolo1/grove-codecollab/pkg/workspace"
)

func NewRoomCmd(svc **service.Service) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "room",
		Short: "Manage rooms",
		Long: `Create, list, remove and back up rooms.

Examples:
  codecollab room create demo
  codecollab room list
  codecollab room dump demo > demo.yaml
  codecollab room load demo.yaml --name copy`,
	}

	cmd.AddCommand(newRoomListCmd(svc))
	cmd.AddCommand(newRoomCreateCmd(svc))
	cmd.AddCommand(newRoomRmCmd(svc))
	cmd.AddCommand(newRoomDumpCmd(svc))
	cmd.AddCommand(newRoomLoadCmd(svc))
	return cmd
}

func newRoomListCmd(svc **service.Service) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List rooms",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rooms, err := (*svc).ListRooms()
			if err != nil {
				return err
			}
			if len(rooms) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No rooms found")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tFILES\tUPDATED")
			for _, r := range rooms {
				fmt.Fprintf(w, "%s\t%d\t%s\n", r.Name, r.Files, r.UpdatedAt.Local().Format("2006-01-02 15:04"))
			}
			return w.Flush()
		},
	}
}

func newRoomCreateCmd(svc **service.Service) *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create an empty room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := (*svc).CreateRoom(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created room %s\n", args[0])
			return nil
		},
	}
}

func newRoomRmCmd(svc **service.Service) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <name>...",
		Short: "Remove rooms",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range args {
				if err := (*svc).RemoveRoom(name); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed room %s\n", name)
			}
			return nil
		},
	}
}

func newRoomDumpCmd(svc **service.Service) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "dump [name]",
		Short: "Write a room snapshot as YAML",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := roomArg(args)
			if err != nil {
				return err
			}
			var out io.Writer = cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}
			return (*svc).View(name, func(ws *workspace.Workspace) error {
				return workspace.EncodeYAML(out, ws.Snapshot())
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to file instead of stdout")
	return cmd
}

func newRoomLoadCmd(svc **service.Service) *cobra.Command {
	var (
		name  string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "load <file>",
		Short: "Load a room from a YAML snapshot",
		Args:  cobra.ExactArgs(1),
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
			snap, err := workspace.DecodeYAML(in)
			if err != nil {
				return err
			}
			if name != "" {
				snap.Room = name
			}

			ws, err := (*svc).LoadSnapshot(snap, force)
			if errors.Is(err, service.ErrRoomExists) {
				return fmt.Errorf("%w, use --force to replace it", err)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Loaded room %s (%d nodes)\n", ws.Room, ws.Tree().Len())
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Store under this room name")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Replace an existing room")
	return cmd
}

func roomArg(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	name, err := config.Room()
	if err != nil {
		return "", errors.New("room name required")
	}
	return name, nil
}
