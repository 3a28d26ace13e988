package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-codecollab/pkg/commit"
	"github.com/mattsolo1/grove-codecollab/pkg/service"
	codesync "github.com/mattsolo1/grove-codecollab/pkg/sync"
	"github.com/mattsolo1/grove-codecollab/pkg/workspace"
)

func NewCommitCmd(svc **service.Service) *cobra.Command {
	var (
		message     string
		repo        string
		create      string
		description string
		private     bool
		exclude     []string
		only        []string
		dryRun      bool
		timeout     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Push the room's files to GitHub",
		Long: `Collect the room's files (active tab first, then open tabs, then the
rest of the tree) and push them as a single commit, replacing the remote
branch. Empty files get starter content. Use --create to make a new
repository first.

Examples:
  codecollab commit --dry-run
  codecollab commit -m "initial" --repo https://github.com/me/project
  codecollab commit -m "initial" --create project --private
  codecollab commit -m "fix" --repo me/project --exclude notes.md`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var plan *commit.Plan
			err := view(svc, func(ws *workspace.Workspace) error {
				plan = (*svc).PlanCommit(ws)
				return nil
			})
			if err != nil {
				return err
			}
			if err := applySelection(plan, only, exclude); err != nil {
				return err
			}

			if dryRun {
				return printPlan(cmd.OutOrStdout(), plan)
			}

			opts := service.PushOptions{Repository: repo, Message: message}
			if create != "" {
				opts.Create = &codesync.RepoSpec{Name: create, Description: description, Private: private}
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			res, err := (*svc).Push(ctx, plan, opts)
			var upstream *codesync.UpstreamError
			if errors.As(err, &upstream) && upstream.Upstream != "" {
				fmt.Fprintln(cmd.ErrOrStderr(), upstream.Upstream)
			}
			if errors.Is(err, codesync.ErrPartial) && res != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Repository created at %s but the push failed\n", res.Repository.HTMLURL)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Pushed %d files to %s (%s)\n", res.Files, res.Repository.FullName, res.Branch)
			if res.Repository.HTMLURL != "" {
				fmt.Fprintln(cmd.OutOrStdout(), res.Repository.HTMLURL)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "Commit message")
	cmd.Flags().StringVar(&repo, "repo", "", "Existing repository URL or owner/name")
	cmd.Flags().StringVar(&create, "create", "", "Create a repository with this name and push to it")
	cmd.Flags().StringVar(&description, "description", "", "Description for --create")
	cmd.Flags().BoolVar(&private, "private", false, "Make the --create repository private")
	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "Leave these paths out")
	cmd.Flags().StringSliceVar(&only, "only", nil, "Push only these paths")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List the files that would be pushed")
	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "Give up after this long")
	cmd.MarkFlagsMutuallyExclusive("repo", "create")
	return cmd
}

func applySelection(plan *commit.Plan, only, exclude []string) error {
	if len(only) > 0 {
		plan.SetAll(false)
		for _, p := range only {
			if err := plan.Select(p, true); err != nil {
				return fmt.Errorf("%s: %w", p, err)
			}
		}
	}
	for _, p := range exclude {
		if err := plan.Select(p, false); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

func printPlan(out io.Writer, plan *commit.Plan) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, it := range plan.Items {
		box := "[ ]"
		if it.Selected {
			box = "[x]"
		}
		note := ""
		if it.Content == "" {
			note = "starter content"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", box, it.Path, it.Status, note)
	}
	if plan.Fallback {
		fmt.Fprintln(w, "(room is empty, a starter file will be pushed)")
	}
	return w.Flush()
}
