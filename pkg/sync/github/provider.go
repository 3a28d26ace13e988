package github

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/sirupsen/logrus"

	"github.com/mattsolo1/grove-codecollab/pkg/sync"
)

// Runner executes an external command in dir and returns its combined output.
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run implements Runner.
func (ExecRunner) Run(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	return cmd.CombinedOutput()
}

// GitHubProvider implements the sync.Provider interface with the git and gh CLIs.
type GitHubProvider struct {
	cfg     sync.Config
	run     Runner
	log     logrus.FieldLogger
	tempDir string
}

// Option configures a GitHubProvider.
type Option func(*GitHubProvider)

// WithRunner replaces the command runner.
func WithRunner(r Runner) Option {
	return func(p *GitHubProvider) { p.run = r }
}

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(p *GitHubProvider) { p.log = l }
}

// WithTempDir sets the parent directory for checkouts.
func WithTempDir(dir string) Option {
	return func(p *GitHubProvider) { p.tempDir = dir }
}

// NewProvider creates a new GitHubProvider.
func NewProvider(cfg sync.Config, opts ...Option) *GitHubProvider {
	p := &GitHubProvider{cfg: cfg, run: ExecRunner{}}
	for _, o := range opts {
		o(p)
	}
	if p.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		p.log = l
	}
	if p.cfg.DefaultBranch == "" {
		p.cfg.DefaultBranch = "main"
	}
	if p.cfg.RemoteBase == "" {
		p.cfg.RemoteBase = sync.DefaultConfig().RemoteBase
	}
	return p
}

// Factory adapts NewProvider to sync.ProviderFactory.
func Factory(opts ...Option) sync.ProviderFactory {
	return func(cfg sync.Config) sync.Provider {
		return NewProvider(cfg, opts...)
	}
}

// Name returns the name of the provider.
func (p *GitHubProvider) Name() string {
	return "github"
}

// Push commits the requested files to an existing repository, replacing
// the default branch (falling back to the secondary branch name).
func (p *GitHubProvider) Push(ctx context.Context, req *sync.PushRequest) (*sync.PushResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	remote, err := sync.RepoURL(req.Repository, p.cfg.RemoteBase)
	if err != nil {
		return nil, err
	}

	branch, err := p.commitAndPush(ctx, remote, req)
	if err != nil {
		return nil, err
	}
	return &sync.PushResult{
		Repository: sync.RepositoryFromURL(remote),
		Branch:     branch,
		Files:      len(req.Files),
	}, nil
}

// ghRepo represents the JSON structure returned by 'gh repo view --json'.
type ghRepo struct {
	NameWithOwner string `json:"nameWithOwner"`
	URL           string `json:"url"`
}

// CreateAndPush creates a repository with gh and pushes the requested files.
// When creation succeeds but the push fails, the result is still returned
// along with an error wrapping sync.ErrPartial.
func (p *GitHubProvider) CreateAndPush(ctx context.Context, spec sync.RepoSpec, req *sync.PushRequest) (*sync.PushResult, error) {
	name := strings.TrimSpace(spec.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: repository name is required", sync.ErrNoRepository)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if _, ok := p.run.(ExecRunner); ok {
		if _, err := exec.LookPath("gh"); err != nil {
			return nil, fmt.Errorf("gh command not found in PATH, please install the GitHub CLI")
		}
	}

	visibility := "--public"
	if spec.Private || p.cfg.Private {
		visibility = "--private"
	}
	args := []string{"repo", "create", name, visibility}
	if spec.Description != "" {
		args = append(args, "--description", spec.Description)
	}
	args = append(args, "--clone=false")

	if out, err := p.run.Run(ctx, "", "gh", args...); err != nil {
		return nil, sync.NewUpstreamError("create repository", string(out), err)
	}

	out, err := p.run.Run(ctx, "", "gh", "repo", "view", name, "--json", "nameWithOwner,url")
	if err != nil {
		return nil, sync.NewUpstreamError("view repository", string(out), err)
	}
	var info ghRepo
	if err := json.Unmarshal(out, &info); err != nil {
		return nil, fmt.Errorf("failed to parse gh JSON output: %w", err)
	}

	repo := sync.Repository{HTMLURL: info.URL, FullName: info.NameWithOwner}
	if repo.HTMLURL == "" {
		repo.HTMLURL = strings.TrimSuffix(p.cfg.RemoteBase, "/") + "/" + info.NameWithOwner
	}
	result := &sync.PushResult{Repository: repo}
	p.log.WithField("repository", repo.FullName).Info("repository created")

	branch, err := p.commitAndPush(ctx, repo.HTMLURL+".git", req)
	if err != nil {
		return result, &sync.UpstreamError{
			Op:      "push",
			Message: "Repository created but failed to push code. You can push code manually later.",
			Kind:    sync.ErrPartial,
			Err:     err,
		}
	}
	result.Branch = branch
	result.Files = len(req.Files)
	return result, nil
}

// commitAndPush materializes the files, commits them and force-pushes to
// the default branch, then to the fallback branch.
func (p *GitHubProvider) commitAndPush(ctx context.Context, remote string, req *sync.PushRequest) (string, error) {
	dir, err := os.MkdirTemp(p.tempDir, "codecollab_commit_")
	if err != nil {
		return "", fmt.Errorf("create checkout dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			p.log.WithError(err).Warn("failed to clean up checkout dir")
		}
	}()

	if err := materialize(dir, req); err != nil {
		return "", err
	}

	commands := [][]string{{"init"}}
	if p.cfg.AuthorName != "" {
		commands = append(commands, []string{"config", "user.name", p.cfg.AuthorName})
	}
	if p.cfg.AuthorEmail != "" {
		commands = append(commands, []string{"config", "user.email", p.cfg.AuthorEmail})
	}
	commands = append(commands,
		[]string{"add", "-A"},
		[]string{"commit", "-m", req.Message},
		[]string{"remote", "add", "origin", remote},
	)

	for _, args := range commands {
		if out, err := p.run.Run(ctx, dir, "git", args...); err != nil {
			return "", sync.NewUpstreamError("git "+args[0], string(out), err)
		}
	}

	branches := []string{p.cfg.DefaultBranch}
	if fb := p.cfg.FallbackBranch; fb != "" && fb != p.cfg.DefaultBranch {
		branches = append(branches, fb)
	}

	var lastOut []byte
	var lastErr error
	for _, branch := range branches {
		out, err := p.run.Run(ctx, dir, "git", "push", "-f", "origin", "HEAD:"+branch)
		if err == nil {
			p.log.WithFields(logrus.Fields{"remote": remote, "branch": branch}).Info("pushed")
			return branch, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		p.log.WithError(err).WithField("branch", branch).Warn("push failed")
		lastOut, lastErr = out, err
	}
	return "", sync.NewUpstreamError("push", string(lastOut), lastErr)
}

// materialize writes every requested file below dir.
func materialize(dir string, req *sync.PushRequest) error {
	for _, rel := range req.Files {
		if err := sync.CleanPath(rel); err != nil {
			return err
		}
		target := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return fmt.Errorf("create directory for %s: %w", rel, err)
		}
		if err := os.WriteFile(target, []byte(req.FileContents[rel]), 0644); err != nil {
			return fmt.Errorf("write %s: %w", rel, err)
		}
	}
	return nil
}
