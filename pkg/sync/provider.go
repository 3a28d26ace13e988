// Package sync pushes a room's selected files to a remote git host.
package sync

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
)

// Provider defines the interface for a remote that accepts pushes (e.g., GitHub).
type Provider interface {
	// Name returns the provider's name (e.g., "github").
	Name() string
	// Push commits the requested files to an existing repository.
	Push(ctx context.Context, req *PushRequest) (*PushResult, error)
	// CreateAndPush creates a repository and pushes the requested files to it.
	CreateAndPush(ctx context.Context, spec RepoSpec, req *PushRequest) (*PushResult, error)
}

var (
	ErrNoMessage      = errors.New("commit message is required")
	ErrNoFiles        = errors.New("at least one file must be selected")
	ErrNoRepository   = errors.New("repository is required")
	ErrMissingContent = errors.New("selected file has no content")
	ErrInvalidPath    = errors.New("invalid file path")
)

// PushRequest is the payload sent to a provider.
type PushRequest struct {
	Repository   string            `json:"repoUrl,omitempty"`
	Message      string            `json:"message"`
	Files        []string          `json:"files"`
	FileContents map[string]string `json:"fileContents"`
}

// RepoSpec describes a repository to create.
type RepoSpec struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Private     bool   `json:"private"`
}

// Repository identifies a remote repository.
type Repository struct {
	HTMLURL  string `json:"html_url"`
	FullName string `json:"full_name"`
}

// PushResult reports where the files went.
type PushResult struct {
	Repository Repository `json:"repository"`
	Branch     string     `json:"branch,omitempty"`
	Files      int        `json:"files"`
}

// Validate checks the fields every provider needs. The repository is
// optional here because CreateAndPush fills it in.
func (r *PushRequest) Validate() error {
	if r == nil {
		return ErrNoFiles
	}
	if strings.TrimSpace(r.Message) == "" {
		return ErrNoMessage
	}
	if len(r.Files) == 0 {
		return ErrNoFiles
	}
	for _, f := range r.Files {
		if err := CleanPath(f); err != nil {
			return err
		}
		if r.FileContents[f] == "" {
			return fmt.Errorf("%w: %s", ErrMissingContent, f)
		}
	}
	return nil
}

// CleanPath rejects paths that would escape a checkout when materialized.
func CleanPath(p string) error {
	if p == "" || strings.HasPrefix(p, "/") || strings.Contains(p, "\\") {
		return fmt.Errorf("%w: %q", ErrInvalidPath, p)
	}
	if c := path.Clean(p); c != p || c == ".." || strings.HasPrefix(c, "../") {
		return fmt.Errorf("%w: %q", ErrInvalidPath, p)
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == ".git" {
			return fmt.Errorf("%w: %q", ErrInvalidPath, p)
		}
	}
	return nil
}

// RepoURL normalizes a user-supplied repository URL to its clone form. The
// host must match base (for example "https://github.com"); a bare
// "owner/name" is resolved against base.
func RepoURL(raw, base string) (string, error) {
	u := strings.TrimSpace(raw)
	if u == "" {
		return "", ErrNoRepository
	}
	if !strings.Contains(u, "://") && strings.Count(u, "/") == 1 && !strings.HasPrefix(u, "/") && !strings.HasSuffix(u, "/") {
		u = strings.TrimSuffix(base, "/") + "/" + u
	}
	host := strings.TrimPrefix(strings.TrimPrefix(base, "https://"), "http://")
	if !strings.Contains(u, host) {
		return "", fmt.Errorf("%w: %q is not a %s repository URL", ErrNoRepository, raw, host)
	}
	if !strings.HasSuffix(u, ".git") {
		u += ".git"
	}
	return u, nil
}

// RepositoryFromURL derives the browsable URL and owner/name from a clone URL.
func RepositoryFromURL(cloneURL string) Repository {
	html := strings.TrimSuffix(cloneURL, ".git")
	full := html
	if i := strings.Index(full, "://"); i >= 0 {
		full = full[i+3:]
	}
	if i := strings.Index(full, "/"); i >= 0 {
		full = full[i+1:]
	}
	return Repository{HTMLURL: html, FullName: full}
}
