package sync

import (
	"errors"
	"strings"
)

// Upstream failure classes. An *UpstreamError unwraps to one of these when
// the upstream text could be classified.
var (
	ErrNameExists     = errors.New("repository name already exists")
	ErrRateLimited    = errors.New("rate limit exceeded")
	ErrAuthentication = errors.New("authentication failed")
	// ErrPartial means the repository was created but the push failed.
	ErrPartial = errors.New("repository created but push failed")
)

// UpstreamError carries a user-facing message along with the raw text the
// remote tool produced.
type UpstreamError struct {
	Op       string
	Message  string
	Upstream string
	Kind     error
	Err      error
}

func (e *UpstreamError) Error() string {
	if e.Op == "" {
		return e.Message
	}
	return e.Op + ": " + e.Message
}

func (e *UpstreamError) Unwrap() []error {
	var errs []error
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

var authMarkers = []string{
	"Authentication failed",
	"could not read Username",
	"Invalid username or password",
	"403",
	"authentication",
	"permissions",
	"gh auth login",
}

// Classify maps upstream output to a message fit for the user and a
// failure class. Unknown output is passed through trimmed.
func Classify(upstream string) (string, error) {
	text := strings.TrimSpace(upstream)
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "name already exists"):
		return "A repository with this name already exists in your account. Please choose a different name.", ErrNameExists
	case strings.Contains(lower, "rate limit"):
		return "API rate limit exceeded. Please try again later.", ErrRateLimited
	}
	for _, m := range authMarkers {
		if strings.Contains(text, m) {
			return "Authentication failed. Log in again with permission to push to this repository.", ErrAuthentication
		}
	}
	if text == "" {
		text = "upstream command failed"
	}
	return text, nil
}

// NewUpstreamError classifies upstream output into an *UpstreamError.
func NewUpstreamError(op, upstream string, err error) *UpstreamError {
	msg, kind := Classify(upstream)
	return &UpstreamError{
		Op:       op,
		Message:  msg,
		Upstream: strings.TrimSpace(upstream),
		Kind:     kind,
		Err:      err,
	}
}
