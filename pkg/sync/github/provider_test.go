package github

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattsolo1/grove-codecollab/pkg/sync"
)

type call struct {
	dir  string
	name string
	args []string
}

func (c call) String() string {
	return c.name + " " + strings.Join(c.args, " ")
}

// fakeRunner records commands and fails any whose text contains a key of fail.
type fakeRunner struct {
	calls []call
	fail  map[string]string
	reply map[string]string
	// files captures the checkout contents at commit time.
	files map[string]string
}

func (f *fakeRunner) Run(_ context.Context, dir, name string, args ...string) ([]byte, error) {
	c := call{dir: dir, name: name, args: args}
	f.calls = append(f.calls, c)
	text := c.String()
	if name == "git" && len(args) > 0 && args[0] == "commit" {
		f.files = map[string]string{}
		_ = filepath.Walk(dir, func(p string, info os.FileInfo, err error) error {
			if err != nil || info.IsDir() {
				return err
			}
			rel, _ := filepath.Rel(dir, p)
			data, _ := os.ReadFile(p)
			f.files[filepath.ToSlash(rel)] = string(data)
			return nil
		})
	}
	for key, out := range f.fail {
		if strings.Contains(text, key) {
			return []byte(out), errors.New("exit status 1")
		}
	}
	for key, out := range f.reply {
		if strings.Contains(text, key) {
			return []byte(out), nil
		}
	}
	return nil, nil
}

func (f *fakeRunner) commands() []string {
	var out []string
	for _, c := range f.calls {
		out = append(out, c.String())
	}
	return out
}

func request() *sync.PushRequest {
	return &sync.PushRequest{
		Repository: "https://github.com/me/project",
		Message:    "first commit",
		Files:      []string{"index.js", "src/util.py"},
		FileContents: map[string]string{
			"index.js":    "console.log(1)",
			"src/util.py": "print(2)",
		},
	}
}

func newTestProvider(t *testing.T, r *fakeRunner) *GitHubProvider {
	t.Helper()
	cfg := sync.DefaultConfig()
	cfg.AuthorName = "Pair Bot"
	cfg.AuthorEmail = "bot@example.com"
	return NewProvider(cfg, WithRunner(r), WithTempDir(t.TempDir()))
}

func TestPushRunsGitSequence(t *testing.T) {
	r := &fakeRunner{}
	p := newTestProvider(t, r)

	res, err := p.Push(context.Background(), request())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"git init",
		"git config user.name Pair Bot",
		"git config user.email bot@example.com",
		"git add -A",
		"git commit -m first commit",
		"git remote add origin https://github.com/me/project.git",
		"git push -f origin HEAD:main",
	}, r.commands())
	assert.Equal(t, "https://github.com/me/project", res.Repository.HTMLURL)
	assert.Equal(t, "me/project", res.Repository.FullName)
	assert.Equal(t, "main", res.Branch)
	assert.Equal(t, 2, res.Files)

	assert.Equal(t, map[string]string{
		"index.js":    "console.log(1)",
		"src/util.py": "print(2)",
	}, r.files)

	_, err = os.Stat(r.calls[0].dir)
	assert.True(t, os.IsNotExist(err), "checkout dir is removed")
}

func TestPushFallsBackToMaster(t *testing.T) {
	r := &fakeRunner{fail: map[string]string{"HEAD:main": "error: src refspec main does not match any"}}
	p := newTestProvider(t, r)

	res, err := p.Push(context.Background(), request())
	require.NoError(t, err)
	assert.Equal(t, "master", res.Branch)
	cmds := r.commands()
	assert.Equal(t, "git push -f origin HEAD:master", cmds[len(cmds)-1])
}

func TestPushClassifiesAuthFailure(t *testing.T) {
	r := &fakeRunner{fail: map[string]string{"git push": "fatal: Authentication failed for 'https://github.com/me/project.git/'"}}
	p := newTestProvider(t, r)

	_, err := p.Push(context.Background(), request())
	require.Error(t, err)
	assert.ErrorIs(t, err, sync.ErrAuthentication)

	var ue *sync.UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Contains(t, ue.Upstream, "Authentication failed")
}

func TestPushValidatesBeforeRunning(t *testing.T) {
	r := &fakeRunner{}
	p := newTestProvider(t, r)

	req := request()
	req.Message = ""
	_, err := p.Push(context.Background(), req)
	assert.ErrorIs(t, err, sync.ErrNoMessage)

	req = request()
	req.Repository = "https://example.com/me/project"
	_, err = p.Push(context.Background(), req)
	assert.ErrorIs(t, err, sync.ErrNoRepository)

	assert.Empty(t, r.calls)
}

func TestCreateAndPush(t *testing.T) {
	r := &fakeRunner{reply: map[string]string{
		"gh repo view": `{"nameWithOwner":"me/fresh","url":"https://github.com/me/fresh"}`,
	}}
	p := newTestProvider(t, r)

	res, err := p.CreateAndPush(context.Background(), sync.RepoSpec{Name: "fresh", Description: "demo", Private: true}, request())
	require.NoError(t, err)

	cmds := r.commands()
	assert.Equal(t, "gh repo create fresh --private --description demo --clone=false", cmds[0])
	assert.Contains(t, cmds, "git remote add origin https://github.com/me/fresh.git")
	assert.Equal(t, "me/fresh", res.Repository.FullName)
	assert.Equal(t, "https://github.com/me/fresh", res.Repository.HTMLURL)
}

func TestCreateAndPushNameExists(t *testing.T) {
	r := &fakeRunner{fail: map[string]string{"gh repo create": "GraphQL: Name already exists on this account"}}
	p := newTestProvider(t, r)

	res, err := p.CreateAndPush(context.Background(), sync.RepoSpec{Name: "taken"}, request())
	assert.Nil(t, res)
	assert.ErrorIs(t, err, sync.ErrNameExists)
	assert.Len(t, r.calls, 1)
}

func TestCreateAndPushPartialSuccess(t *testing.T) {
	r := &fakeRunner{
		reply: map[string]string{"gh repo view": `{"nameWithOwner":"me/fresh","url":"https://github.com/me/fresh"}`},
		fail:  map[string]string{"git push": "remote rejected"},
	}
	p := newTestProvider(t, r)

	res, err := p.CreateAndPush(context.Background(), sync.RepoSpec{Name: "fresh"}, request())
	require.Error(t, err)
	assert.ErrorIs(t, err, sync.ErrPartial)
	require.NotNil(t, res)
	assert.Equal(t, "me/fresh", res.Repository.FullName)
}

func TestCreateAndPushRequiresName(t *testing.T) {
	p := newTestProvider(t, &fakeRunner{})
	_, err := p.CreateAndPush(context.Background(), sync.RepoSpec{Name: "  "}, request())
	assert.ErrorIs(t, err, sync.ErrNoRepository)
}

func TestFactory(t *testing.T) {
	reg := sync.NewRegistry()
	reg.RegisterProvider("github", Factory(WithRunner(&fakeRunner{})))
	prov, err := reg.Provider(sync.DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, "github", prov.Name())
}
