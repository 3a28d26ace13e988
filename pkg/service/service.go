package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	gosync "sync"

	"github.com/sirupsen/logrus"

	"github.com/mattsolo1/grove-codecollab/pkg/commit"
	"github.com/mattsolo1/grove-codecollab/pkg/export"
	"github.com/mattsolo1/grove-codecollab/pkg/search"
	codesync "github.com/mattsolo1/grove-codecollab/pkg/sync"
	"github.com/mattsolo1/grove-codecollab/pkg/sync/github"
	"github.com/mattsolo1/grove-codecollab/pkg/tree"
	"github.com/mattsolo1/grove-codecollab/pkg/workspace"
)

// ErrRoomExists is returned when creating over a stored room.
var ErrRoomExists = errors.New("room already exists")

// Service is the core room service
type Service struct {
	Registry *workspace.Registry
	Index    *search.Index
	Config   *Config

	providers *codesync.Registry
	log       logrus.FieldLogger

	mu    gosync.Mutex
	locks map[string]*gosync.Mutex
}

// Config holds service configuration
type Config struct {
	DataDir      string
	ExportFormat string
	Sync         codesync.Config
}

// Option configures a Service.
type Option func(*Service)

// WithProviders replaces the push provider registry.
func WithProviders(r *codesync.Registry) Option {
	return func(s *Service) { s.providers = r }
}

// New creates a new room service
func New(config *Config, logger logrus.FieldLogger, opts ...Option) (*Service, error) {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	if config.Sync.Provider == "" {
		config.Sync = codesync.DefaultConfig()
	}

	registry, err := workspace.NewRegistry(config.DataDir, logger)
	if err != nil {
		return nil, fmt.Errorf("open registry: %w", err)
	}
	index, err := search.NewIndex(filepath.Join(config.DataDir, "index.db"))
	if err != nil {
		registry.Close()
		return nil, fmt.Errorf("create index: %w", err)
	}

	s := &Service{
		Registry: registry,
		Index:    index,
		Config:   config,
		log:      logger,
		locks:    make(map[string]*gosync.Mutex),
	}
	for _, o := range opts {
		o(s)
	}
	if s.providers == nil {
		s.providers = codesync.NewRegistry()
		s.providers.RegisterProvider("github", github.Factory(github.WithLogger(logger)))
	}
	return s, nil
}

// Close releases the registry and the index.
func (s *Service) Close() error {
	return errors.Join(s.Index.Close(), s.Registry.Close())
}

// lock serializes access to one room and returns the unlock function.
func (s *Service) lock(room string) func() {
	s.mu.Lock()
	m, ok := s.locks[room]
	if !ok {
		m = &gosync.Mutex{}
		s.locks[room] = m
	}
	s.mu.Unlock()
	m.Lock()
	return m.Unlock
}

// OpenRoom loads a room. With create set, a missing room is created empty
// and stored.
func (s *Service) OpenRoom(name string, create bool) (*workspace.Workspace, error) {
	if err := workspace.ValidateRoomName(name); err != nil {
		return nil, err
	}
	ws, err := s.Registry.Load(name)
	if err == nil {
		return ws, nil
	}
	if !create || !errors.Is(err, workspace.ErrRoomNotFound) {
		return nil, err
	}

	ws = workspace.New(name, s.log)
	if err := s.SaveRoom(ws); err != nil {
		return nil, err
	}
	s.log.WithField("room", name).Info("room created")
	return ws, nil
}

// CreateRoom stores a new, empty room.
func (s *Service) CreateRoom(name string) (*workspace.Workspace, error) {
	unlock := s.lock(name)
	defer unlock()

	exists, err := s.Registry.Exists(name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: %s", ErrRoomExists, name)
	}
	return s.OpenRoom(name, true)
}

// LoadSnapshot restores snap and stores it under snap.Room. An existing
// room is only overwritten when replace is set.
func (s *Service) LoadSnapshot(snap *workspace.Snapshot, replace bool) (*workspace.Workspace, error) {
	ws, err := workspace.Restore(snap, s.log)
	if err != nil {
		return nil, err
	}

	unlock := s.lock(ws.Room)
	defer unlock()

	exists, err := s.Registry.Exists(ws.Room)
	if err != nil {
		return nil, err
	}
	if exists && !replace {
		return nil, fmt.Errorf("%w: %s", ErrRoomExists, ws.Room)
	}
	if err := s.SaveRoom(ws); err != nil {
		return nil, err
	}
	return ws, nil
}

// SaveRoom stores the room and refreshes its search rows. Indexing
// failures are logged, not returned.
func (s *Service) SaveRoom(ws *workspace.Workspace) error {
	if err := s.Registry.Save(ws); err != nil {
		return err
	}
	entries, err := export.Bundle(ws.Tree().Snapshot(), "")
	if err == nil {
		err = s.Index.IndexRoom(ws.Room, entries)
	}
	if err != nil {
		s.log.WithError(err).WithField("room", ws.Room).Warn("failed to index room")
	}
	return nil
}

// Update runs fn against the stored room under the room's lock and saves
// the result when fn succeeds.
func (s *Service) Update(name string, create bool, fn func(ws *workspace.Workspace) error) error {
	unlock := s.lock(name)
	defer unlock()

	ws, err := s.OpenRoom(name, create)
	if err != nil {
		return err
	}
	if err := fn(ws); err != nil {
		return err
	}
	return s.SaveRoom(ws)
}

// View runs fn against the stored room under the room's lock without
// saving.
func (s *Service) View(name string, fn func(ws *workspace.Workspace) error) error {
	unlock := s.lock(name)
	defer unlock()

	ws, err := s.OpenRoom(name, false)
	if err != nil {
		return err
	}
	return fn(ws)
}

// ListRooms lists every stored room
func (s *Service) ListRooms() ([]*workspace.RoomInfo, error) {
	return s.Registry.List()
}

// RemoveRoom deletes a room and its search rows
func (s *Service) RemoveRoom(name string) error {
	unlock := s.lock(name)
	defer unlock()

	if err := s.Registry.Remove(name); err != nil {
		return err
	}
	if err := s.Index.RemoveRoom(name); err != nil {
		s.log.WithError(err).WithField("room", name).Warn("failed to remove room from index")
	}
	return nil
}

// Resolve turns a room path into a node id. "" resolves to the root.
func Resolve(ws *workspace.Workspace, path string) (tree.ID, error) {
	return ws.Tree().Lookup(strings.TrimPrefix(path, "./"))
}

// Export writes the room, or the subtree at subtreePath, as an archive.
// An empty format uses the configured default.
func (s *Service) Export(ws *workspace.Workspace, subtreePath, format string, w io.Writer) error {
	var id tree.ID
	if subtreePath != "" {
		var err error
		if id, err = Resolve(ws, subtreePath); err != nil {
			return err
		}
	}
	entries, err := export.Bundle(ws.Tree().Snapshot(), id)
	if err != nil {
		return err
	}
	if format == "" {
		format = s.Config.ExportFormat
	}
	return export.Write(w, format, entries)
}

// PlanCommit lists the files a push of the room would contain
func (s *Service) PlanCommit(ws *workspace.Workspace) *commit.Plan {
	return ws.PlanCommit()
}

// PushOptions describes where a push goes.
type PushOptions struct {
	Repository string
	Message    string
	// Create, when set, creates the repository first.
	Create *codesync.RepoSpec
}

// Push sends the selected files of plan to the configured provider. The
// plan is a copy of the room's state, so the room is never touched.
func (s *Service) Push(ctx context.Context, plan *commit.Plan, opts PushOptions) (*codesync.PushResult, error) {
	if opts.Create == nil && strings.TrimSpace(opts.Repository) == "" {
		return nil, codesync.ErrNoRepository
	}
	req, err := plan.Payload(opts.Repository, opts.Message)
	if err != nil {
		return nil, err
	}
	provider, err := s.providers.Provider(s.Config.Sync)
	if err != nil {
		return nil, err
	}

	log := s.log.WithFields(logrus.Fields{"provider": provider.Name(), "files": len(req.Files)})
	var res *codesync.PushResult
	if opts.Create != nil {
		res, err = provider.CreateAndPush(ctx, *opts.Create, req)
	} else {
		res, err = provider.Push(ctx, req)
	}
	if err != nil {
		log.WithError(err).Warn("push failed")
		return res, err
	}
	log.WithField("repository", res.Repository.FullName).Info("pushed")
	return res, nil
}

// SearchOption tunes Search.
type SearchOption func(*search.Options)

// InRoom restricts a search to one room.
func InRoom(name string) SearchOption {
	return func(o *search.Options) { o.Room = name }
}

// WithLimit caps the number of matches.
func WithLimit(n int) SearchOption {
	return func(o *search.Options) { o.Limit = n }
}

// Search searches the indexed files of every room
func (s *Service) Search(query string, options ...SearchOption) ([]search.Match, error) {
	opts := &search.Options{Limit: 50}
	for _, opt := range options {
		opt(opts)
	}
	results, err := s.Index.Search(query, opts)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	return results, nil
}
