package cmd

import (
	"fmt"
	"path"
	"strings"

	"github.com/mattsolo1/grove-codecollab/cmd/config"
	"github.com/mattsolo1/grove-codecollab/pkg/service"
	"github.com/mattsolo1/grove-codecollab/pkg/tree"
	"github.com/mattsolo1/grove-codecollab/pkg/workspace"
)

// update runs fn on the selected room and saves it.
func update(svc **service.Service, fn func(ws *workspace.Workspace) error) error {
	room, err := config.Room()
	if err != nil {
		return err
	}
	return (*svc).Update(room, false, fn)
}

// view runs fn on the selected room without saving.
func view(svc **service.Service, fn func(ws *workspace.Workspace) error) error {
	room, err := config.Room()
	if err != nil {
		return err
	}
	return (*svc).View(room, fn)
}

func resolve(ws *workspace.Workspace, p string) (tree.ID, error) {
	id, err := service.Resolve(ws, p)
	if err != nil {
		return "", fmt.Errorf("%s: %w", p, err)
	}
	return id, nil
}

func resolveFile(ws *workspace.Workspace, p string) (tree.ID, error) {
	id, err := resolve(ws, p)
	if err != nil {
		return "", err
	}
	if !ws.Tree().IsFile(id) {
		return "", fmt.Errorf("%s: %w", p, tree.ErrNotFile)
	}
	return id, nil
}

// splitParent splits a room path into its parent path and last segment.
func splitParent(p string) (string, string) {
	p = strings.Trim(p, tree.Separator)
	dir, name := path.Split(p)
	return strings.TrimSuffix(dir, tree.Separator), name
}

func pathOf(ws *workspace.Workspace, id tree.ID) string {
	p, err := ws.Tree().PathOf(id)
	if err != nil {
		return string(id)
	}
	return p
}
