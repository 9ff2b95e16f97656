package adapter

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/go-git/go-git/v5"

	m "forgemut.dev/pkg/forgemut/internal/model"
)

// WorktreeAdapter inspects the version-control state of the project tree.
type WorktreeAdapter interface {
	// DirtyFiles returns the given project-relative paths that have
	// uncommitted changes. A tree that is not a repository has none.
	DirtyFiles(ctx context.Context, root m.Path, paths []m.Path) ([]m.Path, error)
}

// LocalWorktreeAdapter reads git status with go-git.
type LocalWorktreeAdapter struct{}

// NewLocalWorktreeAdapter constructs a LocalWorktreeAdapter.
func NewLocalWorktreeAdapter() *LocalWorktreeAdapter {
	return &LocalWorktreeAdapter{}
}

// DirtyFiles reports which of paths differ from HEAD or the index.
func (a *LocalWorktreeAdapter) DirtyFiles(ctx context.Context, root m.Path, paths []m.Path) ([]m.Path, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	absRoot, err := filepath.Abs(string(root))
	if err != nil {
		return nil, err
	}

	repo, err := git.PlainOpenWithOptions(absRoot, &git.PlainOpenOptions{DetectDotGit: true})
	if errors.Is(err, git.ErrRepositoryNotExists) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("open worktree: %w", err)
	}

	status, err := worktree.Status()
	if err != nil {
		return nil, fmt.Errorf("read status: %w", err)
	}

	repoRoot := worktree.Filesystem.Root()

	var dirty []m.Path

	for _, path := range paths {
		rel, err := filepath.Rel(repoRoot, filepath.Join(absRoot, string(path)))
		if err != nil {
			continue
		}

		fileStatus, ok := status[filepath.ToSlash(rel)]
		if !ok {
			continue
		}

		if fileStatus.Worktree != git.Unmodified || fileStatus.Staging != git.Unmodified {
			dirty = append(dirty, path)
		}
	}

	sort.Slice(dirty, func(i, j int) bool { return dirty[i] < dirty[j] })

	return dirty, nil
}
