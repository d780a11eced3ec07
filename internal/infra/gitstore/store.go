package gitstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Store maintains a local clone of the ring repository. Credentials travel
// in the repo URL, the same convention as the hosting service's deploy
// tokens.
type Store struct {
	repoURL string
	dir     string
}

// New creates a store for the given remote URL and local clone directory.
func New(repoURL, dir string) *Store {
	return &Store{
		repoURL: repoURL,
		dir:     dir,
	}
}

// Path returns the local clone directory.
func (s *Store) Path() string {
	return s.dir
}

// Update brings the local clone up to date with the remote: hard-reset plus
// pull when a clone exists, a fresh clone otherwise. A clone that fails to
// pull is thrown away and recloned.
func (s *Store) Update(ctx context.Context) error {
	repo, err := git.PlainOpen(s.dir)
	if err != nil {
		return s.clone(ctx)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return s.clone(ctx)
	}

	// Drop any stray local edits before pulling
	if err := wt.Reset(&git.ResetOptions{Mode: git.HardReset}); err != nil {
		return s.clone(ctx)
	}

	err = wt.PullContext(ctx, &git.PullOptions{Force: true})
	if err == nil || errors.Is(err, git.NoErrAlreadyUpToDate) {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	fmt.Printf("[GitStore] Pull failed (%v), recloning\n", err)
	return s.clone(ctx)
}

func (s *Store) clone(ctx context.Context) error {
	if err := os.RemoveAll(s.dir); err != nil {
		return fmt.Errorf("failed to clear clone dir: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.dir), 0755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	_, err := git.PlainCloneContext(ctx, s.dir, false, &git.CloneOptions{
		URL: s.repoURL,
	})
	if err != nil {
		return fmt.Errorf("failed to clone %s: %w", s.repoURL, err)
	}
	return nil
}

// CommitAndPush stages the file at the repo-relative path, commits it, and
// pushes to the remote. An empty diff is not an error.
func (s *Store) CommitAndPush(ctx context.Context, path, message string) error {
	repo, err := git.PlainOpen(s.dir)
	if err != nil {
		return fmt.Errorf("failed to open clone: %w", err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to open worktree: %w", err)
	}

	if _, err := wt.Add(path); err != nil {
		return fmt.Errorf("failed to stage %s: %w", path, err)
	}

	_, err = wt.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  "fediring-manager",
			Email: "fediring-manager@noreply.localhost",
			When:  time.Now(),
		},
	})
	if err != nil && !errors.Is(err, git.ErrEmptyCommit) {
		return fmt.Errorf("failed to commit: %w", err)
	}

	err = repo.PushContext(ctx, &git.PushOptions{})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("failed to push: %w", err)
	}
	return nil
}
