// Package gitutil inspects the workspace git repository. Dev
// container setups for repos with submodules need those submodules
// present before lifecycle commands run, so cabin checks and
// initializes them during up.
package gitutil

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"

	git "github.com/go-git/go-git/v5"
)

// Submodule describes one declared submodule.
type Submodule struct {
	Name   string
	Path   string
	URL    string
	Branch string
}

// IsRepo reports whether dir is inside a git repository.
func IsRepo(dir string) bool {
	_, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	return err == nil
}

// Submodules lists the submodules declared in the repository at dir.
// A directory that is not a repository yields an empty list.
func Submodules(dir string) ([]Submodule, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, nil
		}
		return nil, fmt.Errorf("open repository: %w", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("open worktree: %w", err)
	}

	declared, err := worktree.Submodules()
	if err != nil {
		return nil, fmt.Errorf("list submodules: %w", err)
	}

	submodules := make([]Submodule, 0, len(declared))
	for _, sub := range declared {
		cfg := sub.Config()
		submodules = append(submodules, Submodule{
			Name:   cfg.Name,
			Path:   cfg.Path,
			URL:    cfg.URL,
			Branch: cfg.Branch,
		})
	}
	return submodules, nil
}

// Head returns the short hash of the current HEAD commit.
func Head(dir string) (string, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", fmt.Errorf("open repository: %w", err)
	}

	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("resolve HEAD: %w", err)
	}
	return head.Hash().String()[:8], nil
}

// InitSubmodules runs git submodule update over the repository. The
// git binary handles credentials and recursion better than doing it
// in-process.
func InitSubmodules(ctx context.Context, dir string) error {
	cmd := exec.CommandContext(ctx, "git", "submodule", "update", "--init", "--recursive")
	cmd.Dir = dir

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("git submodule update failed: %w: %s", err, stderr.String())
	}
	return nil
}
