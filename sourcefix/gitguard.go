package sourcefix

import (
	"path/filepath"

	"github.com/go-git/go-git/v5"

	"github.com/hazop-ai/pidsym/errors"
)

// CheckClean returns errors.ErrDirtyWorktree when path is inside a git
// worktree and has staged, unstaged or untracked changes. Files outside a
// repository are always clean.
func CheckClean(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrapf(err, "failed to resolve %s", path)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}

	repo, err := git.PlainOpenWithOptions(filepath.Dir(abs), &git.PlainOpenOptions{DetectDotGit: true})
	if errors.Is(err, git.ErrRepositoryNotExists) {
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, "failed to open git repository for %s", path)
	}

	wt, err := repo.Worktree()
	if err != nil {
		// bare repositories have no worktree to protect
		return nil
	}
	root := wt.Filesystem.Root()
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return errors.Wrapf(err, "failed to locate %s in %s", path, root)
	}

	status, err := wt.Status()
	if err != nil {
		return errors.Wrap(err, "failed to read git status")
	}
	fs, ok := status[filepath.ToSlash(rel)]
	if !ok || (fs.Staging == git.Unmodified && fs.Worktree == git.Unmodified) {
		return nil
	}
	return errors.WithHint(
		errors.Wrapf(errors.ErrDirtyWorktree, "%s", path),
		"commit or stash it first, or pass --force")
}
