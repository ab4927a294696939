// Package gitstatus computes a per-path git status overlay for a worktree.
// Loading is best-effort: a path outside any repository yields a nil
// overlay, and a nil overlay answers every lookup with StatusNone.
package gitstatus

import (
	"fmt"
	pathpkg "path"
	"path/filepath"

	git "github.com/go-git/go-git/v5"
)

// Status is a simplified classification of a path's git state.
type Status int

const (
	StatusNone Status = iota
	StatusUnmodified
	StatusIgnored
	StatusUntracked
	StatusRenamed
	StatusDeleted
	StatusAdded
	StatusModified
	StatusConflicted
)

// Rune returns the single-character marker for the status.
func (s Status) Rune() rune {
	switch s {
	case StatusModified:
		return 'M'
	case StatusAdded:
		return 'A'
	case StatusDeleted:
		return 'D'
	case StatusRenamed:
		return 'R'
	case StatusUntracked:
		return '?'
	case StatusConflicted:
		return 'C'
	case StatusIgnored:
		return 'I'
	default:
		return ' '
	}
}

// severity ranks statuses for directory aggregation. Conflicts dominate,
// then any tracked change, then untracked; ignored entries never propagate.
func (s Status) severity() int {
	switch s {
	case StatusConflicted:
		return 4
	case StatusModified, StatusAdded, StatusDeleted, StatusRenamed:
		return 3
	case StatusUntracked:
		return 2
	case StatusUnmodified:
		return 1
	default:
		return 0
	}
}

// Overlay holds the status of every changed file in a repository plus
// eagerly aggregated directory statuses. It is immutable after Load.
type Overlay struct {
	root  string
	files map[string]Status
	dirs  map[string]Status
}

// Load discovers the repository containing startPath and reads its worktree
// status once. It returns (nil, nil) when startPath is not inside a
// repository; that is an expected condition, not an error.
func Load(startPath string) (*Overlay, error) {
	repo, err := git.PlainOpenWithOptions(startPath, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, nil
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, nil // bare repository
	}
	status, err := wt.Status()
	if err != nil {
		return nil, fmt.Errorf("gitstatus: read worktree status: %w", err)
	}

	root, err := filepath.Abs(wt.Filesystem.Root())
	if err != nil {
		return nil, fmt.Errorf("gitstatus: resolve worktree root: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}

	files := make(map[string]Status, len(status))
	for path, fst := range status {
		if s := classify(fst); s != StatusNone {
			files[path] = s
		}
	}

	return &Overlay{
		root:  root,
		files: files,
		dirs:  aggregate(files),
	}, nil
}

// classify folds go-git's staging/worktree code pair into one Status.
func classify(fst *git.FileStatus) Status {
	if fst == nil {
		return StatusNone
	}
	if fst.Staging == git.UpdatedButUnmerged || fst.Worktree == git.UpdatedButUnmerged {
		return StatusConflicted
	}
	if fst.Staging == git.Untracked || fst.Worktree == git.Untracked {
		return StatusUntracked
	}
	for _, code := range []git.StatusCode{fst.Staging, fst.Worktree} {
		switch code {
		case git.Added:
			return StatusAdded
		case git.Modified:
			return StatusModified
		case git.Deleted:
			return StatusDeleted
		case git.Renamed, git.Copied:
			return StatusRenamed
		}
	}
	return StatusNone
}

// aggregate folds file statuses up their ancestor directories using the
// severity order. Ignored entries are skipped so an ignored build tree does
// not light up its parents.
func aggregate(files map[string]Status) map[string]Status {
	dirs := make(map[string]Status)
	for path, s := range files {
		if s == StatusIgnored {
			continue
		}
		for dir := pathpkg.Dir(path); dir != "." && dir != "/"; dir = pathpkg.Dir(dir) {
			if s.severity() > dirs[dir].severity() {
				dirs[dir] = s
			}
		}
	}
	return dirs
}

// StatusFor returns the classification for an absolute path, or StatusNone
// when the path is outside the repository or unchanged. Directory lookups
// answer with the aggregated status of their descendants.
func (o *Overlay) StatusFor(absPath string, isDir bool) Status {
	if o == nil {
		return StatusNone
	}
	rel, err := filepath.Rel(o.root, absPath)
	if err != nil || rel == "." || rel == ".." || len(rel) >= 3 && rel[:3] == ".."+string(filepath.Separator) {
		return StatusNone
	}
	key := filepath.ToSlash(rel)
	if isDir {
		return o.dirs[key]
	}
	return o.files[key]
}

// Root returns the absolute worktree root, empty for a nil overlay.
func (o *Overlay) Root() string {
	if o == nil {
		return ""
	}
	return o.root
}
