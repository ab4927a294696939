// Package tree defines the in-memory tree model and the builder that
// populates it from the filesystem. Each directory node exclusively owns
// its children; there is no shared node and no cycle, because symlinked
// directories are listed but never descended into.
package tree

import (
	"io/fs"
	"time"

	"github.com/hayeah/fstree/gitstatus"
	"github.com/hayeah/fstree/style"
)

// Kind classifies a filesystem entry.
type Kind int

const (
	KindFile Kind = iota
	KindDir
	KindSymlink
	KindOther
)

// Entry is a single filesystem object discovered during traversal. The
// Has* flags distinguish "zero" from "could not be read"; Err records a
// per-entry failure that never aborts the traversal.
type Entry struct {
	Path  string // absolute
	Name  string
	Depth int // root = 0
	Kind  Kind

	Size       int64
	HasSize    bool
	ModTime    time.Time
	HasModTime bool
	Mode       fs.FileMode
	HasMode    bool

	Err error
}

// IsDir reports whether the entry is a real directory (not a symlink to
// one).
func (e *Entry) IsDir() bool { return e.Kind == KindDir }

// Node wraps an Entry inside the tree model. Children are populated for
// directories only, up to the builder's depth limit or lazily on first
// expansion in interactive mode.
type Node struct {
	Entry

	Children  []*Node
	Expanded  bool // interactive mode only
	Populated bool // children have been listed at least once

	Style  style.Style
	Status gitstatus.Status
}

// Walk visits the node and every descendant in depth-first order.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Count returns the number of directories and files beneath the node, the
// node itself excluded. Symlinks and other non-directories count as files,
// matching the classic tree summary line.
func (n *Node) Count() (dirs, files int) {
	n.Walk(func(c *Node) {
		if c == n {
			return
		}
		if c.IsDir() {
			dirs++
		} else {
			files++
		}
	})
	return dirs, files
}
