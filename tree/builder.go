package tree

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/hayeah/fstree/gitstatus"
	"github.com/hayeah/fstree/ignore"
	"github.com/hayeah/fstree/sortby"
	"github.com/hayeah/fstree/style"
)

// Config bundles everything a traversal needs. The zero value filters
// hidden entries and stops at depth 0 (a childless root); set MaxDepth
// negative for an unbounded traversal.
type Config struct {
	ShowHidden bool
	MaxDepth   int // maximum node depth; negative means unbounded
	DirsOnly   bool

	Matcher *ignore.Matcher    // optional
	Git     *gitstatus.Overlay // optional (nil-safe)
	Styles  *style.Resolver    // defaults to style.Default()
	Sort    sortby.Options

	Logger *zap.Logger
}

// Builder materializes tree nodes from the filesystem. It is safe to reuse
// for lazy per-directory population after the initial build.
type Builder struct {
	cfg Config
	log *zap.Logger
}

// NewBuilder returns a builder for the given config.
func NewBuilder(cfg Config) *Builder {
	if cfg.Styles == nil {
		cfg.Styles = style.Default()
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Builder{cfg: cfg, log: log}
}

// Build traverses root down to the configured depth and returns the root
// node. Root must be a directory; anything else is a startup error, unlike
// the per-entry failures below it which are recorded on their nodes.
func (b *Builder) Build(root string) (*Node, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("tree: resolve root: %w", err)
	}
	// Canonicalize so node paths agree with the git overlay's resolved
	// worktree root even when the argument crosses a symlink.
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("tree: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("tree: %q is not a directory", root)
	}

	node := &Node{Entry: Entry{
		Path:       abs,
		Name:       filepath.Base(abs),
		Depth:      0,
		Kind:       KindDir,
		ModTime:    info.ModTime(),
		HasModTime: true,
		Mode:       info.Mode(),
		HasMode:    true,
	}}
	node.Style = b.cfg.Styles.For(node.Name, style.EntryInfo{IsDir: true})
	b.populateRecursive(node)
	return node, nil
}

func (b *Builder) populateRecursive(n *Node) {
	if b.cfg.MaxDepth >= 0 && n.Depth >= b.cfg.MaxDepth {
		return
	}
	if err := b.Populate(n); err != nil {
		return // recorded on the node; siblings continue
	}
	for _, child := range n.Children {
		if child.IsDir() {
			b.populateRecursive(child)
		}
	}
}

// Populate lists exactly one level of children under a directory node. It
// is idempotent: a node already populated is left alone, so interactive
// re-expansion never re-reads the filesystem. A listing failure marks the
// node and returns the error without touching siblings or ancestors.
func (b *Builder) Populate(n *Node) error {
	if n.Populated || !n.IsDir() {
		return nil
	}
	n.Populated = true

	dirents, err := os.ReadDir(n.Path)
	if err != nil {
		n.Err = err
		b.log.Warn("list directory", zap.String("path", n.Path), zap.Error(err))
		return err
	}

	type childRec struct {
		node *Node
		key  sortby.Entry
	}
	recs := make([]childRec, 0, len(dirents))

	for _, de := range dirents {
		name := de.Name()
		if !b.cfg.ShowHidden && strings.HasPrefix(name, ".") {
			continue
		}

		child := b.statChild(n, de)

		if b.cfg.Matcher != nil && b.cfg.Matcher.IsIgnored(child.Path, child.IsDir()) {
			// Pruned before descent. With negation patterns in play the
			// directory is kept so re-included descendants can surface;
			// its children are still filtered individually. Always-ignored
			// directories (.git) never get that exception.
			if !child.IsDir() || !b.cfg.Matcher.HasNegations() ||
				b.cfg.Matcher.IsAlwaysIgnored(child.Path, child.IsDir()) {
				continue
			}
		}
		if b.cfg.DirsOnly && !child.IsDir() {
			continue
		}

		recs = append(recs, childRec{node: child, key: sortby.Entry{
			Name:       child.Name,
			IsDir:      child.IsDir(),
			Size:       sortSize(child),
			ModTime:    child.ModTime,
			HasModTime: child.HasModTime,
		}})
	}

	slices.SortStableFunc(recs, func(a, c childRec) int {
		return sortby.Compare(a.key, c.key, b.cfg.Sort)
	})

	n.Children = make([]*Node, len(recs))
	for i, rec := range recs {
		n.Children[i] = rec.node
	}
	return nil
}

// statChild builds a child node from a directory entry. A stat failure
// (permissions, or the entry vanished between listing and stating) yields a
// node with the error recorded instead of dropping the entry.
func (b *Builder) statChild(parent *Node, de fs.DirEntry) *Node {
	name := de.Name()
	child := &Node{Entry: Entry{
		Path:  filepath.Join(parent.Path, name),
		Name:  name,
		Depth: parent.Depth + 1,
		Kind:  kindOf(de.Type()),
	}}

	info, err := de.Info()
	if err != nil {
		child.Err = err
		b.log.Warn("stat entry", zap.String("path", child.Path), zap.Error(err))
	} else {
		child.Mode = info.Mode()
		child.HasMode = true
		child.ModTime = info.ModTime()
		child.HasModTime = true
		if !child.IsDir() {
			child.Size = info.Size()
			child.HasSize = true
		}
	}

	broken := false
	if child.Kind == KindSymlink {
		// Symlinks are listed, never followed; a failing Stat marks the
		// link as dangling for styling purposes only.
		if _, err := os.Stat(child.Path); err != nil {
			broken = true
		}
	}

	child.Style = b.cfg.Styles.For(name, style.EntryInfo{
		IsDir:        child.IsDir(),
		IsSymlink:    child.Kind == KindSymlink,
		IsBrokenLink: broken,
		IsExecutable: child.HasMode && child.Mode.Perm()&0o111 != 0 && child.Kind == KindFile,
	})
	child.Status = b.cfg.Git.StatusFor(child.Path, child.IsDir())
	return child
}

// sortSize is the ordering size: directories and unreadable entries compare
// as zero, a documented choice (directory sizes are never summed).
func sortSize(n *Node) int64 {
	if n.IsDir() || !n.HasSize {
		return 0
	}
	return n.Size
}

func kindOf(mode fs.FileMode) Kind {
	switch {
	case mode&fs.ModeSymlink != 0:
		return KindSymlink
	case mode.IsDir():
		return KindDir
	case mode.IsRegular():
		return KindFile
	default:
		return KindOther
	}
}
