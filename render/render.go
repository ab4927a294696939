// Package render turns a tree model into display lines. The same line
// construction serves the classic one-shot output and the interactive
// session's per-row rendering; only the prefix differs between the two.
package render

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"code.cloudfoundry.org/bytefmt"
	"github.com/charmbracelet/lipgloss"

	"github.com/hayeah/fstree/gitstatus"
	"github.com/hayeah/fstree/icons"
	"github.com/hayeah/fstree/tree"
)

// Tree-drawing glyphs.
const (
	connectorBranch = "├── "
	connectorLast   = "└── "
	paddingBranch   = "│   "
	paddingBlank    = "    "
)

// errMarker replaces the size/permission fields on entries that could not
// be read.
const errMarker = "✗"

// Options selects which decorations accompany each entry name.
type Options struct {
	Icons       bool
	Size        bool
	Permissions bool
	GitStatus   bool
	Hyperlinks  bool
}

// Renderer renders nodes with a fixed option set. Rendering is pure: the
// same tree and options always produce byte-identical output.
type Renderer struct {
	Opts Options
}

// New returns a renderer for the given options.
func New(opts Options) *Renderer {
	return &Renderer{Opts: opts}
}

// Prefix computes the tree-drawing prefix for a node whose ancestors' "was
// last sibling" flags are given innermost-last. The final connector is
// chosen by isLast.
func (r *Renderer) Prefix(ancestorsLast []bool, isLast bool) string {
	var sb strings.Builder
	for _, last := range ancestorsLast {
		if last {
			sb.WriteString(paddingBlank)
		} else {
			sb.WriteString(paddingBranch)
		}
	}
	if isLast {
		sb.WriteString(connectorLast)
	} else {
		sb.WriteString(connectorBranch)
	}
	return sb.String()
}

// Decorate renders a node's annotated name, in order: icon, styled name
// (optionally hyperlinked), git status marker, size, permissions. An entry
// that failed to stat gets the error marker instead of size and permissions.
func (r *Renderer) Decorate(n *tree.Node) string {
	var sb strings.Builder

	if r.Opts.Icons {
		ic := icons.For(n.Name, n.IsDir())
		sb.WriteString(lipgloss.NewStyle().Foreground(ic.Color).Render(ic.Glyph))
		sb.WriteString(" ")
	}

	name := n.Style.Render(n.Name)
	if r.Opts.Hyperlinks && !n.IsDir() {
		name = hyperlink(n.Path, name)
	}
	sb.WriteString(name)

	if r.Opts.GitStatus && n.Status != gitstatus.StatusNone {
		sb.WriteString(" ")
		sb.WriteString(statusStyle(n.Status).Render(string(n.Status.Rune())))
	}

	if n.Err != nil && (r.Opts.Size || r.Opts.Permissions) {
		sb.WriteString(" ")
		sb.WriteString(dimStyle.Render(errMarker))
		return sb.String()
	}

	if r.Opts.Size && n.HasSize && !n.IsDir() {
		sb.WriteString(dimStyle.Render(fmt.Sprintf(" (%s)", bytefmt.ByteSize(uint64(n.Size)))))
	}
	if r.Opts.Permissions && n.HasMode {
		sb.WriteString(dimStyle.Render(" " + FormatPermissions(n)))
	}

	return sb.String()
}

// Lines renders the whole tree below root as classic tree output, root
// excluded. The caller prints its own header for the root.
func (r *Renderer) Lines(root *tree.Node) []string {
	var lines []string
	var walk func(n *tree.Node, ancestorsLast []bool)
	walk = func(n *tree.Node, ancestorsLast []bool) {
		for i, child := range n.Children {
			isLast := i == len(n.Children)-1
			lines = append(lines, r.Prefix(ancestorsLast, isLast)+r.Decorate(child))
			if child.IsDir() {
				walk(child, append(ancestorsLast, isLast))
			}
		}
	}
	walk(root, nil)
	return lines
}

// WriteTree emits the classic view: a styled header line for the root, the
// full tree, and the directory/file summary.
func (r *Renderer) WriteTree(w io.Writer, root *tree.Node, header string) error {
	if _, err := fmt.Fprintln(w, headerStyle.Render(header)); err != nil {
		return err
	}
	for _, line := range r.Lines(root) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	dirs, files := root.Count()
	_, err := fmt.Fprintf(w, "\n%d directories, %d files\n", dirs, files)
	return err
}

// FormatPermissions renders the mode as a classic permission string, e.g.
// "drwxr-xr-x". Entries without mode information render as dashes.
func FormatPermissions(n *tree.Node) string {
	if !n.HasMode {
		return "----------"
	}
	var sb strings.Builder
	switch n.Kind {
	case tree.KindDir:
		sb.WriteByte('d')
	case tree.KindSymlink:
		sb.WriteByte('l')
	default:
		sb.WriteByte('-')
	}
	perm := n.Mode.Perm()
	flags := "rwxrwxrwx"
	for i := range 9 {
		if perm&(1<<uint(8-i)) != 0 {
			sb.WriteByte(flags[i])
		} else {
			sb.WriteByte('-')
		}
	}
	return sb.String()
}

// hyperlink wraps styled text in an OSC 8 escape pointing at the file.
func hyperlink(path, text string) string {
	u := url.URL{Scheme: "file", Path: path}
	return fmt.Sprintf("\x1b]8;;%s\x07%s\x1b]8;;\x07", u.String(), text)
}

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4")).Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	statusStyles = map[gitstatus.Status]lipgloss.Style{
		gitstatus.StatusAdded:      lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		gitstatus.StatusRenamed:    lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		gitstatus.StatusModified:   lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		gitstatus.StatusDeleted:    lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		gitstatus.StatusConflicted: lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		gitstatus.StatusUntracked:  lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
	}
)

func statusStyle(s gitstatus.Status) lipgloss.Style {
	if st, ok := statusStyles[s]; ok {
		return st
	}
	return lipgloss.NewStyle()
}
