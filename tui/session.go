// Package tui implements the interactive explorer as a Bubble Tea program.
// The Update function is the session's pure transition step: it consumes
// one input event and returns the next state plus effects (quit, editor
// exec) for the runtime to interpret, which keeps every transition testable
// without a terminal.
package tui

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hayeah/fstree/render"
	"github.com/hayeah/fstree/tree"
)

// Outcome is the terminal state of a session.
type Outcome int

const (
	OutcomeBrowsing Outcome = iota // session still running
	OutcomeCancelled
	OutcomeSelected
)

// Options configures a session.
type Options struct {
	// ExpandLevel is the depth to which directories start expanded. The
	// root is always expanded; 1 shows its children collapsed.
	ExpandLevel int
	// Editor builds the command used to open a file; nil disables the
	// editor key.
	Editor func(path string) *exec.Cmd
}

// Session is the Bubble Tea model for interactive browsing. The tree model
// is owned exclusively by the session; there is exactly one logical thread
// of control, so no synchronization is needed.
type Session struct {
	root     *tree.Node
	builder  *tree.Builder
	renderer *render.Renderer
	opts     Options

	visible  []*tree.Node // flattened, respecting collapsed subtrees
	cursor   int
	viewport viewport.Model
	ready    bool

	outcome  Outcome
	selected string
}

// editorDoneMsg reports the editor subprocess exiting; the session resumes
// browsing regardless of its exit status.
type editorDoneMsg struct{ err error }

// NewSession builds the initial state: cursor on the first visible node,
// directories expanded to the configured level.
func NewSession(root *tree.Node, builder *tree.Builder, renderer *render.Renderer, opts Options) *Session {
	if opts.ExpandLevel < 1 {
		opts.ExpandLevel = 1
	}
	root.Expanded = true
	root.Walk(func(n *tree.Node) {
		if n.IsDir() && n.Depth > 0 && n.Depth < opts.ExpandLevel {
			n.Expanded = true
		}
	})

	s := &Session{
		root:     root,
		builder:  builder,
		renderer: renderer,
		opts:     opts,
		viewport: viewport.New(0, 0),
	}
	s.refreshVisible()
	return s
}

// Outcome reports how the session ended, and the selected path when the
// outcome is OutcomeSelected.
func (s *Session) Outcome() (Outcome, string) {
	return s.outcome, s.selected
}

// Current returns the highlighted node, nil when the tree is empty.
func (s *Session) Current() *tree.Node {
	if s.cursor < 0 || s.cursor >= len(s.visible) {
		return nil
	}
	return s.visible[s.cursor]
}

// Init satisfies tea.Model.
func (s *Session) Init() tea.Cmd {
	return nil
}

// Update is the transition function. Unrecognized keys are no-ops; the
// session never errors on input.
func (s *Session) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		headerHeight := 1
		footerHeight := 2
		s.viewport.Width = msg.Width
		s.viewport.Height = msg.Height - headerHeight - footerHeight
		s.ready = true
		s.syncViewport()
		return s, nil

	case tea.KeyMsg:
		return s.handleKey(msg)

	case editorDoneMsg:
		// Back to browsing; editor failures are not session failures.
		return s, nil
	}

	var cmd tea.Cmd
	s.viewport, cmd = s.viewport.Update(msg)
	return s, cmd
}

func (s *Session) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		s.outcome = OutcomeCancelled
		return s, tea.Quit

	case "ctrl+s":
		if cur := s.Current(); cur != nil {
			s.outcome = OutcomeSelected
			s.selected = cur.Path
			return s, tea.Quit
		}
		return s, nil

	case "down", "j":
		s.MoveDown()
		return s, nil

	case "up", "k":
		s.MoveUp()
		return s, nil

	case "enter":
		cur := s.Current()
		switch {
		case cur == nil:
			return s, nil
		case cur.IsDir():
			s.Toggle(cur)
			return s, nil
		case s.opts.Editor != nil && cur.Kind == tree.KindFile:
			return s, tea.ExecProcess(s.opts.Editor(cur.Path), func(err error) tea.Msg {
				return editorDoneMsg{err: err}
			})
		default:
			return s, nil
		}

	case "y":
		if cur := s.Current(); cur != nil {
			// Best effort; clipboard access may be unavailable over ssh.
			_ = clipboard.WriteAll(cur.Path)
		}
		return s, nil
	}

	return s, nil
}

// MoveDown advances the cursor one visible node, clamped at the bottom.
func (s *Session) MoveDown() {
	if s.cursor < len(s.visible)-1 {
		s.cursor++
		s.syncViewport()
	}
}

// MoveUp retreats the cursor one visible node, clamped at the top.
func (s *Session) MoveUp() {
	if s.cursor > 0 {
		s.cursor--
		s.syncViewport()
	}
}

// Toggle flips a directory's expansion. The first expansion populates the
// node through the builder; collapsing keeps the children so re-expansion
// is instant. Non-directories are no-ops. The cursor stays on the node.
func (s *Session) Toggle(n *tree.Node) {
	if !n.IsDir() {
		return
	}
	if !n.Expanded && !n.Populated {
		// Listing failure is recorded on the node; the toggle is still
		// applied so the error marker shows where expansion failed.
		_ = s.builder.Populate(n)
	}
	n.Expanded = !n.Expanded
	s.refreshVisible()
	for i, v := range s.visible {
		if v == n {
			s.cursor = i
			break
		}
	}
	s.syncViewport()
}

// refreshVisible flattens the tree into the currently-visible ordering,
// skipping collapsed subtrees. The root itself is not listed.
func (s *Session) refreshVisible() {
	s.visible = s.visible[:0]
	var walk func(n *tree.Node)
	walk = func(n *tree.Node) {
		for _, child := range n.Children {
			s.visible = append(s.visible, child)
			if child.IsDir() && child.Expanded {
				walk(child)
			}
		}
	}
	walk(s.root)
	if s.cursor >= len(s.visible) {
		s.cursor = len(s.visible) - 1
	}
	if s.cursor < 0 {
		s.cursor = 0
	}
}

// Visible exposes the flattened node ordering for tests and rendering.
func (s *Session) Visible() []*tree.Node {
	return s.visible
}

// View renders the session: a header with the root path, the scrolling
// node list, and a key hint footer.
func (s *Session) View() string {
	if !s.ready {
		return "Loading..."
	}
	s.viewport.SetContent(strings.Join(s.rows(), "\n"))
	header := headerStyle.Render(s.root.Path)
	footer := hintStyle.Render("↑/↓ move · enter open/toggle · y copy path · ctrl+s select · q quit")
	return fmt.Sprintf("%s\n%s\n%s", header, s.viewport.View(), footer)
}

// rows builds one display line per visible node: indent, expansion arrow,
// then the shared decoration pipeline from the render package.
func (s *Session) rows() []string {
	rows := make([]string, len(s.visible))
	for i, n := range s.visible {
		indent := strings.Repeat("  ", n.Depth-1)
		arrow := "  "
		if n.IsDir() {
			if n.Expanded {
				arrow = "▼ "
			} else {
				arrow = "▶ "
			}
		}
		line := indent + arrow + s.renderer.Decorate(n)
		if i == s.cursor {
			line = cursorStyle.Render("> ") + line
		} else {
			line = "  " + line
		}
		rows[i] = line
	}
	return rows
}

// syncViewport keeps the cursor row inside the viewport window.
func (s *Session) syncViewport() {
	if !s.ready {
		return
	}
	top := s.viewport.YOffset
	bottom := top + s.viewport.Height - 1
	switch {
	case s.cursor < top:
		s.viewport.SetYOffset(s.cursor)
	case s.cursor > bottom:
		s.viewport.SetYOffset(s.cursor - s.viewport.Height + 1)
	}
}

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4")).Bold(true)
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)
