package tui

import (
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hayeah/fstree/render"
	"github.com/hayeah/fstree/tree"
)

func writeFixture(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

// newTestSession builds a session over a real temp tree:
//
//	root/
//	├── src/
//	│   ├── deep/one.go
//	│   └── main.go
//	└── README.md
func newTestSession(t *testing.T, opts Options) (*Session, *tree.Builder) {
	t.Helper()
	root := t.TempDir()
	writeFixture(t, root, map[string]string{
		"src/main.go":     "",
		"src/deep/one.go": "",
		"README.md":       "",
	})

	builder := tree.NewBuilder(tree.Config{MaxDepth: maxInt(opts.ExpandLevel, 1)})
	node, err := builder.Build(root)
	require.NoError(t, err)
	return NewSession(node, builder, render.New(render.Options{}), opts), builder
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func visibleNames(s *Session) []string {
	nodes := s.Visible()
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Name
	}
	return out
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func TestInitialState(t *testing.T) {
	s, _ := newTestSession(t, Options{})

	assert.Equal(t, []string{"README.md", "src"}, visibleNames(s))
	require.NotNil(t, s.Current())
	assert.Equal(t, "README.md", s.Current().Name)

	outcome, _ := s.Outcome()
	assert.Equal(t, OutcomeBrowsing, outcome)
}

func TestExpandLevelPreExpands(t *testing.T) {
	s, _ := newTestSession(t, Options{ExpandLevel: 2})
	assert.Equal(t, []string{"README.md", "src", "deep", "main.go"}, visibleNames(s))
}

func TestCursorClampsAtEdges(t *testing.T) {
	s, _ := newTestSession(t, Options{})

	s.Update(key("up"))
	assert.Equal(t, "README.md", s.Current().Name)

	s.Update(key("down"))
	assert.Equal(t, "src", s.Current().Name)

	// Past the last visible node is a no-op.
	s.Update(key("down"))
	s.Update(key("down"))
	assert.Equal(t, "src", s.Current().Name)
}

func TestToggleExpandsLazily(t *testing.T) {
	s, _ := newTestSession(t, Options{})

	s.Update(key("down")) // onto src
	src := s.Current()
	require.True(t, src.IsDir())
	require.False(t, src.Populated)

	s.Update(key("enter"))
	assert.True(t, src.Expanded)
	assert.True(t, src.Populated)
	assert.Equal(t, []string{"README.md", "src", "deep", "main.go"}, visibleNames(s))

	// Cursor stays on the toggled directory.
	assert.Equal(t, src, s.Current())
}

func TestCollapseKeepsChildren(t *testing.T) {
	s, _ := newTestSession(t, Options{})

	s.Update(key("down"))
	s.Update(key("enter")) // expand
	src := s.Current()
	children := src.Children
	require.NotEmpty(t, children)

	s.Update(key("enter")) // collapse
	assert.False(t, src.Expanded)
	assert.Equal(t, []string{"README.md", "src"}, visibleNames(s))

	// Children survive the collapse, so re-expansion is instant.
	assert.Equal(t, children, src.Children)

	s.Update(key("enter"))
	assert.Equal(t, []string{"README.md", "src", "deep", "main.go"}, visibleNames(s))
}

func TestToggleOnFileIsNoop(t *testing.T) {
	s, _ := newTestSession(t, Options{})

	require.Equal(t, "README.md", s.Current().Name)
	before := visibleNames(s)
	s.Update(key("enter")) // no Editor configured: no-op
	assert.Equal(t, before, visibleNames(s))

	outcome, _ := s.Outcome()
	assert.Equal(t, OutcomeBrowsing, outcome)
}

func TestQuitYieldsCancelled(t *testing.T) {
	for _, k := range []string{"q", "esc", "ctrl+c"} {
		t.Run(k, func(t *testing.T) {
			s, _ := newTestSession(t, Options{})
			s.Update(key("down")) // cursor position must not matter

			_, cmd := s.Update(key(k))
			outcome, selected := s.Outcome()
			assert.Equal(t, OutcomeCancelled, outcome)
			assert.Empty(t, selected)
			assert.NotNil(t, cmd, "quit must produce the quit command")
		})
	}
}

func TestSelectEmitsHighlightedPath(t *testing.T) {
	s, _ := newTestSession(t, Options{})
	s.Update(key("down"))
	want := s.Current().Path

	_, cmd := s.Update(key("ctrl+s"))
	outcome, selected := s.Outcome()
	assert.Equal(t, OutcomeSelected, outcome)
	assert.Equal(t, want, selected)
	assert.NotNil(t, cmd)
}

func TestUnrecognizedKeyIsNoop(t *testing.T) {
	s, _ := newTestSession(t, Options{})
	before := visibleNames(s)
	cur := s.Current()

	s.Update(key("x"))
	s.Update(key("Z"))

	assert.Equal(t, before, visibleNames(s))
	assert.Equal(t, cur, s.Current())
	outcome, _ := s.Outcome()
	assert.Equal(t, OutcomeBrowsing, outcome)
}

func TestVimKeysNavigate(t *testing.T) {
	s, _ := newTestSession(t, Options{})

	s.Update(key("j"))
	assert.Equal(t, "src", s.Current().Name)
	s.Update(key("k"))
	assert.Equal(t, "README.md", s.Current().Name)
}
