package tui

import (
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
)

// Run drives the session to completion on a real terminal. Output goes to
// w (typically stderr, keeping stdout clean for the selected path). A
// terminal failure ends the session as cancelled after Bubble Tea's own
// cleanup.
func Run(s *Session, w io.Writer) (Outcome, string, error) {
	p := tea.NewProgram(s, tea.WithOutput(w), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return OutcomeCancelled, "", fmt.Errorf("tui: %w", err)
	}
	fs, ok := final.(*Session)
	if !ok {
		return OutcomeCancelled, "", fmt.Errorf("tui: unexpected final model %T", final)
	}
	outcome, selected := fs.Outcome()
	return outcome, selected, nil
}
