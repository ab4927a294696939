// Package style resolves display styles for filesystem entries from a
// colon-separated specification in the LS_COLORS shape, e.g.
// "di=01;34:ln=36:*.go=32". Compiled resolvers are immutable and safe for
// concurrent reads.
package style

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Style is a resolved terminal style for one entry.
type Style struct {
	Foreground string // lipgloss color ("0".."255" or "#rrggbb"), empty means unset
	Background string
	Bold       bool
	Italic     bool
	Underline  bool
}

// IsZero reports whether the style carries no attributes at all.
func (s Style) IsZero() bool {
	return s == Style{}
}

// Lipgloss converts the style into a lipgloss.Style for rendering.
func (s Style) Lipgloss() lipgloss.Style {
	ls := lipgloss.NewStyle()
	if s.Foreground != "" {
		ls = ls.Foreground(lipgloss.Color(s.Foreground))
	}
	if s.Background != "" {
		ls = ls.Background(lipgloss.Color(s.Background))
	}
	if s.Bold {
		ls = ls.Bold(true)
	}
	if s.Italic {
		ls = ls.Italic(true)
	}
	if s.Underline {
		ls = ls.Underline(true)
	}
	return ls
}

// Render applies the style to text.
func (s Style) Render(text string) string {
	if s.IsZero() {
		return text
	}
	return s.Lipgloss().Render(text)
}

// EntryInfo carries the metadata the resolver needs to pick an indicator
// rule when no name pattern matches.
type EntryInfo struct {
	IsDir        bool
	IsSymlink    bool
	IsBrokenLink bool
	IsExecutable bool
}

// Resolver maps entry names and types to styles. Name patterns take
// precedence over type indicators, which take precedence over the zero
// default.
type Resolver struct {
	patterns   []patternRule
	indicators map[string]Style
}

type patternRule struct {
	suffix string // lowercased suffix, e.g. ".go"
	style  Style
}

// Indicator keys understood by the resolver. Unknown keys in a spec are
// skipped, matching how ls tolerates extra LS_COLORS entries.
const (
	indicatorDir        = "di"
	indicatorFile       = "fi"
	indicatorSymlink    = "ln"
	indicatorOrphan     = "or"
	indicatorExecutable = "ex"
)

var knownIndicators = map[string]bool{
	indicatorDir:        true,
	indicatorFile:       true,
	indicatorSymlink:    true,
	indicatorOrphan:     true,
	indicatorExecutable: true,
}

// Default returns the built-in rule set used when no specification is
// supplied: directories bold blue, executables bold green, symlinks cyan,
// broken symlinks red.
func Default() *Resolver {
	return &Resolver{
		indicators: map[string]Style{
			indicatorDir:        {Foreground: "4", Bold: true},
			indicatorExecutable: {Foreground: "2", Bold: true},
			indicatorSymlink:    {Foreground: "6"},
			indicatorOrphan:     {Foreground: "1"},
		},
	}
}

// Parse compiles a colon-separated specification into a Resolver. An empty
// spec yields the built-in defaults. A malformed entry is a configuration
// error and aborts parsing.
func Parse(spec string) (*Resolver, error) {
	if strings.TrimSpace(spec) == "" {
		return Default(), nil
	}

	r := &Resolver{indicators: make(map[string]Style)}
	for _, entry := range strings.Split(spec, ":") {
		if entry == "" {
			continue
		}
		key, sgr, ok := strings.Cut(entry, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("style: malformed entry %q", entry)
		}
		st, err := parseSGR(sgr)
		if err != nil {
			return nil, fmt.Errorf("style: entry %q: %w", entry, err)
		}
		switch {
		case strings.HasPrefix(key, "*"):
			r.patterns = append(r.patterns, patternRule{
				suffix: strings.ToLower(strings.TrimPrefix(key, "*")),
				style:  st,
			})
		case knownIndicators[key]:
			r.indicators[key] = st
		default:
			// Tolerated, same as ls: pipes, sockets, etc.
		}
	}
	return r, nil
}

// For resolves the style for a single entry. Later pattern rules win over
// earlier ones, mirroring gnu ls behavior for duplicate keys.
func (r *Resolver) For(name string, info EntryInfo) Style {
	lower := strings.ToLower(name)
	for i := len(r.patterns) - 1; i >= 0; i-- {
		if strings.HasSuffix(lower, r.patterns[i].suffix) {
			return r.patterns[i].style
		}
	}
	switch {
	case info.IsBrokenLink:
		if st, ok := r.indicators[indicatorOrphan]; ok {
			return st
		}
		return r.indicators[indicatorSymlink]
	case info.IsSymlink:
		return r.indicators[indicatorSymlink]
	case info.IsDir:
		return r.indicators[indicatorDir]
	case info.IsExecutable:
		return r.indicators[indicatorExecutable]
	default:
		return r.indicators[indicatorFile]
	}
}

// parseSGR interprets a semicolon-separated SGR parameter list.
func parseSGR(sgr string) (Style, error) {
	var st Style
	if sgr == "" {
		return st, nil
	}
	params := strings.Split(sgr, ";")
	for i := 0; i < len(params); i++ {
		n, err := strconv.Atoi(params[i])
		if err != nil || n < 0 {
			return Style{}, fmt.Errorf("bad sgr parameter %q", params[i])
		}
		switch {
		case n == 0:
			st = Style{}
		case n == 1:
			st.Bold = true
		case n == 3:
			st.Italic = true
		case n == 4:
			st.Underline = true
		case n >= 30 && n <= 37:
			st.Foreground = strconv.Itoa(n - 30)
		case n >= 90 && n <= 97:
			st.Foreground = strconv.Itoa(n - 90 + 8)
		case n >= 40 && n <= 47:
			st.Background = strconv.Itoa(n - 40)
		case n >= 100 && n <= 107:
			st.Background = strconv.Itoa(n - 100 + 8)
		case n == 38 || n == 48:
			// Extended color: 38;5;n (indexed) or 38;2;r;g;b (truecolor).
			color, consumed, err := parseExtendedColor(params[i+1:])
			if err != nil {
				return Style{}, fmt.Errorf("in %q: %w", sgr, err)
			}
			if n == 38 {
				st.Foreground = color
			} else {
				st.Background = color
			}
			i += consumed
		default:
			// Unhandled SGR codes (dim, blink, ...) are ignored rather
			// than rejected; ls does the same.
		}
	}
	return st, nil
}

// parseExtendedColor reads the parameters after a 38/48 introducer and
// returns the lipgloss color plus the number of parameters consumed.
func parseExtendedColor(params []string) (string, int, error) {
	if len(params) == 0 {
		return "", 0, fmt.Errorf("truncated extended color")
	}
	switch params[0] {
	case "5":
		if len(params) < 2 {
			return "", 0, fmt.Errorf("truncated indexed color")
		}
		idx, err := strconv.Atoi(params[1])
		if err != nil || idx < 0 || idx > 255 {
			return "", 0, fmt.Errorf("bad color index %q", params[1])
		}
		return strconv.Itoa(idx), 2, nil
	case "2":
		if len(params) < 4 {
			return "", 0, fmt.Errorf("truncated rgb color")
		}
		var rgb [3]int
		for i := 0; i < 3; i++ {
			v, err := strconv.Atoi(params[1+i])
			if err != nil || v < 0 || v > 255 {
				return "", 0, fmt.Errorf("bad rgb component %q", params[1+i])
			}
			rgb[i] = v
		}
		return fmt.Sprintf("#%02x%02x%02x", rgb[0], rgb[1], rgb[2]), 4, nil
	default:
		return "", 0, fmt.Errorf("unsupported extended color form %q", params[0])
	}
}
