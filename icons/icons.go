// Package icons maps filesystem entries to Nerd Font glyphs. Rendering the
// glyphs requires a patched font in the user's terminal.
package icons

import (
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Icon is a display glyph plus the color it is conventionally drawn in.
type Icon struct {
	Glyph string
	Color lipgloss.Color
}

const (
	folderGlyph  = "" // nf-fa-folder
	defaultGlyph = "" // nf-fa-file
)

// Well-known filenames beat extension lookup.
var byName = map[string]Icon{
	"go.mod":         {Glyph: "", Color: "6"},
	"go.sum":         {Glyph: "", Color: "8"},
	"Cargo.toml":     {Glyph: "", Color: "11"},
	"Cargo.lock":     {Glyph: "", Color: "8"},
	".gitignore":     {Glyph: "", Color: "9"},
	".gitattributes": {Glyph: "", Color: "9"},
	"LICENSE":        {Glyph: "", Color: "11"},
	"README.md":      {Glyph: "", Color: "4"},
	"Dockerfile":     {Glyph: "", Color: "4"},
	"Makefile":       {Glyph: "", Color: "8"},
	"makefile":       {Glyph: "", Color: "8"},
}

var byExtension = map[string]Icon{
	".go":   {Glyph: "", Color: "6"},
	".rs":   {Glyph: "", Color: "1"},
	".py":   {Glyph: "", Color: "3"},
	".js":   {Glyph: "", Color: "11"},
	".ts":   {Glyph: "", Color: "4"},
	".tsx":  {Glyph: "", Color: "4"},
	".java": {Glyph: "", Color: "1"},
	".html": {Glyph: "", Color: "9"},
	".css":  {Glyph: "", Color: "4"},
	".scss": {Glyph: "", Color: "5"},
	".toml": {Glyph: "", Color: "11"},
	".json": {Glyph: "", Color: "11"},
	".yaml": {Glyph: "", Color: "11"},
	".yml":  {Glyph: "", Color: "11"},
	".md":   {Glyph: "", Color: "7"},
	".sh":   {Glyph: "", Color: "3"},
	".bash": {Glyph: "", Color: "3"},
	".zsh":  {Glyph: "", Color: "3"},
	".zip":  {Glyph: "", Color: "8"},
	".gz":   {Glyph: "", Color: "8"},
	".tar":  {Glyph: "", Color: "8"},
}

// For returns the icon for an entry name. The lookup order is well-known
// filename, then extension, then the generic file glyph; directories always
// get the folder glyph.
func For(name string, isDir bool) Icon {
	if isDir {
		return Icon{Glyph: folderGlyph, Color: "4"}
	}
	if ic, ok := byName[name]; ok {
		return ic
	}
	if ic, ok := byExtension[strings.ToLower(filepath.Ext(name))]; ok {
		return ic
	}
	return Icon{Glyph: defaultGlyph, Color: "7"}
}
