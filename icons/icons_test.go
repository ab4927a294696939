package icons

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDirectoriesGetFolderGlyph(t *testing.T) {
	assert.Equal(t, folderGlyph, For("src", true).Glyph)
	// Even a directory named like a known file.
	assert.Equal(t, folderGlyph, For("go.mod", true).Glyph)
}

func TestWellKnownNameBeatsExtension(t *testing.T) {
	// README.md has both a name entry and a .md extension entry; the name
	// entry wins.
	assert.Equal(t, byName["README.md"], For("README.md", false))
	assert.Equal(t, byExtension[".md"], For("notes.md", false))
}

func TestExtensionLookupIsCaseInsensitive(t *testing.T) {
	assert.Equal(t, byExtension[".go"], For("MAIN.GO", false))
}

func TestUnknownFileGetsDefault(t *testing.T) {
	ic := For("mystery.xyz", false)
	assert.Equal(t, defaultGlyph, ic.Glyph)
}
