// Package sortby orders sibling directory entries. The comparator layers
// grouping flags (directories first, dotfiles first) ahead of the chosen
// criterion and guarantees a total order via a final name tie-break, so
// identical inputs always sort identically.
package sortby

import (
	"cmp"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// Criterion selects the primary ordering.
type Criterion int

const (
	ByName Criterion = iota
	BySize
	ByModified
	ByExtension
)

// ParseCriterion maps a CLI value to a Criterion. An unknown value is a
// configuration error.
func ParseCriterion(s string) (Criterion, error) {
	switch s {
	case "", "name":
		return ByName, nil
	case "size":
		return BySize, nil
	case "modified":
		return ByModified, nil
	case "extension":
		return ByExtension, nil
	default:
		return 0, fmt.Errorf("sortby: unknown sort criterion %q (want name, size, modified, or extension)", s)
	}
}

func (c Criterion) String() string {
	switch c {
	case BySize:
		return "size"
	case ByModified:
		return "modified"
	case ByExtension:
		return "extension"
	default:
		return "name"
	}
}

// Options configures one sort pass.
type Options struct {
	Criterion     Criterion
	CaseSensitive bool
	Natural       bool
	Reverse       bool
	DirsFirst     bool
	DotfilesFirst bool
}

// Entry is the ephemeral sort key derived from a filesystem entry. It is
// built per sort pass and never stored on tree nodes.
type Entry struct {
	Name       string
	IsDir      bool
	Size       int64 // 0 for directories and when unknown
	ModTime    time.Time
	HasModTime bool
}

// Sort orders entries in place.
func Sort(entries []Entry, opts Options) {
	slices.SortStableFunc(entries, func(a, b Entry) int {
		return Compare(a, b, opts)
	})
}

// Compare is the full comparator: group rank, then the criterion (inverted
// by Reverse), then a case-sensitive name tie-break. Reverse never inverts
// the group ordering, so directories stay ahead of files even when the sort
// is reversed.
func Compare(a, b Entry, opts Options) int {
	if g := cmp.Compare(groupRank(a, opts), groupRank(b, opts)); g != 0 {
		return g
	}
	c := compareCriterion(a, b, opts)
	if opts.Reverse {
		c = -c
	}
	if c != 0 {
		return c
	}
	return strings.Compare(a.Name, b.Name)
}

// groupRank partitions entries before the criterion applies. DotfilesFirst
// takes precedence over DirsFirst when both are set; this is a documented
// policy choice, not an error.
func groupRank(e Entry, opts Options) int {
	dot := strings.HasPrefix(e.Name, ".")
	switch {
	case opts.DotfilesFirst:
		// dot-directories, directories, dot-files, files
		switch {
		case dot && e.IsDir:
			return 0
		case e.IsDir:
			return 1
		case dot:
			return 2
		default:
			return 3
		}
	case opts.DirsFirst:
		if e.IsDir {
			return 0
		}
		return 1
	default:
		return 0
	}
}

func compareCriterion(a, b Entry, opts Options) int {
	switch opts.Criterion {
	case BySize:
		// Directories carry size 0, so they group together and fall
		// through to the name tie-break.
		return cmp.Compare(a.Size, b.Size)
	case ByModified:
		switch {
		case a.HasModTime && b.HasModTime:
			return a.ModTime.Compare(b.ModTime)
		case a.HasModTime:
			return -1 // entries with a known time sort first
		case b.HasModTime:
			return 1
		default:
			return 0
		}
	case ByExtension:
		extA, extB := extension(a.Name), extension(b.Name)
		if !opts.CaseSensitive {
			extA, extB = strings.ToLower(extA), strings.ToLower(extB)
		}
		if c := strings.Compare(extA, extB); c != 0 {
			return c
		}
		return compareName(a.Name, b.Name, opts)
	default:
		return compareName(a.Name, b.Name, opts)
	}
}

// compareName handles the name criterion. Natural sorting takes precedence
// over the case-sensitivity flag.
func compareName(a, b string, opts Options) int {
	switch {
	case opts.Natural:
		return compareNatural(a, b)
	case opts.CaseSensitive:
		return strings.Compare(a, b)
	default:
		return strings.Compare(strings.ToLower(a), strings.ToLower(b))
	}
}

// extension returns the file extension without the leading dot. A name
// without an extension yields "", which sorts ahead of every real one.
func extension(name string) string {
	return strings.TrimPrefix(filepath.Ext(name), ".")
}

// compareNatural splits both names into alternating digit and non-digit
// runs; digit runs compare numerically so "file2" sorts before "file10".
func compareNatural(a, b string) int {
	for len(a) > 0 && len(b) > 0 {
		aDigit, bDigit := isDigit(a[0]), isDigit(b[0])
		switch {
		case aDigit && bDigit:
			runA, restA := splitRun(a, true)
			runB, restB := splitRun(b, true)
			if c := compareNumericRun(runA, runB); c != 0 {
				return c
			}
			a, b = restA, restB
		case !aDigit && !bDigit:
			runA, restA := splitRun(a, false)
			runB, restB := splitRun(b, false)
			if c := strings.Compare(runA, runB); c != 0 {
				return c
			}
			a, b = restA, restB
		case aDigit:
			return -1
		default:
			return 1
		}
	}
	return cmp.Compare(len(a), len(b))
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// splitRun chops the leading run of digit (or non-digit) bytes off s.
func splitRun(s string, digits bool) (run, rest string) {
	i := 0
	for i < len(s) && isDigit(s[i]) == digits {
		i++
	}
	return s[:i], s[i:]
}

// compareNumericRun compares two digit runs by value without parsing them
// into integers, so arbitrarily long runs cannot overflow.
func compareNumericRun(a, b string) int {
	ta, tb := strings.TrimLeft(a, "0"), strings.TrimLeft(b, "0")
	if c := cmp.Compare(len(ta), len(tb)); c != 0 {
		return c
	}
	if c := strings.Compare(ta, tb); c != 0 {
		return c
	}
	// Equal values; fewer leading zeros first keeps the order total.
	return cmp.Compare(len(a), len(b))
}
