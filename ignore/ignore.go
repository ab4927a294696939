// Package ignore compiles gitignore-style pattern sources into a matcher
// used to exclude entries from traversal. Matchers are immutable once
// compiled.
package ignore

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

const (
	ignoreFile   = ".gitignore"
	gitDir       = ".git"
	commentChar  = "#"
	negationChar = "!"
)

// Source is one extra ordered pattern source layered on top of the ignore
// files found under the root. Domain holds the path segments of the
// directory the patterns are anchored to; empty means the root itself.
type Source struct {
	Domain   []string
	Patterns []string
}

// Matcher answers per-path ignore queries.
type Matcher struct {
	matcher   gitignore.Matcher
	root      string
	negations bool
}

// Compile reads every .gitignore below root, layers extra sources after
// them (later sources win, per standard gitignore precedence), and returns
// the compiled matcher. An invalid pattern is a configuration error.
func Compile(root string, extras ...Source) (*Matcher, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("ignore: resolve root: %w", err)
	}
	// Match the canonical paths the tree builder produces for its nodes.
	if resolved, err := filepath.EvalSymlinks(absRoot); err == nil {
		absRoot = resolved
	}

	fsys := osfs.New(absRoot)
	patterns, negations, err := readPatterns(fsys, nil)
	if err != nil {
		return nil, fmt.Errorf("ignore: read patterns: %w", err)
	}

	for _, src := range extras {
		for _, raw := range src.Patterns {
			line := strings.TrimSpace(raw)
			if line == "" || strings.HasPrefix(line, commentChar) {
				continue
			}
			if line == negationChar {
				return nil, fmt.Errorf("ignore: invalid pattern %q", raw)
			}
			if strings.HasPrefix(line, negationChar) {
				negations = true
			}
			patterns = append(patterns, gitignore.ParsePattern(line, src.Domain))
		}
	}

	return &Matcher{
		matcher:   gitignore.NewMatcher(patterns),
		root:      absRoot,
		negations: negations,
	}, nil
}

// readPatterns walks the tree collecting .gitignore patterns in root-first
// order, which is what the matcher's last-match-wins evaluation expects.
func readPatterns(fsys billy.Filesystem, domain []string) ([]gitignore.Pattern, bool, error) {
	var (
		patterns  []gitignore.Pattern
		negations bool
	)

	dir := fsys.Join(domain...)
	ps, neg, err := readIgnoreFile(fsys, fsys.Join(dir, ignoreFile), domain)
	if err != nil {
		return nil, false, err
	}
	patterns = append(patterns, ps...)
	negations = negations || neg

	entries, err := fsys.ReadDir(dir)
	if err != nil {
		// An unreadable directory loses its nested ignore files but must
		// not abort compilation; traversal reports the error on the node.
		return patterns, negations, nil
	}
	for _, entry := range entries {
		if !entry.IsDir() || entry.Name() == gitDir {
			continue
		}
		// Cloned so sibling recursions never share a backing array with
		// the domain slices already captured inside parsed patterns.
		sub, neg, err := readPatterns(fsys, append(slices.Clone(domain), entry.Name()))
		if err != nil {
			return nil, false, err
		}
		patterns = append(patterns, sub...)
		negations = negations || neg
	}
	return patterns, negations, nil
}

func readIgnoreFile(fsys billy.Filesystem, path string, domain []string) ([]gitignore.Pattern, bool, error) {
	f, err := fsys.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var (
		patterns  []gitignore.Pattern
		negations bool
	)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, commentChar) {
			continue
		}
		if strings.HasPrefix(trimmed, negationChar) {
			negations = true
		}
		patterns = append(patterns, gitignore.ParsePattern(line, domain))
	}
	if err := scanner.Err(); err != nil {
		return nil, false, fmt.Errorf("read %s: %w", path, err)
	}
	return patterns, negations, nil
}

// IsIgnored reports whether the given absolute path is excluded. The .git
// directory is always excluded. The traversal root itself never is.
func (m *Matcher) IsIgnored(path string, isDir bool) bool {
	if m.IsAlwaysIgnored(path, isDir) {
		return true
	}

	rel, err := filepath.Rel(m.root, path)
	if err != nil || rel == "." {
		return false
	}

	parts := strings.Split(rel, string(os.PathSeparator))
	return m.matcher.Match(parts, isDir)
}

// IsAlwaysIgnored reports whether the path is excluded unconditionally: the
// .git directory is never listed, and no negation pattern can re-include it
// or its contents.
func (m *Matcher) IsAlwaysIgnored(path string, isDir bool) bool {
	return isDir && filepath.Base(path) == gitDir
}

// HasNegations reports whether any compiled source contains a negation
// pattern. When true, the tree builder descends into ignored directories so
// re-included descendants still surface.
func (m *Matcher) HasNegations() bool {
	return m.negations
}

// Root returns the absolute traversal root the matcher was compiled for.
func (m *Matcher) Root() string {
	return m.root
}
