package inputfile

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// ignoreFiles are read from the base directory, in order
var ignoreFiles = []string{".gitignore", ".sonarignore"}

// toolDirs are never indexed, at any depth
var toolDirs = map[string]bool{
	".git":         true,
	".gradle":      true,
	".idea":        true,
	"node_modules": true,
}

// outputDirs hold build output at project or module level. Inside a source
// root the same name is an ordinary package or resource directory.
var outputDirs = map[string]bool{
	"build": true,
}

// skipDir reports whether the directory at rel (slash-separated) is left out of the index
func skipDir(rel, name string) bool {
	if toolDirs[name] {
		return true
	}
	return outputDirs[name] && !underSourceRoot(rel)
}

// underSourceRoot reports whether rel lies below a src/ directory
func underSourceRoot(rel string) bool {
	return strings.HasPrefix(rel, "src/") || strings.Contains(rel, "/src/")
}

// Matcher reports whether a slash-separated relative path is excluded from the index
type Matcher struct {
	m gitignore.Matcher
}

// LoadMatcher reads the ignore files of baseDir and appends extra gitignore-style patterns.
// Missing ignore files are fine.
func LoadMatcher(baseDir string, extra []string) Matcher {
	var patterns []gitignore.Pattern
	for _, name := range ignoreFiles {
		data, err := os.ReadFile(filepath.Join(baseDir, name))
		if err != nil {
			continue
		}
		patterns = append(patterns, parsePatterns(string(data))...)
	}
	for _, p := range extra {
		patterns = append(patterns, parsePatterns(p)...)
	}
	return Matcher{m: gitignore.NewMatcher(patterns)}
}

func parsePatterns(data string) []gitignore.Pattern {
	var ps []gitignore.Pattern
	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ps = append(ps, gitignore.ParsePattern(line, nil))
	}
	return ps
}

// Match reports whether rel (slash-separated, relative to the base dir) is ignored
func (m Matcher) Match(rel string, isDir bool) bool {
	if m.m == nil {
		return false
	}
	return m.m.Match(strings.Split(rel, "/"), isDir)
}
