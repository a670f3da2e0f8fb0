// Package inputfile indexes the source files of an Android project so that paths found in
// a lint report can be resolved to tracked files.
package inputfile

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Type distinguishes production sources from test sources
type Type string

const (
	TypeMain Type = "main"
	TypeTest Type = "test"
)

// languageByExt maps file extensions to the language keys used by the rule repository
var languageByExt = map[string]string{
	".java": "java",
	".kt":   "kotlin",
	".kts":  "kotlin",
	".xml":  "xml",
}

// testDirs mark a file as a test source when present in its relative path
var testDirs = []string{"src/test/", "src/androidTest/", "src/testDebug/", "src/testRelease/"}

// File is a tracked project file. It is the handle findings are attached to.
type File struct {
	RelPath  string // Slash-separated path relative to the base dir
	AbsPath  string
	Language string
	Type     Type

	linesOnce sync.Once
	lines     int
	linesErr  error
}

// LineCount returns the number of lines in the file, counted on first use.
// A trailing newline starts a new, empty line.
func (f *File) LineCount() (int, error) {
	f.linesOnce.Do(func() {
		data, err := os.ReadFile(f.AbsPath)
		if err != nil {
			f.linesErr = fmt.Errorf("failed to read %s: %w", f.RelPath, err)
			return
		}
		f.lines = bytes.Count(data, []byte{'\n'}) + 1
	})
	return f.lines, f.linesErr
}

// String returns the relative path
func (f *File) String() string {
	return f.RelPath
}

// Config configures index construction
type Config struct {
	BaseDir    string   // Project root (required)
	Languages  []string // Languages to index (empty = all known)
	Exclusions []string // Additional gitignore-style exclusion patterns
	MainOnly   bool     // Skip test sources
}

// Index is an immutable set of project files keyed by relative path
type Index struct {
	baseDir string
	files   map[string]*File
}

// Build walks the base directory and indexes every file of a known language
func Build(config Config) (*Index, error) {
	if config.BaseDir == "" {
		return nil, fmt.Errorf("base directory is required")
	}

	baseDir, err := filepath.Abs(config.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}
	info, err := os.Stat(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read base directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("base directory is not a directory: %s", baseDir)
	}

	matcher := LoadMatcher(baseDir, config.Exclusions)
	languages := make(map[string]bool)
	for _, lang := range config.Languages {
		languages[lang] = true
	}

	idx := &Index{
		baseDir: baseDir,
		files:   make(map[string]*File),
	}

	err = filepath.WalkDir(baseDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable entries are left out of the index
			return nil
		}
		if p == baseDir {
			return nil
		}
		rel, relErr := filepath.Rel(baseDir, p)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if skipDir(rel, d.Name()) || matcher.Match(rel, true) {
				return filepath.SkipDir
			}
			return nil
		}
		if matcher.Match(rel, false) {
			return nil
		}

		lang, ok := languageByExt[strings.ToLower(filepath.Ext(p))]
		if !ok {
			return nil
		}
		if len(languages) > 0 && !languages[lang] {
			return nil
		}

		fileType := detectType(rel)
		if config.MainOnly && fileType == TypeTest {
			return nil
		}

		idx.files[rel] = &File{
			RelPath:  rel,
			AbsPath:  p,
			Language: lang,
			Type:     fileType,
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to index %s: %w", baseDir, err)
	}

	return idx, nil
}

// detectType classifies a relative path as main or test source
func detectType(rel string) Type {
	for _, dir := range testDirs {
		if strings.HasPrefix(rel, dir) || strings.Contains(rel, "/"+dir) {
			return TypeTest
		}
	}
	return TypeMain
}

// BaseDir returns the absolute project root
func (i *Index) BaseDir() string {
	return i.baseDir
}

// Len returns the number of indexed files
func (i *Index) Len() int {
	return len(i.files)
}

// Paths returns every indexed relative path, sorted
func (i *Index) Paths() []string {
	paths := make([]string, 0, len(i.files))
	for p := range i.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// ResolveFile looks up a file by its path relative to the base dir.
// Absolute paths inside the base dir are made relative first; anything outside is not found.
func (i *Index) ResolveFile(path string) (*File, bool) {
	if path == "" {
		return nil, false
	}

	rel := path
	if filepath.IsAbs(path) {
		r, err := filepath.Rel(i.baseDir, path)
		if err != nil {
			return nil, false
		}
		rel = r
	}
	rel = filepath.ToSlash(filepath.Clean(rel))
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return nil, false
	}

	f, ok := i.files[rel]
	return f, ok
}
