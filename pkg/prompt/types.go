// Package prompt provides configurable AI prompt templates for Android Lint remediation hints.
package prompt

import (
	"bytes"
	"fmt"
	"os"
	"text/template"
)

// Template holds a prompt template and can render it with data
type Template struct {
	Name     string
	Content  string
	compiled *template.Template
}

// Templates holds all prompt templates for a provider
type Templates struct {
	Explain *Template // Base explain template (fallback)
	// Language-specific template overrides
	languageTemplates map[string]*Template
}

// Config configures prompt template loading
type Config struct {
	// Provider name (used for loading provider-specific defaults)
	Provider string
	// Custom base template path (optional, used as fallback)
	ExplainPath string
	// Language-specific template paths keyed by language (optional)
	LanguageTemplates map[string]string
}

// ExplainData contains all data needed to render an explain prompt
type ExplainData struct {
	RuleKey       string
	RuleName      string
	Severity      string
	Type          string
	Category      string
	Description   string
	Language      string
	LocationCount int
	Locations     []ExplainLocation
}

// ExplainLocation is one occurrence of the rule in the project
type ExplainLocation struct {
	Index       int // 1-based index
	File        string
	Line        int
	Message     string
	CodeContext string
}

// Load loads templates based on the configuration
func Load(cfg Config) (*Templates, error) {
	templates := &Templates{
		languageTemplates: make(map[string]*Template),
	}

	if cfg.ExplainPath != "" {
		tmpl, err := loadFromFile(cfg.ExplainPath, "explain")
		if err != nil {
			return nil, fmt.Errorf("failed to load explain template: %w", err)
		}
		templates.Explain = tmpl
	} else {
		templates.Explain = getDefaultExplainTemplate(cfg.Provider)
	}

	if err := templates.Explain.compile(); err != nil {
		return nil, fmt.Errorf("failed to compile explain template: %w", err)
	}

	for lang, path := range cfg.LanguageTemplates {
		if path == "" {
			continue
		}
		tmpl, err := loadFromFile(path, fmt.Sprintf("explain-%s", lang))
		if err != nil {
			return nil, fmt.Errorf("failed to load %s explain template: %w", lang, err)
		}
		if err := tmpl.compile(); err != nil {
			return nil, fmt.Errorf("failed to compile %s explain template: %w", lang, err)
		}
		templates.languageTemplates[lang] = tmpl
	}

	return templates, nil
}

// loadFromFile loads a template from a file
func loadFromFile(path string, name string) (*Template, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template file: %w", err)
	}

	return &Template{
		Name:    name,
		Content: string(content),
	}, nil
}

// compile compiles the template for rendering
func (t *Template) compile() error {
	tmpl, err := template.New(t.Name).Parse(t.Content)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}
	t.compiled = tmpl
	return nil
}

// RenderExplain renders an explain prompt with the given data
func (t *Template) RenderExplain(data ExplainData) (string, error) {
	if t.compiled == nil {
		return "", fmt.Errorf("template not compiled")
	}

	var buf bytes.Buffer
	if err := t.compiled.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}

// GetExplainTemplate returns the explain template for the given language
// Falls back to the base template if no language-specific template exists
func (t *Templates) GetExplainTemplate(language string) *Template {
	if tmpl, ok := t.languageTemplates[language]; ok {
		return tmpl
	}
	return t.Explain
}
