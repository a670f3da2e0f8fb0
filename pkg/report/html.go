package report

import (
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
)

// GenerateHTML writes the summary as a standalone HTML page at path and returns the path
func GenerateHTML(summary *Summary, path string) (string, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create HTML file: %w", err)
	}
	defer f.Close()

	if err := Render(f, summary); err != nil {
		return "", err
	}

	return path, nil
}

// Render executes the HTML template for summary
func Render(w io.Writer, summary *Summary) error {
	tmpl, err := template.New("summary").Funcs(templateFuncs()).Parse(htmlTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	if err := tmpl.Execute(w, summary); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}
	return nil
}

// templateFuncs returns custom template functions
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"truncate": func(s string, length int) string {
			if len(s) <= length {
				return s
			}
			return s[:length] + "..."
		},
		"severityColor": severityColor,
		"typeIcon": func(ruleType string) template.HTML {
			switch ruleType {
			case "BUG":
				return "&#x1F41E;"
			case "VULNERABILITY":
				return "&#x1F512;"
			default:
				return "&#x2699;"
			}
		},
		"percent": func(part, total int) int {
			if total == 0 {
				return 0
			}
			return part * 100 / total
		},
	}
}

// severityColor maps a SonarQube severity onto the report palette
func severityColor(severity string) string {
	switch severity {
	case "BLOCKER":
		return "#7D1007" // dark red
	case "CRITICAL":
		return "#C9190B" // red
	case "MAJOR":
		return "#F0AB00" // yellow
	case "MINOR":
		return "#2B9AF3" // blue
	case "INFO":
		return "#3E8635" // green
	default:
		return "#6A6E73" // gray
	}
}
