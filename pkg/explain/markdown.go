package explain

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// WriteMarkdown writes the hints as a Markdown document, one section per rule
func WriteMarkdown(w io.Writer, result *Result) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "# Android Lint remediation hints\n\n")
	fmt.Fprintf(bw, "%d rule(s) explained", result.Explained)
	if result.Failed > 0 {
		fmt.Fprintf(bw, ", %d failed", result.Failed)
	}
	if result.NotExplained > 0 {
		fmt.Fprintf(bw, ", %d not explained", result.NotExplained)
	}
	fmt.Fprintf(bw, ". Cost: $%.4f (%d tokens).\n", result.TotalCost, result.TotalTokens)

	for _, hint := range result.Hints {
		g := hint.Group
		fmt.Fprintf(bw, "\n## %s: %s\n\n", g.RuleKey.Rule, g.Rule.Name)
		fmt.Fprintf(bw, "- **Rule:** `%s`\n", g.RuleKey)
		fmt.Fprintf(bw, "- **Severity:** %s\n", g.Rule.Severity)
		fmt.Fprintf(bw, "- **Type:** %s\n", g.Rule.Type)
		fmt.Fprintf(bw, "- **Findings:** %d\n\n", len(g.Findings))

		for _, f := range g.Findings {
			path := ""
			if f.File != nil {
				path = f.File.RelPath
			}
			fmt.Fprintf(bw, "- `%s:%d` %s\n", path, f.Line, f.Message)
		}
		fmt.Fprintln(bw)

		if hint.Err != nil {
			fmt.Fprintf(bw, "> Hint unavailable: %v\n", firstLine(hint.Err.Error()))
			continue
		}
		fmt.Fprintf(bw, "%s\n", hint.Text)
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write hints: %w", err)
	}
	return nil
}

// WriteFile writes the Markdown document to path, creating parent directories
func WriteFile(path string, result *Result) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create hints file: %w", err)
	}
	defer f.Close()

	if err := WriteMarkdown(f, result); err != nil {
		return err
	}
	return f.Close()
}

func firstLine(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			return s[:i]
		}
	}
	return s
}
