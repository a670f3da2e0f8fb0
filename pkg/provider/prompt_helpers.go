package provider

import (
	"bytes"

	"github.com/tsanders/sonar-android-lint/pkg/prompt"
)

const (
	// contextLines is the number of lines shown before and after a reported line
	contextLines = 5

	// promptOverheadChars approximates the fixed instructions of the explain template
	promptOverheadChars = 1200

	// EstimatedOutputTokens is the expected length of a hint
	EstimatedOutputTokens = 600.0
)

// BuildExplainData constructs template data from an ExplainRequest
func BuildExplainData(req ExplainRequest) prompt.ExplainData {
	locations := make([]prompt.ExplainLocation, len(req.Locations))

	for i, loc := range req.Locations {
		codeContext := ""
		if loc.FileContent != "" {
			codeContext = buildCodeContext(loc.FileContent, loc.Line, req.Language)
		}

		locations[i] = prompt.ExplainLocation{
			Index:       i + 1,
			File:        loc.File,
			Line:        loc.Line,
			Message:     loc.Message,
			CodeContext: codeContext,
		}
	}

	return prompt.ExplainData{
		RuleKey:       req.RuleKey.String(),
		RuleName:      req.Rule.Name,
		Severity:      req.Rule.Severity,
		Type:          req.Rule.Type,
		Category:      req.Rule.Category,
		Description:   req.Rule.Description,
		Language:      req.Language,
		LocationCount: len(req.Locations),
		Locations:     locations,
	}
}

// RenderPrompt renders the explain prompt for a request, honouring language overrides
func RenderPrompt(templates *prompt.Templates, req ExplainRequest) (string, error) {
	data := BuildExplainData(req)
	return templates.GetExplainTemplate(data.Language).RenderExplain(data)
}

// EstimateInputTokens approximates the prompt size of a request at four characters per token
func EstimateInputTokens(req ExplainRequest) float64 {
	data := BuildExplainData(req)
	chars := promptOverheadChars + len(data.RuleName) + len(data.Description)
	for _, loc := range data.Locations {
		chars += len(loc.File) + len(loc.Message) + len(loc.CodeContext) + 40
	}
	return float64(chars) / 4.0
}

// buildCodeContext extracts code context around a line number
func buildCodeContext(content string, lineNumber int, language string) string {
	lines := splitLines(content)
	start := max(0, lineNumber-contextLines)
	end := min(len(lines), lineNumber+contextLines)
	if start >= end {
		return ""
	}

	var buf bytes.Buffer
	buf.WriteString("```")
	buf.WriteString(language)
	buf.WriteString("\n")

	for i := start; i < end; i++ {
		if i+1 == lineNumber {
			buf.WriteString(">>> ") // Mark the reported line
		}
		buf.WriteString(lines[i])
		buf.WriteString("\n")
	}

	buf.WriteString("```")
	return buf.String()
}

// splitLines splits content into lines
func splitLines(content string) []string {
	var lines []string
	start := 0

	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			lines = append(lines, content[start:i])
			start = i + 1
		}
	}

	if start < len(content) {
		lines = append(lines, content[start:])
	}

	return lines
}
