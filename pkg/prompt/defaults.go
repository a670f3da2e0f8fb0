package prompt

// getDefaultExplainTemplate returns the default explain template.
// All providers share it.
func getDefaultExplainTemplate(provider string) *Template {
	return &Template{
		Name:    "explain-default",
		Content: defaultExplainContent,
	}
}

const defaultExplainContent = `You are an Android expert reviewing issues reported by Android Lint.

RULE: {{.RuleKey}} ({{.RuleName}})
SEVERITY: {{.Severity}}
TYPE: {{.Type}}
{{- if .Category}}
CATEGORY: {{.Category}}
{{- end}}
{{if .Description}}
DESCRIPTION:
{{.Description}}
{{end}}
The rule was reported {{.LocationCount}} time(s) in this project:
{{range .Locations}}
LOCATION {{.Index}}:
File: {{.File}}
Line: {{.Line}}
Issue: {{.Message}}
{{- if .CodeContext}}
{{.CodeContext}}
{{- end}}
{{end}}
TASK:
Write a short remediation hint in Markdown for a developer fixing these issues:
1. One paragraph explaining why Android Lint flags this code
2. A concrete fix for the code shown, as a {{.Language}} snippet
3. When suppressing the issue is acceptable, if ever

Keep it under 300 words. Do not repeat the locations back.`
