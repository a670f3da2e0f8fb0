// Package profile provides SonarQube quality profiles for the android-lint repository:
// import and export in Android Lint's lint.xml configuration format, and the built-in
// "Android Lint" profile.
package profile

import (
	"fmt"
	"sort"
	"strings"
)

// Lint severities as written in lint.xml
const (
	LintFatal         = "fatal"
	LintError         = "error"
	LintWarning       = "warning"
	LintInformational = "informational"
	LintInformation   = "information"
	LintIgnore        = "ignore"
)

// SupportedLanguages are the languages android-lint profiles apply to
var SupportedLanguages = []string{"java", "xml"}

// ActiveRule is a rule activated in a profile with a SonarQube severity
type ActiveRule struct {
	Repository string `yaml:"repository"`
	Key        string `yaml:"key"`
	Severity   string `yaml:"severity"`
}

// Profile is a named set of active rules for a language
type Profile struct {
	Name        string       `yaml:"name"`
	Language    string       `yaml:"language"`
	Default     bool         `yaml:"default"`
	ActiveRules []ActiveRule `yaml:"active-rules"`
}

// New creates an empty profile
func New(name, language string) *Profile {
	return &Profile{
		Name:        name,
		Language:    language,
		ActiveRules: make([]ActiveRule, 0),
	}
}

// Activate activates a rule, replacing the severity if it is already active
func (p *Profile) Activate(repository, key, severity string) {
	for i := range p.ActiveRules {
		if p.ActiveRules[i].Repository == repository && p.ActiveRules[i].Key == key {
			p.ActiveRules[i].Severity = severity
			return
		}
	}
	p.ActiveRules = append(p.ActiveRules, ActiveRule{
		Repository: repository,
		Key:        key,
		Severity:   severity,
	})
}

// Deactivate removes a rule from the profile
func (p *Profile) Deactivate(repository, key string) {
	for i := range p.ActiveRules {
		if p.ActiveRules[i].Repository == repository && p.ActiveRules[i].Key == key {
			p.ActiveRules = append(p.ActiveRules[:i], p.ActiveRules[i+1:]...)
			return
		}
	}
}

// ActiveRule returns the activation of a rule, if any
func (p *Profile) ActiveRule(repository, key string) (ActiveRule, bool) {
	for _, ar := range p.ActiveRules {
		if ar.Repository == repository && ar.Key == key {
			return ar, true
		}
	}
	return ActiveRule{}, false
}

// ActiveRulesByRepository returns the active rules of one repository, sorted by key
func (p *Profile) ActiveRulesByRepository(repository string) []ActiveRule {
	var out []ActiveRule
	for _, ar := range p.ActiveRules {
		if ar.Repository == repository {
			out = append(out, ar)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Key < out[j].Key
	})
	return out
}

// SeverityFromLint maps a lint.xml severity onto a SonarQube severity.
// The boolean is false for "ignore" and unknown values.
func SeverityFromLint(severity string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(severity)) {
	case LintFatal:
		return "BLOCKER", true
	case LintError:
		return "CRITICAL", true
	case LintWarning:
		return "MAJOR", true
	case LintInformational, LintInformation:
		return "INFO", true
	default:
		return "", false
	}
}

// SeverityToLint maps a SonarQube severity onto a lint.xml severity
func SeverityToLint(severity string) string {
	switch severity {
	case "BLOCKER":
		return LintFatal
	case "CRITICAL":
		return LintError
	case "MAJOR", "MINOR":
		return LintWarning
	case "INFO":
		return LintInformational
	default:
		return LintWarning
	}
}

// ValidationMessages collects problems found while importing a profile
type ValidationMessages struct {
	Errors   []string
	Warnings []string
	Infos    []string
}

// AddErrorText records an error
func (m *ValidationMessages) AddErrorText(format string, args ...interface{}) {
	m.Errors = append(m.Errors, fmt.Sprintf(format, args...))
}

// AddWarningText records a warning
func (m *ValidationMessages) AddWarningText(format string, args ...interface{}) {
	m.Warnings = append(m.Warnings, fmt.Sprintf(format, args...))
}

// AddInfoText records an informational message
func (m *ValidationMessages) AddInfoText(format string, args ...interface{}) {
	m.Infos = append(m.Infos, fmt.Sprintf(format, args...))
}

// HasErrors reports whether any error was recorded
func (m *ValidationMessages) HasErrors() bool {
	return len(m.Errors) > 0
}
