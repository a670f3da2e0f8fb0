package profile

import (
	"encoding/xml"
	"io"
	"log/slog"
	"strings"

	"github.com/tsanders/sonar-android-lint/pkg/rules"
)

// UnableToLoadProfile is recorded when a lint.xml document cannot be parsed
const UnableToLoadProfile = "Unable to load default Android Lint profile"

// allIssues is the lint.xml id that configures every issue at once
const allIssues = "all"

type lintConfig struct {
	XMLName xml.Name          `xml:"lint"`
	Issues  []lintConfigIssue `xml:"issue"`
}

type lintConfigIssue struct {
	ID       string `xml:"id,attr"`
	Severity string `xml:"severity,attr,omitempty"`
}

// Importer reads lint.xml documents into profiles of the android-lint repository
type Importer struct {
	repo   *rules.Repository
	logger *slog.Logger
}

// NewImporter creates an importer resolving rule ids against repo
func NewImporter(repo *rules.Repository, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{repo: repo, logger: logger}
}

// Key returns the repository the importer produces rules for
func (i *Importer) Key() string {
	return i.repo.Key
}

// Name returns the display name of the importer
func (i *Importer) Name() string {
	return i.repo.Name
}

// SupportedLanguages returns the languages imported profiles apply to
func (i *Importer) SupportedLanguages() []string {
	return SupportedLanguages
}

// ImportProfile parses a lint.xml document. Issues with severity "ignore" are left inactive,
// issues without severity use the rule's default severity, and the id "all" applies a severity
// to every rule before the specific entries. Unknown ids are reported as warnings and skipped.
// A document that cannot be parsed records an error and returns nil.
func (i *Importer) ImportProfile(r io.Reader, messages *ValidationMessages) *Profile {
	var cfg lintConfig
	if err := xml.NewDecoder(r).Decode(&cfg); err != nil {
		messages.AddErrorText("%s: %v", UnableToLoadProfile, err)
		i.logger.Error(UnableToLoadProfile, "error", err)
		return nil
	}

	p := New(i.repo.Name, i.repo.Language)

	for _, issue := range cfg.Issues {
		if issue.ID != allIssues {
			continue
		}
		for _, rule := range i.repo.Rules() {
			i.apply(p, rule, issue.Severity, messages)
		}
	}

	for _, issue := range cfg.Issues {
		if issue.ID == allIssues {
			continue
		}
		rule, ok := i.repo.Rule(issue.ID)
		if !ok {
			messages.AddWarningText("Unable to import unknown Android Lint rule '%s'", issue.ID)
			continue
		}
		i.apply(p, rule, issue.Severity, messages)
	}

	messages.AddInfoText("Imported %d active rule(s) out of %d", len(p.ActiveRules), i.repo.Len())
	return p
}

// apply activates or deactivates one rule for a lint.xml severity
func (i *Importer) apply(p *Profile, rule rules.Rule, lintSeverity string, messages *ValidationMessages) {
	lintSeverity = strings.TrimSpace(lintSeverity)
	if lintSeverity == "" {
		p.Activate(i.repo.Key, rule.Key, rule.Severity)
		return
	}
	if strings.EqualFold(lintSeverity, LintIgnore) {
		p.Deactivate(i.repo.Key, rule.Key)
		return
	}
	severity, ok := SeverityFromLint(lintSeverity)
	if !ok {
		messages.AddWarningText("Unknown severity '%s' for rule '%s', using default severity", lintSeverity, rule.Key)
		severity = rule.Severity
	}
	p.Activate(i.repo.Key, rule.Key, severity)
}
