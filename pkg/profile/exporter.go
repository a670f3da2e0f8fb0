package profile

import (
	"encoding/xml"
	"fmt"
	"io"

	"github.com/tsanders/sonar-android-lint/pkg/rules"
)

// MimeType of exported profiles
const MimeType = "text/xml; charset=utf-8"

// Exporter writes profiles as lint.xml documents
type Exporter struct {
	repo *rules.Repository
}

// NewExporter creates an exporter listing the rules of repo
func NewExporter(repo *rules.Repository) *Exporter {
	return &Exporter{repo: repo}
}

// Key returns the repository the exporter writes rules for
func (e *Exporter) Key() string {
	return e.repo.Key
}

// Name returns the display name of the exporter
func (e *Exporter) Name() string {
	return e.repo.Name
}

// MimeType returns the content type of exported documents
func (e *Exporter) MimeType() string {
	return MimeType
}

// ExportProfile writes every repository rule to w. Rules not active in p get severity "ignore"
// so that Android Lint does not fall back to its own defaults for them.
func (e *Exporter) ExportProfile(p *Profile, w io.Writer) error {
	active := make(map[string]string)
	if p != nil {
		for _, ar := range p.ActiveRulesByRepository(e.repo.Key) {
			active[ar.Key] = ar.Severity
		}
	}

	cfg := lintConfig{Issues: make([]lintConfigIssue, 0, e.repo.Len())}
	for _, rule := range e.repo.Rules() {
		severity := LintIgnore
		if s, ok := active[rule.Key]; ok {
			severity = SeverityToLint(s)
		}
		cfg.Issues = append(cfg.Issues, lintConfigIssue{ID: rule.Key, Severity: severity})
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("failed to write profile: %w", err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return fmt.Errorf("failed to write profile: %w", err)
	}
	return nil
}
