package sonar

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/tsanders/sonar-android-lint/pkg/rules"
	"github.com/tsanders/sonar-android-lint/pkg/translator"
)

// EngineID identifies android lint as the producer of imported issues
const EngineID = "android-lint"

var (
	// ErrUnknownRule is returned for findings whose rule key is not registered
	ErrUnknownRule = errors.New("rule not registered")
	// ErrInvalidLine is returned for findings pointing past the end of their file
	ErrInvalidLine = errors.New("invalid line")
)

// Collector implements translator.FindingSink and accumulates a generic issue report
type Collector struct {
	repo   *rules.Repository
	report Report
}

// NewCollector creates a collector validating findings against repo
func NewCollector(repo *rules.Repository) *Collector {
	return &Collector{
		repo:   repo,
		report: Report{Issues: make([]*Issue, 0)},
	}
}

// ReportFinding records a finding. Unknown rule keys and out-of-range lines are rejected.
func (c *Collector) ReportFinding(f translator.Finding) error {
	if !c.repo.Has(f.RuleKey) {
		return fmt.Errorf("%w: %s", ErrUnknownRule, f.RuleKey)
	}
	if f.File == nil {
		return fmt.Errorf("finding %s has no file", f.RuleKey)
	}
	if f.Line < 1 {
		return fmt.Errorf("%w: %d is not a valid line for file %s", ErrInvalidLine, f.Line, f.File.RelPath)
	}

	lines, err := f.File.LineCount()
	if err != nil {
		return err
	}
	if f.Line > lines {
		return fmt.Errorf("%w: %d is not a valid line for file %s, it has %d lines",
			ErrInvalidLine, f.Line, f.File.RelPath, lines)
	}

	rule, _ := c.repo.Rule(f.RuleKey.Rule)
	c.report.Issues = append(c.report.Issues, &Issue{
		EngineID: EngineID,
		RuleID:   f.RuleKey.Rule,
		PrimaryLocation: &Location{
			Message:  f.Message,
			FilePath: f.File.RelPath,
			TextRange: &TextRange{
				StartLine: f.Line,
			},
		},
		Type:          rule.Type,
		Severity:      rule.Severity,
		EffortMinutes: rule.EffortMinutes(),
	})
	return nil
}

// Report returns the accumulated report
func (c *Collector) Report() *Report {
	return &c.report
}

// Len returns the number of recorded issues
func (c *Collector) Len() int {
	return len(c.report.Issues)
}

// CountBySeverity returns the number of recorded issues per severity
func (c *Collector) CountBySeverity() map[string]int {
	counts := make(map[string]int)
	for _, issue := range c.report.Issues {
		counts[issue.Severity]++
	}
	return counts
}

// CountByRule returns the number of recorded issues per rule id
func (c *Collector) CountByRule() map[string]int {
	counts := make(map[string]int)
	for _, issue := range c.report.Issues {
		counts[issue.RuleID]++
	}
	return counts
}

// WriteJSON writes the report as indented JSON
func (c *Collector) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(&c.report); err != nil {
		return fmt.Errorf("failed to encode sonar report: %w", err)
	}
	return nil
}

// WriteFile writes the report to path, creating parent directories
func (c *Collector) WriteFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create sonar report: %w", err)
	}
	defer f.Close()

	if err := c.WriteJSON(f); err != nil {
		return err
	}
	return f.Close()
}
