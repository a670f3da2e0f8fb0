// Package report provides HTML report generation for Android Lint import runs.
package report

import (
	"sort"
	"time"

	"github.com/tsanders/sonar-android-lint/pkg/rules"
	"github.com/tsanders/sonar-android-lint/pkg/translator"
)

// Summary is everything the HTML report shows about one run
type Summary struct {
	RunID       string
	ProjectDir  string
	ReportPath  string
	OutputPath  string
	GeneratedAt time.Time
	Duration    time.Duration

	Lookups  int
	Emitted  int
	Skipped  int
	Rejected int

	BySeverity   map[string]int
	Rules        []RuleSummary
	SkippedFiles []string
	Rejections   []Rejection
}

// RuleSummary counts the findings of one rule
type RuleSummary struct {
	Key      string
	Name     string
	Severity string
	Type     string
	Count    int
}

// Rejection is a finding the sink refused
type Rejection struct {
	RuleKey string
	File    string
	Line    int
	Reason  string
}

// NewSummary aggregates a translation result. Rule metadata comes from repo.
func NewSummary(result *translator.Result, repo *rules.Repository) *Summary {
	s := &Summary{
		GeneratedAt:  time.Now(),
		Lookups:      result.Lookups,
		Emitted:      result.Emitted,
		Skipped:      result.Skipped,
		Rejected:     result.Rejected,
		BySeverity:   make(map[string]int),
		SkippedFiles: result.SkippedFiles(),
	}

	counts := make(map[string]*RuleSummary)
	for _, o := range result.Outcomes {
		switch o.Kind {
		case translator.OutcomeEmitted:
			key := o.Finding.RuleKey
			rs, ok := counts[key.String()]
			if !ok {
				rs = &RuleSummary{Key: key.String(), Name: key.Rule}
				if rule, found := repo.Rule(key.Rule); found && key.Repository == repo.Key {
					rs.Name = rule.Name
					rs.Severity = rule.Severity
					rs.Type = rule.Type
				}
				counts[key.String()] = rs
			}
			rs.Count++
			if rs.Severity != "" {
				s.BySeverity[rs.Severity]++
			}
		case translator.OutcomeRejected:
			r := Rejection{
				RuleKey: rules.NewKey(repo.Key, o.IssueID).String(),
				File:    o.Location.File,
				Line:    o.Location.TargetLine(),
			}
			if o.Finding != nil {
				r.RuleKey = o.Finding.RuleKey.String()
				r.Line = o.Finding.Line
			}
			if o.Err != nil {
				r.Reason = o.Err.Error()
			}
			s.Rejections = append(s.Rejections, r)
		}
	}

	for _, rs := range counts {
		s.Rules = append(s.Rules, *rs)
	}
	sort.Slice(s.Rules, func(i, j int) bool {
		if s.Rules[i].Count != s.Rules[j].Count {
			return s.Rules[i].Count > s.Rules[j].Count
		}
		return s.Rules[i].Key < s.Rules[j].Key
	})

	return s
}

// SeverityCounts returns the per-severity counts from BLOCKER down to INFO, including zeros
func (s *Summary) SeverityCounts() []SeverityCount {
	out := make([]SeverityCount, 0, len(rules.Severities))
	for i := len(rules.Severities) - 1; i >= 0; i-- {
		sev := rules.Severities[i]
		out = append(out, SeverityCount{Severity: sev, Count: s.BySeverity[sev]})
	}
	return out
}

// SeverityCount pairs a severity with its finding count
type SeverityCount struct {
	Severity string
	Count    int
}
