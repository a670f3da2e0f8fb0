// Package translator converts the issues of an Android Lint report into located findings.
//
// Translation is a single synchronous pass: the report is parsed completely, then every
// (issue, location) pair is resolved against the project's file index in document order.
// Resolved pairs become findings handed to a FindingSink; unresolved pairs are skipped.
package translator

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/tsanders/sonar-android-lint/pkg/inputfile"
	"github.com/tsanders/sonar-android-lint/pkg/lint"
	"github.com/tsanders/sonar-android-lint/pkg/rules"
	"github.com/tsanders/sonar-android-lint/pkg/ux"
)

// FileResolver looks up a tracked file by its path relative to the project root
type FileResolver interface {
	ResolveFile(path string) (*inputfile.File, bool)
}

// FindingSink persists findings. An error rejects that single finding only.
type FindingSink interface {
	ReportFinding(f Finding) error
}

// Finding is a lint issue attached to a file and line
type Finding struct {
	RuleKey rules.Key
	File    *inputfile.File
	Line    int
	Message string
}

// OutcomeKind classifies what happened to one (issue, location) pair
type OutcomeKind int

const (
	// OutcomeEmitted means a finding was accepted by the sink
	OutcomeEmitted OutcomeKind = iota
	// OutcomeSkipped means the location's file did not resolve
	OutcomeSkipped
	// OutcomeRejected means the sink refused the finding
	OutcomeRejected
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeEmitted:
		return "emitted"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Outcome records the result for one (issue, location) pair
type Outcome struct {
	Kind     OutcomeKind
	IssueID  string
	Location lint.Location
	Finding  *Finding // nil when skipped
	Err      error    // sink error when rejected
}

// Result summarizes a translation run
type Result struct {
	Outcomes []Outcome
	Lookups  int // Resolver calls performed
	Emitted  int
	Skipped  int
	Rejected int
}

// SkippedFiles returns the distinct unresolved file paths in first-seen order
func (r *Result) SkippedFiles() []string {
	seen := make(map[string]bool)
	var files []string
	for _, o := range r.Outcomes {
		if o.Kind != OutcomeSkipped || seen[o.Location.File] {
			continue
		}
		seen[o.Location.File] = true
		files = append(files, o.Location.File)
	}
	return files
}

// Findings returns the emitted findings in document order
func (r *Result) Findings() []Finding {
	findings := make([]Finding, 0, r.Emitted)
	for _, o := range r.Outcomes {
		if o.Kind == OutcomeEmitted {
			findings = append(findings, *o.Finding)
		}
	}
	return findings
}

// Config configures a Translator
type Config struct {
	Resolver   FileResolver // Required
	Sink       FindingSink  // Required
	Repository string       // Rule repository namespace, defaults to android-lint
	Logger     *slog.Logger
	Progress   ux.ProgressWriter
}

// Translator maps lint reports onto findings. It is not safe for concurrent use.
type Translator struct {
	config Config
}

// New creates a Translator
func New(config Config) (*Translator, error) {
	if config.Resolver == nil {
		return nil, fmt.Errorf("file resolver is required")
	}
	if config.Sink == nil {
		return nil, fmt.Errorf("finding sink is required")
	}
	if config.Repository == "" {
		config.Repository = rules.RepositoryKey
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Progress == nil {
		config.Progress = &ux.NoOpProgressWriter{}
	}
	return &Translator{config: config}, nil
}

// Process loads the report at path and translates it.
// An unreadable report yields a single error matching lint.ErrReportUnreadable and no findings.
func (t *Translator) Process(path string) (*Result, error) {
	t.config.Logger.Info("Processing android lint report", "path", path)
	report, err := lint.LoadReport(path)
	if err != nil {
		t.config.Logger.Error("Unable to read android lint report", "path", path, "error", err)
		return nil, err
	}
	return t.Translate(report), nil
}

// ProcessReader parses a report from r and translates it
func (t *Translator) ProcessReader(r io.Reader) (*Result, error) {
	report, err := lint.Parse(r)
	if err != nil {
		t.config.Logger.Error("Unable to read android lint report", "error", err)
		return nil, err
	}
	return t.Translate(report), nil
}

// Translate emits one finding per resolvable (issue, location) pair of a parsed report
func (t *Translator) Translate(report *lint.Report) *Result {
	result := &Result{
		Outcomes: make([]Outcome, 0, report.LocationCount()),
	}

	t.config.Progress.StartPhase("Translating lint issues", len(report.Issues))
	defer t.config.Progress.EndPhase()

	for _, issue := range report.Issues {
		t.config.Logger.Debug("Processing issue", "id", issue.ID, "locations", len(issue.Locations))
		for _, loc := range issue.Locations {
			result.add(t.translateLocation(issue, loc))
			result.Lookups++
		}
		t.config.Progress.Advance()
	}

	t.config.Logger.Info("Android lint report processed",
		"issues", len(report.Issues),
		"rules", len(report.IssueIDs()),
		"emitted", result.Emitted,
		"skipped", result.Skipped,
		"rejected", result.Rejected)

	return result
}

// translateLocation resolves one location and hands the finding to the sink
func (t *Translator) translateLocation(issue lint.Issue, loc lint.Location) Outcome {
	outcome := Outcome{IssueID: issue.ID, Location: loc}

	file, ok := t.config.Resolver.ResolveFile(loc.File)
	if !ok || file == nil {
		t.config.Logger.Warn("Unable to find file to report issue", "file", loc.File, "issue", issue.ID)
		t.config.Progress.Warn("Unable to find file %s to report issue %s", loc.File, issue.ID)
		outcome.Kind = OutcomeSkipped
		return outcome
	}

	t.config.Logger.Debug("Processing file for issue", "file", loc.File, "issue", issue.ID)
	if !loc.HasLine() {
		t.config.Logger.Debug("Location has no line, reporting on line 1", "file", loc.File, "issue", issue.ID)
	}
	finding := &Finding{
		RuleKey: rules.NewKey(t.config.Repository, issue.ID),
		File:    file,
		Line:    loc.TargetLine(),
		Message: issue.Message,
	}
	outcome.Finding = finding

	if err := t.config.Sink.ReportFinding(*finding); err != nil {
		t.config.Logger.Error("Finding rejected", "rule", finding.RuleKey.String(), "file", loc.File, "line", finding.Line, "error", err)
		outcome.Kind = OutcomeRejected
		outcome.Err = err
		return outcome
	}

	outcome.Kind = OutcomeEmitted
	return outcome
}

func (r *Result) add(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
	switch o.Kind {
	case OutcomeEmitted:
		r.Emitted++
	case OutcomeSkipped:
		r.Skipped++
	case OutcomeRejected:
		r.Rejected++
	}
}
