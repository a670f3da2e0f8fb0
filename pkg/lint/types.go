// Package lint provides types and utilities for working with Android Lint XML reports.
// It handles loading and validating the lint-results.xml files produced by the Android Gradle plugin.
package lint

// Report represents the root <issues> element of an Android Lint XML report.
// Issues keep document order.
type Report struct {
	Format string  // Report format version written by lint (informational)
	By     string  // Tool that produced the report (informational)
	Issues []Issue // Reported issues in document order
}

// Issue represents one lint rule violation, possibly occurring at multiple locations.
type Issue struct {
	ID        string     // Lint issue id, matches a rule key in the android-lint repository
	Message   string     // Human-readable message for this occurrence
	Severity  string     // Lint severity (Fatal, Error, Warning, Information), informational
	Category  string     // Lint category, informational
	Priority  int        // Lint priority 1-10, 0 when absent
	Summary   string     // Short rule summary, informational
	Locations []Location // Ordered occurrences of this issue
}

// Location represents a single file+line occurrence of an Issue.
type Location struct {
	File   string // Path relative to the project root
	Line   int    // 1-based line number, 0 when the attribute is absent
	Column int    // 1-based column, 0 when absent
}

// HasLine reports whether the location carried a line attribute.
func (l Location) HasLine() bool {
	return l.Line != 0
}

// TargetLine returns the line a finding should be attached to.
// Absent and non-positive lines select the first line of the file.
func (l Location) TargetLine() int {
	if l.Line > 0 {
		return l.Line
	}
	return 1
}

// LocationCount returns the total number of locations across all issues
func (r *Report) LocationCount() int {
	total := 0
	for _, issue := range r.Issues {
		total += len(issue.Locations)
	}
	return total
}

// IssueIDs returns the distinct issue ids in first-seen order
func (r *Report) IssueIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, issue := range r.Issues {
		if seen[issue.ID] {
			continue
		}
		seen[issue.ID] = true
		ids = append(ids, issue.ID)
	}
	return ids
}
