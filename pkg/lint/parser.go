package lint

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ErrReportUnreadable is matched by every error returned when a report cannot be opened or parsed.
var ErrReportUnreadable = errors.New("lint report unreadable")

// ReportError describes why a report could not be read. It matches ErrReportUnreadable.
type ReportError struct {
	Path string // Report path, empty when parsed from a reader
	Err  error
}

// Error returns the error message
func (e *ReportError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to read lint report '%s': %v", e.Path, e.Err)
	}
	return fmt.Sprintf("failed to read lint report: %v", e.Err)
}

// Unwrap returns the underlying cause
func (e *ReportError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrReportUnreadable) hold for every ReportError
func (e *ReportError) Is(target error) bool {
	return target == ErrReportUnreadable
}

type xmlIssues struct {
	XMLName xml.Name   `xml:"issues"`
	Format  string     `xml:"format,attr"`
	By      string     `xml:"by,attr"`
	Issues  []xmlIssue `xml:"issue"`
}

type xmlIssue struct {
	ID        string        `xml:"id,attr"`
	Message   *string       `xml:"message,attr"`
	Severity  string        `xml:"severity,attr"`
	Category  string        `xml:"category,attr"`
	Priority  string        `xml:"priority,attr"`
	Summary   string        `xml:"summary,attr"`
	Locations []xmlLocation `xml:"location"`
}

type xmlLocation struct {
	File   string `xml:"file,attr"`
	Line   string `xml:"line,attr"`
	Column string `xml:"column,attr"`
}

// LoadReport opens and parses an Android Lint XML report
func LoadReport(path string) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ReportError{Path: path, Err: err}
	}
	defer f.Close()

	report, err := parse(f)
	if err != nil {
		return nil, &ReportError{Path: path, Err: err}
	}
	return report, nil
}

// Parse reads a whole report document and validates it.
// Nothing is returned unless the entire document is valid.
func Parse(r io.Reader) (*Report, error) {
	report, err := parse(r)
	if err != nil {
		return nil, &ReportError{Err: err}
	}
	return report, nil
}

func parse(r io.Reader) (*Report, error) {
	var doc xmlIssues
	dec := xml.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty document")
		}
		return nil, fmt.Errorf("failed to parse XML: %w", err)
	}
	if err := checkTrailing(dec); err != nil {
		return nil, err
	}

	report := &Report{
		Format: doc.Format,
		By:     doc.By,
		Issues: make([]Issue, 0, len(doc.Issues)),
	}

	for i, raw := range doc.Issues {
		issue, err := convertIssue(raw)
		if err != nil {
			return nil, fmt.Errorf("issue %d: %w", i+1, err)
		}
		report.Issues = append(report.Issues, issue)
	}

	return report, nil
}

// checkTrailing reads the rest of the document. Only whitespace, comments and
// processing instructions may follow the root element.
func checkTrailing(dec *xml.Decoder) error {
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to parse XML: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			return fmt.Errorf("unexpected element <%s> after root element", t.Name.Local)
		case xml.EndElement:
			return fmt.Errorf("unexpected end element </%s> after root element", t.Name.Local)
		case xml.CharData:
			if strings.TrimSpace(string(t)) != "" {
				return fmt.Errorf("unexpected text after root element")
			}
		}
	}
}

// convertIssue validates the required attributes of an issue and its locations
func convertIssue(raw xmlIssue) (Issue, error) {
	if strings.TrimSpace(raw.ID) == "" {
		return Issue{}, fmt.Errorf("attribute 'id' is required")
	}
	if raw.Message == nil {
		return Issue{}, fmt.Errorf("attribute 'message' is required for issue %s", raw.ID)
	}

	priority, err := optionalInt(raw.Priority)
	if err != nil {
		return Issue{}, fmt.Errorf("invalid priority for issue %s: %w", raw.ID, err)
	}

	issue := Issue{
		ID:        strings.TrimSpace(raw.ID),
		Message:   *raw.Message,
		Severity:  raw.Severity,
		Category:  raw.Category,
		Priority:  priority,
		Summary:   raw.Summary,
		Locations: make([]Location, 0, len(raw.Locations)),
	}

	for j, rawLoc := range raw.Locations {
		if rawLoc.File == "" {
			return Issue{}, fmt.Errorf("location %d of issue %s: attribute 'file' is required", j+1, raw.ID)
		}
		line, err := optionalInt(rawLoc.Line)
		if err != nil {
			return Issue{}, fmt.Errorf("location %d of issue %s: invalid line: %w", j+1, raw.ID, err)
		}
		column, err := optionalInt(rawLoc.Column)
		if err != nil {
			return Issue{}, fmt.Errorf("location %d of issue %s: invalid column: %w", j+1, raw.ID, err)
		}
		issue.Locations = append(issue.Locations, Location{
			File:   rawLoc.File,
			Line:   line,
			Column: column,
		})
	}

	return issue, nil
}

// optionalInt parses an optional integer attribute, returning 0 when absent
func optionalInt(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}
