package translator

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tsanders/sonar-android-lint/pkg/inputfile"
	"github.com/tsanders/sonar-android-lint/pkg/lint"
	"github.com/tsanders/sonar-android-lint/pkg/rules"
)

// MockResolver is a mock implementation of FileResolver
type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) ResolveFile(path string) (*inputfile.File, bool) {
	args := m.Called(path)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).(*inputfile.File), args.Bool(1)
}

// MockSink is a mock implementation of FindingSink
type MockSink struct {
	mock.Mock
}

func (m *MockSink) ReportFinding(f Finding) error {
	args := m.Called(f)
	return args.Error(0)
}

// mapResolver resolves from a fixed map and records every lookup
type mapResolver struct {
	files   map[string]*inputfile.File
	lookups []string
}

func (r *mapResolver) ResolveFile(path string) (*inputfile.File, bool) {
	r.lookups = append(r.lookups, path)
	f, ok := r.files[path]
	return f, ok
}

// recordingSink accepts every finding
type recordingSink struct {
	findings []Finding
}

func (s *recordingSink) ReportFinding(f Finding) error {
	s.findings = append(s.findings, f)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTranslator(t *testing.T, resolver FileResolver, sink FindingSink) *Translator {
	t.Helper()
	tr, err := New(Config{Resolver: resolver, Sink: sink, Logger: discardLogger()})
	require.NoError(t, err)
	return tr
}

func TestNew(t *testing.T) {
	t.Run("requires resolver", func(t *testing.T) {
		_, err := New(Config{Sink: &recordingSink{}})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "file resolver is required")
	})

	t.Run("requires sink", func(t *testing.T) {
		_, err := New(Config{Resolver: &mapResolver{}})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "finding sink is required")
	})

	t.Run("applies defaults", func(t *testing.T) {
		tr, err := New(Config{Resolver: &mapResolver{}, Sink: &recordingSink{}})
		require.NoError(t, err)
		assert.Equal(t, rules.RepositoryKey, tr.config.Repository)
		assert.NotNil(t, tr.config.Logger)
		assert.NotNil(t, tr.config.Progress)
	})
}

func TestTranslator_RoundTrip(t *testing.T) {
	handle := &inputfile.File{RelPath: "A.java"}

	resolver := new(MockResolver)
	resolver.On("ResolveFile", "A.java").Return(handle, true).Once()

	sink := new(MockSink)
	sink.On("ReportFinding", Finding{
		RuleKey: rules.NewKey(rules.RepositoryKey, "X"),
		File:    handle,
		Line:    7,
		Message: "M",
	}).Return(nil).Once()

	tr := newTranslator(t, resolver, sink)
	result, err := tr.ProcessReader(strings.NewReader(
		`<issues><issue id="X" message="M"><location file="A.java" line="7"/></issue></issues>`))
	require.NoError(t, err)

	resolver.AssertExpectations(t)
	sink.AssertExpectations(t)

	assert.Equal(t, 1, result.Emitted)
	require.Len(t, result.Findings(), 1)
	finding := result.Findings()[0]
	assert.True(t, strings.HasSuffix(finding.RuleKey.String(), "X"))
	assert.Same(t, handle, finding.File)
	assert.Equal(t, 7, finding.Line)
	assert.Equal(t, "M", finding.Message)
}

func TestTranslator_Translate(t *testing.T) {
	layout := &inputfile.File{RelPath: "res/layout/main.xml"}
	strs := &inputfile.File{RelPath: "res/values/strings.xml"}
	web := &inputfile.File{RelPath: "src/Web.java"}

	report := &lint.Report{Issues: []lint.Issue{
		{ID: "HardcodedText", Message: "Hardcoded string", Locations: []lint.Location{
			{File: "res/layout/main.xml", Line: 12},
		}},
		{ID: "UnusedResources", Message: "Unused", Locations: []lint.Location{
			{File: "res/values/strings.xml", Line: 3},
			{File: "res/values-fr/strings.xml", Line: 4},
			{File: "res/values/strings.xml"},
		}},
		{ID: "GradleDependency", Message: "Old dependency"},
		{ID: "SetJavaScriptEnabled", Message: "XSS", Locations: []lint.Location{
			{File: "src/Web.java", Line: -2},
		}},
	}}

	resolver := &mapResolver{files: map[string]*inputfile.File{
		"res/layout/main.xml":    layout,
		"res/values/strings.xml": strs,
		"src/Web.java":           web,
	}}
	sink := &recordingSink{}
	result := newTranslator(t, resolver, sink).Translate(report)

	t.Run("one lookup per location in document order", func(t *testing.T) {
		assert.Equal(t, report.LocationCount(), result.Lookups)
		assert.Equal(t, []string{
			"res/layout/main.xml",
			"res/values/strings.xml",
			"res/values-fr/strings.xml",
			"res/values/strings.xml",
			"src/Web.java",
		}, resolver.lookups)
	})

	t.Run("unresolved location is skipped without aborting", func(t *testing.T) {
		assert.Equal(t, 1, result.Skipped)
		assert.Equal(t, []string{"res/values-fr/strings.xml"}, result.SkippedFiles())
		assert.Equal(t, OutcomeSkipped, result.Outcomes[2].Kind)
		assert.Nil(t, result.Outcomes[2].Finding)
		assert.Equal(t, "UnusedResources", result.Outcomes[2].IssueID)
	})

	t.Run("findings reach the sink in order", func(t *testing.T) {
		assert.Equal(t, 4, result.Emitted)
		require.Len(t, sink.findings, 4)
		assert.Equal(t, sink.findings, result.Findings())

		assert.Equal(t, "android-lint:HardcodedText", sink.findings[0].RuleKey.String())
		assert.Same(t, layout, sink.findings[0].File)
		assert.Equal(t, 12, sink.findings[0].Line)

		assert.Equal(t, "android-lint:UnusedResources", sink.findings[1].RuleKey.String())
		assert.Equal(t, 3, sink.findings[1].Line)
	})

	t.Run("absent line defaults to 1", func(t *testing.T) {
		assert.Same(t, strs, sink.findings[2].File)
		assert.Equal(t, 1, sink.findings[2].Line)
	})

	t.Run("non-positive line clamps to 1", func(t *testing.T) {
		assert.Same(t, web, sink.findings[3].File)
		assert.Equal(t, 1, sink.findings[3].Line)
	})
}

func TestTranslator_EmptyReport(t *testing.T) {
	resolver := new(MockResolver)
	sink := new(MockSink)

	result, err := newTranslator(t, resolver, sink).ProcessReader(strings.NewReader(`<issues></issues>`))
	require.NoError(t, err)
	assert.Equal(t, 0, result.Emitted)
	assert.Equal(t, 0, result.Lookups)
	assert.Empty(t, result.Outcomes)

	resolver.AssertNotCalled(t, "ResolveFile", mock.Anything)
	sink.AssertNotCalled(t, "ReportFinding", mock.Anything)
}

func TestTranslator_MalformedReport(t *testing.T) {
	resolver := new(MockResolver)
	sink := new(MockSink)
	tr := newTranslator(t, resolver, sink)

	t.Run("reader", func(t *testing.T) {
		result, err := tr.ProcessReader(strings.NewReader(
			`<issues><issue id="X" message="M"><location file="A.java" line="7"/></issue>`))
		assert.Nil(t, result)
		require.Error(t, err)
		assert.True(t, errors.Is(err, lint.ErrReportUnreadable))
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "lint-results.xml")
		require.NoError(t, os.WriteFile(path, []byte(`<issues><issue id="X"`), 0644))

		result, err := tr.Process(path)
		assert.Nil(t, result)
		require.Error(t, err)
		assert.True(t, errors.Is(err, lint.ErrReportUnreadable))
	})

	t.Run("missing file", func(t *testing.T) {
		result, err := tr.Process(filepath.Join(t.TempDir(), "absent.xml"))
		assert.Nil(t, result)
		assert.True(t, errors.Is(err, lint.ErrReportUnreadable))
	})

	resolver.AssertNotCalled(t, "ResolveFile", mock.Anything)
	sink.AssertNotCalled(t, "ReportFinding", mock.Anything)
}

func TestTranslator_SinkRejection(t *testing.T) {
	a := &inputfile.File{RelPath: "A.java"}
	b := &inputfile.File{RelPath: "B.java"}

	resolver := new(MockResolver)
	resolver.On("ResolveFile", "A.java").Return(a, true)
	resolver.On("ResolveFile", "B.java").Return(b, true)

	sink := new(MockSink)
	sink.On("ReportFinding", mock.MatchedBy(func(f Finding) bool { return f.RuleKey.Rule == "Unknown" })).
		Return(errors.New("rule not found: android-lint:Unknown"))
	sink.On("ReportFinding", mock.MatchedBy(func(f Finding) bool { return f.RuleKey.Rule == "NewApi" })).
		Return(nil)

	report := &lint.Report{Issues: []lint.Issue{
		{ID: "Unknown", Message: "?", Locations: []lint.Location{{File: "A.java", Line: 2}}},
		{ID: "NewApi", Message: "Call requires API level 26", Locations: []lint.Location{{File: "B.java", Line: 9}}},
	}}

	result := newTranslator(t, resolver, sink).Translate(report)

	assert.Equal(t, 1, result.Rejected)
	assert.Equal(t, 1, result.Emitted)
	assert.Equal(t, OutcomeRejected, result.Outcomes[0].Kind)
	assert.EqualError(t, result.Outcomes[0].Err, "rule not found: android-lint:Unknown")
	assert.Equal(t, OutcomeEmitted, result.Outcomes[1].Kind)
	sink.AssertNumberOfCalls(t, "ReportFinding", 2)
}

func TestTranslator_CustomRepository(t *testing.T) {
	f := &inputfile.File{RelPath: "A.java"}
	sink := &recordingSink{}
	tr, err := New(Config{
		Resolver:   &mapResolver{files: map[string]*inputfile.File{"A.java": f}},
		Sink:       sink,
		Repository: "android-lint-custom",
		Logger:     discardLogger(),
	})
	require.NoError(t, err)

	tr.Translate(&lint.Report{Issues: []lint.Issue{
		{ID: "Foo", Message: "bar", Locations: []lint.Location{{File: "A.java"}}},
	}})
	require.Len(t, sink.findings, 1)
	assert.Equal(t, "android-lint-custom:Foo", sink.findings[0].RuleKey.String())
}

func TestOutcomeKind_String(t *testing.T) {
	assert.Equal(t, "emitted", OutcomeEmitted.String())
	assert.Equal(t, "skipped", OutcomeSkipped.String())
	assert.Equal(t, "rejected", OutcomeRejected.String())
	assert.Equal(t, "unknown", OutcomeKind(42).String())
}
