package explain

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tsanders/sonar-android-lint/pkg/inputfile"
	"github.com/tsanders/sonar-android-lint/pkg/provider"
	"github.com/tsanders/sonar-android-lint/pkg/rules"
	"github.com/tsanders/sonar-android-lint/pkg/translator"
	"github.com/tsanders/sonar-android-lint/pkg/ux"
)

// MockProvider is a mock implementation of provider.Provider
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockProvider) Explain(ctx context.Context, req provider.ExplainRequest) (*provider.ExplainResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.ExplainResponse), args.Error(1)
}

func (m *MockProvider) EstimateCost(req provider.ExplainRequest) (float64, error) {
	args := m.Called(req)
	return args.Get(0).(float64), args.Error(1)
}

func testRepository(t *testing.T) *rules.Repository {
	t.Helper()
	repo, err := rules.LoadRepository(strings.NewReader(`
repository: {key: android-lint, name: Android Lint, language: java}
rules:
  - {key: HardcodedText, name: Hardcoded text, severity: MINOR, type: CODE_SMELL}
  - {key: NewApi, name: Calling new methods on older versions, severity: CRITICAL, type: BUG}
  - {key: SetJavaScriptEnabled, name: Using setJavaScriptEnabled, severity: MAJOR, type: VULNERABILITY}
`))
	require.NoError(t, err)
	return repo
}

func testFindings(t *testing.T) []translator.Finding {
	t.Helper()
	dir := t.TempDir()
	javaPath := filepath.Join(dir, "Main.java")
	require.NoError(t, os.WriteFile(javaPath, []byte("class Main {\n  void f() {}\n}\n"), 0644))

	java := &inputfile.File{RelPath: "src/main/java/Main.java", AbsPath: javaPath, Language: "java", Type: inputfile.TypeMain}
	layout := &inputfile.File{RelPath: "src/main/res/layout/main.xml", AbsPath: filepath.Join(dir, "missing.xml"), Language: "xml", Type: inputfile.TypeMain}

	key := func(id string) rules.Key { return rules.NewKey(rules.RepositoryKey, id) }
	return []translator.Finding{
		{RuleKey: key("HardcodedText"), File: layout, Line: 4, Message: "Hardcoded string \"Login\""},
		{RuleKey: key("NewApi"), File: java, Line: 2, Message: "Call requires API level 26"},
		{RuleKey: key("HardcodedText"), File: layout, Line: 9, Message: "Hardcoded string \"Cancel\""},
		{RuleKey: key("Unknown"), File: java, Line: 1, Message: "not in repository"},
		{RuleKey: rules.NewKey("checkstyle", "NewApi"), File: java, Line: 1, Message: "foreign"},
	}
}

// waitRecorder records Wait calls and whether each was finished before the next began
type waitRecorder struct {
	ux.NoOpProgressWriter
	messages []string
	open     int
	finished int
}

func (w *waitRecorder) Wait(message string) func() {
	w.messages = append(w.messages, message)
	w.open++
	return func() {
		w.open--
		w.finished++
	}
}

func newExplainer(t *testing.T, p provider.Provider, cfg Config) *Explainer {
	t.Helper()
	cfg.Provider = p
	cfg.Repository = testRepository(t)
	cfg.RetryDelay = time.Millisecond
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	e, err := New(cfg)
	require.NoError(t, err)
	return e
}

func TestNew(t *testing.T) {
	_, err := New(Config{Repository: testRepository(t)})
	assert.Error(t, err)

	_, err = New(Config{Provider: new(MockProvider)})
	assert.Error(t, err)

	e, err := New(Config{Provider: new(MockProvider), Repository: testRepository(t), MaxRetries: -1})
	require.NoError(t, err)
	assert.Equal(t, 0, e.config.MaxRetries)
	assert.Equal(t, DefaultMaxLocations, e.config.MaxLocations)
}

func TestGroupFindings(t *testing.T) {
	groups := GroupFindings(testFindings(t), testRepository(t))

	require.Len(t, groups, 2)
	assert.Equal(t, "android-lint:NewApi", groups[0].RuleKey.String())
	assert.Equal(t, "java", groups[0].Language)
	assert.Len(t, groups[0].Findings, 1)

	assert.Equal(t, "android-lint:HardcodedText", groups[1].RuleKey.String())
	assert.Equal(t, "xml", groups[1].Language)
	require.Len(t, groups[1].Findings, 2)
	assert.Equal(t, 4, groups[1].Findings[0].Line)
	assert.Equal(t, 9, groups[1].Findings[1].Line)
}

func TestExplainer_Run(t *testing.T) {
	t.Run("explains every rule", func(t *testing.T) {
		p := new(MockProvider)
		p.On("EstimateCost", mock.Anything).Return(0.01, nil)
		p.On("Explain", mock.Anything, mock.MatchedBy(func(req provider.ExplainRequest) bool {
			return req.RuleKey.Rule == "NewApi"
		})).Return(&provider.ExplainResponse{Hint: "Guard with Build.VERSION.SDK_INT", TokensUsed: 100, Cost: 0.02}, nil)
		p.On("Explain", mock.Anything, mock.MatchedBy(func(req provider.ExplainRequest) bool {
			return req.RuleKey.Rule == "HardcodedText"
		})).Return(&provider.ExplainResponse{Hint: "Move text to strings.xml", TokensUsed: 50, Cost: 0.01}, nil)

		e := newExplainer(t, p, Config{})
		result, err := e.Run(context.Background(), testFindings(t))
		require.NoError(t, err)

		assert.Equal(t, 2, result.Explained)
		assert.Equal(t, 0, result.Failed)
		assert.InDelta(t, 0.03, result.TotalCost, 0.0001)
		assert.Equal(t, 150, result.TotalTokens)
		require.Len(t, result.Hints, 2)
		assert.Equal(t, "Guard with Build.VERSION.SDK_INT", result.Hints[0].Text)
		p.AssertNumberOfCalls(t, "Explain", 2)
	})

	t.Run("waits on each provider call", func(t *testing.T) {
		rec := &waitRecorder{}
		p := new(MockProvider)
		p.On("EstimateCost", mock.Anything).Return(0.01, nil)
		p.On("Explain", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
			assert.Equal(t, 1, rec.open, "provider called outside a wait")
		}).Return(&provider.ExplainResponse{Hint: "hint"}, nil)

		e := newExplainer(t, p, Config{Progress: rec})
		_, err := e.Run(context.Background(), testFindings(t))
		require.NoError(t, err)

		require.Len(t, rec.messages, 2)
		assert.Equal(t, "[1/2] android-lint:NewApi (1 finding(s))", rec.messages[0])
		assert.Equal(t, "[2/2] android-lint:HardcodedText (2 finding(s))", rec.messages[1])
		assert.Equal(t, 0, rec.open)
		assert.Equal(t, 2, rec.finished)
	})

	t.Run("attaches code context", func(t *testing.T) {
		p := new(MockProvider)
		p.On("EstimateCost", mock.Anything).Return(0.01, nil)
		p.On("Explain", mock.Anything, mock.Anything).Return(&provider.ExplainResponse{Hint: "ok"}, nil)

		e := newExplainer(t, p, Config{MaxRules: 1})
		_, err := e.Run(context.Background(), testFindings(t))
		require.NoError(t, err)

		req := p.Calls[1].Arguments.Get(1).(provider.ExplainRequest)
		require.Len(t, req.Locations, 1)
		assert.Equal(t, "src/main/java/Main.java", req.Locations[0].File)
		assert.Contains(t, req.Locations[0].FileContent, "void f()")
	})

	t.Run("stops before exceeding max cost", func(t *testing.T) {
		p := new(MockProvider)
		p.On("EstimateCost", mock.Anything).Return(0.6, nil)
		p.On("Explain", mock.Anything, mock.Anything).Return(&provider.ExplainResponse{Hint: "hint", Cost: 0.5}, nil)

		e := newExplainer(t, p, Config{MaxCost: 1.0})
		result, err := e.Run(context.Background(), testFindings(t))
		require.NoError(t, err)

		assert.True(t, result.StoppedByCost)
		assert.Equal(t, 1, result.Explained)
		assert.Equal(t, 1, result.NotExplained)
		p.AssertNumberOfCalls(t, "Explain", 1)
	})

	t.Run("max rules", func(t *testing.T) {
		p := new(MockProvider)
		p.On("EstimateCost", mock.Anything).Return(0.01, nil)
		p.On("Explain", mock.Anything, mock.Anything).Return(&provider.ExplainResponse{Hint: "hint"}, nil)

		e := newExplainer(t, p, Config{MaxRules: 1})
		result, err := e.Run(context.Background(), testFindings(t))
		require.NoError(t, err)

		assert.Equal(t, 1, result.Explained)
		assert.Equal(t, 1, result.NotExplained)
		assert.False(t, result.StoppedByCost)
	})

	t.Run("max locations", func(t *testing.T) {
		p := new(MockProvider)
		p.On("EstimateCost", mock.Anything).Return(0.01, nil)
		p.On("Explain", mock.Anything, mock.Anything).Return(&provider.ExplainResponse{Hint: "hint"}, nil)

		e := newExplainer(t, p, Config{MaxLocations: 1})
		_, err := e.Run(context.Background(), testFindings(t))
		require.NoError(t, err)

		for _, call := range p.Calls {
			if call.Method != "Explain" {
				continue
			}
			req := call.Arguments.Get(1).(provider.ExplainRequest)
			assert.Len(t, req.Locations, 1)
		}
	})

	t.Run("retries transient errors", func(t *testing.T) {
		p := new(MockProvider)
		p.On("EstimateCost", mock.Anything).Return(0.01, nil)
		p.On("Explain", mock.Anything, mock.Anything).Return(&provider.ExplainResponse{Error: errors.New("503 Service Unavailable")}, nil).Once()
		p.On("Explain", mock.Anything, mock.Anything).Return(&provider.ExplainResponse{Hint: "hint", Cost: 0.01}, nil)

		e := newExplainer(t, p, Config{MaxRules: 1})
		result, err := e.Run(context.Background(), testFindings(t))
		require.NoError(t, err)

		require.Len(t, result.Hints, 1)
		assert.Equal(t, 2, result.Hints[0].Attempts)
		assert.NoError(t, result.Hints[0].Err)
		assert.Equal(t, 1, result.Explained)
	})

	t.Run("does not retry auth errors", func(t *testing.T) {
		p := new(MockProvider)
		p.On("EstimateCost", mock.Anything).Return(0.01, nil)
		p.On("Explain", mock.Anything, mock.Anything).Return(&provider.ExplainResponse{Error: errors.New("401 Unauthorized")}, nil)

		e := newExplainer(t, p, Config{})
		result, err := e.Run(context.Background(), testFindings(t))
		require.NoError(t, err)

		assert.Equal(t, 2, result.Failed)
		assert.Equal(t, 0, result.Explained)
		assert.Equal(t, 1, result.Hints[0].Attempts)
		p.AssertNumberOfCalls(t, "Explain", 2)
	})

	t.Run("estimate failure aborts", func(t *testing.T) {
		p := new(MockProvider)
		p.On("EstimateCost", mock.Anything).Return(0.0, errors.New("boom"))

		e := newExplainer(t, p, Config{})
		_, err := e.Run(context.Background(), testFindings(t))
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to estimate cost")
	})

	t.Run("cancelled context", func(t *testing.T) {
		p := new(MockProvider)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		e := newExplainer(t, p, Config{})
		_, err := e.Run(ctx, testFindings(t))
		assert.ErrorIs(t, err, context.Canceled)
		p.AssertNotCalled(t, "Explain", mock.Anything, mock.Anything)
	})
}

func TestWriteMarkdown(t *testing.T) {
	findings := testFindings(t)
	groups := GroupFindings(findings, testRepository(t))
	result := &Result{
		Hints: []Hint{
			{Group: groups[0], Text: "Guard the call with an SDK check."},
			{Group: groups[1], Err: errors.New("Claude API rate limit exceeded\n\nmore details")},
		},
		Explained:    1,
		Failed:       1,
		NotExplained: 3,
		TotalCost:    0.0123,
		TotalTokens:  420,
	}

	var buf bytes.Buffer
	require.NoError(t, WriteMarkdown(&buf, result))
	out := buf.String()

	assert.Contains(t, out, "# Android Lint remediation hints")
	assert.Contains(t, out, "1 rule(s) explained, 1 failed, 3 not explained. Cost: $0.0123 (420 tokens).")
	assert.Contains(t, out, "## NewApi: Calling new methods on older versions")
	assert.Contains(t, out, "- **Rule:** `android-lint:NewApi`")
	assert.Contains(t, out, "- `src/main/java/Main.java:2` Call requires API level 26")
	assert.Contains(t, out, "Guard the call with an SDK check.")
	assert.Contains(t, out, "> Hint unavailable: Claude API rate limit exceeded\n")
	assert.NotContains(t, out, "more details")

	t.Run("write file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out", "hints.md")
		require.NoError(t, WriteFile(path, result))
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, out, string(data))
	})
}
