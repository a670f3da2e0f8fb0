// Package explain asks an AI provider for remediation hints on the findings of an analysis.
// Findings are grouped by rule so that each rule costs one request, most severe rules first.
package explain

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/tsanders/sonar-android-lint/pkg/provider"
	"github.com/tsanders/sonar-android-lint/pkg/provider/common"
	"github.com/tsanders/sonar-android-lint/pkg/rules"
	"github.com/tsanders/sonar-android-lint/pkg/translator"
	"github.com/tsanders/sonar-android-lint/pkg/ux"
)

const (
	// DefaultMaxLocations caps the locations sent per rule
	DefaultMaxLocations = 10
	// DefaultMaxRetries is the number of extra attempts for retryable API errors
	DefaultMaxRetries = 2
	// defaultRetryDelay is doubled after every failed attempt
	defaultRetryDelay = 2 * time.Second
)

// Group is every finding of one rule
type Group struct {
	RuleKey  rules.Key
	Rule     rules.Rule
	Language string
	Findings []translator.Finding
}

// Hint is the provider's answer for one group
type Hint struct {
	Group      Group
	Text       string
	Cost       float64
	TokensUsed int
	Attempts   int
	Err        error
}

// Result summarizes an explain run
type Result struct {
	Hints         []Hint
	TotalCost     float64
	TotalTokens   int
	Explained     int
	Failed        int
	NotExplained  int  // Groups left out by limits
	StoppedByCost bool // MaxCost would have been exceeded
}

// Config configures an Explainer
type Config struct {
	Provider     provider.Provider // Required
	Repository   *rules.Repository // Required
	MaxCost      float64           // Maximum total cost in USD (0 = no limit)
	MaxRules     int               // Maximum groups explained (0 = no limit)
	MaxLocations int               // Locations sent per rule, defaults to DefaultMaxLocations
	MaxRetries   int               // Extra attempts for retryable errors, -1 disables retries
	RetryDelay   time.Duration
	Logger       *slog.Logger
	Progress     ux.ProgressWriter
}

// Explainer produces remediation hints
type Explainer struct {
	config Config
	files  map[string]string
}

// New creates an Explainer
func New(config Config) (*Explainer, error) {
	if config.Provider == nil {
		return nil, fmt.Errorf("provider is required")
	}
	if config.Repository == nil {
		return nil, fmt.Errorf("rule repository is required")
	}
	if config.MaxLocations <= 0 {
		config.MaxLocations = DefaultMaxLocations
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = DefaultMaxRetries
	}
	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	}
	if config.RetryDelay == 0 {
		config.RetryDelay = defaultRetryDelay
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Progress == nil {
		config.Progress = &ux.NoOpProgressWriter{}
	}
	return &Explainer{config: config, files: make(map[string]string)}, nil
}

// GroupFindings groups findings by rule key, most severe rule first, then by key.
// Findings of rules missing from repo are dropped.
func GroupFindings(findings []translator.Finding, repo *rules.Repository) []Group {
	index := make(map[string]int)
	var groups []Group

	for _, f := range findings {
		if f.RuleKey.Repository != repo.Key {
			continue
		}
		rule, ok := repo.Rule(f.RuleKey.Rule)
		if !ok {
			continue
		}
		key := f.RuleKey.String()
		i, seen := index[key]
		if !seen {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{RuleKey: f.RuleKey, Rule: rule})
		}
		groups[i].Findings = append(groups[i].Findings, f)
		if groups[i].Language == "" && f.File != nil {
			groups[i].Language = f.File.Language
		}
	}

	sort.SliceStable(groups, func(i, j int) bool {
		ri, rj := rules.SeverityRank(groups[i].Rule.Severity), rules.SeverityRank(groups[j].Rule.Severity)
		if ri != rj {
			return ri > rj
		}
		return groups[i].RuleKey.String() < groups[j].RuleKey.String()
	})
	return groups
}

// Run explains the findings, stopping before MaxCost would be exceeded
func (e *Explainer) Run(ctx context.Context, findings []translator.Finding) (*Result, error) {
	groups := GroupFindings(findings, e.config.Repository)
	result := &Result{}

	if e.config.MaxRules > 0 && len(groups) > e.config.MaxRules {
		result.NotExplained = len(groups) - e.config.MaxRules
		groups = groups[:e.config.MaxRules]
	}

	// Each provider call gets its own spinner, so no phase bar is drawn
	e.config.Progress.StartPhase(fmt.Sprintf("Explaining %d rule(s)", len(groups)), 0)
	defer e.config.Progress.EndPhase()

	for i, group := range groups {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		req := e.buildRequest(group)
		estimate, err := e.config.Provider.EstimateCost(req)
		if err != nil {
			return result, fmt.Errorf("failed to estimate cost for %s: %w", group.RuleKey, err)
		}
		if e.config.MaxCost > 0 && result.TotalCost+estimate > e.config.MaxCost {
			e.config.Logger.Warn("Cost limit reached",
				"limit", e.config.MaxCost,
				"spent", result.TotalCost,
				"next", estimate)
			e.config.Progress.Warn("Cost limit %s reached, %d rule(s) not explained",
				ux.FormatCost(e.config.MaxCost), len(groups)-i)
			result.StoppedByCost = true
			result.NotExplained += len(groups) - i
			break
		}

		done := e.config.Progress.Wait(fmt.Sprintf("[%d/%d] %s (%d finding(s))", i+1, len(groups), group.RuleKey, len(group.Findings)))
		hint := e.explain(ctx, group, req)
		done()
		result.Hints = append(result.Hints, hint)
		result.TotalCost += hint.Cost
		result.TotalTokens += hint.TokensUsed
		if hint.Err != nil {
			result.Failed++
			e.config.Progress.Error("Failed to explain %s: %v", group.RuleKey, hint.Err)
		} else {
			result.Explained++
			e.config.Progress.Info("Explained %s", group.RuleKey)
		}
		e.config.Progress.Advance()
	}

	e.config.Logger.Info("Explain run finished",
		"explained", result.Explained,
		"failed", result.Failed,
		"not_explained", result.NotExplained,
		"cost", result.TotalCost)
	return result, nil
}

// explain calls the provider, retrying errors that may be transient
func (e *Explainer) explain(ctx context.Context, group Group, req provider.ExplainRequest) Hint {
	hint := Hint{Group: group}
	delay := e.config.RetryDelay

	for attempt := 0; attempt <= e.config.MaxRetries; attempt++ {
		hint.Attempts++
		resp, err := e.config.Provider.Explain(ctx, req)
		if err == nil && resp != nil && resp.Error == nil {
			hint.Text = resp.Hint
			hint.Cost += resp.Cost
			hint.TokensUsed += resp.TokensUsed
			hint.Err = nil
			return hint
		}
		if err == nil {
			if resp == nil {
				err = fmt.Errorf("provider returned no response")
			} else {
				hint.Cost += resp.Cost
				hint.TokensUsed += resp.TokensUsed
				err = resp.Error
			}
		}
		hint.Err = err

		kind := common.Classify(err)
		if !kind.Retryable() || attempt == e.config.MaxRetries {
			break
		}
		e.config.Logger.Warn("Retrying explain request",
			"rule", group.RuleKey.String(),
			"kind", kind.String(),
			"attempt", attempt+1,
			"delay", delay)

		select {
		case <-ctx.Done():
			hint.Err = ctx.Err()
			return hint
		case <-time.After(delay):
		}
		delay *= 2
	}
	return hint
}

// buildRequest turns a group into a provider request, attaching file contents for code context
func (e *Explainer) buildRequest(group Group) provider.ExplainRequest {
	req := provider.ExplainRequest{
		Rule:     group.Rule,
		RuleKey:  group.RuleKey,
		Language: group.Language,
	}

	for i, f := range group.Findings {
		if i == e.config.MaxLocations {
			break
		}
		loc := provider.Location{Line: f.Line, Message: f.Message}
		if f.File != nil {
			loc.File = f.File.RelPath
			loc.FileContent = e.readFile(f.File.AbsPath)
		}
		req.Locations = append(req.Locations, loc)
	}
	return req
}

// readFile returns cached file content, empty when unreadable
func (e *Explainer) readFile(path string) string {
	if content, ok := e.files[path]; ok {
		return content
	}
	data, err := os.ReadFile(path)
	if err != nil {
		e.config.Logger.Debug("Unable to read file for code context", "path", path, "error", err)
	}
	e.files[path] = string(data)
	return string(data)
}
