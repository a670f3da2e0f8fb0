// Package rules defines the android-lint rule repository: every Android Lint issue id
// that can be reported as a SonarQube finding, with its severity, type and remediation effort.
package rules

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	// RepositoryKey is the namespace of every rule key produced from a lint report
	RepositoryKey = "android-lint"
	// RepositoryName is the display name of the repository
	RepositoryName = "Android Lint"
	// DefaultEffortMinutes is the constant remediation effort for rules without an explicit one
	DefaultEffortMinutes = 5
)

// Severities accepted by the host, lowest first
var Severities = []string{"INFO", "MINOR", "MAJOR", "CRITICAL", "BLOCKER"}

// Types accepted by the host
var Types = []string{"CODE_SMELL", "BUG", "VULNERABILITY"}

//go:embed rules.yaml
var defaultCatalog []byte

// Rule describes a single Android Lint check exposed to SonarQube
type Rule struct {
	Key         string   `yaml:"key"`
	Name        string   `yaml:"name"`
	Severity    string   `yaml:"severity"`
	Type        string   `yaml:"type"`
	Category    string   `yaml:"category"`
	Tags        []string `yaml:"tags,omitempty"`
	Description string   `yaml:"description"`
	Effort      int      `yaml:"effort,omitempty"` // Remediation effort in minutes
}

// EffortMinutes returns the remediation effort, falling back to the repository default
func (r Rule) EffortMinutes() int {
	if r.Effort > 0 {
		return r.Effort
	}
	return DefaultEffortMinutes
}

// Repository is a loaded rule catalog
type Repository struct {
	Key      string
	Name     string
	Language string
	rules    map[string]Rule
}

type catalog struct {
	Repository struct {
		Key      string `yaml:"key"`
		Name     string `yaml:"name"`
		Language string `yaml:"language"`
	} `yaml:"repository"`
	Rules []Rule `yaml:"rules"`
}

var (
	defaultOnce sync.Once
	defaultRepo *Repository
	defaultErr  error
)

// DefaultRepository returns the embedded android-lint repository.
// The catalog is parsed once and shared; callers must not modify it.
func DefaultRepository() (*Repository, error) {
	defaultOnce.Do(func() {
		defaultRepo, defaultErr = LoadRepository(bytes.NewReader(defaultCatalog))
	})
	return defaultRepo, defaultErr
}

// LoadRepository parses a YAML rule catalog
func LoadRepository(r io.Reader) (*Repository, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read rule catalog: %w", err)
	}

	var c catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse rule catalog: %w", err)
	}

	repo := &Repository{
		Key:      c.Repository.Key,
		Name:     c.Repository.Name,
		Language: c.Repository.Language,
		rules:    make(map[string]Rule, len(c.Rules)),
	}
	if repo.Key == "" {
		repo.Key = RepositoryKey
	}
	if repo.Name == "" {
		repo.Name = RepositoryName
	}
	if repo.Language == "" {
		repo.Language = "java"
	}

	for i, rule := range c.Rules {
		if err := validateRule(rule); err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		if _, dup := repo.rules[rule.Key]; dup {
			return nil, fmt.Errorf("duplicate rule key: %s", rule.Key)
		}
		repo.rules[rule.Key] = rule
	}

	return repo, nil
}

// validateRule checks a single catalog entry
func validateRule(rule Rule) error {
	if rule.Key == "" {
		return fmt.Errorf("rule key is required")
	}
	if rule.Name == "" {
		return fmt.Errorf("rule name is required for %s", rule.Key)
	}
	if !contains(Severities, rule.Severity) {
		return fmt.Errorf("invalid severity for %s: %s (must be one of: %s)",
			rule.Key, rule.Severity, strings.Join(Severities, ", "))
	}
	if !contains(Types, rule.Type) {
		return fmt.Errorf("invalid type for %s: %s (must be one of: %s)",
			rule.Key, rule.Type, strings.Join(Types, ", "))
	}
	if rule.Effort < 0 {
		return fmt.Errorf("effort must be non-negative for %s", rule.Key)
	}
	return nil
}

// Rule looks up a rule by its lint issue id
func (r *Repository) Rule(key string) (Rule, bool) {
	rule, ok := r.rules[key]
	return rule, ok
}

// Has reports whether a fully qualified key belongs to this repository
func (r *Repository) Has(key Key) bool {
	if key.Repository != r.Key {
		return false
	}
	_, ok := r.rules[key.Rule]
	return ok
}

// Rules returns every rule sorted by key
func (r *Repository) Rules() []Rule {
	out := make([]Rule, 0, len(r.rules))
	for _, rule := range r.rules {
		out = append(out, rule)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Key < out[j].Key
	})
	return out
}

// Len returns the number of rules in the repository
func (r *Repository) Len() int {
	return len(r.rules)
}

// FilterByTag returns the rules carrying the given tag, sorted by key
func (r *Repository) FilterByTag(tag string) []Rule {
	var out []Rule
	for _, rule := range r.Rules() {
		if contains(rule.Tags, tag) {
			out = append(out, rule)
		}
	}
	return out
}

// SeverityRank orders severities from INFO (0) to BLOCKER (4); unknown values rank -1
func SeverityRank(severity string) int {
	for i, s := range Severities {
		if s == severity {
			return i
		}
	}
	return -1
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
