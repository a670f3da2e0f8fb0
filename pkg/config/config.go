// Package config loads sonar-android-lint settings from .sonar-android-lint.yaml and
// merges analysis properties given on the command line.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the sonar-android-lint configuration
type Config struct {
	// Analysis properties, e.g. sonar.android.lint.report
	Properties map[string]string `yaml:"properties"`

	// Input/Output paths
	Paths PathsConfig `yaml:"paths"`

	// Project indexing options
	Index IndexConfig `yaml:"index"`

	// AI provider used by explain
	Provider ProviderConfig `yaml:"provider"`

	// Remediation hint settings
	Explain ExplainConfig `yaml:"explain"`

	// Enable debug logging
	Verbose bool `yaml:"verbose"`
}

// PathsConfig holds input/output path settings
type PathsConfig struct {
	BaseDir string `yaml:"base-dir"` // Project root
	Output  string `yaml:"output"`   // Generic issue JSON file
	HTML    string `yaml:"html"`     // Optional HTML summary
}

// IndexConfig controls which project files findings can attach to
type IndexConfig struct {
	Exclusions   []string `yaml:"exclusions"`    // Extra gitignore-style patterns
	IncludeTests bool     `yaml:"include-tests"` // Index test sources too
}

// ProviderConfig holds AI provider settings
type ProviderConfig struct {
	Name        string  `yaml:"name"`  // claude, openai
	Model       string  `yaml:"model"` // optional, provider-specific model
	Temperature float64 `yaml:"temperature"`
}

// ExplainConfig holds limits for remediation hints
type ExplainConfig struct {
	MaxCost  float64 `yaml:"max-cost"`  // Maximum cost in USD (0 = no limit)
	MaxRules int     `yaml:"max-rules"` // Maximum rules explained (0 = no limit)
	Output   string  `yaml:"output"`    // Markdown output file
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Properties: make(map[string]string),
		Paths: PathsConfig{
			BaseDir: ".",
			Output:  "build/sonar/android-lint.json",
		},
		Provider: ProviderConfig{
			Name:        "claude",
			Temperature: 0.2,
		},
		Explain: ExplainConfig{
			MaxCost:  0, // No limit
			MaxRules: 0, // No limit
			Output:   "build/sonar/android-lint-hints.md",
		},
	}
}

// Load loads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file '%s': %w\n\n"+
			"Please check that the file is valid YAML and follows the expected format.\n"+
			"See README.md for example configuration.", path, err)
	}
	if config.Properties == nil {
		config.Properties = make(map[string]string)
	}

	return config, nil
}

// FindConfigFile searches for a config file in common locations
// Returns the path to the first config file found, or empty string if none found
func FindConfigFile() string {
	candidates := []string{
		".sonar-android-lint.yaml",
		".sonar-android-lint.yml",
	}

	for _, candidate := range candidates {
		if fileExists(candidate) {
			return candidate
		}
	}

	homeDir, err := os.UserHomeDir()
	if err == nil {
		for _, candidate := range candidates {
			path := filepath.Join(homeDir, candidate)
			if fileExists(path) {
				return path
			}
		}
	}

	return ""
}

// LoadOrDefault attempts to load a config file, falling back to defaults
func LoadOrDefault() *Config {
	configPath := FindConfigFile()
	if configPath == "" {
		return DefaultConfig()
	}

	config, err := Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to load config from %s: %v\n", configPath, err)
		fmt.Fprintf(os.Stderr, "Using default configuration.\n\n")
		return DefaultConfig()
	}

	return config
}

// ParseProperty splits a key=value definition
func ParseProperty(def string) (string, string, error) {
	key, value, ok := strings.Cut(def, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return "", "", fmt.Errorf("invalid property '%s': expected key=value", def)
	}
	return key, strings.TrimSpace(value), nil
}

// ApplyProperties overrides file properties with key=value definitions
func (c *Config) ApplyProperties(defs []string) error {
	if c.Properties == nil {
		c.Properties = make(map[string]string)
	}
	for _, def := range defs {
		key, value, err := ParseProperty(def)
		if err != nil {
			return err
		}
		c.Properties[key] = value
	}
	return nil
}

// MergedProperties returns defaults overridden by the configured properties
func (c *Config) MergedProperties(defaults map[string]string) map[string]string {
	merged := make(map[string]string, len(defaults)+len(c.Properties))
	for k, v := range defaults {
		merged[k] = v
	}
	for k, v := range c.Properties {
		merged[k] = v
	}
	return merged
}

// PropertyKeys returns the configured property keys, sorted
func (c *Config) PropertyKeys() []string {
	keys := make([]string, 0, len(c.Properties))
	for k := range c.Properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// fileExists checks if a file exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
