// Package provider defines the AI provider abstraction used to explain Android Lint findings.
package provider

import (
	"context"
	"sort"
	"strings"

	"github.com/tsanders/sonar-android-lint/pkg/prompt"
	"github.com/tsanders/sonar-android-lint/pkg/rules"
)

// Provider defines the interface for AI-generated remediation hints
type Provider interface {
	// Name returns the provider name (e.g., "claude", "openai")
	Name() string

	// Explain requests a remediation hint for every location of one rule
	Explain(ctx context.Context, req ExplainRequest) (*ExplainResponse, error)

	// EstimateCost estimates the cost of an Explain call (in USD)
	EstimateCost(req ExplainRequest) (float64, error)
}

// ExplainRequest contains the context needed to explain one rule
type ExplainRequest struct {
	Rule      rules.Rule
	RuleKey   rules.Key
	Language  string     // Language of the affected files (java, kotlin, xml)
	Locations []Location // Occurrences, in report order
}

// Location is one occurrence of a rule
type Location struct {
	File        string // Path relative to the project root
	Line        int
	Message     string
	FileContent string // Full file content, used for the code context
}

// ExplainResponse contains the AI's remediation hint
type ExplainResponse struct {
	Hint       string  // Markdown remediation hint
	TokensUsed int     // Number of tokens consumed
	Cost       float64 // Cost in USD
	Error      error   // Error if the request failed
}

// Config holds provider configuration
type Config struct {
	Name        string            // Provider name: claude, openai, or an OpenAI-compatible preset
	APIKey      string            // API key
	Model       string            // Model to use
	Temperature float64           // Temperature (0.0-1.0)
	BaseURL     string            // Custom endpoint for OpenAI-compatible APIs
	Templates   *prompt.Templates // Prompt templates, defaults when nil
}

// ProviderPreset describes an OpenAI-compatible endpoint
type ProviderPreset struct {
	BaseURL      string
	Description  string
	DefaultModel string
}

// ProviderPresets are OpenAI-compatible services usable with the openai provider
var ProviderPresets = map[string]ProviderPreset{
	"groq": {
		BaseURL:      "https://api.groq.com/openai/v1",
		Description:  "Groq (fast inference)",
		DefaultModel: "llama-3.1-70b-versatile",
	},
	"together": {
		BaseURL:      "https://api.together.xyz/v1",
		Description:  "Together AI",
		DefaultModel: "meta-llama/Meta-Llama-3.1-70B-Instruct-Turbo",
	},
	"ollama": {
		BaseURL:      "http://localhost:11434/v1",
		Description:  "Ollama (local)",
		DefaultModel: "llama3.1",
	},
	"lmstudio": {
		BaseURL:      "http://localhost:1234/v1",
		Description:  "LM Studio (local)",
		DefaultModel: "local-model",
	},
	"openrouter": {
		BaseURL:      "https://openrouter.ai/api/v1",
		Description:  "OpenRouter",
		DefaultModel: "anthropic/claude-3.5-sonnet",
	},
}

// IsLocal reports whether the preset endpoint runs on this machine and needs no API key
func (p ProviderPreset) IsLocal() bool {
	return strings.HasPrefix(p.BaseURL, "http://localhost") || strings.HasPrefix(p.BaseURL, "http://127.0.0.1")
}

// PresetNames returns the preset names, sorted
func PresetNames() []string {
	names := make([]string, 0, len(ProviderPresets))
	for name := range ProviderPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ApplyPreset fills in the endpoint and default model of the preset named by config.Name.
// Explicit BaseURL and Model values are kept. The preset is returned with ok=false when
// config.Name is not a preset.
func ApplyPreset(config Config) (Config, ProviderPreset, bool) {
	preset, ok := ProviderPresets[config.Name]
	if !ok {
		return config, ProviderPreset{}, false
	}
	if config.BaseURL == "" {
		config.BaseURL = preset.BaseURL
	}
	if config.Model == "" {
		config.Model = preset.DefaultModel
	}
	return config, preset, true
}
