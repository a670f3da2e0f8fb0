package claude

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/tsanders/sonar-android-lint/pkg/prompt"
	"github.com/tsanders/sonar-android-lint/pkg/provider"
	"github.com/tsanders/sonar-android-lint/pkg/provider/common"
)

const (
	// DefaultModel is used when no model is configured
	DefaultModel = "claude-sonnet-4-20250514"
	// DefaultMaxTokens bounds the length of a hint
	DefaultMaxTokens = 2048

	// Sonnet 4 pricing per 1M tokens
	inputPricePerMillion  = 3.0
	outputPricePerMillion = 15.0
)

// Provider implements the Claude AI provider
type Provider struct {
	client      *anthropic.Client
	model       string
	temperature float64
	templates   *prompt.Templates
}

// New creates a new Claude provider
func New(config provider.Config) (*Provider, error) {
	apiKey := config.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY not set\n\n" +
			"To use Claude (Anthropic):\n" +
			"  1. Get an API key from: https://console.anthropic.com/settings/keys\n" +
			"  2. Export it as an environment variable:\n" +
			"     export ANTHROPIC_API_KEY=sk-ant-...\n" +
			"  3. Or set it in your shell profile (~/.bashrc, ~/.zshrc)\n\n" +
			"Alternatively, use OpenAI instead:\n" +
			"  --provider=openai")
	}

	model := config.Model
	if model == "" {
		model = DefaultModel
	}

	temperature := config.Temperature
	if temperature == 0 {
		temperature = 0.2
	}

	templates := config.Templates
	if templates == nil {
		var err error
		templates, err = prompt.Load(prompt.Config{Provider: "claude"})
		if err != nil {
			return nil, fmt.Errorf("failed to load default templates: %w", err)
		}
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	return &Provider{
		client:      client,
		model:       model,
		temperature: temperature,
		templates:   templates,
	}, nil
}

// Name returns the provider name
func (p *Provider) Name() string {
	return "claude"
}

// Explain asks Claude for a remediation hint covering every location of one rule
func (p *Provider) Explain(ctx context.Context, req provider.ExplainRequest) (*provider.ExplainResponse, error) {
	promptText, err := provider.RenderPrompt(p.templates, req)
	if err != nil {
		return nil, fmt.Errorf("failed to render prompt template: %w", err)
	}

	message, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.F(p.model),
		MaxTokens:   anthropic.F(int64(DefaultMaxTokens)),
		Temperature: anthropic.F(p.temperature),
		Messages: anthropic.F([]anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(promptText)),
		}),
	})
	if err != nil {
		return &provider.ExplainResponse{
			Error: enhanceAPIError(err),
		}, nil
	}

	var hint strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			hint.WriteString(block.Text)
		}
	}

	return &provider.ExplainResponse{
		Hint:       strings.TrimSpace(hint.String()),
		TokensUsed: int(message.Usage.InputTokens + message.Usage.OutputTokens),
		Cost:       cost(float64(message.Usage.InputTokens), float64(message.Usage.OutputTokens)),
	}, nil
}

// EstimateCost estimates the cost of explaining a rule
func (p *Provider) EstimateCost(req provider.ExplainRequest) (float64, error) {
	return cost(provider.EstimateInputTokens(req), provider.EstimatedOutputTokens), nil
}

func cost(inputTokens, outputTokens float64) float64 {
	return inputTokens*inputPricePerMillion/1000000.0 + outputTokens*outputPricePerMillion/1000000.0
}

// enhanceAPIError adds helpful context to Claude API errors using the common error handler.
func enhanceAPIError(err error) error {
	return common.EnhanceAPIError(err, common.ProviderErrorContext{
		ProviderName:      "Claude",
		EnvVar:            "ANTHROPIC_API_KEY",
		APIKeysURL:        "https://console.anthropic.com/settings/keys",
		StatusPageURL:     "https://status.anthropic.com",
		AlternateProvider: "openai",
	})
}
