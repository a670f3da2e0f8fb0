package openai

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/tsanders/sonar-android-lint/pkg/prompt"
	"github.com/tsanders/sonar-android-lint/pkg/provider"
	"github.com/tsanders/sonar-android-lint/pkg/provider/common"
)

const (
	// DefaultMaxTokens bounds the length of a hint
	DefaultMaxTokens = 2048

	// GPT-4 pricing per 1M tokens
	inputPricePerMillion  = 30.0
	outputPricePerMillion = 60.0
)

// Provider implements the OpenAI provider and OpenAI-compatible presets
type Provider struct {
	client      *openai.Client
	name        string
	model       string
	temperature float32
	templates   *prompt.Templates
}

// New creates a new OpenAI provider. A config name matching a preset selects its endpoint and model.
func New(config provider.Config) (*Provider, error) {
	name := "openai"
	config, preset, isPreset := provider.ApplyPreset(config)
	if isPreset {
		name = config.Name
	}
	baseURL := config.BaseURL
	model := config.Model
	local := isPreset && preset.IsLocal()

	apiKey := config.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" && local {
		apiKey = "local"
	}
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable is not set\n\n" +
			"To use OpenAI:\n" +
			"  1. Get an API key from: https://platform.openai.com/api-keys\n" +
			"  2. Export it as an environment variable:\n" +
			"     export OPENAI_API_KEY=sk-...\n" +
			"  3. Or set it in your shell profile (~/.bashrc, ~/.zshrc)\n\n" +
			"Alternatively, use Claude instead:\n" +
			"  --provider=claude")
	}

	if model == "" {
		model = openai.GPT4
	}

	temperature := float32(config.Temperature)
	if temperature == 0 {
		temperature = 0.2
	}

	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientConfig.BaseURL = baseURL
	}

	templates := config.Templates
	if templates == nil {
		var err error
		templates, err = prompt.Load(prompt.Config{Provider: "openai"})
		if err != nil {
			return nil, fmt.Errorf("failed to load default templates: %w", err)
		}
	}

	return &Provider{
		client:      openai.NewClientWithConfig(clientConfig),
		name:        name,
		model:       model,
		temperature: temperature,
		templates:   templates,
	}, nil
}

// Name returns the provider name
func (p *Provider) Name() string {
	return p.name
}

// Explain asks the chat completion API for a remediation hint covering every location of one rule
func (p *Provider) Explain(ctx context.Context, req provider.ExplainRequest) (*provider.ExplainResponse, error) {
	promptText, err := provider.RenderPrompt(p.templates, req)
	if err != nil {
		return nil, fmt.Errorf("failed to render prompt template: %w", err)
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.model,
		Temperature: p.temperature,
		MaxTokens:   DefaultMaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: promptText,
			},
		},
	})
	if err != nil {
		return &provider.ExplainResponse{
			Error: enhanceAPIError(err),
		}, nil
	}
	if len(resp.Choices) == 0 {
		return &provider.ExplainResponse{
			Error: fmt.Errorf("%s returned no choices", p.name),
		}, nil
	}

	return &provider.ExplainResponse{
		Hint:       strings.TrimSpace(resp.Choices[0].Message.Content),
		TokensUsed: resp.Usage.TotalTokens,
		Cost:       cost(float64(resp.Usage.PromptTokens), float64(resp.Usage.CompletionTokens)),
	}, nil
}

// EstimateCost estimates the cost of explaining a rule
func (p *Provider) EstimateCost(req provider.ExplainRequest) (float64, error) {
	return cost(provider.EstimateInputTokens(req), provider.EstimatedOutputTokens), nil
}

func cost(inputTokens, outputTokens float64) float64 {
	return inputTokens*inputPricePerMillion/1000000.0 + outputTokens*outputPricePerMillion/1000000.0
}

// enhanceAPIError adds helpful context to OpenAI API errors using the common error handler.
func enhanceAPIError(err error) error {
	return common.EnhanceAPIError(err, common.ProviderErrorContext{
		ProviderName:      "OpenAI",
		APIKeysURL:        "https://platform.openai.com/api-keys",
		StatusPageURL:     "https://status.openai.com",
		BillingURL:        "https://platform.openai.com/account/billing",
		AlternateProvider: "claude",
	})
}
