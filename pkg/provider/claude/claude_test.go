package claude

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsanders/sonar-android-lint/pkg/prompt"
	"github.com/tsanders/sonar-android-lint/pkg/provider"
	"github.com/tsanders/sonar-android-lint/pkg/rules"
)

func TestNew(t *testing.T) {
	t.Run("with API key in config", func(t *testing.T) {
		config := provider.Config{
			APIKey:      "test-api-key",
			Model:       "claude-3-5-sonnet-20250201",
			Temperature: 0.3,
		}

		p, err := New(config)
		require.NoError(t, err)
		assert.NotNil(t, p)
		assert.Equal(t, "claude-3-5-sonnet-20250201", p.model)
		assert.Equal(t, 0.3, p.temperature)
		assert.NotNil(t, p.templates)
	})

	t.Run("with default model", func(t *testing.T) {
		p, err := New(provider.Config{APIKey: "test-api-key"})
		require.NoError(t, err)
		assert.Equal(t, DefaultModel, p.model)
		assert.Equal(t, 0.2, p.temperature)
	})

	t.Run("with custom templates", func(t *testing.T) {
		templates, err := prompt.Load(prompt.Config{Provider: "claude"})
		require.NoError(t, err)

		p, err := New(provider.Config{APIKey: "test-api-key", Templates: templates})
		require.NoError(t, err)
		assert.Same(t, templates, p.templates)
	})

	t.Run("with environment variable", func(t *testing.T) {
		t.Setenv("ANTHROPIC_API_KEY", "env-api-key")

		p, err := New(provider.Config{})
		require.NoError(t, err)
		assert.NotNil(t, p)
	})

	t.Run("missing API key", func(t *testing.T) {
		t.Setenv("ANTHROPIC_API_KEY", "")

		_, err := New(provider.Config{})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "ANTHROPIC_API_KEY not set")
	})
}

func TestProvider_Name(t *testing.T) {
	p, err := New(provider.Config{APIKey: "test"})
	require.NoError(t, err)

	assert.Equal(t, "claude", p.Name())
}

func TestProvider_EstimateCost(t *testing.T) {
	p, err := New(provider.Config{APIKey: "test"})
	require.NoError(t, err)

	small := provider.ExplainRequest{
		Rule:    rules.Rule{Key: "NewApi", Name: "Calling new methods on older versions"},
		RuleKey: rules.NewKey(rules.RepositoryKey, "NewApi"),
		Locations: []provider.Location{
			{File: "A.java", Line: 1, Message: "Call requires API level 26"},
		},
	}
	cost, err := p.EstimateCost(small)
	require.NoError(t, err)
	assert.Greater(t, cost, 0.0)
	assert.Less(t, cost, 0.05)

	large := small
	for i := 0; i < 50; i++ {
		large.Locations = append(large.Locations, small.Locations[0])
	}
	largeCost, err := p.EstimateCost(large)
	require.NoError(t, err)
	assert.Greater(t, largeCost, cost)
}

func TestCost(t *testing.T) {
	assert.InDelta(t, 18.0, cost(1000000, 1000000), 0.0001)
	assert.InDelta(t, 0.003, cost(1000, 0), 0.0001)
}

func TestEnhanceAPIError(t *testing.T) {
	err := enhanceAPIError(errors.New("401 Unauthorized"))
	assert.Contains(t, err.Error(), "Claude API authentication failed")
	assert.Contains(t, err.Error(), "ANTHROPIC_API_KEY")

	err = enhanceAPIError(errors.New("503 overloaded"))
	assert.Contains(t, err.Error(), "--provider=openai")
}
