package rules

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRepository(t *testing.T) {
	repo, err := DefaultRepository()
	require.NoError(t, err)

	assert.Equal(t, RepositoryKey, repo.Key)
	assert.Equal(t, RepositoryName, repo.Name)
	assert.Equal(t, "java", repo.Language)
	assert.Greater(t, repo.Len(), 50)

	rule, ok := repo.Rule("HardcodedText")
	require.True(t, ok)
	assert.Equal(t, "MINOR", rule.Severity)
	assert.Equal(t, "CODE_SMELL", rule.Type)
	assert.Contains(t, rule.Tags, "android")
	assert.Equal(t, DefaultEffortMinutes, rule.EffortMinutes())

	critical, ok := repo.Rule("NewApi")
	require.True(t, ok)
	assert.Equal(t, 10, critical.EffortMinutes())

	t.Run("every rule has a tag and description", func(t *testing.T) {
		for _, rule := range repo.Rules() {
			assert.NotEmpty(t, rule.Tags, rule.Key)
			assert.NotEmpty(t, rule.Description, rule.Key)
		}
	})

	t.Run("shared instance", func(t *testing.T) {
		again, err := DefaultRepository()
		require.NoError(t, err)
		assert.Same(t, repo, again)
	})
}

func TestLoadRepository(t *testing.T) {
	t.Run("defaults for missing repository block", func(t *testing.T) {
		repo, err := LoadRepository(strings.NewReader(`
rules:
  - key: Foo
    name: Foo rule
    severity: MAJOR
    type: BUG
`))
		require.NoError(t, err)
		assert.Equal(t, RepositoryKey, repo.Key)
		assert.Equal(t, 1, repo.Len())
	})

	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "invalid YAML",
			yaml:    "rules: [",
			wantErr: "failed to parse rule catalog",
		},
		{
			name: "duplicate key",
			yaml: `
rules:
  - {key: Foo, name: Foo, severity: MAJOR, type: BUG}
  - {key: Foo, name: Foo again, severity: MINOR, type: BUG}
`,
			wantErr: "duplicate rule key: Foo",
		},
		{
			name:    "invalid severity",
			yaml:    `rules: [{key: Foo, name: Foo, severity: HIGH, type: BUG}]`,
			wantErr: "invalid severity for Foo",
		},
		{
			name:    "invalid type",
			yaml:    `rules: [{key: Foo, name: Foo, severity: MAJOR, type: SECURITY_HOTSPOT}]`,
			wantErr: "invalid type for Foo",
		},
		{
			name:    "missing key",
			yaml:    `rules: [{name: Foo, severity: MAJOR, type: BUG}]`,
			wantErr: "rule key is required",
		},
		{
			name:    "negative effort",
			yaml:    `rules: [{key: Foo, name: Foo, severity: MAJOR, type: BUG, effort: -1}]`,
			wantErr: "effort must be non-negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadRepository(strings.NewReader(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRepository_Lookups(t *testing.T) {
	repo, err := LoadRepository(strings.NewReader(`
repository: {key: android-lint, name: Android Lint, language: java}
rules:
  - {key: Zeta, name: Zeta, severity: INFO, type: CODE_SMELL, tags: [android, typography]}
  - {key: Alpha, name: Alpha, severity: BLOCKER, type: BUG, tags: [android, security]}
`))
	require.NoError(t, err)

	rules := repo.Rules()
	require.Len(t, rules, 2)
	assert.Equal(t, "Alpha", rules[0].Key)
	assert.Equal(t, "Zeta", rules[1].Key)

	assert.True(t, repo.Has(NewKey("android-lint", "Alpha")))
	assert.False(t, repo.Has(NewKey("android-lint", "Missing")))
	assert.False(t, repo.Has(NewKey("checkstyle", "Alpha")))

	tagged := repo.FilterByTag("security")
	require.Len(t, tagged, 1)
	assert.Equal(t, "Alpha", tagged[0].Key)
}

func TestKey(t *testing.T) {
	key := NewKey(RepositoryKey, "HardcodedText")
	assert.Equal(t, "android-lint:HardcodedText", key.String())

	parsed, err := ParseKey("android-lint:HardcodedText")
	require.NoError(t, err)
	assert.Equal(t, key, parsed)

	for _, bad := range []string{"", "android-lint", ":Foo", "android-lint:"} {
		_, err := ParseKey(bad)
		assert.Error(t, err, bad)
	}
}

func TestSeverityRank(t *testing.T) {
	assert.Equal(t, 0, SeverityRank("INFO"))
	assert.Equal(t, 4, SeverityRank("BLOCKER"))
	assert.Greater(t, SeverityRank("CRITICAL"), SeverityRank("MAJOR"))
	assert.Equal(t, -1, SeverityRank("severe"))
}
