package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProvider(t *testing.T) {
	p, err := ParseProvider("")
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenRouter, p)

	p, err = ParseProvider("Anthropic")
	require.NoError(t, err)
	assert.Equal(t, ProviderAnthropic, p)

	_, err = ParseProvider("claude")
	assert.ErrorContains(t, err, "unsupported provider")
	assert.Len(t, AvailableProviders(), 3)
}

func TestResolvePrefersOverrides(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "anthropic")
	t.Setenv("OPENAI_API_KEY", "from-env")

	s, err := Resolve("openai", "gpt-4o", "", Settings{})
	require.NoError(t, err)
	assert.Equal(t, Settings{Provider: ProviderOpenAI, Model: "gpt-4o", APIKey: "from-env"}, s)

	s, err = Resolve("openai", "", "explicit", Settings{})
	require.NoError(t, err)
	assert.Equal(t, "explicit", s.APIKey)
	assert.Equal(t, DefaultModel, s.Model)
}

func TestResolveFallsBackToEnvAndDefaults(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "")
	t.Setenv("OPENROUTER_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "ak")

	s, err := Resolve("", "", "", Settings{Provider: ProviderAnthropic, Model: "claude-sonnet-4"})
	require.NoError(t, err)
	assert.Equal(t, Settings{Provider: ProviderAnthropic, Model: "claude-sonnet-4", APIKey: "ak"}, s)

	_, err = Resolve("", "", "", Settings{})
	assert.ErrorContains(t, err, "OPENROUTER_API_KEY")
}
