package llm

import (
	"fmt"
	"os"
	"strings"
)

// Provider is the AI provider the analysis service should use for a request.
type Provider string

const (
	ProviderOpenRouter Provider = "openrouter"
	ProviderOpenAI     Provider = "openai"
	ProviderAnthropic  Provider = "anthropic"
)

const (
	DefaultProvider = ProviderOpenRouter
	DefaultModel    = "anthropic/claude-sonnet-4"
)

// Settings is the provider, model and key forwarded to the analysis service.
type Settings struct {
	Provider Provider
	Model    string
	APIKey   string
}

// ParseProvider validates a provider name. Empty selects the default.
func ParseProvider(s string) (Provider, error) {
	switch p := Provider(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return DefaultProvider, nil
	case ProviderOpenRouter, ProviderOpenAI, ProviderAnthropic:
		return p, nil
	default:
		return "", fmt.Errorf("unsupported provider: %s (supported: openrouter, openai, anthropic)", s)
	}
}

// AvailableProviders returns a list of available providers
func AvailableProviders() []Provider {
	return []Provider{ProviderOpenRouter, ProviderOpenAI, ProviderAnthropic}
}

// APIKeyEnv is the environment variable holding the provider's API key.
func (p Provider) APIKeyEnv() string {
	switch p {
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	default:
		return "OPENROUTER_API_KEY"
	}
}

// Resolve builds Settings from explicit overrides, then environment
// variables, then defaults. Any override left empty falls through.
func Resolve(providerOverride, modelOverride, apiKeyOverride string, defaults Settings) (Settings, error) {
	name := providerOverride
	if name == "" {
		name = os.Getenv("LLM_PROVIDER")
	}
	if name == "" {
		name = string(defaults.Provider)
	}
	provider, err := ParseProvider(name)
	if err != nil {
		return Settings{}, err
	}

	model := modelOverride
	if model == "" {
		model = defaults.Model
	}
	if model == "" {
		model = DefaultModel
	}

	apiKey := apiKeyOverride
	if apiKey == "" {
		apiKey = os.Getenv(provider.APIKeyEnv())
	}
	if apiKey == "" {
		apiKey = defaults.APIKey
	}
	if apiKey == "" {
		return Settings{}, fmt.Errorf("%s environment variable not set (or pass --api-key)", provider.APIKeyEnv())
	}

	return Settings{Provider: provider, Model: model, APIKey: apiKey}, nil
}
