// Package llm turns a prompt into a suggestion document using one of several model
// backends: local CLIs (gemini, any shell command) or hosted APIs (OpenAI, Anthropic, Gemini).
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/knightmare-26/jira-cli/internal/config"
)

// Provider names accepted in llm.provider.
const (
	ProviderGeminiCLI = "gemini-cli"
	ProviderCustomCLI = "custom-cli"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// Default models per hosted provider.
const (
	DefaultOpenAIModel    = "gpt-4o-mini"
	DefaultAnthropicModel = "claude-sonnet-4-5"
	DefaultGeminiModel    = "gemini-2.5-flash"
)

// GeminiOpenAIBaseURL is Google's OpenAI-compatible endpoint.
const GeminiOpenAIBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"

// Providers lists every supported provider name.
var Providers = []string{ProviderGeminiCLI, ProviderOpenAI, ProviderAnthropic, ProviderGemini, ProviderCustomCLI}

// Backend sends a prompt to a model and returns its raw text reply.
type Backend interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ErrUnsupportedProvider is returned by the unavailable backend.
var ErrUnsupportedProvider = errors.New("unsupported model provider")

// NewBackend builds the backend selected by cfg. An unknown or incomplete selection yields a
// backend that always fails, so suggestion runs degrade to "no suggestions".
func NewBackend(cfg config.LLMConfig, logger *slog.Logger) Backend {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" {
		provider = ProviderGeminiCLI
	}
	switch provider {
	case ProviderGeminiCLI:
		return &GeminiCLI{Model: cfg.Model, Logger: logger}
	case ProviderCustomCLI:
		if strings.TrimSpace(cfg.Command) == "" {
			return unavailable{reason: "custom-cli provider needs llm.command"}
		}
		return &CustomCLI{Command: cfg.Command, Logger: logger}
	case ProviderOpenAI:
		return NewOpenAI(cfg.APIKey, cfg.BaseURL, orDefault(cfg.Model, DefaultOpenAIModel))
	case ProviderGemini:
		key := cfg.APIKey
		if key == "" {
			key = os.Getenv("GEMINI_API_KEY")
		}
		return NewOpenAI(key, orDefault(cfg.BaseURL, GeminiOpenAIBaseURL), orDefault(cfg.Model, DefaultGeminiModel))
	case ProviderAnthropic:
		return NewAnthropic(cfg.APIKey, cfg.BaseURL, orDefault(cfg.Model, DefaultAnthropicModel))
	default:
		return unavailable{reason: fmt.Sprintf("%q", cfg.Provider)}
	}
}

// unavailable is the backend for a provider that cannot be used.
type unavailable struct {
	reason string
}

func (u unavailable) Complete(context.Context, string) (string, error) {
	return "", fmt.Errorf("%w: %s", ErrUnsupportedProvider, u.reason)
}

func orDefault(value, def string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return def
}

// Check reports what is missing for the configured provider to work, without calling it.
func Check(cfg config.LLMConfig) error {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	switch provider {
	case "", ProviderGeminiCLI:
		if _, err := exec.LookPath("gemini"); err != nil {
			return fmt.Errorf("gemini CLI not found in PATH: %w", err)
		}
	case ProviderCustomCLI:
		if strings.TrimSpace(cfg.Command) == "" {
			return fmt.Errorf("%s needs llm.command (LLM_CUSTOM_COMMAND)", provider)
		}
		if _, err := exec.LookPath("sh"); err != nil {
			return fmt.Errorf("sh not found in PATH: %w", err)
		}
	case ProviderOpenAI, ProviderAnthropic:
		if strings.TrimSpace(cfg.APIKey) == "" {
			return fmt.Errorf("%s needs llm.apiKey (LLM_API_KEY)", provider)
		}
	case ProviderGemini:
		if strings.TrimSpace(cfg.APIKey) == "" && os.Getenv("GEMINI_API_KEY") == "" {
			return fmt.Errorf("%s needs llm.apiKey, LLM_API_KEY or GEMINI_API_KEY", provider)
		}
	default:
		return fmt.Errorf("%w %q; choose one of %s", ErrUnsupportedProvider, cfg.Provider, strings.Join(Providers, ", "))
	}
	return nil
}
