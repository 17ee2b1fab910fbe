// Package config holds the persisted jira-ai settings: credentials for Jira and GitHub,
// the model backend selection, and the policy file location.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	envparse "github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/knightmare-26/jira-cli/internal/env"
)

const (
	// DirName is the per-user settings directory under the home directory.
	DirName = ".jira-ai-cli"
	// FileName is the settings file inside DirName.
	FileName = "config.yaml"
)

// Config is the full settings model stored in FileName.
type Config struct {
	// Jira holds ticket store credentials.
	Jira JiraConfig `yaml:"jira,omitempty"`
	// GitHub holds repository coordinates and the API token.
	GitHub GitHubConfig `yaml:"github,omitempty"`
	// LLM selects and configures the suggestion backend.
	LLM LLMConfig `yaml:"llm,omitempty"`
	// PolicyPath points at the policy YAML; empty means policy.yaml in the working directory.
	PolicyPath string `yaml:"policyPath,omitempty"`
}

// JiraConfig describes the Jira instance.
type JiraConfig struct {
	// Server is the base URL, e.g. https://example.atlassian.net.
	Server string `yaml:"server,omitempty"`
	// Username is the account email for Atlassian Cloud basic auth.
	Username string `yaml:"username,omitempty"`
	// APIToken is the API token (or personal access token without Username).
	APIToken string `yaml:"apiToken,omitempty"`
	// Project is the default project key for new tickets.
	Project string `yaml:"project,omitempty"`
}

// GitHubConfig describes the repository used for context lookups.
type GitHubConfig struct {
	// Owner is the organization or user owning the repository.
	Owner string `yaml:"owner,omitempty"`
	// Repo is the repository name.
	Repo string `yaml:"repo,omitempty"`
	// Token is a GitHub token; when empty the gh CLI is asked for one.
	Token string `yaml:"token,omitempty"`
}

// LLMConfig selects the model backend.
type LLMConfig struct {
	// Provider is one of gemini-cli, custom-cli, openai, anthropic, gemini.
	Provider string `yaml:"provider,omitempty"`
	// Model is the hosted model name.
	Model string `yaml:"model,omitempty"`
	// APIKey authenticates hosted providers.
	APIKey string `yaml:"apiKey,omitempty"`
	// BaseURL overrides the hosted provider endpoint.
	BaseURL string `yaml:"baseURL,omitempty"`
	// Command is the shell command for custom-cli; {prompt} marks where the prompt goes.
	Command string `yaml:"command,omitempty"`
	// PromptTemplate replaces the builtin prompt with a text/template file.
	PromptTemplate string `yaml:"promptTemplate,omitempty"`
}

// overrides lists the environment variables that take precedence over the file.
type overrides struct {
	JiraServer   string `env:"JIRA_SERVER"`
	JiraUsername string `env:"JIRA_USERNAME"`
	JiraAPIToken string `env:"JIRA_API_TOKEN"`
	JiraProject  string `env:"JIRA_PROJECT"`

	GitHubOwner string `env:"GITHUB_OWNER"`
	GitHubRepo  string `env:"GITHUB_REPO"`
	GitHubToken string `env:"GITHUB_TOKEN"`
	GHToken     string `env:"GH_TOKEN"`

	LLMProvider string `env:"LLM_PROVIDER"`
	LLMModel    string `env:"LLM_MODEL"`
	LLMAPIKey   string `env:"LLM_API_KEY"`
	LLMBaseURL  string `env:"LLM_BASE_URL"`
	LLMCommand  string `env:"LLM_CUSTOM_COMMAND"`
	LLMTemplate string `env:"LLM_PROMPT_TEMPLATE"`

	PolicyPath string `env:"JIRA_AI_POLICY"`
}

// DefaultPath returns ~/.jira-ai-cli/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, DirName, FileName), nil
}

// Load reads the settings file. A missing file yields an empty Config.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config %q: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config %q: %w", path, err)
	}
	return cfg, nil
}

// LoadWithEnv reads the settings file and applies environment overrides from vars.
func LoadWithEnv(path string, vars env.Vars) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(vars); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overlays non-empty environment values onto the config.
func (c *Config) ApplyEnv(vars env.Vars) error {
	var o overrides
	if err := envparse.ParseWithOptions(&o, envparse.Options{Environment: vars}); err != nil {
		return fmt.Errorf("parse environment overrides: %w", err)
	}

	set := func(dst *string, value string) {
		if v := strings.TrimSpace(value); v != "" {
			*dst = v
		}
	}
	set(&c.Jira.Server, o.JiraServer)
	set(&c.Jira.Username, o.JiraUsername)
	set(&c.Jira.APIToken, o.JiraAPIToken)
	set(&c.Jira.Project, o.JiraProject)
	set(&c.GitHub.Owner, o.GitHubOwner)
	set(&c.GitHub.Repo, o.GitHubRepo)
	set(&c.GitHub.Token, o.GHToken)
	set(&c.GitHub.Token, o.GitHubToken)
	set(&c.LLM.Provider, o.LLMProvider)
	set(&c.LLM.Model, o.LLMModel)
	set(&c.LLM.APIKey, o.LLMAPIKey)
	set(&c.LLM.BaseURL, o.LLMBaseURL)
	set(&c.LLM.Command, o.LLMCommand)
	set(&c.LLM.PromptTemplate, o.LLMTemplate)
	set(&c.PolicyPath, o.PolicyPath)
	return nil
}

// Save writes the config as YAML, creating the parent directory with owner-only permissions.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		return fmt.Errorf("write config %q: %w", path, err)
	}
	return nil
}

// JiraConfigured reports whether enough is set to reach the ticket store.
func (c *Config) JiraConfigured() bool {
	return strings.TrimSpace(c.Jira.Server) != "" && strings.TrimSpace(c.Jira.APIToken) != ""
}

// GitHubConfigured reports whether repository coordinates are set.
func (c *Config) GitHubConfigured() bool {
	return strings.TrimSpace(c.GitHub.Owner) != "" && strings.TrimSpace(c.GitHub.Repo) != ""
}

// Redacted returns a copy with secrets masked, for display.
func (c Config) Redacted() Config {
	c.Jira.APIToken = mask(c.Jira.APIToken)
	c.GitHub.Token = mask(c.GitHub.Token)
	c.LLM.APIKey = mask(c.LLM.APIKey)
	return c
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 4 {
		return "****"
	}
	return "****" + secret[len(secret)-4:]
}
