package cli

import (
	"strings"

	envparse "github.com/caarlos0/env/v11"

	"github.com/knightmare-26/jira-cli/internal/env"
)

// baseEnv defines root CLI defaults sourced from JIRA_AI_* env vars.
type baseEnv struct {
	// ConfigPath is the settings file path from JIRA_AI_CONFIG.
	ConfigPath string `env:"JIRA_AI_CONFIG"`
	// LogLevel is the logging level from JIRA_AI_LOG_LEVEL.
	LogLevel string `env:"JIRA_AI_LOG_LEVEL"`
	// NoAnimation disables the banner from JIRA_AI_NO_ANIMATION.
	NoAnimation bool `env:"JIRA_AI_NO_ANIMATION"`
	// CI is set by most CI systems and disables animation when "true".
	CI string `env:"CI"`
}

// suggestEnv lets CI jobs pass the reference through the environment.
type suggestEnv struct {
	// PR is the pull request number from JIRA_AI_PR_NUMBER.
	PR int `env:"JIRA_AI_PR_NUMBER"`
	// Commit is the commit SHA from JIRA_AI_COMMIT.
	Commit string `env:"JIRA_AI_COMMIT"`
	// Branch is the branch name from JIRA_AI_BRANCH.
	Branch string `env:"JIRA_AI_BRANCH"`
}

// parseEnv fills target from vars via caarlos0/env.
func parseEnv(target any, vars env.Vars) error {
	return envparse.ParseWithOptions(target, envparse.Options{Environment: vars})
}

// envPresent reports whether a non-empty variable exists in vars.
func envPresent(vars env.Vars, key string) bool {
	val, ok := vars[key]
	if !ok {
		return false
	}
	return strings.TrimSpace(val) != ""
}
