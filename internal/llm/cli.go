package llm

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/knightmare-26/jira-cli/internal/logging"
)

// PromptEnvVar carries the prompt into custom commands.
const PromptEnvVar = "JIRA_AI_PROMPT"

const promptPlaceholder = "{prompt}"

// GeminiCLI runs the gemini command line tool in JSON output mode.
type GeminiCLI struct {
	// Binary overrides the executable; defaults to "gemini".
	Binary string
	// Model is passed with -m when set.
	Model  string
	Logger *slog.Logger
}

// Complete runs `gemini [-m model] -o json -p <prompt>`.
func (g *GeminiCLI) Complete(ctx context.Context, prompt string) (string, error) {
	bin := orDefault(g.Binary, "gemini")
	path, err := exec.LookPath(bin)
	if err != nil {
		return "", fmt.Errorf("gemini CLI not found: %w", err)
	}
	var args []string
	if m := strings.TrimSpace(g.Model); m != "" {
		args = append(args, "-m", m)
	}
	args = append(args, "-o", "json", "-p", prompt)
	return runCommand(ctx, g.Logger, ProviderGeminiCLI, exec.CommandContext(ctx, path, args...), "")
}

// CustomCLI runs a user-supplied shell command. The prompt is exported as JIRA_AI_PROMPT,
// piped on stdin, and substituted for {prompt} (or appended when the placeholder is absent)
// as a quoted reference to that variable, so the prompt text is never parsed by the shell.
type CustomCLI struct {
	Command string
	// Shell defaults to /bin/sh.
	Shell  string
	Logger *slog.Logger
}

// Script returns the shell script that will be executed.
func (c *CustomCLI) Script() string {
	ref := `"$` + PromptEnvVar + `"`
	if strings.Contains(c.Command, promptPlaceholder) {
		return strings.ReplaceAll(c.Command, promptPlaceholder, ref)
	}
	return strings.TrimSpace(c.Command) + " " + ref
}

// Complete runs the command through the shell.
func (c *CustomCLI) Complete(ctx context.Context, prompt string) (string, error) {
	shell := orDefault(c.Shell, "/bin/sh")
	cmd := exec.CommandContext(ctx, shell, "-c", c.Script())
	cmd.Env = append(os.Environ(), PromptEnvVar+"="+prompt)
	return runCommand(ctx, c.Logger, ProviderCustomCLI, cmd, prompt)
}

func runCommand(ctx context.Context, logger *slog.Logger, provider string, cmd *exec.Cmd, stdin string) (string, error) {
	var stdout bytes.Buffer
	stderr := logging.NewWriter(logger, "model stderr", "provider", provider)
	defer stderr.Flush()

	cmd.Stdout = &stdout
	cmd.Stderr = stderr
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("%s: %w", provider, ctx.Err())
		}
		return "", fmt.Errorf("%s: run %s: %w", provider, cmd.Path, err)
	}
	return stdout.String(), nil
}
