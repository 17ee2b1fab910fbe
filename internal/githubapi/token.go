package githubapi

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"
)

// ResolveToken returns the configured token, else GH_TOKEN or GITHUB_TOKEN, else the token
// of the logged-in gh CLI. It returns "" when none is available.
func ResolveToken(ctx context.Context, configured string) string {
	for _, v := range []string{configured, os.Getenv("GH_TOKEN"), os.Getenv("GITHUB_TOKEN")} {
		if t := strings.TrimSpace(v); t != "" {
			return t
		}
	}
	return ghAuthToken(ctx)
}

func ghAuthToken(ctx context.Context) string {
	path, err := exec.LookPath("gh")
	if err != nil {
		return ""
	}
	var stdout bytes.Buffer
	cmd := exec.CommandContext(ctx, path, "auth", "token")
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return ""
	}
	return strings.TrimSpace(stdout.String())
}
