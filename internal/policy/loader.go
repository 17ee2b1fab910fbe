package policy

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultPath is used when no policy path is configured.
const DefaultPath = "policy.yaml"

// Parse decodes a policy document. An empty document is the empty policy.
func Parse(data []byte) (*Policy, error) {
	p := Empty()
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("decode policy: %w", err)
	}
	return p, nil
}

// Load reads the policy at path. It never fails: a missing file logs a warning and an
// unreadable or malformed file logs an error, and both yield the deny-all policy.
func Load(path string, logger *slog.Logger) *Policy {
	if logger == nil {
		logger = slog.Default()
	}
	if path == "" {
		path = DefaultPath
	}

	// #nosec G304 -- path is operator supplied.
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Warn("policy file not found, all actions will be rejected", "path", path)
		return Empty()
	}
	if err != nil {
		logger.Error("failed to read policy file, all actions will be rejected", "path", path, "error", err)
		return Empty()
	}

	p, err := Parse(data)
	if err != nil {
		logger.Error("failed to parse policy file, all actions will be rejected", "path", path, "error", err)
		return Empty()
	}
	logger.Debug("policy loaded", "path", path, "allowed_actions", len(p.AllowedActions), "blocked_states", len(p.BlockedStates))
	return p
}
