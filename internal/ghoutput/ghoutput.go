// Package ghoutput publishes step outputs for GitHub Actions.
package ghoutput

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"slices"
	"strings"
)

// EnvVar names the file GitHub Actions reads step outputs from.
const EnvVar = "GITHUB_OUTPUT"

// Write appends values to the file at path. An empty path is a no-op so callers can pass
// the variable straight through outside of Actions. Multi-line values use the heredoc form.
func Write(path string, values map[string]string) error {
	path = strings.TrimSpace(path)
	if path == "" || len(values) == 0 {
		return nil
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open %s: %w", EnvVar, err)
	}
	defer func() { _ = f.Close() }()

	keys := make([]string, 0, len(values))
	for k := range values {
		if strings.TrimSpace(k) != "" {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)

	for _, key := range keys {
		if _, err := f.WriteString(format(key, values[key])); err != nil {
			return fmt.Errorf("write %s: %w", EnvVar, err)
		}
	}
	return nil
}

func format(key, value string) string {
	if !strings.ContainsAny(value, "\r\n") {
		return key + "=" + value + "\n"
	}
	delim := delimiter()
	for strings.Contains(value, delim) {
		delim = delimiter()
	}
	return fmt.Sprintf("%s<<%s\n%s\n%s\n", key, delim, strings.TrimRight(value, "\n"), delim)
}

func delimiter() string {
	var buf [8]byte
	_, _ = rand.Read(buf[:])
	return "ghadelimiter_" + hex.EncodeToString(buf[:])
}
