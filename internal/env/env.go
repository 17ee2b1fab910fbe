// Package env loads environment variables from the process and from .env files.
package env

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Vars is a flat variable map.
type Vars map[string]string

// FromOS snapshots the current process environment.
func FromOS() Vars {
	out := make(Vars)
	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		out[key] = value
	}
	return out
}

// Merge combines several maps; later maps win on key conflicts. An empty later value
// counts as unset and does not shadow an earlier one.
func Merge(sets ...Vars) Vars {
	out := make(Vars)
	for _, s := range sets {
		for k, v := range s {
			if _, seen := out[k]; seen && v == "" {
				continue
			}
			out[k] = v
		}
	}
	return out
}

// LoadEnvFile parses a .env-style file.
func LoadEnvFile(path string) (Vars, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	parsed, err := godotenv.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse env file %q: %w", path, err)
	}
	return Vars(parsed), nil
}

// LoadOptionalEnvFile is LoadEnvFile that treats a missing file as empty.
func LoadOptionalEnvFile(path string) (Vars, error) {
	if strings.TrimSpace(path) == "" {
		return Vars{}, nil
	}
	vars, err := LoadEnvFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Vars{}, nil
	}
	return vars, err
}

// Environ resolves the effective environment: the .env file first, the process environment on top.
func Environ(dotenvPath string) (Vars, error) {
	fileVars, err := LoadOptionalEnvFile(dotenvPath)
	if err != nil {
		return nil, err
	}
	return Merge(fileVars, FromOS()), nil
}
