package services

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// EnvMirror keeps KEY=value copies of saved settings in one or more env files.
// It is a best-effort cache of the database, never a source of truth. Files are
// rewritten without locking and independently of each other.
type EnvMirror struct {
	paths []string
}

// NewEnvMirror creates a mirror over the given env file paths
func NewEnvMirror(paths ...string) *EnvMirror {
	return &EnvMirror{paths: paths}
}

// Paths returns the mirrored files
func (m *EnvMirror) Paths() []string {
	return m.paths
}

// Set writes every key into every file, replacing an existing line for the
// key or appending one. Failures are collected per file; a failed file does
// not stop or undo the others.
func (m *EnvMirror) Set(values map[string]string) error {
	if len(values) == 0 {
		return nil
	}

	var errs []error
	for _, path := range m.paths {
		if err := setInFile(path, values); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
		}
	}
	return errors.Join(errs...)
}

// Read parses the first mirrored file. A missing file reads as empty.
func (m *EnvMirror) Read() (map[string]string, error) {
	if len(m.paths) == 0 {
		return map[string]string{}, nil
	}
	values, err := godotenv.Read(m.paths[0])
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	return values, err
}

// Sync rewrites, in every file, only the keys whose current value differs
// from values. It returns the keys that were rewritten in any file.
func (m *EnvMirror) Sync(values map[string]string) ([]string, error) {
	changed := map[string]struct{}{}
	var errs []error
	for _, path := range m.paths {
		current, err := godotenv.Read(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
			continue
		}

		stale := map[string]string{}
		for k, v := range values {
			if got, ok := current[k]; !ok || got != v {
				stale[k] = v
			}
		}
		if len(stale) == 0 {
			continue
		}
		if err := setInFile(path, stale); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
			continue
		}
		for k := range stale {
			changed[k] = struct{}{}
		}
	}

	keys := make([]string, 0, len(changed))
	for k := range changed {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, errors.Join(errs...)
}

func setInFile(path string, values map[string]string) error {
	content, err := os.ReadFile(path) // #nosec G304 -- paths come from configuration
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	var lines []string
	if len(content) > 0 {
		lines = strings.Split(strings.TrimRight(string(content), "\n"), "\n")
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		line, err := formatEnvLine(key, values[key])
		if err != nil {
			return err
		}
		if idx := findEnvLine(lines, key); idx >= 0 {
			lines[idx] = line
		} else {
			lines = append(lines, line)
		}
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600)
}

// formatEnvLine renders KEY="value" with godotenv quoting so the file parses back
func formatEnvLine(key, value string) (string, error) {
	// godotenv.Marshal writes integers bare and would drop leading zeros
	if d, err := strconv.Atoi(value); err == nil && strconv.Itoa(d) != value {
		return fmt.Sprintf("%s=%q", key, value), nil
	}
	line, err := godotenv.Marshal(map[string]string{key: value})
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\n"), nil
}

// findEnvLine returns the index of the first line assigning key, or -1
func findEnvLine(lines []string, key string) int {
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		trimmed = strings.TrimPrefix(trimmed, "export ")
		if !strings.HasPrefix(trimmed, key) {
			continue
		}
		rest := strings.TrimLeft(trimmed[len(key):], " \t")
		if strings.HasPrefix(rest, "=") || strings.HasPrefix(rest, ":") {
			return i
		}
	}
	return -1
}
