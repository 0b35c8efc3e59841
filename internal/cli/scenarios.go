package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// findScenarioFiles finds all YAML scenario files under dir, sorted by
// path. Files inside skipDir (the golden directory) are ignored. filter is a
// glob matched against the file name without extension.
func findScenarioFiles(dir, skipDir, filter string) ([]string, error) {
	if filter != "" {
		if _, err := filepath.Match(filter, ""); err != nil {
			return nil, fmt.Errorf("invalid filter pattern: %w", err)
		}
	}

	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if skipDir != "" && path == skipDir {
				return filepath.SkipDir
			}
			return nil
		}

		// Only process .yaml and .yml files
		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}

		if filter != "" {
			matched, _ := filepath.Match(filter, scenarioFileName(path))
			if !matched {
				return nil
			}
		}

		files = append(files, path)
		return nil
	})
	return files, err
}

// scenarioFileName returns the file name without directory or extension.
func scenarioFileName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// requireDir returns an ExitCommandError unless path is an existing
// directory.
func requireDir(path, what string) error {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewExitError(ExitCommandError, fmt.Sprintf("%s not found: %s", what, path))
	}
	if err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("error accessing %s", what), err)
	}
	if !info.IsDir() {
		return NewExitError(ExitCommandError, fmt.Sprintf("not a directory: %s", path))
	}
	return nil
}
