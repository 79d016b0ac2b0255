package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Save writes content to dir under the base name of suggestedName and
// returns the written path. An existing file is not overwritten; a numeric
// suffix is added instead.
func Save(dir, suggestedName string, content []byte) (string, error) {
	name := filepath.Base(filepath.Clean("/" + suggestedName))
	if name == "/" || name == "." || name == "" {
		name = "artifact"
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create download directory: %w", err)
	}

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 0; ; i++ {
		candidate := name
		if i > 0 {
			candidate = fmt.Sprintf("%s (%d)%s", stem, i, ext)
		}
		path := filepath.Join(dir, candidate)

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if os.IsExist(err) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to create %s: %w", path, err)
		}
		if err := writeContent(f, content); err != nil {
			_ = f.Close()
			_ = os.Remove(path)
			return "", fmt.Errorf("failed to write %s: %w", path, err)
		}
		if err := f.Close(); err != nil {
			_ = os.Remove(path)
			return "", fmt.Errorf("failed to close %s: %w", path, err)
		}
		return path, nil
	}
}

// writeContent is swapped in tests to simulate a failing disk
var writeContent = func(f *os.File, content []byte) error {
	_, err := f.Write(content)
	return err
}

// SuggestedName derives a file name for an artifact path
func SuggestedName(runID, path string) string {
	base := filepath.Base(filepath.Clean("/" + path))
	if base == "/" || base == "." {
		return fmt.Sprintf("run-%s-artifact", runID)
	}
	return base
}
