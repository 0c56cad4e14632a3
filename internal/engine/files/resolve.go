package files

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

var ErrNotFound = errors.New("file not found or access denied")

// Resolve maps a requested relative path onto the first allowed directory that contains
// it. Paths that escape their directory, directories and missing files are refused.
func Resolve(requested string, allowed []string) (string, error) {
	requested = strings.TrimPrefix(requested, "/")
	if requested == "" {
		return "", ErrNotFound
	}

	for _, dir := range allowed {
		root, err := filepath.Abs(dir)
		if err != nil {
			continue
		}
		candidate := filepath.Join(root, filepath.FromSlash(requested))

		rel, err := filepath.Rel(root, candidate)
		if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}

		info, err := os.Stat(candidate)
		if err != nil || info.IsDir() {
			continue
		}
		return candidate, nil
	}
	return "", ErrNotFound
}
