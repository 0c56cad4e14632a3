package qr

import (
	"os"
	"path/filepath"
)

// WriteFile stores data as dir/name, creating dir when needed. The body is written to a
// temporary file first and renamed into place, so the target never holds a partial image.
func WriteFile(dir, name string, data []byte) (string, int64, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", 0, newError(ErrFilesystem, "failed to create output folder", err)
	}

	tmp, err := os.CreateTemp(dir, ".qr-*")
	if err != nil {
		return "", 0, newError(ErrFilesystem, "failed to create temporary file", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	n, err := tmp.Write(data)
	if err != nil {
		tmp.Close()
		return "", 0, newError(ErrFilesystem, "failed to write file", err)
	}
	if err := tmp.Close(); err != nil {
		return "", 0, newError(ErrFilesystem, "failed to write file", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return "", 0, newError(ErrFilesystem, "failed to set file mode", err)
	}

	path := filepath.Join(dir, name)
	if err := os.Rename(tmpName, path); err != nil {
		return "", 0, newError(ErrFilesystem, "failed to save file", err)
	}
	return path, int64(n), nil
}
