package files

import (
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"qrgen/internal/engine/qr"
)

// Entry is one generated file found on disk.
type Entry struct {
	Name    string    `json:"name"`
	Path    string    `json:"path"`
	Folder  string    `json:"folder"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// List returns the files with a supported extension found directly inside dirs, newest
// first. Missing directories are skipped.
func List(dirs []string) ([]Entry, error) {
	var entries []Entry
	for _, dir := range dirs {
		items, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}

		for _, item := range items {
			if item.IsDir() || !qr.IsSupportedFile(item.Name()) {
				continue
			}
			info, err := item.Info()
			if err != nil {
				log.Debug().Err(err).Str("file", item.Name()).Msg("skipping unreadable file")
				continue
			}
			entries = append(entries, Entry{
				Name:    item.Name(),
				Path:    filepath.Join(dir, item.Name()),
				Folder:  dir,
				Size:    info.Size(),
				ModTime: info.ModTime(),
			})
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].ModTime.After(entries[j].ModTime)
	})
	return entries, nil
}
