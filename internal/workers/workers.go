package workers

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"qrgen/internal/engine/qr"
)

// PurgePreviews deletes generated files in dir whose modification time is older than maxAge
// and returns how many were removed. Only files with a QR output extension are touched.
func PurgePreviews(dir string, maxAge time.Duration, now time.Time) (int, error) {
	if maxAge <= 0 {
		return 0, nil
	}

	items, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	cutoff := now.Add(-maxAge)
	removed := 0
	for _, item := range items {
		if item.IsDir() || !qr.IsSupportedFile(item.Name()) {
			continue
		}
		info, err := item.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}

		path := filepath.Join(dir, item.Name())
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", path).Msg("Worker: failed to remove preview")
			continue
		}
		removed++
	}
	return removed, nil
}

// RunPurger calls PurgePreviews every interval until ctx is done.
func RunPurger(ctx context.Context, dir string, maxAge, interval time.Duration) {
	if maxAge <= 0 || interval <= 0 {
		log.Info().Msg("Worker: preview purge disabled")
		return
	}

	purge := func() {
		n, err := PurgePreviews(dir, maxAge, time.Now())
		if err != nil {
			log.Error().Err(err).Str("dir", dir).Msg("Worker: preview purge failed")
			return
		}
		log.Info().Int("removed", n).Str("dir", dir).Msg("Worker: purged old previews")
	}

	purge()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			purge()
		}
	}
}
