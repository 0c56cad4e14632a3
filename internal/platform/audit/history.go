package audit

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"qrgen/internal/engine/qr"
)

const DefaultHistoryLimit = 100

// Entry is one recorded generation.
type Entry struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	Filename  string `json:"filename"`
	Path      string `json:"path"`
	Format    string `json:"format"`
	Size      string `json:"size"`
	Bytes     int64  `json:"bytes"`
	Cached    bool   `json:"cached"`
	Source    string `json:"source"`
	CreatedAt int64  `json:"created_at"`
}

// History is an append-only log of successful generations.
type History struct {
	db  *sql.DB
	now func() time.Time
}

func NewHistory(db *sql.DB) *History {
	return &History{db: db, now: time.Now}
}

// Record implements qr.Recorder.
func (h *History) Record(ctx context.Context, source string, res *qr.Result) error {
	id := res.ID
	if id == "" {
		id = uuid.New().String()
	}

	query := `
		INSERT INTO generations (id, url, filename, path, format, size, bytes, cached, source, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := h.db.ExecContext(ctx, query,
		id, res.URL, res.Filename, res.Path, string(res.Format), res.Size,
		res.BytesWritten, res.Cached, source, h.now().Unix(),
	)
	return err
}

// Recent returns up to limit entries, newest first.
func (h *History) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 || limit > DefaultHistoryLimit {
		limit = DefaultHistoryLimit
	}

	query := `
		SELECT id, url, filename, path, format, size, bytes, cached, source, created_at
		FROM generations
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`
	rows, err := h.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.URL, &e.Filename, &e.Path, &e.Format, &e.Size, &e.Bytes, &e.Cached, &e.Source, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
