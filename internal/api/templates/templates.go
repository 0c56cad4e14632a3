package templates

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/dustin/go-humanize"
)

//go:embed *.html
var files embed.FS

var pages = template.Must(template.New("").Funcs(template.FuncMap{
	"bytes": func(n int64) string { return humanize.Bytes(uint64(n)) },
	"ago":   humanize.Time,
}).ParseFS(files, "*.html"))

// Render executes the named page into w. Output is buffered so a failing template never
// leaves a half-written response.
func Render(w http.ResponseWriter, name string, data interface{}) error {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, name, data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, err := buf.WriteTo(w)
	return err
}
