package qr

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultEndpoint = "http://api.qrserver.com/v1/create-qr-code/"
	DefaultMargin   = 10
	DefaultColor    = "000000"

	backgroundWhite       = "FFFFFF"
	backgroundTransparent = "transparent"
)

// Options are the validated rendering parameters sent to the remote endpoint.
type Options struct {
	Size       string
	Format     Format
	Margin     int
	Background bool
	Color      string
}

// CleanColor strips leading '#' characters and falls back to DefaultColor.
func CleanColor(color string) string {
	c := strings.TrimLeft(strings.TrimSpace(color), "#")
	if c == "" {
		return DefaultColor
	}
	return c
}

// BuildRequestURL assembles the GET URL for rendering data with opts.
func BuildRequestURL(endpoint, data string, opts Options) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", newError(ErrGenerationFailed, "invalid rendering endpoint", err)
	}

	bg := backgroundTransparent
	if opts.Background {
		bg = backgroundWhite
	}

	q := u.Query()
	q.Set("data", data)
	q.Set("size", opts.Size)
	q.Set("margin", strconv.Itoa(opts.Margin))
	q.Set("format", string(opts.Format))
	q.Set("bgcolor", bg)
	q.Set("color", CleanColor(opts.Color))
	u.RawQuery = q.Encode()

	return u.String(), nil
}
