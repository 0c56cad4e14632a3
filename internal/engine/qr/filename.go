package qr

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// FallbackBaseName is used when nothing meaningful can be derived from a URL.
	FallbackBaseName = "qr_code"

	maxBaseNameLength = 50
	maxPathParts      = 3
)

var (
	unsafeChars      = regexp.MustCompile(`[^a-zA-Z0-9_-]`)
	repeatUnderscore = regexp.MustCompile(`_+`)
)

// DeriveBaseName turns a URL into a short filesystem-safe file stem built from the host
// and up to three meaningful path segments.
func DeriveBaseName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return FallbackBaseName
	}

	var parts []string

	host := strings.ToLower(u.Hostname())
	host = strings.TrimPrefix(host, "www.")
	host = strings.TrimPrefix(host, "m.")
	if host != "" {
		host = strings.ReplaceAll(host, ".", "_")
		host = unsafeChars.ReplaceAllString(host, "_")
		parts = append(parts, host)
	}

	var segments []string
	for _, seg := range strings.Split(strings.Trim(typedPath(rawURL, u), "/"), "/") {
		if utf8.RuneCountInString(seg) > 1 {
			segments = append(segments, seg)
		}
	}
	if len(segments) > maxPathParts {
		segments = segments[:maxPathParts]
	}
	for _, seg := range segments {
		if clean := cleanSegment(seg); len(clean) > 1 {
			parts = append(parts, clean)
		}
	}

	if len(parts) == 0 {
		return FallbackBaseName
	}

	name := strings.Join(parts, "_")
	if len(name) > maxBaseNameLength {
		name = strings.TrimRight(name[:maxBaseNameLength], "_")
	}
	if name == "" {
		return FallbackBaseName
	}
	return name
}

// typedPath is the path of rawURL as written, without decoding or re-escaping.
func typedPath(rawURL string, u *url.URL) string {
	if u.RawPath != "" {
		return u.RawPath
	}

	rest := rawURL
	if i := strings.IndexAny(rest, "?#"); i >= 0 {
		rest = rest[:i]
	}
	i := strings.Index(rest, "//")
	if i < 0 {
		return u.Path
	}
	rest = rest[i+2:]
	if j := strings.Index(rest, "/"); j >= 0 {
		return rest[j:]
	}
	return ""
}

func cleanSegment(seg string) string {
	seg = unsafeChars.ReplaceAllString(seg, "_")
	seg = repeatUnderscore.ReplaceAllString(seg, "_")
	return strings.Trim(seg, "_")
}
