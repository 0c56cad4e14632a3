package qr

import (
	"fmt"
	"strconv"
	"strings"
)

type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
	FormatEPS Format = "eps"
	FormatPDF Format = "pdf"
)

const (
	minDimension = 1
	maxDimension = 1000
)

// Formats lists the supported output formats in display order.
var Formats = []Format{FormatPNG, FormatSVG, FormatEPS, FormatPDF}

// Extension returns the file extension for the format, including the dot.
func (f Format) Extension() string {
	return "." + string(f)
}

// NormalizeURL prefixes https:// when the input has no http(s) scheme.
func NormalizeURL(raw string) string {
	u := strings.TrimSpace(raw)
	if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return u
	}
	return "https://" + u
}

// ValidateSize accepts "N" or "WxH" and returns the canonical "WxH" form.
func ValidateSize(input string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(input))

	var width, height int
	var err error
	if strings.Contains(s, "x") {
		parts := strings.Split(s, "x")
		if len(parts) != 2 {
			return "", newError(ErrInvalidSize, fmt.Sprintf("%q is not WIDTHxHEIGHT", input), nil)
		}
		if width, err = strconv.Atoi(strings.TrimSpace(parts[0])); err != nil {
			return "", newError(ErrInvalidSize, fmt.Sprintf("width %q is not a number", parts[0]), nil)
		}
		if height, err = strconv.Atoi(strings.TrimSpace(parts[1])); err != nil {
			return "", newError(ErrInvalidSize, fmt.Sprintf("height %q is not a number", parts[1]), nil)
		}
	} else {
		if width, err = strconv.Atoi(s); err != nil {
			return "", newError(ErrInvalidSize, fmt.Sprintf("%q is not a number", input), nil)
		}
		height = width
	}

	if width < minDimension || width > maxDimension || height < minDimension || height > maxDimension {
		return "", newError(ErrInvalidSize, fmt.Sprintf("size must be between %d and %d pixels", minDimension, maxDimension), nil)
	}

	return fmt.Sprintf("%dx%d", width, height), nil
}

// ValidateFormat matches the input case-insensitively against Formats.
func ValidateFormat(input string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(input)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}

	names := make([]string, len(Formats))
	for i, known := range Formats {
		names[i] = string(known)
	}
	return "", newError(ErrInvalidFormat, "format must be one of: "+strings.Join(names, ", "), nil)
}

// IsSupportedFile reports whether name carries one of the supported extensions.
func IsSupportedFile(name string) bool {
	lower := strings.ToLower(name)
	for _, f := range Formats {
		if strings.HasSuffix(lower, f.Extension()) {
			return true
		}
	}
	return false
}
