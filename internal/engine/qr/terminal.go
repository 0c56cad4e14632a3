package qr

import (
	"errors"
	"strings"

	"github.com/skip2/go-qrcode"
)

// TerminalPreview draws the QR matrix for data with block characters, for showing in a
// terminal next to the file fetched from the rendering endpoint.
func TerminalPreview(data string) (string, error) {
	if data == "" {
		return "", errors.New("nothing to preview")
	}

	code, err := qrcode.New(data, qrcode.Low)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, row := range code.Bitmap() {
		for _, dark := range row {
			if dark {
				sb.WriteString("██")
			} else {
				sb.WriteString("  ")
			}
		}
		sb.WriteString("\n")
	}
	return sb.String(), nil
}
