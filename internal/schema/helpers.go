// file: internal/schema/helpers.go
package schema

import (
	"bytes"
)

// calculatePreview returns a short, printable preview of raw message data
// for inclusion in error context.
func calculatePreview(data []byte) string {
	const maxPreviewLen = 100
	sanitize := func(r rune) rune {
		if r < 32 || r == 127 {
			return '.'
		}
		return r
	}
	if len(data) > maxPreviewLen {
		return string(bytes.Map(sanitize, data[:maxPreviewLen])) + "..."
	}
	return string(bytes.Map(sanitize, data))
}
