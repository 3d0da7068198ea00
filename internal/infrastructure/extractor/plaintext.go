package extractor

import (
	"strings"
	"unicode/utf8"
)

// extractPlaintext decodes raw bytes as UTF-8 text. Binary content without a
// dedicated parser is treated as unreadable, so the result is empty rather
// than an error.
func extractPlaintext(raw []byte) string {
	if !utf8.Valid(raw) {
		return ""
	}
	return strings.TrimSpace(string(raw))
}
