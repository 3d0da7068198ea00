package naming

import (
	"regexp"
	"strings"
	"time"

	"github.com/kirillkom/docnamer/internal/core/domain"
)

const maxNameLength = 50

var (
	invalidNameChars    = regexp.MustCompile(`[^a-zA-Z0-9_-]`)
	repeatedUnderscores = regexp.MustCompile(`_+`)
)

// ClassifyAndName runs the full naming pipeline over extracted text:
// classification, context extraction, keyword extraction and name synthesis.
// Pure and total: every input, including empty text, yields a non-empty
// sanitized name without a timestamp or extension.
func ClassifyAndName(text string) (string, domain.ClassificationContext) {
	lower := strings.ToLower(text)
	docType := Classify(lower)
	cctx := ExtractContext(text, lower, docType)
	keywords := ExtractKeywords(text, 5)
	return SynthesizeName(cctx, keywords, text), cctx
}

// SynthesizeName composes a file name from up to four ordered context parts,
// falling back to keywords, then to the first words of the text, then to the
// literal "document". Whitespace-only input takes the empty-document path.
func SynthesizeName(cctx domain.ClassificationContext, keywords []string, rawText string) string {
	if strings.TrimSpace(rawText) == "" {
		return "empty_document"
	}

	parts := make([]string, 0, 5)
	if cctx.DocumentType != "" && cctx.DocumentType != domain.TypeDocument {
		parts = append(parts, string(cctx.DocumentType))
	}
	for _, part := range []string{cctx.Company, cctx.Subject, cctx.Date, cctx.Amount} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) > 4 {
		parts = parts[:4]
	}

	name := strings.Join(parts, "_")
	if name == "" {
		top := keywords
		if len(top) > 3 {
			top = top[:3]
		}
		name = strings.Join(top, "_")
	}
	if name == "" {
		name = strings.Join(firstWords(rawText, 3), "_")
	}
	if name == "" {
		name = "document"
	}
	return Sanitize(name)
}

// Sanitize maps a candidate name onto the [a-zA-Z0-9_-] alphabet, collapses
// repeated underscores, trims edge underscores and caps the length. An empty
// result becomes "unnamed".
func Sanitize(name string) string {
	out := invalidNameChars.ReplaceAllString(name, "_")
	out = repeatedUnderscores.ReplaceAllString(out, "_")
	out = strings.Trim(out, "_")
	if len(out) > maxNameLength {
		out = strings.Trim(out[:maxNameLength], "_")
	}
	if out == "" {
		return "unnamed"
	}
	return out
}

// OutputFileName appends a filesystem-safe timestamp and the original
// extension. Uniqueness across calls comes from the timestamp, not from the
// synthesized name itself.
func OutputFileName(name, originalExtension string, now time.Time) string {
	stamp := now.UTC().Format(time.RFC3339)
	stamp = strings.NewReplacer(":", "-", ".", "-").Replace(stamp)
	if len(stamp) > 19 {
		stamp = stamp[:19]
	}
	return name + "_" + stamp + originalExtension
}

func firstWords(text string, limit int) []string {
	out := make([]string, 0, limit)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		if len(word) <= 3 {
			continue
		}
		out = append(out, word)
		if len(out) == limit {
			break
		}
	}
	return out
}
