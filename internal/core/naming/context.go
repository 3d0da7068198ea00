package naming

import (
	"regexp"
	"strings"

	"github.com/kirillkom/docnamer/internal/core/domain"
)

var (
	companyPattern = regexp.MustCompile(`\b(?i:from|company|vendor)[:\s]+([A-Z][A-Za-z0-9&.,' -]{0,29})`)
	subjectPattern = regexp.MustCompile(`(?i)\b(?:subject|re)[:\s]+(.{1,40})`)
	numericDate    = regexp.MustCompile(`\b\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b|\b\d{4}[/-]\d{1,2}[/-]\d{1,2}\b`)
	textualDate    = regexp.MustCompile(`(?i)\b(?:january|february|march|april|may|june|july|august|september|october|november|december)\s+\d{1,2},?\s+\d{4}\b`)
	amountPattern  = regexp.MustCompile(`(?i)\b(?:total|amount|sum)[:\s$]*([\d,]+\.\d{2})`)
	dateSeparators = regexp.MustCompile(`[/\s,]+`)
)

// ExtractContext pulls structured fields out of the text by pattern matching.
// All extraction is best-effort: a missing match leaves the field empty.
// Amount is only considered for invoice and receipt documents.
func ExtractContext(text, lower string, docType domain.DocumentType) domain.ClassificationContext {
	out := domain.ClassificationContext{DocumentType: docType}

	if m := companyPattern.FindStringSubmatch(text); m != nil {
		out.Company = truncate(cleanField(m[1]), 20)
	}
	if m := subjectPattern.FindStringSubmatch(text); m != nil {
		out.Subject = truncate(cleanField(m[1]), 20)
	}
	if date := firstDate(text); date != "" {
		out.Date = normalizeDate(date)
	}
	if docType == domain.TypeInvoice || docType == domain.TypeReceipt {
		if m := amountPattern.FindStringSubmatch(lower); m != nil {
			out.Amount = strings.ReplaceAll(m[1], ",", "")
		}
	}

	// When no subject or company matched, fall back to the first non-trivial
	// line as the subject.
	if out.Subject == "" && out.Company == "" {
		if line := firstMeaningfulLine(text); line != "" {
			out.Subject = truncate(cleanField(line), 30)
		}
	}

	return out
}

func firstDate(text string) string {
	if m := numericDate.FindString(text); m != "" {
		return m
	}
	return textualDate.FindString(text)
}

// normalizeDate replaces slashes, whitespace and commas with dashes.
func normalizeDate(date string) string {
	return strings.Trim(dateSeparators.ReplaceAllString(date, "-"), "-")
}

func firstMeaningfulLine(text string) string {
	for line := range strings.SplitSeq(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if len(trimmed) > 3 && len(trimmed) < 50 {
			return trimmed
		}
	}
	return ""
}

func cleanField(field string) string {
	return strings.TrimRight(strings.TrimSpace(field), ".,:; ")
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return strings.TrimSpace(string(runes[:limit]))
}
