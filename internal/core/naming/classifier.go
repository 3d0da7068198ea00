package naming

import (
	"regexp"

	"github.com/kirillkom/docnamer/internal/core/domain"
)

type classifierRule struct {
	docType domain.DocumentType
	vocab   *regexp.Regexp
	// require must co-occur with vocab for the rule to fire.
	require *regexp.Regexp
}

var (
	monetaryPattern     = regexp.MustCompile(`[$€£]\s*\d|\d+[.,]\d{2}`)
	personalDataPattern = regexp.MustCompile(`\b(?:name|address|phone|email|date of birth|signature)\s*[:\s]`)
)

// classifierRules is ordered: the first matching rule wins.
var classifierRules = []classifierRule{
	{domain.TypeInvoice, regexp.MustCompile(`\binvoice\b|\bbill to\b|\bamount due\b|\binvoice number\b`), nil},
	{domain.TypeReceipt, regexp.MustCompile(`\breceipt\b|\bcash register\b|\bpoint of sale\b|thank you for your purchase`), monetaryPattern},
	{domain.TypeContract, regexp.MustCompile(`\bcontract\b|\bagreement\b|\bterms and conditions\b|\bhereinafter\b`), nil},
	{domain.TypeLetter, regexp.MustCompile(`\bdear\s+\w|\bsincerely\b|\bbest regards\b|\byours truly\b`), nil},
	{domain.TypeReport, regexp.MustCompile(`\breport\b|\bfindings\b|\bexecutive summary\b|\bquarterly\b|\banalysis\b`), nil},
	{domain.TypeCertificate, regexp.MustCompile(`\bcertificate\b|\bcertifies\b|\bcertification\b|\bdiploma\b|\bis awarded to\b`), nil},
	{domain.TypeForm, regexp.MustCompile(`\bform\b|\bapplication\b|\bplease fill\b`), personalDataPattern},
	{domain.TypeMemo, regexp.MustCompile(`\bmemo\b|\bmemorandum\b|\binternal note\b`), nil},
	{domain.TypeID, regexp.MustCompile(`\bpassport\b|\bidentity card\b|\bid card\b|\bdriver'?s license\b|\bidentification\b`), nil},
	{domain.TypeTicket, regexp.MustCompile(`\bticket\b|\badmission\b|\bboarding pass\b|\bseat\b`), nil},
}

// Classify assigns a document type from the ordered rule list. Input must be
// lower-cased. Total: unmatched text falls back to TypeDocument.
func Classify(lower string) domain.DocumentType {
	for _, rule := range classifierRules {
		if !rule.vocab.MatchString(lower) {
			continue
		}
		if rule.require != nil && !rule.require.MatchString(lower) {
			continue
		}
		return rule.docType
	}
	return domain.TypeDocument
}
