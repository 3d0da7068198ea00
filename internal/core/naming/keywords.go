package naming

import (
	"regexp"
	"sort"
	"strings"
)

var wordPattern = regexp.MustCompile(`[a-z]+`)

// stopwords that carry no naming value regardless of frequency.
var stopwords = map[string]struct{}{
	"this": {}, "that": {}, "with": {}, "from": {}, "have": {}, "will": {},
	"your": {}, "been": {}, "were": {}, "they": {}, "them": {}, "then": {},
	"than": {}, "there": {}, "their": {}, "about": {}, "which": {}, "when": {},
	"what": {}, "would": {}, "could": {}, "should": {}, "also": {}, "into": {},
	"over": {}, "only": {}, "such": {}, "some": {}, "more": {}, "most": {},
	"other": {}, "after": {}, "before": {}, "each": {}, "where": {}, "these": {},
	"those": {}, "here": {}, "very": {}, "please": {}, "dear": {}, "date": {},
	"page": {}, "name": {}, "number": {},
}

// ExtractKeywords tokenizes text into alphabetic runs, drops short and
// stop-listed tokens, and returns up to limit tokens ordered by descending
// frequency. Ties keep first-occurrence order.
func ExtractKeywords(text string, limit int) []string {
	if limit <= 0 {
		return nil
	}

	lower := strings.ToLower(normalizeWhitespace(text))
	words := wordPattern.FindAllString(lower, -1)

	type keywordStat struct {
		word  string
		count int
	}
	seen := make(map[string]*keywordStat)
	ordered := make([]*keywordStat, 0, len(words))

	for _, word := range words {
		if len(word) <= 3 {
			continue
		}
		if _, stop := stopwords[word]; stop {
			continue
		}
		stat, ok := seen[word]
		if !ok {
			stat = &keywordStat{word: word}
			seen[word] = stat
			ordered = append(ordered, stat)
		}
		stat.count++
	}

	// ordered holds first-occurrence order; the stable sort keeps it for ties.
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].count > ordered[j].count
	})

	out := make([]string, 0, limit)
	for _, stat := range ordered {
		out = append(out, stat.word)
		if len(out) == limit {
			break
		}
	}
	return out
}

// normalizeWhitespace collapses newlines and runs of whitespace to single
// spaces.
func normalizeWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
