package naming

import (
	"reflect"
	"testing"
)

func TestExtractKeywordsRanksByFrequency(t *testing.T) {
	text := "network machine learning machine learning machine"
	got := ExtractKeywords(text, 5)
	want := []string{"machine", "learning", "network"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ExtractKeywords() = %v, want %v", got, want)
	}
}

func TestExtractKeywordsTiesKeepFirstOccurrenceOrder(t *testing.T) {
	text := "gamma alpha beta gamma alpha beta"
	got := ExtractKeywords(text, 5)
	want := []string{"gamma", "alpha", "beta"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ExtractKeywords() = %v, want %v", got, want)
	}
}

func TestExtractKeywordsDropsShortAndStopwords(t *testing.T) {
	text := "the cat sat with this that from have payment payment"
	got := ExtractKeywords(text, 5)
	want := []string{"payment"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ExtractKeywords() = %v, want %v", got, want)
	}
}

func TestExtractKeywordsLimit(t *testing.T) {
	text := "alpha beta gamma delta epsilon zeta alpha beta gamma delta epsilon zeta"
	got := ExtractKeywords(text, 5)
	if len(got) != 5 {
		t.Fatalf("expected 5 keywords, got %d: %v", len(got), got)
	}
}

func TestExtractKeywordsEmptyInput(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t\n"} {
		if got := ExtractKeywords(text, 5); len(got) != 0 {
			t.Fatalf("expected no keywords for %q, got %v", text, got)
		}
	}
}

func TestExtractKeywordsCollapsesNewlines(t *testing.T) {
	got := ExtractKeywords("payment\nschedule\npayment", 5)
	want := []string{"payment", "schedule"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ExtractKeywords() = %v, want %v", got, want)
	}
}
