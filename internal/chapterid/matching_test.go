package chapterid_test

import (
	"math"
	"testing"

	"yomu/internal/chapterid"
	"yomu/internal/library"
)

func chapter(number, lang, group string) library.Chapter {
	return library.Chapter{
		SourceID:      number + "-" + lang + "-" + group,
		ChapterNumber: number,
		LanguageKey:   lang,
		GroupName:     group,
	}
}

func TestParseNumber(t *testing.T) {
	cases := []struct {
		input string
		want  float64
	}{
		{"12", 12},
		{"12.5", 12.5},
		{" 3 ", 3},
		{"0", 0},
	}
	for _, tc := range cases {
		got := chapterid.ParseNumber(library.Chapter{ChapterNumber: tc.input})
		if got != tc.want {
			t.Errorf("ParseNumber(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}

	for _, input := range []string{"", "extra", "12b", "1.2.3"} {
		got := chapterid.ParseNumber(library.Chapter{ChapterNumber: input})
		if !math.IsNaN(got) {
			t.Errorf("ParseNumber(%q) = %v, want NaN", input, got)
		}
	}
}

func TestSameNumberNaNNeverMatches(t *testing.T) {
	a := library.Chapter{ChapterNumber: "oops"}
	b := library.Chapter{ChapterNumber: "oops"}
	if chapterid.SameNumber(a, b) {
		t.Fatal("malformed numbers must not compare equal")
	}
	if !chapterid.SameNumber(library.Chapter{ChapterNumber: "2"}, library.Chapter{ChapterNumber: "2.0"}) {
		t.Fatal("2 and 2.0 should compare equal")
	}
}

func TestSelectMostSimilarEmpty(t *testing.T) {
	got := chapterid.SelectMostSimilar(chapter("1", "en", "alpha"), nil, nil)
	if got != nil {
		t.Fatalf("expected nil for empty candidates, got %#v", got)
	}
}

func TestSelectMostSimilarPrefersGroup(t *testing.T) {
	reference := chapter("1", "en", "alpha")
	candidates := []library.Chapter{
		chapter("2", "en", "beta"),
		chapter("2", "ja", "alpha"),
	}
	got := chapterid.SelectMostSimilar(reference, candidates, library.NewLanguageSet([]string{"en"}))
	if got == nil || got.GroupName != "alpha" {
		t.Fatalf("expected group match, got %#v", got)
	}
}

func TestSelectMostSimilarPrefersLanguage(t *testing.T) {
	reference := chapter("1", "en", "alpha")
	candidates := []library.Chapter{
		chapter("2", "ja", "beta"),
		chapter("2", "en", "gamma"),
	}
	got := chapterid.SelectMostSimilar(reference, candidates, library.NewLanguageSet([]string{"en"}))
	if got == nil || got.LanguageKey != "en" {
		t.Fatalf("expected preferred-language match, got %#v", got)
	}
}

func TestSelectMostSimilarFallsBackToFirst(t *testing.T) {
	reference := chapter("1", "en", "alpha")
	candidates := []library.Chapter{
		chapter("2", "ja", "beta"),
		chapter("2", "fr", "gamma"),
	}
	got := chapterid.SelectMostSimilar(reference, candidates, library.NewLanguageSet([]string{"en"}))
	if got == nil || got.SourceID != candidates[0].SourceID {
		t.Fatalf("expected first candidate, got %#v", got)
	}

	// An empty language set matches everything, so the first candidate wins.
	got = chapterid.SelectMostSimilar(reference, candidates, nil)
	if got == nil || got.SourceID != candidates[0].SourceID {
		t.Fatalf("expected first candidate with empty language set, got %#v", got)
	}
}

func TestSelectMostSimilarReturnsMember(t *testing.T) {
	reference := chapter("9", "en", "nobody")
	candidates := []library.Chapter{
		chapter("3", "de", "a"),
		chapter("3", "it", "b"),
		chapter("3", "pt", "c"),
	}
	got := chapterid.SelectMostSimilar(reference, candidates, library.NewLanguageSet([]string{"ko"}))
	if got == nil {
		t.Fatal("expected a candidate")
	}
	found := false
	for i := range candidates {
		if candidates[i].SourceID == got.SourceID {
			found = true
		}
	}
	if !found {
		t.Fatalf("result %#v is not a member of candidates", got)
	}
}

func TestBuildRelevantListOrdering(t *testing.T) {
	reference := chapter("1", "en", "alpha")
	chapters := []library.Chapter{
		chapter("1", "en", "alpha"),
		chapter("2", "ja", "beta"),
		chapter("2", "en", "alpha"),
		chapter("3", "en", "alpha"),
	}

	got := chapterid.BuildRelevantList(chapters, reference, library.NewLanguageSet([]string{"en"}))
	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(got))
	}
	wantNumbers := []string{"3", "2", "1"}
	for i, want := range wantNumbers {
		if got[i].ChapterNumber != want {
			t.Errorf("entry %d: got number %q, want %q", i, got[i].ChapterNumber, want)
		}
	}
	if got[1].GroupName != "alpha" {
		t.Errorf("duplicate number should resolve to the reference group, got %q", got[1].GroupName)
	}
}

func TestBuildRelevantListSkipsMalformedNumbers(t *testing.T) {
	reference := chapter("1", "en", "alpha")
	chapters := []library.Chapter{
		chapter("1", "en", "alpha"),
		chapter("extra", "en", "alpha"),
	}
	got := chapterid.BuildRelevantList(chapters, reference, nil)
	if len(got) != 1 || got[0].ChapterNumber != "1" {
		t.Fatalf("expected only chapter 1, got %#v", got)
	}
}
