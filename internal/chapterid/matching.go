package chapterid

import (
	"math"
	"strconv"
	"strings"

	"yomu/internal/library"
)

// ParseNumber parses a chapter-number string as a float for ordering and
// equality. Malformed values parse to NaN, which sorts after every real
// number and never equals another chapter's number.
func ParseNumber(chapter library.Chapter) float64 {
	value, err := strconv.ParseFloat(strings.TrimSpace(chapter.ChapterNumber), 64)
	if err != nil {
		return math.NaN()
	}
	return value
}

// SameNumber reports whether two chapters share a parsed chapter number.
// NaN numbers never match anything, including each other.
func SameNumber(a, b library.Chapter) bool {
	return ParseNumber(a) == ParseNumber(b)
}

// SameGroup reports whether two chapters were released by the same group.
// Comparison is case-sensitive.
func SameGroup(a, b library.Chapter) bool {
	return a.GroupName == b.GroupName
}

// SelectMostSimilar picks the canonical release among candidates that share
// one chapter number. Priority: a release from the reference chapter's group,
// then a release in a preferred language, then the first candidate in input
// order. Returns nil only when candidates is empty.
//
// The function is deterministic and side-effect-free; navigation depends on
// that for reproducibility.
func SelectMostSimilar(reference library.Chapter, candidates []library.Chapter, languages library.LanguageSet) *library.Chapter {
	if len(candidates) == 0 {
		return nil
	}

	for i := range candidates {
		if SameGroup(candidates[i], reference) {
			return &candidates[i]
		}
	}
	if len(languages) > 0 {
		for i := range candidates {
			if languages.Contains(candidates[i].LanguageKey) {
				return &candidates[i]
			}
		}
	}
	return &candidates[0]
}
