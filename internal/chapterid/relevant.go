package chapterid

import (
	"math"
	"sort"

	"yomu/internal/library"
)

// BuildRelevantList produces the one-chapter-per-number navigation sequence
// for a series. Chapter numbers are deduplicated and ordered descending
// (newest first); each number contributes the release most similar to the
// reference chapter. Numbers that parse to NaN are skipped.
//
// The list is rebuilt on every chapter-load rather than cached, since local
// chapter metadata can change between loads.
func BuildRelevantList(chapters []library.Chapter, reference library.Chapter, languages library.LanguageSet) []library.Chapter {
	byNumber := make(map[float64][]library.Chapter)
	for _, chapter := range chapters {
		number := ParseNumber(chapter)
		if math.IsNaN(number) {
			continue
		}
		byNumber[number] = append(byNumber[number], chapter)
	}

	numbers := make([]float64, 0, len(byNumber))
	for number := range byNumber {
		numbers = append(numbers, number)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(numbers)))

	relevant := make([]library.Chapter, 0, len(numbers))
	for _, number := range numbers {
		best := SelectMostSimilar(reference, byNumber[number], languages)
		if best != nil {
			relevant = append(relevant, *best)
		}
	}
	return relevant
}
