package domain

import (
	"fmt"
	"time"
)

// WordStub is one word of a verse as produced by the base analysis phase.
// Number is 1-based and is the join key for the word-detail merge.
type WordStub struct {
	Number          int    `json:"wordNumber"`
	Arabic          string `json:"arabic"`
	Transliteration string `json:"transliteration"`
	Meaning         string `json:"meaning"`
}

// Root is the Arabic root of a word, letters dash-joined, e.g. "ر-ح-م".
type Root struct {
	Letters string `json:"letters"`
	Meaning string `json:"meaning"`
}

// Component is one element of a compound word, e.g. the بِ in بِسْمِ.
type Component struct {
	Arabic  string `json:"arabic"`
	Meaning string `json:"meaning"`
}

// WordDetail is the word-detail phase output for a single word.
// Both parts are optional: a rootless particle has no Root at all and a
// non-compound word has no Components. Absent must stay absent, never {}.
type WordDetail struct {
	Root       *Root       `json:"root,omitempty"`
	Components []Component `json:"components,omitempty"`
}

// BaseAnalysis is the base-phase artifact for one verse: the ordered word
// stubs plus a literal whole-verse translation.
type BaseAnalysis struct {
	Surah              int        `json:"surahId"`
	Verse              int        `json:"verseNumber"`
	Arabic             string     `json:"arabic"`
	Words              []WordStub `json:"words"`
	LiteralTranslation string     `json:"literalTranslation"`
}

// Key returns the verse key of the analyzed verse.
func (a BaseAnalysis) Key() VerseKey {
	return VerseKey{Surah: a.Surah, Verse: a.Verse}
}

// WordAnalysis is one fully merged word: its stub plus its detail.
type WordAnalysis struct {
	Number          int         `json:"wordNumber"`
	Arabic          string      `json:"arabic"`
	Transliteration string      `json:"transliteration"`
	Meaning         string      `json:"meaning"`
	Root            *Root       `json:"root,omitempty"`
	Components      []Component `json:"components,omitempty"`
}

// VerseAnalysis is the final per-verse artifact: the base analysis merged
// with every word's detail, plus the corpus translation.
type VerseAnalysis struct {
	Surah              int            `json:"surahId"`
	Verse              int            `json:"verseNumber"`
	Arabic             string         `json:"arabic"`
	Translation        string         `json:"translation"`
	LiteralTranslation string         `json:"literalTranslation"`
	Words              []WordAnalysis `json:"words"`
	GeneratedAt        time.Time      `json:"generatedAt"`
}

// Key returns the verse key of the analyzed verse.
func (a VerseAnalysis) Key() VerseKey {
	return VerseKey{Surah: a.Surah, Verse: a.Verse}
}

// MergeAnalysis joins a base analysis with per-word details keyed by word
// number. Every stub must have a matching detail and no detail may point at
// a word the base analysis does not know.
func MergeAnalysis(src SourceVerse, base BaseAnalysis, details map[int]WordDetail, generatedAt time.Time) (VerseAnalysis, error) {
	if len(details) != len(base.Words) {
		return VerseAnalysis{}, fmt.Errorf("merge %s: %d details for %d words: %w",
			base.Key(), len(details), len(base.Words), ErrValidation)
	}

	words := make([]WordAnalysis, len(base.Words))
	for i, stub := range base.Words {
		detail, ok := details[stub.Number]
		if !ok {
			return VerseAnalysis{}, fmt.Errorf("merge %s: word %d has no detail: %w",
				base.Key(), stub.Number, ErrValidation)
		}
		words[i] = WordAnalysis{
			Number:          stub.Number,
			Arabic:          stub.Arabic,
			Transliteration: stub.Transliteration,
			Meaning:         stub.Meaning,
			Root:            detail.Root,
			Components:      detail.Components,
		}
	}

	return VerseAnalysis{
		Surah:              base.Surah,
		Verse:              base.Verse,
		Arabic:             base.Arabic,
		Translation:        src.Translation,
		LiteralTranslation: base.LiteralTranslation,
		Words:              words,
		GeneratedAt:        generatedAt,
	}, nil
}
