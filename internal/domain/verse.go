package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// VerseKey identifies a single verse: the unit of pipeline work.
type VerseKey struct {
	Surah int
	Verse int
}

// String returns the canonical verse id, e.g. "2:255".
func (k VerseKey) String() string {
	return fmt.Sprintf("%d:%d", k.Surah, k.Verse)
}

// Compare orders keys numerically by surah, then verse number.
func (k VerseKey) Compare(other VerseKey) int {
	if k.Surah != other.Surah {
		return k.Surah - other.Surah
	}
	return k.Verse - other.Verse
}

// ParseVerseKey parses a canonical verse id of the form "surah:verse".
// Both parts must be positive integers.
func ParseVerseKey(s string) (VerseKey, error) {
	surahPart, versePart, ok := strings.Cut(s, ":")
	if !ok {
		return VerseKey{}, fmt.Errorf("verse id %q: missing separator: %w", s, ErrValidation)
	}

	surah, err := strconv.Atoi(surahPart)
	if err != nil {
		return VerseKey{}, fmt.Errorf("verse id %q: surah: %w", s, ErrValidation)
	}
	verse, err := strconv.Atoi(versePart)
	if err != nil {
		return VerseKey{}, fmt.Errorf("verse id %q: verse: %w", s, ErrValidation)
	}
	if surah < 1 || verse < 1 {
		return VerseKey{}, fmt.Errorf("verse id %q: parts must be positive: %w", s, ErrValidation)
	}

	return VerseKey{Surah: surah, Verse: verse}, nil
}

// Surah is corpus metadata for one surah.
type Surah struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	ArabicName string `json:"arabicName"`
	VerseCount int    `json:"verseCount"`
}

// SourceVerse is one verse of the read-only source corpus.
type SourceVerse struct {
	Key             VerseKey
	Arabic          string
	Translation     string
	Transliteration string
}
