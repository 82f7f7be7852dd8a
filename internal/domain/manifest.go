package domain

import (
	"slices"
	"strings"
	"time"
)

// Manifest indexes every completed verse analysis in storage. It is a
// derived cache of a storage scan and never independent truth: Rebuild can
// regenerate it from the artifacts alone at any time.
type Manifest struct {
	VerseIDs    []string  `json:"verseIds"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// Contains reports whether the manifest lists the given verse id.
func (m Manifest) Contains(verseID string) bool {
	return slices.Contains(m.VerseIDs, verseID)
}

// SortVerseIDs orders canonical verse ids numerically by surah, then verse,
// so "2:9" sorts before "2:10". Malformed ids sort after well-formed ones.
func SortVerseIDs(ids []string) {
	slices.SortFunc(ids, func(a, b string) int {
		ka, errA := ParseVerseKey(a)
		kb, errB := ParseVerseKey(b)
		switch {
		case errA == nil && errB == nil:
			return ka.Compare(kb)
		case errA == nil:
			return -1
		case errB == nil:
			return 1
		default:
			return strings.Compare(a, b)
		}
	})
}
