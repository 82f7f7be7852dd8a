// Package corpus reads the canonical source-verse corpus. The corpus is
// read-only input to the pipeline: one surahs.json index plus one JSON file
// of verse records per surah.
package corpus

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/saifaddin/tadabbur-backend/internal/domain"
)

// verseRecord is the on-disk shape of one verse in a surah file.
type verseRecord struct {
	VerseNumber     int    `json:"verseNumber"`
	Arabic          string `json:"arabic"`
	Translation     string `json:"translation"`
	Transliteration string `json:"transliteration"`
}

// Library is a lazily-populated view over the corpus directory. It is owned
// by one run and passed down explicitly; surahs.json and each surah file are
// read at most once per Library. Not safe for concurrent use.
type Library struct {
	dir    string
	surahs []domain.Surah
	byID   map[int]domain.Surah
	verses map[int][]verseRecord
}

// New returns a Library over dir. Nothing is read until first use.
func New(dir string) *Library {
	return &Library{
		dir:    dir,
		verses: make(map[int][]verseRecord),
	}
}

// Surahs returns all surah metadata ordered by id.
func (l *Library) Surahs() ([]domain.Surah, error) {
	if err := l.loadIndex(); err != nil {
		return nil, err
	}
	return l.surahs, nil
}

// VerseCount returns the number of verses in the given surah.
func (l *Library) VerseCount(surahID int) (int, error) {
	if err := l.loadIndex(); err != nil {
		return 0, err
	}
	s, ok := l.byID[surahID]
	if !ok {
		return 0, fmt.Errorf("corpus: surah %d: %w", surahID, domain.ErrNotFound)
	}
	return s.VerseCount, nil
}

// Verse returns the source verse for the given key.
func (l *Library) Verse(key domain.VerseKey) (domain.SourceVerse, error) {
	records, err := l.loadSurah(key.Surah)
	if err != nil {
		return domain.SourceVerse{}, err
	}

	for _, r := range records {
		if r.VerseNumber == key.Verse {
			return domain.SourceVerse{
				Key:             key,
				Arabic:          r.Arabic,
				Translation:     r.Translation,
				Transliteration: r.Transliteration,
			}, nil
		}
	}
	return domain.SourceVerse{}, fmt.Errorf("corpus: verse %s: %w", key, domain.ErrNotFound)
}

// loadIndex reads surahs.json on first call.
func (l *Library) loadIndex() error {
	if l.byID != nil {
		return nil
	}

	path := filepath.Join(l.dir, "surahs.json")
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("corpus: %s: %w", path, domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("corpus: read %s: %w", path, err)
	}

	var surahs []domain.Surah
	if err := json.Unmarshal(data, &surahs); err != nil {
		return fmt.Errorf("corpus: parse %s: %w", path, err)
	}

	byID := make(map[int]domain.Surah, len(surahs))
	for _, s := range surahs {
		byID[s.ID] = s
	}

	l.surahs = surahs
	l.byID = byID
	return nil
}

// loadSurah reads one surah file on first call for that surah.
func (l *Library) loadSurah(surahID int) ([]verseRecord, error) {
	if err := l.loadIndex(); err != nil {
		return nil, err
	}
	if _, ok := l.byID[surahID]; !ok {
		return nil, fmt.Errorf("corpus: surah %d: %w", surahID, domain.ErrNotFound)
	}
	if records, ok := l.verses[surahID]; ok {
		return records, nil
	}

	path := filepath.Join(l.dir, strconv.Itoa(surahID)+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("corpus: read %s: %w", path, err)
	}

	var records []verseRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("corpus: parse %s: %w", path, err)
	}

	l.verses[surahID] = records
	return records, nil
}
