package analyzer

import (
	"context"
	"errors"
	"testing"

	"github.com/saifaddin/tadabbur-backend/internal/adapter/storage"
	"github.com/saifaddin/tadabbur-backend/internal/adapter/storage/fs"
	"github.com/saifaddin/tadabbur-backend/internal/domain"
)

func newTestStore(t *testing.T) storage.Store {
	t.Helper()
	store, err := fs.New(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store
}

func testBase() domain.BaseAnalysis {
	return domain.BaseAnalysis{
		Surah:  1,
		Verse:  1,
		Arabic: "بِسْمِ اللَّهِ",
		Words: []domain.WordStub{
			{Number: 1, Arabic: "بِسْمِ", Transliteration: "bismi", Meaning: "in the name"},
			{Number: 2, Arabic: "اللَّهِ", Transliteration: "allahi", Meaning: "of Allah"},
		},
		LiteralTranslation: "in-name of-Allah",
	}
}

func TestCheckpoints_BaseRoundTrip(t *testing.T) {
	t.Parallel()

	cp := NewCheckpoints(newTestStore(t))
	ctx := context.Background()
	key := domain.VerseKey{Surah: 1, Verse: 1}

	has, err := cp.HasBase(ctx, key)
	if err != nil {
		t.Fatalf("has: %v", err)
	}
	if has {
		t.Error("has = true before save")
	}

	if err := cp.SaveBase(ctx, key, testBase()); err != nil {
		t.Fatalf("save: %v", err)
	}

	has, err = cp.HasBase(ctx, key)
	if err != nil {
		t.Fatalf("has: %v", err)
	}
	if !has {
		t.Error("has = false after save")
	}

	got, err := cp.LoadBase(ctx, key)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Surah != 1 || got.Verse != 1 || len(got.Words) != 2 {
		t.Errorf("loaded = %+v", got)
	}
}

func TestCheckpoints_WordRoundTrip(t *testing.T) {
	t.Parallel()

	cp := NewCheckpoints(newTestStore(t))
	ctx := context.Background()
	key := domain.VerseKey{Surah: 1, Verse: 1}

	detail := domain.WordDetail{
		Root: &domain.Root{Letters: "ر-ح-م", Meaning: "mercy"},
	}
	if err := cp.SaveWord(ctx, key, 3, detail); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := cp.LoadWord(ctx, key, 3)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Root == nil || got.Root.Letters != "ر-ح-م" {
		t.Errorf("root = %+v", got.Root)
	}

	// Other word numbers stay independent.
	if _, err := cp.LoadWord(ctx, key, 4); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("err = %v, want domain.ErrNotFound", err)
	}
}

func TestCheckpoints_AbsentRootStaysAbsent(t *testing.T) {
	t.Parallel()

	cp := NewCheckpoints(newTestStore(t))
	ctx := context.Background()
	key := domain.VerseKey{Surah: 1, Verse: 1}

	if err := cp.SaveWord(ctx, key, 2, domain.WordDetail{}); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := cp.LoadWord(ctx, key, 2)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Root != nil {
		t.Errorf("root = %+v, want nil", got.Root)
	}
	if got.Components != nil {
		t.Errorf("components = %+v, want nil", got.Components)
	}
}

func TestCheckpoints_Delete(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	cp := NewCheckpoints(store)
	ctx := context.Background()
	key := domain.VerseKey{Surah: 1, Verse: 1}
	other := domain.VerseKey{Surah: 1, Verse: 2}

	if err := cp.SaveBase(ctx, key, testBase()); err != nil {
		t.Fatalf("save base: %v", err)
	}
	if err := cp.SaveWord(ctx, key, 1, domain.WordDetail{}); err != nil {
		t.Fatalf("save word: %v", err)
	}
	if err := cp.SaveWord(ctx, other, 1, domain.WordDetail{}); err != nil {
		t.Fatalf("save other word: %v", err)
	}

	if err := cp.Delete(ctx, key); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if has, _ := cp.HasBase(ctx, key); has {
		t.Error("base checkpoint survived delete")
	}
	if has, _ := cp.HasWord(ctx, key, 1); has {
		t.Error("word checkpoint survived delete")
	}
	// The neighbouring verse keeps its checkpoints.
	if has, _ := cp.HasWord(ctx, other, 1); !has {
		t.Error("delete crossed verse boundary")
	}

	// Deleting again is harmless.
	if err := cp.Delete(ctx, key); err != nil {
		t.Fatalf("second delete: %v", err)
	}
}
