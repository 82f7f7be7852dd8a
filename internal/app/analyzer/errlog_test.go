package analyzer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/saifaddin/tadabbur-backend/internal/adapter/storage"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestErrorLog_Record(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	errlog := NewErrorLog(store, "run-123", discardLogger())
	ctx := context.Background()
	at := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	errlog.Record(ctx, "1:4", "base phase: no parsable JSON in response", at)
	errlog.Record(ctx, "2:7", "word phase: generation timed out", at.Add(time.Minute))

	data, err := store.Get(ctx, "analysis/_errors.log")
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}

	fields := strings.Split(lines[0], "\t")
	if len(fields) != 4 {
		t.Fatalf("fields = %d, want 4: %q", len(fields), lines[0])
	}
	if fields[0] != "2026-08-31T12:00:00Z" || fields[1] != "run-123" || fields[2] != "1:4" {
		t.Errorf("line = %q", lines[0])
	}
}

func TestErrorLog_FlattensNewlines(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	errlog := NewErrorLog(store, "run-123", discardLogger())
	ctx := context.Background()

	errlog.Record(ctx, "1:1", "cause\nwith\nnewlines", time.Now())

	data, err := store.Get(ctx, "analysis/_errors.log")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got := strings.Count(string(data), "\n"); got != 1 {
		t.Errorf("newlines = %d, want 1 (one record, one line)", got)
	}
}

// failingStore wraps a store and fails every Append.
type failingStore struct {
	storage.Store
}

func (f *failingStore) Append(context.Context, string, []byte) error {
	return errors.New("disk full")
}

func TestErrorLog_SwallowsAppendFailure(t *testing.T) {
	t.Parallel()

	errlog := NewErrorLog(&failingStore{Store: newTestStore(t)}, "run-123", discardLogger())

	// Must not panic, and has no error to return.
	errlog.Record(context.Background(), "1:1", "cause", time.Now())
}
