package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/saifaddin/tadabbur-backend/internal/adapter/storage"
)

// ErrorLog appends failed work items to a line-oriented log so a run can
// continue past failures and the operator knows what to re-run.
type ErrorLog struct {
	store storage.Store
	runID string
	log   *slog.Logger
}

// NewErrorLog wraps a store with the error-log key.
func NewErrorLog(store storage.Store, runID string, log *slog.Logger) *ErrorLog {
	return &ErrorLog{store: store, runID: runID, log: log}
}

// Record appends one tab-separated line: timestamp, run id, verse id, cause.
// Record never fails: an append error is logged at Warn and swallowed, so a
// broken error log cannot take the pipeline down with it.
func (e *ErrorLog) Record(ctx context.Context, verseID, cause string, at time.Time) {
	// One failure per line; flatten any newlines in the cause.
	cause = strings.ReplaceAll(cause, "\n", " ")
	line := fmt.Sprintf("%s\t%s\t%s\t%s\n", at.UTC().Format(time.RFC3339), e.runID, verseID, cause)

	if err := e.store.Append(ctx, errorLogKey, []byte(line)); err != nil {
		e.log.Warn("error log append failed",
			slog.String("verse_id", verseID),
			slog.String("error", err.Error()),
		)
	}
}
