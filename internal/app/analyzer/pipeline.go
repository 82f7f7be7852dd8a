// Package analyzer drives the two-phase verse-analysis generation pipeline:
// one base-analysis call per verse, then one detail call per word, each step
// checkpointed so that an interrupted run resumes without repeating
// completed generation work.
package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/saifaddin/tadabbur-backend/internal/adapter/storage"
	"github.com/saifaddin/tadabbur-backend/internal/corpus"
	"github.com/saifaddin/tadabbur-backend/internal/domain"
)

// Generator produces raw text for one prompt. Satisfied by llm.Client.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Outcome reports what Process did for one verse.
type Outcome struct {
	Completed      bool
	WasAlreadyDone bool
}

// Summary aggregates one Run.
type Summary struct {
	Processed int // work units attempted
	Completed int // newly generated artifacts
	Skipped   int // already done before this run
	Failed    int // abandoned after an error
	Duration  time.Duration
}

// Pipeline orchestrates corpus, generator, checkpoints, manifest, and error
// log for one run. Strictly sequential: one verse at a time, one word at a
// time; the generation collaborator is a shared, rate-sensitive resource.
type Pipeline struct {
	library     *corpus.Library
	store       storage.Store
	gen         Generator
	checkpoints *Checkpoints
	manifest    *Tracker
	errlog      *ErrorLog
	log         *slog.Logger
	runID       string
	now         func() time.Time
}

// New wires a pipeline for one run. The run id appears on every run-scoped
// log line and on error-log records.
func New(library *corpus.Library, store storage.Store, gen Generator, log *slog.Logger) *Pipeline {
	runID := uuid.NewString()
	log = log.With(slog.String("run_id", runID))

	return &Pipeline{
		library:     library,
		store:       store,
		gen:         gen,
		checkpoints: NewCheckpoints(store),
		manifest:    NewTracker(store),
		errlog:      NewErrorLog(store, runID, log),
		log:         log,
		runID:       runID,
		now:         time.Now,
	}
}

// Process runs one verse to completion: base phase, word phase per word,
// merge, artifact write, manifest update, checkpoint cleanup. A verse whose
// artifact already exists short-circuits with zero generation calls.
func (p *Pipeline) Process(ctx context.Context, key domain.VerseKey) (Outcome, error) {
	done, err := p.store.Exists(ctx, artifactKey(key))
	if err != nil {
		return Outcome{}, fmt.Errorf("process %s: %w", key, err)
	}
	if done {
		// Idempotent append repairs a manifest left behind by a crash
		// between the artifact write and the manifest update.
		if _, err := p.manifest.Append(ctx, key.String()); err != nil {
			return Outcome{}, fmt.Errorf("process %s: %w", key, err)
		}
		return Outcome{Completed: true, WasAlreadyDone: true}, nil
	}

	src, err := p.library.Verse(key)
	if err != nil {
		return Outcome{}, fmt.Errorf("process %s: %w", key, err)
	}

	base, err := p.baseAnalysis(ctx, key, src)
	if err != nil {
		return Outcome{}, fmt.Errorf("process %s: %w", key, err)
	}

	details := make(map[int]domain.WordDetail, len(base.Words))
	for _, stub := range base.Words {
		detail, err := p.wordDetail(ctx, key, src, stub)
		if err != nil {
			return Outcome{}, fmt.Errorf("process %s word %d: %w", key, stub.Number, err)
		}
		details[stub.Number] = detail
	}

	analysis, err := domain.MergeAnalysis(src, base, details, p.now())
	if err != nil {
		return Outcome{}, fmt.Errorf("process %s: %w", key, err)
	}

	data, err := json.Marshal(analysis)
	if err != nil {
		return Outcome{}, fmt.Errorf("process %s: marshal artifact: %w", key, err)
	}
	if err := p.store.Put(ctx, artifactKey(key), data); err != nil {
		return Outcome{}, fmt.Errorf("process %s: write artifact: %w", key, err)
	}
	if _, err := p.manifest.Append(ctx, key.String()); err != nil {
		return Outcome{}, fmt.Errorf("process %s: %w", key, err)
	}

	// Cleanup is best effort; leftover checkpoints are ignored next run.
	if err := p.checkpoints.Delete(ctx, key); err != nil {
		p.log.Warn("checkpoint cleanup failed",
			slog.String("verse_id", key.String()),
			slog.String("error", err.Error()),
		)
	}

	return Outcome{Completed: true}, nil
}

// baseAnalysis loads the base checkpoint or generates and checkpoints it.
func (p *Pipeline) baseAnalysis(ctx context.Context, key domain.VerseKey, src domain.SourceVerse) (domain.BaseAnalysis, error) {
	has, err := p.checkpoints.HasBase(ctx, key)
	if err != nil {
		return domain.BaseAnalysis{}, err
	}
	if has {
		return p.checkpoints.LoadBase(ctx, key)
	}

	raw, err := p.gen.Generate(ctx, VersePrompt(src))
	if err != nil {
		return domain.BaseAnalysis{}, fmt.Errorf("base phase: %w", err)
	}

	base, err := DecodeBase(src, raw)
	if err != nil {
		return domain.BaseAnalysis{}, err
	}
	if err := p.checkpoints.SaveBase(ctx, key, base); err != nil {
		return domain.BaseAnalysis{}, err
	}
	return base, nil
}

// wordDetail loads one word checkpoint or generates and checkpoints it.
func (p *Pipeline) wordDetail(ctx context.Context, key domain.VerseKey, src domain.SourceVerse, stub domain.WordStub) (domain.WordDetail, error) {
	has, err := p.checkpoints.HasWord(ctx, key, stub.Number)
	if err != nil {
		return domain.WordDetail{}, err
	}
	if has {
		return p.checkpoints.LoadWord(ctx, key, stub.Number)
	}

	raw, err := p.gen.Generate(ctx, WordPrompt(src, stub))
	if err != nil {
		return domain.WordDetail{}, fmt.Errorf("word phase: %w", err)
	}

	detail, err := DecodeWordDetail(raw)
	if err != nil {
		return domain.WordDetail{}, err
	}
	if err := p.checkpoints.SaveWord(ctx, key, stub.Number, detail); err != nil {
		return domain.WordDetail{}, err
	}
	return detail, nil
}

// Run processes every verse of surahs startSurah..endSurah inclusive, in
// surah-then-verse order. A failed verse is recorded in the error log and
// the run moves on; only context cancellation stops the loop early.
func (p *Pipeline) Run(ctx context.Context, startSurah, endSurah int) (Summary, error) {
	surahs, err := p.library.Surahs()
	if err != nil {
		return Summary{}, fmt.Errorf("run: %w", err)
	}
	if len(surahs) == 0 {
		return Summary{}, fmt.Errorf("run: corpus has no surahs")
	}
	maxID := surahs[len(surahs)-1].ID
	if startSurah < 1 || endSurah > maxID {
		return Summary{}, fmt.Errorf("run: surah range %d-%d outside corpus 1-%d", startSurah, endSurah, maxID)
	}

	start := p.now()
	var summary Summary

	p.log.Info("run started",
		slog.Int("start_surah", startSurah),
		slog.Int("end_surah", endSurah),
	)

	for _, surah := range surahs {
		if surah.ID < startSurah || surah.ID > endSurah {
			continue
		}
		for verse := 1; verse <= surah.VerseCount; verse++ {
			key := domain.VerseKey{Surah: surah.ID, Verse: verse}

			outcome, err := p.Process(ctx, key)
			summary.Processed++

			switch {
			case err != nil && ctx.Err() != nil:
				// External cancellation: completed work is durable,
				// the in-flight verse is abandoned for this run.
				summary.Duration = p.now().Sub(start)
				p.log.Info("run cancelled", slog.String("verse_id", key.String()))
				return summary, ctx.Err()
			case err != nil:
				summary.Failed++
				p.errlog.Record(ctx, key.String(), err.Error(), p.now())
				p.log.Error("verse failed",
					slog.String("verse_id", key.String()),
					slog.String("error", err.Error()),
				)
			case outcome.WasAlreadyDone:
				summary.Skipped++
				p.log.Debug("verse already done", slog.String("verse_id", key.String()))
			default:
				summary.Completed++
				p.log.Info("verse completed", slog.String("verse_id", key.String()))
			}
		}
	}

	summary.Duration = p.now().Sub(start)
	p.log.Info("run finished",
		slog.Int("processed", summary.Processed),
		slog.Int("completed", summary.Completed),
		slog.Int("skipped", summary.Skipped),
		slog.Int("failed", summary.Failed),
		slog.Duration("duration", summary.Duration),
	)
	return summary, nil
}

// Manifest exposes the tracker for the manifest tool.
func (p *Pipeline) Manifest() *Tracker {
	return p.manifest
}
