package analyzer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/saifaddin/tadabbur-backend/internal/adapter/storage"
	"github.com/saifaddin/tadabbur-backend/internal/domain"
)

// Tracker maintains the manifest: the durable index of completed verses.
// The manifest is always derivable from the artifacts actually in storage;
// Append is the hot path, Rebuild the recovery path, and both must agree.
type Tracker struct {
	store storage.Store
	now   func() time.Time
}

// NewTracker wraps a store with manifest maintenance.
func NewTracker(store storage.Store) *Tracker {
	return &Tracker{store: store, now: time.Now}
}

// Load returns the current manifest. An absent manifest is an empty one.
func (t *Tracker) Load(ctx context.Context) (domain.Manifest, error) {
	data, err := t.store.Get(ctx, manifestKey)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Manifest{}, nil
	}
	if err != nil {
		return domain.Manifest{}, fmt.Errorf("load manifest: %w", err)
	}

	var m domain.Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return domain.Manifest{}, fmt.Errorf("load manifest: %w", err)
	}
	return m, nil
}

// Append inserts verseID into the manifest if absent and writes it back.
// Appending an already-listed id only refreshes the timestamp.
func (t *Tracker) Append(ctx context.Context, verseID string) (domain.Manifest, error) {
	m, err := t.Load(ctx)
	if err != nil {
		return domain.Manifest{}, err
	}

	if !m.Contains(verseID) {
		m.VerseIDs = append(m.VerseIDs, verseID)
		domain.SortVerseIDs(m.VerseIDs)
	}
	m.GeneratedAt = t.now()

	if err := t.write(ctx, m); err != nil {
		return domain.Manifest{}, err
	}
	return m, nil
}

// Rebuild scans the artifact keys in storage and regenerates the manifest
// from scratch, replacing whatever was stored.
func (t *Tracker) Rebuild(ctx context.Context) (domain.Manifest, error) {
	keys, err := t.store.List(ctx, artifactPrefix)
	if err != nil {
		return domain.Manifest{}, fmt.Errorf("rebuild manifest: %w", err)
	}

	m := domain.Manifest{GeneratedAt: t.now()}
	for _, key := range keys {
		if id, ok := verseIDFromArtifactKey(key); ok {
			m.VerseIDs = append(m.VerseIDs, id)
		}
	}
	domain.SortVerseIDs(m.VerseIDs)

	if err := t.write(ctx, m); err != nil {
		return domain.Manifest{}, err
	}
	return m, nil
}

func (t *Tracker) write(ctx context.Context, m domain.Manifest) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	if err := t.store.Put(ctx, manifestKey, data); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}
