package analyzer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/saifaddin/tadabbur-backend/internal/adapter/storage"
	"github.com/saifaddin/tadabbur-backend/internal/domain"
)

// Checkpoints persists per-phase intermediate results so an interrupted run
// resumes at the first incomplete step instead of regenerating completed
// work. Keys disambiguate verse and phase; no ordering is assumed.
type Checkpoints struct {
	store storage.Store
}

// NewCheckpoints wraps a store with the checkpoint key layout.
func NewCheckpoints(store storage.Store) *Checkpoints {
	return &Checkpoints{store: store}
}

// HasBase reports whether the base-phase checkpoint of key exists.
func (c *Checkpoints) HasBase(ctx context.Context, key domain.VerseKey) (bool, error) {
	return c.store.Exists(ctx, baseCheckpointKey(key))
}

// LoadBase returns the base-phase checkpoint of key.
// domain.ErrNotFound when absent.
func (c *Checkpoints) LoadBase(ctx context.Context, key domain.VerseKey) (domain.BaseAnalysis, error) {
	data, err := c.store.Get(ctx, baseCheckpointKey(key))
	if err != nil {
		return domain.BaseAnalysis{}, fmt.Errorf("load base checkpoint %s: %w", key, err)
	}

	var base domain.BaseAnalysis
	if err := json.Unmarshal(data, &base); err != nil {
		return domain.BaseAnalysis{}, fmt.Errorf("load base checkpoint %s: %w", key, err)
	}
	return base, nil
}

// SaveBase persists the base-phase checkpoint of key.
func (c *Checkpoints) SaveBase(ctx context.Context, key domain.VerseKey, base domain.BaseAnalysis) error {
	data, err := json.Marshal(base)
	if err != nil {
		return fmt.Errorf("save base checkpoint %s: %w", key, err)
	}
	if err := c.store.Put(ctx, baseCheckpointKey(key), data); err != nil {
		return fmt.Errorf("save base checkpoint %s: %w", key, err)
	}
	return nil
}

// HasWord reports whether the checkpoint for word n of key exists.
func (c *Checkpoints) HasWord(ctx context.Context, key domain.VerseKey, n int) (bool, error) {
	return c.store.Exists(ctx, wordCheckpointKey(key, n))
}

// LoadWord returns the checkpoint for word n of key.
// domain.ErrNotFound when absent.
func (c *Checkpoints) LoadWord(ctx context.Context, key domain.VerseKey, n int) (domain.WordDetail, error) {
	data, err := c.store.Get(ctx, wordCheckpointKey(key, n))
	if err != nil {
		return domain.WordDetail{}, fmt.Errorf("load word checkpoint %s w%d: %w", key, n, err)
	}

	var detail domain.WordDetail
	if err := json.Unmarshal(data, &detail); err != nil {
		return domain.WordDetail{}, fmt.Errorf("load word checkpoint %s w%d: %w", key, n, err)
	}
	return detail, nil
}

// SaveWord persists the checkpoint for word n of key.
func (c *Checkpoints) SaveWord(ctx context.Context, key domain.VerseKey, n int, detail domain.WordDetail) error {
	data, err := json.Marshal(detail)
	if err != nil {
		return fmt.Errorf("save word checkpoint %s w%d: %w", key, n, err)
	}
	if err := c.store.Put(ctx, wordCheckpointKey(key, n), data); err != nil {
		return fmt.Errorf("save word checkpoint %s w%d: %w", key, n, err)
	}
	return nil
}

// Delete removes every checkpoint of key. Idempotent; a missing checkpoint
// is not an error.
func (c *Checkpoints) Delete(ctx context.Context, key domain.VerseKey) error {
	keys, err := c.store.List(ctx, checkpointPrefix(key))
	if err != nil {
		return fmt.Errorf("delete checkpoints %s: %w", key, err)
	}

	var errs []error
	for _, k := range keys {
		if err := c.store.Delete(ctx, k); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("delete checkpoints %s: %w", key, errors.Join(errs...))
	}
	return nil
}
