// Package habit defines the habit aggregate: identity, periodicity, streak
// saves, and the raw completion history every metric is derived from.
package habit

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"habitual/internal/period"
	"habitual/internal/streak"
)

var (
	// ErrEmptyName is returned when a habit name is empty after trimming.
	ErrEmptyName = errors.New("habit name cannot be empty")
	// ErrNoStreakSaves is returned when a save is spent with none left.
	ErrNoStreakSaves = errors.New("no streak saves remaining")
	// ErrNothingToSave is returned when the period a save would backfill
	// is already completed.
	ErrNothingToSave = errors.New("previous period is already completed")
)

// Source records how a completion entered the history.
type Source string

const (
	SourceManual Source = "manual"
	SourceSave   Source = "save"
)

// Completion is one raw completion event. At is the instant the user
// completed the habit; Source distinguishes manual completions from
// streak-save backfills.
type Completion struct {
	At     time.Time
	Source Source
}

// Habit is the aggregate the store persists and the surfaces render. The
// completion history is the source of truth: it stays ascending with at
// most one entry per UTC calendar day, and period keys, streaks, and trends
// are recomputed from it on demand. Changing the periodicity therefore
// re-buckets the whole history with nothing stored to go stale.
type Habit struct {
	ID          string
	Name        string
	Periodicity period.Periodicity
	CreatedAt   time.Time
	StreakSaves int
	Completions []Completion
}

// New creates a habit with a fresh ID. The name is trimmed and must be
// non-empty; the periodicity must be one of the supported values.
func New(name string, p period.Periodicity, createdAt time.Time) (*Habit, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	if !p.Valid() {
		return nil, fmt.Errorf("%w: %q", period.ErrUnsupportedPeriodicity, p)
	}
	return &Habit{
		ID:          uuid.New().String(),
		Name:        name,
		Periodicity: p,
		CreatedAt:   createdAt.UTC(),
	}, nil
}

// Rename updates the habit's name, trimming surrounding whitespace.
func (h *Habit) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	h.Name = name
	return nil
}

// ChangePeriodicity switches the recurrence granularity. Only the field
// changes; every later metric computation re-buckets the raw history under
// the new periodicity.
func (h *Habit) ChangePeriodicity(p period.Periodicity) error {
	if !p.Valid() {
		return fmt.Errorf("%w: %q", period.ErrUnsupportedPeriodicity, p)
	}
	h.Periodicity = p
	return nil
}

// RecordCompletion logs a manual completion at t and returns the period key
// it lands in. A second completion on the same UTC calendar day is a no-op;
// the bool reports whether the history changed.
func (h *Habit) RecordCompletion(t time.Time) (period.Key, bool, error) {
	return h.record(t, SourceManual)
}

func (h *Habit) record(t time.Time, src Source) (period.Key, bool, error) {
	k, err := period.KeyOf(t, h.Periodicity)
	if err != nil {
		return period.Key{}, false, err
	}
	day := dayOf(t)
	for _, c := range h.Completions {
		if dayOf(c.At) == day {
			return k, false, nil
		}
	}
	h.Completions = append(h.Completions, Completion{At: t.UTC(), Source: src})
	sort.Slice(h.Completions, func(i, j int) bool {
		return h.Completions[i].At.Before(h.Completions[j].At)
	})
	return k, true, nil
}

// RemovePeriod deletes every completion falling in period k under the
// current periodicity and returns how many were removed.
func (h *Habit) RemovePeriod(k period.Key) int {
	kept := h.Completions[:0]
	removed := 0
	for _, c := range h.Completions {
		ck, err := period.KeyOf(c.At, h.Periodicity)
		if err == nil && ck.Equal(k) {
			removed++
			continue
		}
		kept = append(kept, c)
	}
	h.Completions = kept
	return removed
}

// UseStreakSave spends one save to backfill the period immediately before
// the one containing ref, bridging a single missed period so the chain
// survives. The backfill is stamped at the missed period's start and marked
// SourceSave so exports and history can tell it apart.
func (h *Habit) UseStreakSave(ref time.Time) (period.Key, error) {
	if h.StreakSaves <= 0 {
		return period.Key{}, ErrNoStreakSaves
	}
	refKey, err := period.KeyOf(ref, h.Periodicity)
	if err != nil {
		return period.Key{}, err
	}
	prev := period.Prev(refKey, h.Periodicity)
	if h.Ledger().Contains(prev) {
		return period.Key{}, ErrNothingToSave
	}
	if _, _, err := h.record(prev.Time(), SourceSave); err != nil {
		return period.Key{}, err
	}
	h.StreakSaves--
	return prev, nil
}

// Ledger derives the deduplicated period-key set from the raw history.
func (h *Habit) Ledger() *streak.Ledger {
	l := streak.NewLedger(h.Periodicity)
	for _, c := range h.Completions {
		l.Record(c.At)
	}
	return l
}

// Metrics computes the streak result as of the given reference instant.
func (h *Habit) Metrics(ref time.Time) (streak.Result, error) {
	k, err := period.KeyOf(ref, h.Periodicity)
	if err != nil {
		return streak.Result{}, err
	}
	return streak.Compute(h.Ledger(), k), nil
}

// Series returns the ascending completion series for charting.
func (h *Habit) Series() []streak.Point {
	return streak.Series(h.Ledger())
}

// Trend buckets the raw history into the n periods ending at the period
// containing ref, oldest first.
func (h *Habit) Trend(ref time.Time, n int) ([]streak.TrendBucket, error) {
	k, err := period.KeyOf(ref, h.Periodicity)
	if err != nil {
		return nil, err
	}
	ts := make([]time.Time, len(h.Completions))
	for i, c := range h.Completions {
		ts[i] = c.At
	}
	return streak.Trend(ts, h.Periodicity, k, n)
}

// CreationKey returns the period containing the habit's creation time.
func (h *Habit) CreationKey() (period.Key, error) {
	return period.KeyOf(h.CreatedAt, h.Periodicity)
}

// CompletedIn reports whether any completion falls in period k.
func (h *Habit) CompletedIn(k period.Key) bool {
	return h.Ledger().Contains(k)
}

// LastCompletion returns the most recent completion, with false when the
// history is empty.
func (h *Habit) LastCompletion() (Completion, bool) {
	if len(h.Completions) == 0 {
		return Completion{}, false
	}
	return h.Completions[len(h.Completions)-1], true
}

func dayOf(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
