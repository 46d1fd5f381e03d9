// Package streak derives streak metrics, completion series, and trend
// buckets from raw completion timestamps bucketed into calendar periods.
package streak

import (
	"sort"
	"time"

	"habitual/internal/period"
)

// Ledger is the deduplicated set of period keys a habit's raw completions
// map to under one periodicity. It is derived state: rebuild it from the
// timestamps whenever the periodicity changes.
type Ledger struct {
	periodicity period.Periodicity
	keys        map[time.Time]period.Key
}

// NewLedger returns an empty ledger for the given periodicity.
func NewLedger(p period.Periodicity) *Ledger {
	return &Ledger{periodicity: p, keys: make(map[time.Time]period.Key)}
}

// FromTimes builds a ledger by recording every timestamp in ts.
func FromTimes(p period.Periodicity, ts []time.Time) (*Ledger, error) {
	l := NewLedger(p)
	for _, t := range ts {
		if _, _, err := l.Record(t); err != nil {
			return nil, err
		}
	}
	return l, nil
}

func (l *Ledger) Periodicity() period.Periodicity { return l.periodicity }

// Record buckets t into its period and adds the key to the set. The bool
// reports whether the key was new; recording a second completion inside an
// already-present period leaves the ledger unchanged.
func (l *Ledger) Record(t time.Time) (period.Key, bool, error) {
	k, err := period.KeyOf(t, l.periodicity)
	if err != nil {
		return period.Key{}, false, err
	}
	if _, ok := l.keys[k.Time()]; ok {
		return k, false, nil
	}
	l.keys[k.Time()] = k
	return k, true, nil
}

// Remove deletes k from the set, reporting whether it was present.
func (l *Ledger) Remove(k period.Key) bool {
	if _, ok := l.keys[k.Time()]; !ok {
		return false
	}
	delete(l.keys, k.Time())
	return true
}

func (l *Ledger) Contains(k period.Key) bool {
	_, ok := l.keys[k.Time()]
	return ok
}

func (l *Ledger) Len() int { return len(l.keys) }

// Keys returns the period keys in ascending order. The slice is freshly
// allocated, so callers may keep or mutate it.
func (l *Ledger) Keys() []period.Key {
	out := make([]period.Key, 0, len(l.keys))
	for _, k := range l.keys {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// Last returns the most recent key, with false when the ledger is empty.
func (l *Ledger) Last() (period.Key, bool) {
	var last period.Key
	found := false
	for _, k := range l.keys {
		if !found || k.After(last) {
			last = k
			found = true
		}
	}
	return last, found
}

// Point is one ascending sample of the completion series.
type Point struct {
	Key       period.Key
	Completed bool
}

// Series returns the ledger's completed periods as an ascending series of
// points for charting.
func Series(l *Ledger) []Point {
	keys := l.Keys()
	out := make([]Point, len(keys))
	for i, k := range keys {
		out[i] = Point{Key: k, Completed: true}
	}
	return out
}
