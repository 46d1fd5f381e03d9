package streak

import (
	"time"

	"habitual/internal/period"
)

// TrendBucket is one period's completion count inside a trend window.
type TrendBucket struct {
	Key   period.Key
	Count int
}

// Trend buckets raw completion timestamps into the n consecutive periods
// ending at ref, oldest first, zero-filling periods without completions.
// Counts are distinct UTC calendar days, so daily buckets are 0 or 1 while
// weekly and monthly buckets count completed days within the period.
func Trend(ts []time.Time, p period.Periodicity, ref period.Key, n int) ([]TrendBucket, error) {
	if n <= 0 {
		return nil, nil
	}
	days := make(map[time.Time]map[string]struct{})
	for _, t := range ts {
		k, err := period.KeyOf(t, p)
		if err != nil {
			return nil, err
		}
		set, ok := days[k.Time()]
		if !ok {
			set = make(map[string]struct{})
			days[k.Time()] = set
		}
		set[t.UTC().Format("2006-01-02")] = struct{}{}
	}
	buckets := make([]TrendBucket, n)
	k := ref
	for i := n - 1; i >= 0; i-- {
		buckets[i] = TrendBucket{Key: k, Count: len(days[k.Time()])}
		k = period.Prev(k, p)
	}
	return buckets, nil
}
