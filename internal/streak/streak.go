package streak

import "habitual/internal/period"

// Result is the outcome of a streak computation against a reference period.
type Result struct {
	Current int
	Longest int
	Broken  bool
}

// Compute walks the ledger's keys once in ascending order and reports the
// streak metrics as of ref, the period containing the caller's reference
// instant.
//
// A run extends while each key is the immediate successor of the one before
// it. The final run counts as the current streak only if the last completed
// period is ref itself or its direct predecessor; completing every period
// through yesterday keeps a daily streak alive until today ends. Broken
// means the last completion lies strictly before ref's predecessor.
func Compute(l *Ledger, ref period.Key) Result {
	keys := l.Keys()
	if len(keys) == 0 {
		return Result{Broken: true}
	}
	p := l.periodicity
	longest, run := 1, 1
	for i := 1; i < len(keys); i++ {
		if keys[i].Equal(period.Next(keys[i-1], p)) {
			run++
			continue
		}
		if run > longest {
			longest = run
		}
		run = 1
	}
	if run > longest {
		longest = run
	}
	res := Result{Longest: longest}
	last := keys[len(keys)-1]
	if last.Equal(ref) || last.Equal(period.Prev(ref, p)) {
		res.Current = run
	}
	res.Broken = last.Before(period.Prev(ref, p))
	return res
}

// BrokenAsOf reports whether the chain is broken as of ref without scanning
// the full ledger: true when no completion exists or the latest one is
// earlier than ref's predecessor.
func BrokenAsOf(l *Ledger, ref period.Key) bool {
	last, ok := l.Last()
	if !ok {
		return true
	}
	return last.Before(period.Prev(ref, l.periodicity))
}
