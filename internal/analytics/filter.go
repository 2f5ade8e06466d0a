package analytics

import "time"

// DayRange is an inclusive day-granularity window. Zero Start or End leaves
// that side open; a fully zero range matches everything.
type DayRange struct {
	Start time.Time
	End   time.Time
}

// IsZero reports whether no range was supplied.
func (r DayRange) IsZero() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

// FilterTransactions returns the subset of txs whose created_at falls within
// the range (inclusive on both ends, compared at day granularity in UTC) and
// whose type matches when a selector is supplied. With no range and no type
// the input is returned unchanged in a fresh slice. Start after End yields an
// empty result, not an error.
func FilterTransactions(txs []Transaction, r DayRange, txType TransactionType) []Transaction {
	out := make([]Transaction, 0, len(txs))
	if !r.Start.IsZero() && !r.End.IsZero() && dayOf(r.Start).After(dayOf(r.End)) {
		return out
	}
	for _, tx := range txs {
		if txType != "" && tx.Type != txType {
			continue
		}
		if !inRange(tx.CreatedAt, r) {
			continue
		}
		out = append(out, tx)
	}
	return out
}

func inRange(t time.Time, r DayRange) bool {
	if r.IsZero() {
		return true
	}
	day := dayOf(t)
	if !r.Start.IsZero() && day.Before(dayOf(r.Start)) {
		return false
	}
	if !r.End.IsZero() && day.After(dayOf(r.End)) {
		return false
	}
	return true
}

func dayOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
