package schedule

import (
	"cloud.google.com/go/civil"
)

type dateRange struct {
	from, to civil.Date
}

func (r dateRange) contains(d civil.Date) bool {
	return !d.Before(r.from) && !d.After(r.to)
}

// Index answers availability questions over one provider's schedule list.
// It is immutable once built; a new fetch builds a new Index.
type Index struct {
	entries []WorkScheduleEntry
	ranges  []dateRange
}

// NewIndex copies entries in input order. Entries whose date range cannot be
// parsed still take part in weekday lookup but never cover a date.
func NewIndex(entries []WorkScheduleEntry) *Index {
	ix := &Index{entries: append([]WorkScheduleEntry(nil), entries...)}
	for _, e := range ix.entries {
		if from, to, err := e.DateRange(); err == nil {
			ix.ranges = append(ix.ranges, dateRange{from: from, to: to})
		}
	}
	return ix
}

// ForDate returns the first entry, in input order, recurring on d's weekday.
func (ix *Index) ForDate(d civil.Date) (WorkScheduleEntry, bool) {
	if ix == nil {
		return WorkScheduleEntry{}, false
	}
	day := Weekday(d)
	for _, e := range ix.entries {
		if e.MatchesWeekday(day) {
			return e, true
		}
	}
	return WorkScheduleEntry{}, false
}

// Covers reports whether d lies within at least one entry's inclusive range.
func (ix *Index) Covers(d civil.Date) bool {
	if ix == nil {
		return false
	}
	for _, r := range ix.ranges {
		if r.contains(d) {
			return true
		}
	}
	return false
}

// Available reports whether d is both covered by a range and has a weekday entry.
func (ix *Index) Available(d civil.Date) bool {
	if !ix.Covers(d) {
		return false
	}
	_, ok := ix.ForDate(d)
	return ok
}

// WeekDays lists the distinct weekday names present, in first-seen order.
func (ix *Index) WeekDays() []string {
	if ix == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(ix.entries))
	var out []string
	for _, e := range ix.entries {
		if _, ok := seen[e.WeekDay]; ok {
			continue
		}
		seen[e.WeekDay] = struct{}{}
		out = append(out, e.WeekDay)
	}
	return out
}
