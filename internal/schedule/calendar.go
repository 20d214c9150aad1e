package schedule

import (
	"sort"

	"cloud.google.com/go/civil"
)

// MaxRangeDays caps how many days of one entry are enumerated when the
// window leaves its end open.
const MaxRangeDays = 2 * 366

// DefaultDotColor is the marker colour the calendar widget renders.
const DefaultDotColor = "blue"

// Mark is the per-date marking consumed by the mobile calendar widget.
type Mark struct {
	Marked   bool   `json:"marked"`
	Selected bool   `json:"selected,omitempty"`
	DotColor string `json:"dotColor,omitempty"`
}

// Marks maps "YYYY-MM-DD" to its marking.
type Marks map[string]Mark

// Window optionally restricts enumeration to [From, To]. Zero bounds are open.
type Window struct {
	From civil.Date
	To   civil.Date
}

// MonthWindow spans the whole month of anchor plus the following months-1
// months.
func MonthWindow(anchor civil.Date, months int) Window {
	if months < 1 {
		months = 1
	}
	from := civil.Date{Year: anchor.Year, Month: anchor.Month, Day: 1}
	return Window{From: from, To: from.AddMonths(months).AddDays(-1)}
}

// Include widens w to the whole month of d when d falls outside it.
func (w Window) Include(d civil.Date) Window {
	if !w.From.IsZero() && d.Before(w.From) {
		w.From = civil.Date{Year: d.Year, Month: d.Month, Day: 1}
	}
	if !w.To.IsZero() && d.After(w.To) {
		w.To = civil.Date{Year: d.Year, Month: d.Month, Day: 1}.AddMonths(1).AddDays(-1)
	}
	return w
}

func (w Window) clip(r dateRange) (dateRange, bool) {
	if !w.From.IsZero() && r.from.Before(w.From) {
		r.from = w.From
	}
	if !w.To.IsZero() && r.to.After(w.To) {
		r.to = w.To
	}
	if r.to.DaysSince(r.from) >= MaxRangeDays {
		r.to = r.from.AddDays(MaxRangeDays - 1)
	}
	return r, !r.from.After(r.to)
}

// RejectedEntry is a schedule record skipped by the marker.
type RejectedEntry struct {
	Entry WorkScheduleEntry
	Err   error
}

// MarkDates marks every date inside each entry's inclusive range, clipped to
// window, then drops any marked date not covered by a valid entry. Malformed
// entries are returned rather than marked.
func MarkDates(entries []WorkScheduleEntry, window Window) (Marks, []RejectedEntry) {
	marks := Marks{}
	var (
		valid    []dateRange
		rejected []RejectedEntry
	)

	for _, e := range entries {
		from, to, err := e.DateRange()
		if err != nil {
			rejected = append(rejected, RejectedEntry{Entry: e, Err: err})
			continue
		}
		r := dateRange{from: from, to: to}
		valid = append(valid, r)

		clipped, ok := window.clip(r)
		if !ok {
			continue
		}
		for d := clipped.from; !d.After(clipped.to); d = d.AddDays(1) {
			marks[d.String()] = Mark{Marked: true, DotColor: DefaultDotColor}
		}
	}

	for key := range marks {
		d, err := civil.ParseDate(key)
		if err != nil || !covered(valid, d) {
			delete(marks, key)
		}
	}
	return marks, rejected
}

func covered(ranges []dateRange, d civil.Date) bool {
	for _, r := range ranges {
		if r.contains(d) {
			return true
		}
	}
	return false
}

// WithSelected returns a copy with d flagged as the selected day.
func (m Marks) WithSelected(d civil.Date) Marks {
	out := make(Marks, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	out[d.String()] = Mark{Marked: true, Selected: true, DotColor: DefaultDotColor}
	return out
}

// Dates returns the marked dates in ascending order.
func (m Marks) Dates() []string {
	out := make([]string, 0, len(m))
	for k, v := range m {
		if v.Marked {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
