// Package schedule turns a provider's weekly recurring work schedule into
// calendar marks, bookable time slots and a reconciled appointment time.
package schedule

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// ErrInvalidDate is returned for calendar dates that are not YYYY-MM-DD.
var ErrInvalidDate = errors.New("schedule: invalid calendar date")

// ErrInvertedRange is returned when an entry's fromDate is after its toDate.
var ErrInvertedRange = errors.New("schedule: fromDate is after toDate")

// WorkScheduleEntry is one weekly recurring availability window as returned
// by the provider work schedule API.
type WorkScheduleEntry struct {
	ScheduleID string  `json:"scheduleId"`
	ProviderID string  `json:"providerId"`
	FromDate   string  `json:"fromDate"`
	ToDate     string  `json:"toDate"`
	FromTime   string  `json:"fromTime"`
	ToTime     string  `json:"toTime"`
	WeekDay    string  `json:"weekDay"`
	Location   string  `json:"location"`
	Status     string  `json:"status"`
	Name       *string `json:"name"`
}

// DateRange parses the inclusive validity range of the entry.
func (e WorkScheduleEntry) DateRange() (civil.Date, civil.Date, error) {
	from, err := ParseDate(e.FromDate)
	if err != nil {
		return civil.Date{}, civil.Date{}, fmt.Errorf("fromDate: %w", err)
	}
	to, err := ParseDate(e.ToDate)
	if err != nil {
		return civil.Date{}, civil.Date{}, fmt.Errorf("toDate: %w", err)
	}
	if from.After(to) {
		return civil.Date{}, civil.Date{}, fmt.Errorf("%w: %s > %s", ErrInvertedRange, from, to)
	}
	return from, to, nil
}

// MatchesWeekday reports whether the entry recurs on the given weekday.
func (e WorkScheduleEntry) MatchesWeekday(day time.Weekday) bool {
	return strings.EqualFold(strings.TrimSpace(e.WeekDay), day.String())
}

// ParseDate accepts "2006-01-02" optionally followed by a time component
// ("2024-06-01T00:00:00"), which the upstream API emits for date fields.
func ParseDate(s string) (civil.Date, error) {
	s = strings.TrimSpace(s)
	if len(s) > 10 && (s[10] == 'T' || s[10] == ' ') {
		s = s[:10]
	}
	d, err := civil.ParseDate(s)
	if err != nil {
		return civil.Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return d, nil
}

// Weekday returns the Gregorian weekday of d.
func Weekday(d civil.Date) time.Weekday {
	return d.In(time.UTC).Weekday()
}

// WeekdayName returns the English weekday name ("Monday") of d.
func WeekdayName(d civil.Date) string {
	return Weekday(d).String()
}
