package schedule

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func june(day int) civil.Date {
	return civil.Date{Year: 2024, Month: 6, Day: day}
}

func sampleEntries() []WorkScheduleEntry {
	return []WorkScheduleEntry{
		{ScheduleID: "s-mon", ProviderID: "p1", FromDate: "2024-06-01", ToDate: "2024-06-30", FromTime: "09:00 AM", ToTime: "05:00 PM", WeekDay: "Monday"},
		{ScheduleID: "s-mon-late", ProviderID: "p1", FromDate: "2024-06-01", ToDate: "2024-06-30", FromTime: "01:00 PM", ToTime: "06:00 PM", WeekDay: "monday"},
		{ScheduleID: "s-wed", ProviderID: "p1", FromDate: "2024-06-01T00:00:00", ToDate: "2024-06-30T00:00:00", FromTime: "10:00", ToTime: "12:00", WeekDay: "Wednesday"},
	}
}

func TestIndexForDateFirstMatchWins(t *testing.T) {
	ix := NewIndex(sampleEntries())

	// 2024-06-03 is a Monday.
	entry, ok := ix.ForDate(june(3))
	require.True(t, ok)
	assert.Equal(t, "s-mon", entry.ScheduleID)

	entry, ok = ix.ForDate(june(5))
	require.True(t, ok)
	assert.Equal(t, "s-wed", entry.ScheduleID)
}

func TestIndexForDateNoMatchingWeekday(t *testing.T) {
	ix := NewIndex(sampleEntries())

	_, ok := ix.ForDate(june(4))
	assert.False(t, ok)
}

func TestIndexCoversAndAvailable(t *testing.T) {
	ix := NewIndex(sampleEntries())

	assert.True(t, ix.Covers(june(1)))
	assert.True(t, ix.Covers(june(30)))
	assert.False(t, ix.Covers(civil.Date{Year: 2024, Month: 7, Day: 1}))

	assert.True(t, ix.Available(june(3)))
	// Sunday inside the range but without a weekday entry.
	assert.False(t, ix.Available(june(2)))
	// Monday outside every range.
	assert.False(t, ix.Available(civil.Date{Year: 2024, Month: 7, Day: 1}))
}

func TestIndexSkipsUnparseableRanges(t *testing.T) {
	ix := NewIndex([]WorkScheduleEntry{
		{ScheduleID: "bad", FromDate: "06/01/2024", ToDate: "2024-06-30", WeekDay: "Monday"},
	})

	assert.False(t, ix.Covers(june(3)))
	_, ok := ix.ForDate(june(3))
	assert.True(t, ok)
}

func TestIndexWeekDaysDistinct(t *testing.T) {
	ix := NewIndex(sampleEntries())
	assert.Equal(t, []string{"Monday", "monday", "Wednesday"}, ix.WeekDays())
}

func TestIndexIsolatedFromCallerSlice(t *testing.T) {
	entries := sampleEntries()
	ix := NewIndex(entries)
	entries[0].ScheduleID = "mutated"

	entry, ok := ix.ForDate(june(3))
	require.True(t, ok)
	assert.Equal(t, "s-mon", entry.ScheduleID)
}

func TestNilIndex(t *testing.T) {
	var ix *Index
	assert.False(t, ix.Covers(june(3)))
	assert.False(t, ix.Available(june(3)))
	_, ok := ix.ForDate(june(3))
	assert.False(t, ok)
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-06-01T08:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, june(1), d)

	_, err = ParseDate("2024-13-01")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestWeekdayHelpers(t *testing.T) {
	assert.Equal(t, "Saturday", WeekdayName(june(1)))
	assert.Equal(t, time.Friday, Weekday(june(7)))
}
