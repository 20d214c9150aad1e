package schedule

import (
	"testing"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkDatesSingleRange(t *testing.T) {
	marks, rejected := MarkDates([]WorkScheduleEntry{
		{ScheduleID: "s1", FromDate: "2024-06-01", ToDate: "2024-06-03", WeekDay: "Monday"},
	}, Window{})

	assert.Empty(t, rejected)
	assert.Equal(t, []string{"2024-06-01", "2024-06-02", "2024-06-03"}, marks.Dates())
	assert.Equal(t, Mark{Marked: true, DotColor: DefaultDotColor}, marks["2024-06-02"])
}

func TestMarkDatesNoEntries(t *testing.T) {
	marks, rejected := MarkDates(nil, Window{})
	assert.NotNil(t, marks)
	assert.Empty(t, marks)
	assert.Empty(t, rejected)
}

func TestMarkDatesUnionOfOverlappingRanges(t *testing.T) {
	marks, _ := MarkDates([]WorkScheduleEntry{
		{FromDate: "2024-06-01", ToDate: "2024-06-03"},
		{FromDate: "2024-06-03", ToDate: "2024-06-04"},
	}, Window{})

	assert.Equal(t, []string{"2024-06-01", "2024-06-02", "2024-06-03", "2024-06-04"}, marks.Dates())
}

func TestMarkDatesRejectsMalformedEntries(t *testing.T) {
	marks, rejected := MarkDates([]WorkScheduleEntry{
		{ScheduleID: "inverted", FromDate: "2024-06-05", ToDate: "2024-06-01"},
		{ScheduleID: "garbled", FromDate: "June 1st", ToDate: "2024-06-01"},
		{ScheduleID: "ok", FromDate: "2024-06-10", ToDate: "2024-06-10"},
	}, Window{})

	require.Len(t, rejected, 2)
	assert.ErrorIs(t, rejected[0].Err, ErrInvertedRange)
	assert.ErrorIs(t, rejected[1].Err, ErrInvalidDate)
	assert.Equal(t, "garbled", rejected[1].Entry.ScheduleID)
	assert.Equal(t, []string{"2024-06-10"}, marks.Dates())
}

func TestMarkDatesMultiYearRangeIsMarked(t *testing.T) {
	entries := []WorkScheduleEntry{{ScheduleID: "recurring", FromDate: "2024-01-01", ToDate: "2026-12-31", WeekDay: "Monday"}}

	marks, rejected := MarkDates(entries, MonthWindow(civil.Date{Year: 2025, Month: 3, Day: 17}, 2))
	assert.Empty(t, rejected)
	dates := marks.Dates()
	require.Len(t, dates, 31+30)
	assert.Equal(t, "2025-03-01", dates[0])
	assert.Equal(t, "2025-04-30", dates[len(dates)-1])

	// Without an end bound enumeration stops after MaxRangeDays, but the entry
	// still marks rather than being dropped.
	marks, rejected = MarkDates(entries, Window{})
	assert.Empty(t, rejected)
	assert.Len(t, marks, MaxRangeDays)
	assert.True(t, marks["2024-01-01"].Marked)
}

func TestMonthWindowInclude(t *testing.T) {
	w := MonthWindow(civil.Date{Year: 2024, Month: 11, Day: 20}, 3)
	assert.Equal(t, civil.Date{Year: 2024, Month: 11, Day: 1}, w.From)
	assert.Equal(t, civil.Date{Year: 2025, Month: 1, Day: 31}, w.To)

	assert.Equal(t, w, w.Include(civil.Date{Year: 2024, Month: 12, Day: 25}))

	later := w.Include(civil.Date{Year: 2025, Month: 6, Day: 9})
	assert.Equal(t, civil.Date{Year: 2025, Month: 6, Day: 30}, later.To)
	earlier := w.Include(civil.Date{Year: 2024, Month: 2, Day: 29})
	assert.Equal(t, civil.Date{Year: 2024, Month: 2, Day: 1}, earlier.From)
}

func TestMarkDatesWindowClipsLongRanges(t *testing.T) {
	window := Window{
		From: civil.Date{Year: 2024, Month: 6, Day: 10},
		To:   civil.Date{Year: 2024, Month: 6, Day: 12},
	}
	marks, rejected := MarkDates([]WorkScheduleEntry{
		{FromDate: "2020-01-01", ToDate: "2030-12-31"},
		{FromDate: "2025-01-01", ToDate: "2025-01-31"},
	}, window)

	assert.Empty(t, rejected)
	assert.Equal(t, []string{"2024-06-10", "2024-06-11", "2024-06-12"}, marks.Dates())
}

func TestMarkDatesOnlyCoveredDates(t *testing.T) {
	entries := sampleEntries()
	marks, _ := MarkDates(entries, Window{})
	ix := NewIndex(entries)

	require.Len(t, marks, 30)
	for _, key := range marks.Dates() {
		d, err := civil.ParseDate(key)
		require.NoError(t, err)
		assert.True(t, ix.Covers(d), key)
	}
}

func TestMarksWithSelected(t *testing.T) {
	marks, _ := MarkDates([]WorkScheduleEntry{{FromDate: "2024-06-01", ToDate: "2024-06-02"}}, Window{})

	sel := marks.WithSelected(june(2))
	assert.True(t, sel["2024-06-02"].Selected)
	assert.False(t, marks["2024-06-02"].Selected)
	assert.Len(t, sel, 2)
}
