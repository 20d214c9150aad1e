// Package appointments exposes the patient's booked appointments as a
// multi-dot calendar plus search, update and delete passthroughs.
package appointments

import (
	"cloud.google.com/go/civil"

	"github.com/wolfman30/careapp/internal/pysked"
	"github.com/wolfman30/careapp/internal/schedule"
)

// DotColor is the colour of an appointment dot.
const DotColor = "#00B0FF"

// Dot is one appointment on a calendar day.
type Dot struct {
	Key   string `json:"key"`
	Color string `json:"color"`
}

// DayMark is the multi-dot marking for one date.
type DayMark struct {
	Marked bool  `json:"marked"`
	Dots   []Dot `json:"dots"`
}

// Calendar maps "YYYY-MM-DD" to its marking.
type Calendar map[string]DayMark

// BuildCalendar adds one dot per appointment on its date, in input order.
// Appointments without a parseable date are skipped and counted.
func BuildCalendar(appts []pysked.Appointment) (Calendar, int) {
	cal := Calendar{}
	skipped := 0
	for _, a := range appts {
		d, err := schedule.ParseDate(a.AppointmentDate)
		if err != nil {
			skipped++
			continue
		}
		key := d.String()
		mark := cal[key]
		mark.Marked = true
		mark.Dots = append(mark.Dots, Dot{Key: a.AppointmentID, Color: DotColor})
		cal[key] = mark
	}
	return cal, skipped
}

// FirstOnDate returns the first appointment, in input order, on d.
func FirstOnDate(appts []pysked.Appointment, d civil.Date) (pysked.Appointment, bool) {
	for _, a := range appts {
		ad, err := schedule.ParseDate(a.AppointmentDate)
		if err == nil && ad == d {
			return a, true
		}
	}
	return pysked.Appointment{}, false
}

// ForPatient keeps only appointments belonging to patientID. An empty id keeps all.
func ForPatient(appts []pysked.Appointment, patientID string) []pysked.Appointment {
	if patientID == "" {
		return appts
	}
	out := make([]pysked.Appointment, 0, len(appts))
	for _, a := range appts {
		if a.PatientID == patientID {
			out = append(out, a)
		}
	}
	return out
}
