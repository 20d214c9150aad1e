package schedule

import (
	"fmt"
	"time"
)

// DefaultStep is the width of a bookable slot.
const DefaultStep = 15 * time.Minute

// Slot is one bookable start time within a day's availability window.
type Slot struct {
	Label string `json:"label"`
	// Minute is the offset from the selected date's midnight. Windows that
	// cross midnight produce values of 1440 and above.
	Minute int `json:"minute"`
}

// GenerateSlots lists slot labels from `from` while strictly before `to`.
// An end earlier than the start is pushed forward by 12 hours once.
func GenerateSlots(from, to string, step time.Duration) ([]Slot, error) {
	start, err := ParseClock(from)
	if err != nil {
		return nil, fmt.Errorf("slot window start: %w", err)
	}
	end, err := ParseClock(to)
	if err != nil {
		return nil, fmt.Errorf("slot window end: %w", err)
	}
	return generate(int(start), int(end), stepMinutes(step)), nil
}

func generate(start, end, step int) []Slot {
	if end < start {
		end += 12 * 60
	}
	if start >= end {
		return []Slot{}
	}
	slots := make([]Slot, 0, (end-start+step-1)/step)
	for m := start; m < end; m += step {
		slots = append(slots, Slot{Label: Clock(m).Format12(), Minute: m})
	}
	return slots
}

func stepMinutes(step time.Duration) int {
	if step < time.Minute {
		step = DefaultStep
	}
	return int(step / time.Minute)
}

// DurationTag renders a step the way the booking form displays it ("15 mins").
func DurationTag(step time.Duration) string {
	return fmt.Sprintf("%d mins", stepMinutes(step))
}

// Labels extracts the display labels in order.
func Labels(slots []Slot) []string {
	out := make([]string, len(slots))
	for i, s := range slots {
		out[i] = s.Label
	}
	return out
}
