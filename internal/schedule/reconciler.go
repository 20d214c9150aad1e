package schedule

import (
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
)

var (
	// ErrNoDateSelected is returned when a slot is chosen before a date.
	ErrNoDateSelected = errors.New("schedule: no date selected")
	// ErrUnknownSlot is returned for a label that is not in the current slot list.
	ErrUnknownSlot = errors.New("schedule: slot not offered for selected date")
)

// Phase is the reconciler's position in the selection cycle.
type Phase string

const (
	PhaseNoDate       Phase = "no_date_selected"
	PhaseDateSelected Phase = "date_selected"
	PhaseSlotSelected Phase = "slot_selected"
)

// EventKind distinguishes selection events.
type EventKind string

const (
	EventSlotSelected     EventKind = "slot_selected"
	EventSelectionCleared EventKind = "selection_cleared"
)

// Event is published to the booking form whenever the selection changes.
type Event struct {
	Kind      EventKind `json:"kind"`
	Selection Selection `json:"selection"`
}

// Selection is the reconciled appointment value for one date/slot choice.
type Selection struct {
	Date     civil.Date `json:"date"`
	WeekDay  string     `json:"weekDay"`
	Slot     string     `json:"slot"`
	At       time.Time  `json:"at"`
	FromTime string     `json:"fromTime"`
	ToTime   string     `json:"toTime"`
	Duration string     `json:"duration"`
}

// ReconcilerState is the serialisable part of a Reconciler.
type ReconcilerState struct {
	Date *civil.Date `json:"date,omitempty"`
	Slot string      `json:"slot,omitempty"`
}

// Reconciler combines a chosen date and slot with the active schedule bounds.
// It is not safe for concurrent use.
type Reconciler struct {
	index  *Index
	step   time.Duration
	loc    *time.Location
	events chan<- Event

	date     *civil.Date
	entry    *WorkScheduleEntry
	slots    []Slot
	selected int
	muted    bool
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithStep overrides the 15 minute slot width.
func WithStep(step time.Duration) Option {
	return func(r *Reconciler) { r.step = step }
}

// WithLocation sets the zone appointment times are built in.
func WithLocation(loc *time.Location) Option {
	return func(r *Reconciler) {
		if loc != nil {
			r.loc = loc
		}
	}
}

// WithEvents publishes selection changes on ch. Sends block, so the caller
// must drain or buffer the channel.
func WithEvents(ch chan<- Event) Option {
	return func(r *Reconciler) { r.events = ch }
}

// NewReconciler starts in PhaseNoDate over the given index.
func NewReconciler(ix *Index, opts ...Option) *Reconciler {
	r := &Reconciler{
		index:    ix,
		step:     DefaultStep,
		loc:      time.UTC,
		selected: -1,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SelectDate resets any slot choice and derives the slot list for d's weekday.
// A weekday without a schedule yields no slots and no error.
func (r *Reconciler) SelectDate(d civil.Date) error {
	if prev, ok := r.Selection(); ok {
		r.emit(Event{Kind: EventSelectionCleared, Selection: prev})
	}
	r.date = &d
	r.entry = nil
	r.slots = nil
	r.selected = -1

	if !r.index.Covers(d) {
		return nil
	}
	entry, ok := r.index.ForDate(d)
	if !ok {
		return nil
	}
	r.entry = &entry
	slots, err := GenerateSlots(entry.FromTime, entry.ToTime, r.step)
	if err != nil {
		return fmt.Errorf("schedule %s on %s: %w", entry.ScheduleID, d, err)
	}
	r.slots = slots
	return nil
}

// SelectSlot toggles label: choosing the active slot clears it, any other
// offered slot replaces the previous choice. The bool reports whether a slot
// is selected afterwards.
func (r *Reconciler) SelectSlot(label string) (Selection, bool, error) {
	if r.date == nil {
		return Selection{}, false, ErrNoDateSelected
	}
	idx := -1
	for i, s := range r.slots {
		if s.Label == label {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Selection{}, false, fmt.Errorf("%w: %q", ErrUnknownSlot, label)
	}

	if idx == r.selected {
		prev, _ := r.Selection()
		r.selected = -1
		r.emit(Event{Kind: EventSelectionCleared, Selection: prev})
		return Selection{}, false, nil
	}

	r.selected = idx
	sel, _ := r.Selection()
	r.emit(Event{Kind: EventSlotSelected, Selection: sel})
	return sel, true, nil
}

// Selection returns the reconciled value when a slot is chosen.
func (r *Reconciler) Selection() (Selection, bool) {
	if r.date == nil || r.entry == nil || r.selected < 0 || r.selected >= len(r.slots) {
		return Selection{}, false
	}
	d := *r.date
	slot := r.slots[r.selected]
	return Selection{
		Date:     d,
		WeekDay:  WeekdayName(d),
		Slot:     slot.Label,
		At:       time.Date(d.Year, d.Month, d.Day, 0, slot.Minute, 0, 0, r.loc),
		FromTime: r.entry.FromTime,
		ToTime:   r.entry.ToTime,
		Duration: DurationTag(r.step),
	}, true
}

// Phase reports where the selection cycle currently is.
func (r *Reconciler) Phase() Phase {
	switch {
	case r.date == nil:
		return PhaseNoDate
	case r.selected >= 0:
		return PhaseSlotSelected
	default:
		return PhaseDateSelected
	}
}

// Date returns the selected date, if any.
func (r *Reconciler) Date() (civil.Date, bool) {
	if r.date == nil {
		return civil.Date{}, false
	}
	return *r.date, true
}

// Slots returns the slots offered for the selected date.
func (r *Reconciler) Slots() []Slot {
	return append([]Slot(nil), r.slots...)
}

// Schedule returns the entry governing the selected date.
func (r *Reconciler) Schedule() (WorkScheduleEntry, bool) {
	if r.entry == nil {
		return WorkScheduleEntry{}, false
	}
	return *r.entry, true
}

// State captures the selection so it can be restored later.
func (r *Reconciler) State() ReconcilerState {
	var st ReconcilerState
	if r.date != nil {
		d := *r.date
		st.Date = &d
	}
	if r.selected >= 0 && r.selected < len(r.slots) {
		st.Slot = r.slots[r.selected].Label
	}
	return st
}

// Restore replays st without publishing events.
func (r *Reconciler) Restore(st ReconcilerState) error {
	r.muted = true
	defer func() { r.muted = false }()

	r.date, r.entry, r.slots, r.selected = nil, nil, nil, -1
	if st.Date == nil {
		return nil
	}
	if err := r.SelectDate(*st.Date); err != nil {
		return err
	}
	if st.Slot == "" {
		return nil
	}
	_, _, err := r.SelectSlot(st.Slot)
	return err
}

func (r *Reconciler) emit(ev Event) {
	if r.events == nil || r.muted {
		return
	}
	r.events <- ev
}
