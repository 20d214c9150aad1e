// Package booking runs the appointment booking flow for one device across
// HTTP requests: provider schedule load, date and slot selection, submit.
package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/careapp/internal/http/notice"
	"github.com/wolfman30/careapp/internal/observability/metrics"
	"github.com/wolfman30/careapp/internal/pysked"
	"github.com/wolfman30/careapp/internal/schedule"
	"github.com/wolfman30/careapp/internal/validation"
	"github.com/wolfman30/careapp/pkg/logging"
)

var bookingTracer = otel.Tracer("careapp.internal.booking")

// ScheduleSource fetches a provider's work schedule.
type ScheduleSource interface {
	WorkSchedules(ctx context.Context, providerID string) ([]schedule.WorkScheduleEntry, error)
}

// AppointmentCreator books the final appointment upstream.
type AppointmentCreator interface {
	CreateAppointment(ctx context.Context, appt pysked.Appointment) error
}

// SubmitForm is the patient-entered part of the booking form.
type SubmitForm struct {
	PatientID      string `json:"patientId" validate:"notblank"`
	Status         string `json:"status" validate:"required,oneof=Scheduled Completed Cancelled"`
	Type           string `json:"type" validate:"required,oneof='Video call' 'Hospital Visit'"`
	Insurance      string `json:"insurance" validate:"required,oneof=Yes No"`
	ReasonForVisit string `json:"reasonForVisit" validate:"notblank"`
}

// View is what the app renders after every booking call.
type View struct {
	SessionID  string              `json:"sessionId"`
	ProviderID string              `json:"providerId"`
	Generation uint64              `json:"generation"`
	Phase      schedule.Phase      `json:"phase"`
	Marks      schedule.Marks      `json:"marks"`
	Date       string              `json:"date,omitempty"`
	Slots      []string            `json:"slots"`
	NoSchedule bool                `json:"noSchedule"`
	Selection  *schedule.Selection `json:"selection,omitempty"`
	Events     []schedule.Event    `json:"events,omitempty"`
	Notice     *notice.Notice      `json:"notice,omitempty"`
}

// Options tune slot generation and instrumentation.
type Options struct {
	Step     time.Duration
	Location *time.Location
	// CalendarMonths is how many months, starting with the current one, the
	// calendar marks. Defaults to 12.
	CalendarMonths int
	Metrics        *metrics.BookingMetrics
}

// Service coordinates sessions, the reconciler and the scheduling API.
type Service struct {
	store        SessionStore
	schedules    ScheduleSource
	appointments AppointmentCreator
	logger       *logging.Logger
	metrics      *metrics.BookingMetrics
	step         time.Duration
	loc          *time.Location
	months       int
	now          func() time.Time
	newID        func() string
}

// NewService constructs a booking service.
func NewService(store SessionStore, schedules ScheduleSource, appointments AppointmentCreator, logger *logging.Logger, opts Options) *Service {
	if store == nil {
		panic("booking: session store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if opts.Step <= 0 {
		opts.Step = schedule.DefaultStep
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.CalendarMonths <= 0 {
		opts.CalendarMonths = 12
	}
	return &Service{
		store:        store,
		schedules:    schedules,
		appointments: appointments,
		logger:       logger.Component("booking"),
		metrics:      opts.Metrics,
		step:         opts.Step,
		loc:          opts.Location,
		months:       opts.CalendarMonths,
		now:          time.Now,
		newID:        uuid.NewString,
	}
}

// Start opens a session for providerID and loads its schedule.
func (s *Service) Start(ctx context.Context, providerID string) (*View, error) {
	ctx, span := bookingTracer.Start(ctx, "booking.start")
	defer span.End()

	providerID = strings.TrimSpace(providerID)
	if providerID == "" {
		return nil, ErrProviderRequired
	}
	now := s.now().UTC()
	sess := &Session{
		ID:         s.newID(),
		ProviderID: providerID,
		Generation: 1,
		Entries:    []schedule.WorkScheduleEntry{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	span.SetAttributes(attribute.String("careapp.session_id", sess.ID), attribute.String("careapp.provider_id", providerID))
	if err := s.store.Create(ctx, sess); err != nil {
		span.RecordError(err)
		return nil, err
	}
	s.metrics.ObserveSession("started")
	s.logger.Info("booking session started", "session_id", sess.ID, "provider_id", providerID)
	return s.load(ctx, sess.ID, sess.Generation, providerID)
}

// ChangeProvider switches the session to another provider. Any fetch still in
// flight for the previous provider is discarded when it lands.
func (s *Service) ChangeProvider(ctx context.Context, id, providerID string) (*View, error) {
	ctx, span := bookingTracer.Start(ctx, "booking.change_provider")
	defer span.End()

	providerID = strings.TrimSpace(providerID)
	if providerID == "" {
		return nil, ErrProviderRequired
	}
	sess, err := s.store.Update(ctx, id, func(sess *Session) error {
		sess.Generation++
		sess.ProviderID = providerID
		sess.Entries = []schedule.WorkScheduleEntry{}
		sess.LoadError = ""
		sess.State = schedule.ReconcilerState{}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Int64("careapp.generation", int64(sess.Generation)))
	s.metrics.ObserveSession("provider_changed")
	return s.load(ctx, id, sess.Generation, providerID)
}

func (s *Service) load(ctx context.Context, id string, gen uint64, providerID string) (*View, error) {
	var entries []schedule.WorkScheduleEntry
	var fetchErr error
	if s.schedules == nil {
		fetchErr = errors.New("schedule source not configured")
	} else {
		entries, fetchErr = s.schedules.WorkSchedules(ctx, providerID)
	}
	if fetchErr != nil {
		s.logger.Warn("work schedule fetch failed", "session_id", id, "provider_id", providerID, "error", fetchErr)
	}

	sess, err := s.store.Update(ctx, id, func(sess *Session) error {
		if sess.Generation != gen {
			return ErrSuperseded
		}
		sess.State = schedule.ReconcilerState{}
		if fetchErr != nil {
			sess.Entries = []schedule.WorkScheduleEntry{}
			sess.LoadError = fetchErr.Error()
			return nil
		}
		if entries == nil {
			entries = []schedule.WorkScheduleEntry{}
		}
		sess.Entries = entries
		sess.LoadError = ""
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrSuperseded) {
			s.logger.Debug("discarding stale schedule fetch", "session_id", id, "generation", gen)
		}
		return nil, err
	}

	rec := s.reconciler(sess, nil)
	v := s.view(sess, rec, nil)
	if sess.LoadError != "" {
		v.Notice = notice.Error("Unable to load schedule", sess.LoadError)
	}
	return v, nil
}

// Get returns the current view of a session.
func (s *Service) Get(ctx context.Context, id string) (*View, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	rec := s.reconciler(sess, nil)
	if err := rec.Restore(sess.State); err != nil {
		s.logger.Warn("session state no longer matches schedule", "session_id", id, "error", err)
	}
	return s.view(sess, rec, nil), nil
}

// SelectDate picks a calendar date and returns its slots. A weekday with no
// schedule is not an error; the view reports NoSchedule instead.
func (s *Service) SelectDate(ctx context.Context, id, date string) (*View, error) {
	d, err := schedule.ParseDate(date)
	if err != nil {
		return nil, err
	}

	var (
		rec    *schedule.Reconciler
		events []schedule.Event
		selErr error
	)
	sess, err := s.store.Update(ctx, id, func(sess *Session) error {
		ch := make(chan schedule.Event, 4)
		rec = s.reconciler(sess, ch)
		s.restore(sess, rec)
		selErr = rec.SelectDate(d)
		sess.State = rec.State()
		events = drainEvents(ch)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveSlots(len(rec.Slots()))
	v := s.view(sess, rec, events)
	if selErr != nil {
		s.logger.Warn("slot generation failed", "session_id", id, "date", d.String(), "error", selErr)
		v.Notice = notice.Error("Unable to list times for this date", selErr.Error())
	}
	return v, nil
}

// SelectSlot toggles a slot on the selected date.
func (s *Service) SelectSlot(ctx context.Context, id, label string) (*View, error) {
	var (
		rec    *schedule.Reconciler
		events []schedule.Event
	)
	sess, err := s.store.Update(ctx, id, func(sess *Session) error {
		ch := make(chan schedule.Event, 4)
		rec = s.reconciler(sess, ch)
		s.restore(sess, rec)
		if _, _, err := rec.SelectSlot(label); err != nil {
			return err
		}
		sess.State = rec.State()
		events = drainEvents(ch)
		return nil
	})
	if err != nil {
		return nil, err
	}
	for _, ev := range events {
		s.metrics.ObserveSelection(string(ev.Kind))
	}
	return s.view(sess, rec, events), nil
}

// Submit books the selected slot and closes the session.
func (s *Service) Submit(ctx context.Context, id string, form SubmitForm) (*pysked.Appointment, error) {
	ctx, span := bookingTracer.Start(ctx, "booking.submit")
	defer span.End()
	span.SetAttributes(attribute.String("careapp.session_id", id))

	if strings.TrimSpace(form.Status) == "" {
		form.Status = "Scheduled"
	}
	if err := validation.Struct(form); err != nil {
		s.metrics.ObserveSubmit("invalid")
		return nil, err
	}

	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	rec := s.reconciler(sess, nil)
	if err := rec.Restore(sess.State); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoSlotSelected, err)
	}
	sel, ok := rec.Selection()
	if !ok {
		s.metrics.ObserveSubmit("invalid")
		return nil, ErrNoSlotSelected
	}
	if picked, _ := rec.Date(); !schedule.NewIndex(sess.Entries).Available(picked) {
		s.metrics.ObserveSubmit("invalid")
		return nil, fmt.Errorf("%w: %s is outside the provider's schedule", ErrNoSlotSelected, picked)
	}

	day := civil.DateOf(sel.At)
	created := s.now().UTC().Format(time.RFC3339)
	appt := pysked.Appointment{
		AppointmentID:   s.newID(),
		ProviderID:      sess.ProviderID,
		PatientID:       strings.TrimSpace(form.PatientID),
		AppointmentDate: day.String(),
		AppointmentTime: sel.Slot,
		WeekDay:         schedule.WeekdayName(day),
		Status:          form.Status,
		Type:            form.Type,
		Insurance:       form.Insurance,
		ReasonForVisit:  strings.TrimSpace(form.ReasonForVisit),
		CreatedAt:       &created,
	}
	if s.appointments == nil {
		return nil, errors.New("booking: appointment creator not configured")
	}
	if err := s.appointments.CreateAppointment(ctx, appt); err != nil {
		span.RecordError(err)
		s.metrics.ObserveSubmit("error")
		return nil, err
	}
	s.metrics.ObserveSubmit("ok")
	s.logger.Info("appointment booked", "session_id", id, "appointment_id", appt.AppointmentID, "provider_id", appt.ProviderID, "date", appt.AppointmentDate, "time", appt.AppointmentTime)

	if err := s.store.Delete(ctx, id); err != nil {
		s.logger.Warn("failed to discard booked session", "session_id", id, "error", err)
	}
	return &appt, nil
}

// Discard drops a session.
func (s *Service) Discard(ctx context.Context, id string) error {
	if _, err := s.store.Get(ctx, id); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.metrics.ObserveSession("discarded")
	return nil
}

func (s *Service) reconciler(sess *Session, events chan<- schedule.Event) *schedule.Reconciler {
	opts := []schedule.Option{schedule.WithStep(s.step), schedule.WithLocation(s.loc)}
	if events != nil {
		opts = append(opts, schedule.WithEvents(events))
	}
	return schedule.NewReconciler(schedule.NewIndex(sess.Entries), opts...)
}

// restore replays stored state, falling back to an empty selection when the
// stored slot is no longer offered.
func (s *Service) restore(sess *Session, rec *schedule.Reconciler) {
	if err := rec.Restore(sess.State); err != nil {
		s.logger.Warn("resetting session selection", "session_id", sess.ID, "error", err)
		_ = rec.Restore(schedule.ReconcilerState{})
	}
}

// calendarWindow spans the configured months from today, widened to the
// month of the picked date.
func (s *Service) calendarWindow(rec *schedule.Reconciler) schedule.Window {
	w := schedule.MonthWindow(civil.DateOf(s.now().In(s.loc)), s.months)
	if d, ok := rec.Date(); ok {
		w = w.Include(d)
	}
	return w
}

func (s *Service) view(sess *Session, rec *schedule.Reconciler, events []schedule.Event) *View {
	marks, rejected := schedule.MarkDates(sess.Entries, s.calendarWindow(rec))
	for _, r := range rejected {
		s.logger.Warn("skipping malformed schedule entry", "session_id", sess.ID, "schedule_id", r.Entry.ScheduleID, "error", r.Err)
	}

	v := &View{
		SessionID:  sess.ID,
		ProviderID: sess.ProviderID,
		Generation: sess.Generation,
		Phase:      rec.Phase(),
		Marks:      marks,
		Slots:      schedule.Labels(rec.Slots()),
		Events:     events,
	}
	if d, ok := rec.Date(); ok {
		v.Date = d.String()
		v.Marks = marks.WithSelected(d)
		_, hasSchedule := rec.Schedule()
		v.NoSchedule = !hasSchedule
	}
	if sel, ok := rec.Selection(); ok {
		v.Selection = &sel
	}
	return v
}

func drainEvents(ch chan schedule.Event) []schedule.Event {
	var out []schedule.Event
	for {
		select {
		case ev := <-ch:
			out = append(out, ev)
		default:
			return out
		}
	}
}
