package appointments

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/civil"

	"github.com/wolfman30/careapp/internal/pysked"
	"github.com/wolfman30/careapp/internal/schedule"
	"github.com/wolfman30/careapp/internal/validation"
	"github.com/wolfman30/careapp/pkg/logging"
)

var (
	// ErrNotFound is returned when no appointment is booked on a date.
	ErrNotFound = errors.New("appointments: no appointment on date")
	// ErrNotOwned is returned when a patient edits an appointment that is not theirs.
	ErrNotOwned = errors.New("appointments: appointment not found for patient")
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// Client is the slice of the scheduling API this package needs.
type Client interface {
	ListAppointments(ctx context.Context) ([]pysked.Appointment, error)
	SearchAppointments(ctx context.Context, req pysked.SearchRequest) (*pysked.AppointmentPage, error)
	UpdateAppointment(ctx context.Context, appt pysked.Appointment) error
	DeleteAppointment(ctx context.Context, appointmentID string) error
}

// UpdateRequest is the editable part of an appointment.
type UpdateRequest struct {
	ProviderID      string `json:"providerId" validate:"notblank"`
	PatientID       string `json:"patientId" validate:"notblank"`
	AppointmentDate string `json:"appointmentDate" validate:"required"`
	AppointmentTime string `json:"appointmentTime" validate:"required"`
	Status          string `json:"status" validate:"required,oneof=Scheduled Completed Cancelled"`
	Type            string `json:"type" validate:"required,oneof='Video call' 'Hospital Visit'"`
	Insurance       string `json:"insurance" validate:"omitempty,oneof=Yes No"`
	ReasonForVisit  string `json:"reasonForVisit" validate:"notblank"`
}

// Service reads and edits appointments through the scheduling API.
type Service struct {
	client Client
	logger *logging.Logger
}

// NewService constructs an appointments service.
func NewService(client Client, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{client: client, logger: logger.Component("appointments")}
}

// Calendar returns the multi-dot calendar for patientID (all patients when empty).
func (s *Service) Calendar(ctx context.Context, patientID string) (Calendar, error) {
	appts, err := s.client.ListAppointments(ctx)
	if err != nil {
		return nil, err
	}
	cal, skipped := BuildCalendar(ForPatient(appts, patientID))
	if skipped > 0 {
		s.logger.Warn("skipped appointments with unparseable dates", "count", skipped)
	}
	return cal, nil
}

// OnDate returns the first appointment on d.
func (s *Service) OnDate(ctx context.Context, patientID string, d civil.Date) (pysked.Appointment, error) {
	appts, err := s.client.ListAppointments(ctx)
	if err != nil {
		return pysked.Appointment{}, err
	}
	appt, ok := FirstOnDate(ForPatient(appts, patientID), d)
	if !ok {
		return pysked.Appointment{}, ErrNotFound
	}
	return appt, nil
}

// Search runs a paged search with sane paging defaults.
func (s *Service) Search(ctx context.Context, req pysked.SearchRequest) (*pysked.AppointmentPage, error) {
	if req.PageNumber < 1 {
		req.PageNumber = 1
	}
	if req.PageSize < 1 {
		req.PageSize = defaultPageSize
	}
	if req.PageSize > maxPageSize {
		req.PageSize = maxPageSize
	}
	if len(req.SortParams) == 0 {
		req.SortParams = []pysked.SortParam{{Priority: 1, OrderBy: 1, SortBy: "appointmentDate"}}
	}
	return s.client.SearchAppointments(ctx, req)
}

// Update validates and normalises req, then replaces appointmentID upstream.
func (s *Service) Update(ctx context.Context, appointmentID string, req UpdateRequest) (pysked.Appointment, error) {
	if err := validation.Struct(req); err != nil {
		return pysked.Appointment{}, err
	}
	d, err := schedule.ParseDate(req.AppointmentDate)
	if err != nil {
		return pysked.Appointment{}, err
	}
	label, err := schedule.Normalize12(req.AppointmentTime)
	if err != nil {
		return pysked.Appointment{}, fmt.Errorf("appointmentTime: %w", err)
	}
	appt := pysked.Appointment{
		AppointmentID:   appointmentID,
		ProviderID:      strings.TrimSpace(req.ProviderID),
		PatientID:       strings.TrimSpace(req.PatientID),
		AppointmentDate: d.String(),
		AppointmentTime: label,
		WeekDay:         schedule.WeekdayName(d),
		Status:          req.Status,
		Type:            req.Type,
		Insurance:       req.Insurance,
		ReasonForVisit:  strings.TrimSpace(req.ReasonForVisit),
	}
	if err := s.client.UpdateAppointment(ctx, appt); err != nil {
		return pysked.Appointment{}, err
	}
	s.logger.Info("appointment updated", "appointment_id", appointmentID)
	return appt, nil
}

// CheckOwner returns ErrNotOwned unless appointmentID is one of patientID's
// appointments.
func (s *Service) CheckOwner(ctx context.Context, patientID, appointmentID string) error {
	appts, err := s.client.ListAppointments(ctx)
	if err != nil {
		return err
	}
	for _, a := range ForPatient(appts, patientID) {
		if a.AppointmentID == appointmentID {
			return nil
		}
	}
	return ErrNotOwned
}

// Delete removes an appointment.
func (s *Service) Delete(ctx context.Context, appointmentID string) error {
	if err := s.client.DeleteAppointment(ctx, appointmentID); err != nil {
		return err
	}
	s.logger.Info("appointment deleted", "appointment_id", appointmentID)
	return nil
}
