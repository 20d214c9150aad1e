// Package providers is the provider directory: listing, name autocomplete,
// registration and the per-provider availability calendar.
package providers

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/wolfman30/careapp/internal/pysked"
	"github.com/wolfman30/careapp/internal/schedule"
	"github.com/wolfman30/careapp/internal/validation"
	"github.com/wolfman30/careapp/pkg/logging"
)

// ErrProviderRequired rejects calendar lookups without a provider id.
var ErrProviderRequired = errors.New("providers: providerId is required")

// Client is the slice of the scheduling API this package needs.
type Client interface {
	ListProviders(ctx context.Context) ([]pysked.Provider, error)
	CreateProvider(ctx context.Context, reg pysked.ProviderRegistration) error
	WorkSchedules(ctx context.Context, providerID string) ([]schedule.WorkScheduleEntry, error)
}

// RegistrationForm is the provider sign-up form.
type RegistrationForm struct {
	ProviderID        string  `json:"providerId"`
	UserID            string  `json:"userId"`
	Name              string  `json:"name" validate:"notblank,max=256"`
	Gender            string  `json:"gender" validate:"required,oneof=Male Female Other"`
	DateOfBirth       string  `json:"dateOfBirth" validate:"omitempty,pastdate"`
	Qualification     string  `json:"qualification" validate:"max=256"`
	ExperienceYears   int     `json:"experienceYears" validate:"gte=0,lte=80"`
	Bio               string  `json:"bio"`
	ProfileImageURL   string  `json:"profileImageUrl" validate:"omitempty,url"`
	LanguagesSpoken   string  `json:"languagesSpoken"`
	ServicesOffered   string  `json:"servicesOffered"`
	WorkingHours      string  `json:"workingHours"`
	InsuranceAccepted string  `json:"insuranceAccepted"`
	Affiliations      string  `json:"affiliations"`
	VerificationID    string  `json:"verificationId"`
	AverageRating     float64 `json:"averageRating" validate:"gte=0,lte=5"`
	RatingCount       int     `json:"ratingCount" validate:"gte=0"`
	ContactEmail      string  `json:"contactEmail" validate:"omitempty,email"`
	ContactPhone      string  `json:"contactPhone"`
	Address           string  `json:"address"`
	City              string  `json:"city"`
	State             string  `json:"state"`
	PostalCode        string  `json:"postalCode"`
	IsActive          bool    `json:"isActive"`
}

// Availability is a provider's marked calendar.
type Availability struct {
	ProviderID string         `json:"providerId"`
	Marks      schedule.Marks `json:"marks"`
	WeekDays   []string       `json:"weekDays"`
	Skipped    int            `json:"skipped"`
}

// Service answers directory queries.
type Service struct {
	client Client
	logger *logging.Logger
}

// NewService constructs a provider directory service.
func NewService(client Client, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{client: client, logger: logger.Component("providers")}
}

// Search returns providers whose name contains query, case-insensitively, in
// upstream order. An empty query matches everyone. limit <= 0 means no limit.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]pysked.Provider, error) {
	all, err := s.client.ListProviders(ctx)
	if err != nil {
		return nil, err
	}
	return Filter(all, query, limit), nil
}

// Filter applies the autocomplete match and limit.
func Filter(all []pysked.Provider, query string, limit int) []pysked.Provider {
	needle := strings.ToLower(strings.TrimSpace(query))
	out := make([]pysked.Provider, 0, len(all))
	for _, p := range all {
		if needle != "" && !strings.Contains(strings.ToLower(p.Name), needle) {
			continue
		}
		out = append(out, p)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// Register validates form and creates the provider upstream.
func (s *Service) Register(ctx context.Context, form RegistrationForm) (pysked.ProviderRegistration, error) {
	if err := validation.Struct(form); err != nil {
		return pysked.ProviderRegistration{}, err
	}
	if strings.TrimSpace(form.ProviderID) == "" {
		form.ProviderID = uuid.NewString()
	}
	reg := pysked.ProviderRegistration{
		ProviderID:        form.ProviderID,
		UserID:            form.UserID,
		Name:              strings.TrimSpace(form.Name),
		Gender:            form.Gender,
		DateOfBirth:       form.DateOfBirth,
		Qualification:     form.Qualification,
		ExperienceYears:   form.ExperienceYears,
		Bio:               form.Bio,
		ProfileImageURL:   form.ProfileImageURL,
		LanguagesSpoken:   form.LanguagesSpoken,
		ServicesOffered:   form.ServicesOffered,
		WorkingHours:      form.WorkingHours,
		InsuranceAccepted: form.InsuranceAccepted,
		Affiliations:      form.Affiliations,
		VerificationID:    form.VerificationID,
		AverageRating:     form.AverageRating,
		RatingCount:       form.RatingCount,
		ContactEmail:      strings.TrimSpace(form.ContactEmail),
		ContactPhone:      form.ContactPhone,
		Address:           form.Address,
		City:              form.City,
		State:             form.State,
		PostalCode:        form.PostalCode,
		IsActive:          form.IsActive,
	}
	if err := s.client.CreateProvider(ctx, reg); err != nil {
		return pysked.ProviderRegistration{}, err
	}
	s.logger.Info("provider registered", "provider_id", reg.ProviderID)
	return reg, nil
}

// Availability marks every date covered by the provider's schedule inside window.
func (s *Service) Availability(ctx context.Context, providerID string, window schedule.Window) (*Availability, error) {
	providerID = strings.TrimSpace(providerID)
	if providerID == "" {
		return nil, ErrProviderRequired
	}
	entries, err := s.client.WorkSchedules(ctx, providerID)
	if err != nil {
		return nil, err
	}
	marks, rejected := schedule.MarkDates(entries, window)
	for _, r := range rejected {
		s.logger.Warn("skipping malformed schedule entry", "provider_id", providerID, "schedule_id", r.Entry.ScheduleID, "error", r.Err)
	}
	weekDays := schedule.NewIndex(entries).WeekDays()
	if weekDays == nil {
		weekDays = []string{}
	}
	return &Availability{
		ProviderID: providerID,
		Marks:      marks,
		WeekDays:   weekDays,
		Skipped:    len(rejected),
	}, nil
}
