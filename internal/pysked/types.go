// Package pysked is the REST client for the provider scheduling API that owns
// providers, work schedules, appointments, reviews and ratings.
package pysked

import "github.com/wolfman30/careapp/internal/schedule"

// WorkScheduleEntry is re-exported so callers need not import schedule just
// to decode a fetch.
type WorkScheduleEntry = schedule.WorkScheduleEntry

// Provider is a healthcare provider as listed by the directory endpoint.
type Provider struct {
	ProviderID      string  `json:"providerId"`
	Name            string  `json:"name"`
	Qualification   string  `json:"qualification"`
	ExperienceYears int     `json:"experienceYears"`
	AverageRating   float64 `json:"averageRating"`
	RatingCount     int     `json:"ratingCount"`
	ContactPhone    string  `json:"contactPhone"`
	Gender          string  `json:"gender"`
	IsActive        bool    `json:"isActive"`
	Bio             string  `json:"bio"`
	WorkingHours    string  `json:"workingHours"`
}

// ProviderRegistration is the body accepted by CreateHealthcareProvider.
type ProviderRegistration struct {
	ProviderID        string  `json:"providerId"`
	UserID            string  `json:"userId"`
	Name              string  `json:"name"`
	Gender            string  `json:"gender"`
	DateOfBirth       string  `json:"dateOfBirth"`
	Qualification     string  `json:"qualification"`
	ExperienceYears   int     `json:"experienceYears"`
	Bio               string  `json:"bio"`
	ProfileImageURL   string  `json:"profileImageUrl"`
	LanguagesSpoken   string  `json:"languagesSpoken"`
	ServicesOffered   string  `json:"servicesOffered"`
	WorkingHours      string  `json:"workingHours"`
	InsuranceAccepted string  `json:"insuranceAccepted"`
	Affiliations      string  `json:"affiliations"`
	VerificationID    string  `json:"verificationId"`
	AverageRating     float64 `json:"averageRating"`
	RatingCount       int     `json:"ratingCount"`
	ContactEmail      string  `json:"contactEmail"`
	ContactPhone      string  `json:"contactPhone"`
	Address           string  `json:"address"`
	City              string  `json:"city"`
	State             string  `json:"state"`
	PostalCode        string  `json:"postalCode"`
	IsActive          bool    `json:"isActive"`
}

// Appointment is a booked visit. AppointmentTime carries the slot label.
type Appointment struct {
	AppointmentID   string  `json:"appointmentId"`
	ProviderID      string  `json:"providerId"`
	PatientID       string  `json:"patientId"`
	AppointmentDate string  `json:"appointmentDate"`
	AppointmentTime string  `json:"appointmentTime"`
	WeekDay         string  `json:"weekDay,omitempty"`
	Status          string  `json:"status"`
	Type            string  `json:"type"`
	Insurance       string  `json:"insurance,omitempty"`
	ReasonForVisit  string  `json:"reasonForVisit"`
	CreatedAt       *string `json:"createdAt,omitempty"`
	UpdatedAt       *string `json:"updatedAt,omitempty"`
}

// SortParam orders a paged search.
type SortParam struct {
	Priority int    `json:"priority"`
	OrderBy  int    `json:"orderBy"`
	SortBy   string `json:"sortBy"`
}

// SearchRequest is the paged appointment search body.
type SearchRequest struct {
	PageNumber int         `json:"pageNumber"`
	PageSize   int         `json:"pageSize"`
	Filter     any         `json:"filter"`
	SortParams []SortParam `json:"sortParams"`
}

// AppointmentPage is one page of search results.
type AppointmentPage struct {
	Data         []Appointment `json:"data"`
	TotalRecords int           `json:"totalRecords"`
	TotalPages   int           `json:"totalPages"`
	PageNumber   int           `json:"pageNumber"`
	PageSize     int           `json:"pageSize"`
}

// Review is free-text feedback left by a patient.
type Review struct {
	ReviewID   string `json:"reviewId"`
	ProviderID string `json:"providerId"`
	PatientID  string `json:"patientId"`
	ReviewText string `json:"reviewText"`
	CreatedAt  string `json:"createdAt"`
}

// Rating is a 1-5 star score left by a patient.
type Rating struct {
	RatingID   string `json:"ratingId"`
	ProviderID string `json:"providerId"`
	PatientID  string `json:"patientId"`
	Rating     int    `json:"rating"`
	CreatedAt  string `json:"createdAt"`
}
