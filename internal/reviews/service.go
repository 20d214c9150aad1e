// Package reviews lists and collects patient reviews and star ratings.
package reviews

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wolfman30/careapp/internal/pysked"
	"github.com/wolfman30/careapp/pkg/logging"
)

var (
	// ErrEmptyReview rejects blank review text.
	ErrEmptyReview = errors.New("reviews: review text cannot be empty")
	// ErrRatingOutOfRange rejects ratings outside 1..5.
	ErrRatingOutOfRange = errors.New("reviews: rating must be between 1 and 5")
	// ErrProviderRequired rejects writes without a provider id.
	ErrProviderRequired = errors.New("reviews: providerId is required")
)

const (
	MinRating = 1
	MaxRating = 5
)

// Client is the slice of the scheduling API this package needs.
type Client interface {
	ListReviews(ctx context.Context) ([]pysked.Review, error)
	CreateReview(ctx context.Context, review pysked.Review) error
	CreateRating(ctx context.Context, rating pysked.Rating) error
}

// Service filters and submits reviews.
type Service struct {
	client Client
	logger *logging.Logger
	now    func() time.Time
}

// NewService constructs a reviews service.
func NewService(client Client, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{client: client, logger: logger.Component("reviews"), now: time.Now}
}

// ForProvider returns the provider's reviews in upstream order.
func (s *Service) ForProvider(ctx context.Context, providerID string) ([]pysked.Review, error) {
	all, err := s.client.ListReviews(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]pysked.Review, 0, len(all))
	for _, r := range all {
		if r.ProviderID == providerID {
			out = append(out, r)
		}
	}
	return out, nil
}

// Review posts trimmed text for providerID.
func (s *Service) Review(ctx context.Context, providerID, patientID, text string) (pysked.Review, error) {
	if strings.TrimSpace(providerID) == "" {
		return pysked.Review{}, ErrProviderRequired
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return pysked.Review{}, ErrEmptyReview
	}
	review := pysked.Review{
		ReviewID:   uuid.NewString(),
		ProviderID: providerID,
		PatientID:  patientID,
		ReviewText: text,
		CreatedAt:  s.now().UTC().Format(time.RFC3339),
	}
	if err := s.client.CreateReview(ctx, review); err != nil {
		return pysked.Review{}, err
	}
	s.logger.Info("review submitted", "provider_id", providerID, "review_id", review.ReviewID)
	return review, nil
}

// Rate posts a 1..5 star rating for providerID.
func (s *Service) Rate(ctx context.Context, providerID, patientID string, stars int) (pysked.Rating, error) {
	if strings.TrimSpace(providerID) == "" {
		return pysked.Rating{}, ErrProviderRequired
	}
	if stars < MinRating || stars > MaxRating {
		return pysked.Rating{}, fmt.Errorf("%w: got %d", ErrRatingOutOfRange, stars)
	}
	rating := pysked.Rating{
		RatingID:   uuid.NewString(),
		ProviderID: providerID,
		PatientID:  patientID,
		Rating:     stars,
		CreatedAt:  s.now().UTC().Format(time.RFC3339),
	}
	if err := s.client.CreateRating(ctx, rating); err != nil {
		return pysked.Rating{}, err
	}
	s.logger.Info("rating submitted", "provider_id", providerID, "rating", stars)
	return rating, nil
}
