package reviews

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/careapp/internal/identity"
	"github.com/wolfman30/careapp/internal/pysked"
	"github.com/wolfman30/careapp/pkg/logging"
)

type fakeClient struct {
	reviews []pysked.Review
	created []pysked.Review
	rated   []pysked.Rating
	err     error
}

func (f *fakeClient) ListReviews(context.Context) ([]pysked.Review, error) { return f.reviews, f.err }

func (f *fakeClient) CreateReview(_ context.Context, r pysked.Review) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, r)
	return nil
}

func (f *fakeClient) CreateRating(_ context.Context, r pysked.Rating) error {
	if f.err != nil {
		return f.err
	}
	f.rated = append(f.rated, r)
	return nil
}

func TestForProviderFilters(t *testing.T) {
	client := &fakeClient{reviews: []pysked.Review{
		{ReviewID: "r1", ProviderID: "p1"},
		{ReviewID: "r2", ProviderID: "p2"},
		{ReviewID: "r3", ProviderID: "p1"},
	}}
	got, err := NewService(client, logging.Default()).ForProvider(context.Background(), "p1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "r1", got[0].ReviewID)
	assert.Equal(t, "r3", got[1].ReviewID)

	got, err = NewService(client, logging.Default()).ForProvider(context.Background(), "p9")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestReviewTrimsAndRejectsBlank(t *testing.T) {
	client := &fakeClient{}
	svc := NewService(client, logging.Default())
	svc.now = func() time.Time { return time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC) }

	_, err := svc.Review(context.Background(), "p1", "pat-1", "   ")
	assert.ErrorIs(t, err, ErrEmptyReview)

	review, err := svc.Review(context.Background(), "p1", "pat-1", "  Very kind.  ")
	require.NoError(t, err)
	assert.Equal(t, "Very kind.", review.ReviewText)
	assert.Equal(t, "2024-06-03T09:00:00Z", review.CreatedAt)
	assert.NotEmpty(t, review.ReviewID)
	require.Len(t, client.created, 1)
}

func TestRateBounds(t *testing.T) {
	client := &fakeClient{}
	svc := NewService(client, logging.Default())

	for _, stars := range []int{0, 6, -1} {
		_, err := svc.Rate(context.Background(), "p1", "", stars)
		assert.ErrorIs(t, err, ErrRatingOutOfRange)
	}
	for stars := MinRating; stars <= MaxRating; stars++ {
		_, err := svc.Rate(context.Background(), "p1", "", stars)
		require.NoError(t, err)
	}
	assert.Len(t, client.rated, 5)

	_, err := svc.Rate(context.Background(), "", "", 3)
	assert.ErrorIs(t, err, ErrProviderRequired)
}

func newRouter(client *fakeClient) http.Handler {
	h := NewHandler(NewService(client, logging.Default()), logging.Default())
	r := chi.NewRouter()
	r.Route("/providers/{providerID}", h.Routes)
	return r
}

func TestHandlerCreateUsesSignedInPatient(t *testing.T) {
	client := &fakeClient{}
	r := newRouter(client)

	body, _ := json.Marshal(reviewRequest{PatientID: "body", ReviewText: "Great"})
	req := httptest.NewRequest(http.MethodPost, "/providers/p1/reviews", bytes.NewReader(body))
	req = req.WithContext(identity.WithPatientID(req.Context(), "token"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	if len(client.created) != 1 || client.created[0].PatientID != "token" || client.created[0].ProviderID != "p1" {
		t.Fatalf("created = %+v", client.created)
	}
}

func TestHandlerRateRejectsOutOfRange(t *testing.T) {
	r := newRouter(&fakeClient{})

	body, _ := json.Marshal(ratingRequest{Rating: 9})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/providers/p1/ratings", bytes.NewReader(body)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestHandlerUpstreamErrorMessage(t *testing.T) {
	r := newRouter(&fakeClient{err: &pysked.APIError{Status: 500, Message: "db down"}})

	body, _ := json.Marshal(reviewRequest{ReviewText: "ok"})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/providers/p1/reviews", bytes.NewReader(body)))
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d", rec.Code)
	}
	var env struct {
		Notice struct {
			Text2 string `json:"text2"`
		} `json:"notice"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &env)
	if env.Notice.Text2 != "db down" {
		t.Fatalf("text2 = %q", env.Notice.Text2)
	}
}
