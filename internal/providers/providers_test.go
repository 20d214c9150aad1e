package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/careapp/internal/pysked"
	"github.com/wolfman30/careapp/internal/schedule"
	"github.com/wolfman30/careapp/internal/validation"
	"github.com/wolfman30/careapp/pkg/logging"
)

type fakeClient struct {
	providers []pysked.Provider
	schedules map[string][]schedule.WorkScheduleEntry
	created   []pysked.ProviderRegistration
	err       error
}

func (f *fakeClient) ListProviders(context.Context) ([]pysked.Provider, error) {
	return f.providers, f.err
}

func (f *fakeClient) CreateProvider(_ context.Context, reg pysked.ProviderRegistration) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, reg)
	return nil
}

func (f *fakeClient) WorkSchedules(_ context.Context, id string) ([]schedule.WorkScheduleEntry, error) {
	return f.schedules[id], f.err
}

func directory() []pysked.Provider {
	names := []string{"Dr. Asha Rao", "Dr. Ben Carter", "Dr. Carla Ruiz", "Dr. Dev Patel", "Dr. Elena Rossi", "Dr. Farid Khan"}
	out := make([]pysked.Provider, len(names))
	for i, n := range names {
		out[i] = pysked.Provider{ProviderID: n[4:6], Name: n}
	}
	return out
}

func TestFilter(t *testing.T) {
	all := directory()

	assert.Len(t, Filter(all, "", 0), 6)
	assert.Len(t, Filter(all, "", 5), 5)
	assert.Equal(t, "Dr. Asha Rao", Filter(all, "", 5)[0].Name)

	got := Filter(all, "  AR ", 0)
	require.Len(t, got, 3)
	assert.Equal(t, "Dr. Ben Carter", got[0].Name)
	assert.Equal(t, "Dr. Carla Ruiz", got[1].Name)
	assert.Equal(t, "Dr. Farid Khan", got[2].Name)
	assert.Len(t, Filter(all, "ar", 2), 2)

	assert.Empty(t, Filter(all, "zzz", 0))
}

func validRegistration() RegistrationForm {
	return RegistrationForm{
		Name:            "Dr. New",
		Gender:          "Female",
		DateOfBirth:     "1985-02-14",
		ExperienceYears: 12,
		AverageRating:   4.5,
		ContactEmail:    "new@clinic.example",
	}
}

func TestRegisterAssignsID(t *testing.T) {
	client := &fakeClient{}
	svc := NewService(client, logging.Default())

	reg, err := svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)
	assert.NotEmpty(t, reg.ProviderID)
	require.Len(t, client.created, 1)
	assert.Equal(t, reg.ProviderID, client.created[0].ProviderID)
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RegistrationForm)
	}{
		{"missing name", func(f *RegistrationForm) { f.Name = "  " }},
		{"bad gender", func(f *RegistrationForm) { f.Gender = "M" }},
		{"future birth date", func(f *RegistrationForm) { f.DateOfBirth = "2999-01-01" }},
		{"rating above five", func(f *RegistrationForm) { f.AverageRating = 7 }},
		{"negative experience", func(f *RegistrationForm) { f.ExperienceYears = -1 }},
		{"bad email", func(f *RegistrationForm) { f.ContactEmail = "nope" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeClient{}
			form := validRegistration()
			tt.mutate(&form)

			_, err := NewService(client, logging.Default()).Register(context.Background(), form)
			require.Error(t, err)
			assert.True(t, validation.IsValidation(err))
			assert.Empty(t, client.created)
		})
	}
}

func TestAvailability(t *testing.T) {
	client := &fakeClient{schedules: map[string][]schedule.WorkScheduleEntry{
		"p1": {
			{ScheduleID: "s1", FromDate: "2024-06-01", ToDate: "2024-06-03", WeekDay: "Monday"},
			{ScheduleID: "bad", FromDate: "2024-06-09", ToDate: "2024-06-01", WeekDay: "Friday"},
		},
	}}
	svc := NewService(client, logging.Default())

	avail, err := svc.Availability(context.Background(), "p1", schedule.Window{})
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-06-01", "2024-06-02", "2024-06-03"}, avail.Marks.Dates())
	assert.Equal(t, []string{"Monday", "Friday"}, avail.WeekDays)
	assert.Equal(t, 1, avail.Skipped)

	_, err = svc.Availability(context.Background(), " ", schedule.Window{})
	assert.ErrorIs(t, err, ErrProviderRequired)
}

func newRouter(client *fakeClient) http.Handler {
	h := NewHandler(NewService(client, logging.Default()), 5, logging.Default())
	r := chi.NewRouter()
	r.Route("/providers", func(r chi.Router) { h.Routes(r) })
	return r
}

func TestHandlerHomeAndSearch(t *testing.T) {
	r := newRouter(&fakeClient{providers: directory()})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/providers/home", nil))
	var list []pysked.Provider
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list) != 5 {
		t.Fatalf("home len = %d, want 5", len(list))
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/providers?q=ben", nil))
	list = nil
	_ = json.Unmarshal(rec.Body.Bytes(), &list)
	if len(list) != 1 || list[0].Name != "Dr. Ben Carter" {
		t.Fatalf("search = %+v", list)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/providers?limit=abc", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad limit status = %d", rec.Code)
	}
}

func TestHandlerRegister(t *testing.T) {
	r := newRouter(&fakeClient{})

	body, _ := json.Marshal(validRegistration())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/providers", bytes.NewReader(body)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}

	bad := validRegistration()
	bad.Gender = ""
	body, _ = json.Marshal(bad)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/providers", bytes.NewReader(body)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid status = %d", rec.Code)
	}
}

func TestHandlerCalendarWindow(t *testing.T) {
	r := newRouter(&fakeClient{schedules: map[string][]schedule.WorkScheduleEntry{
		"p1": {{FromDate: "2024-01-01", ToDate: "2030-12-31", WeekDay: "Monday"}},
	}})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/providers/p1/calendar?from=2024-06-01&to=2024-06-02", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var avail Availability
	if err := json.Unmarshal(rec.Body.Bytes(), &avail); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(avail.Marks) != 2 {
		t.Fatalf("marks = %+v", avail.Marks)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/providers/p1/calendar?from=soon", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad window status = %d", rec.Code)
	}
}

func TestHandlerUpstreamFailure(t *testing.T) {
	r := newRouter(&fakeClient{err: errors.New("timeout")})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/providers", nil))
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d", rec.Code)
	}
}
