package pysked

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/careapp/internal/observability/metrics"
	"github.com/wolfman30/careapp/pkg/logging"
)

const (
	defaultBaseURL = "https://pyskedev.azurewebsites.net"
	defaultTimeout = 15 * time.Second
	serviceName    = "pysked"
)

var pyskedTracer = otel.Tracer("careapp.internal.pysked")

// APIError is returned for any non-2xx upstream response.
type APIError struct {
	Status  int
	Path    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("pysked API returned %d: %s", e.Status, e.Message)
}

// IsNotFound reports whether err is an upstream 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// Client wraps the scheduling REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *logging.Logger
	metrics    *metrics.UpstreamMetrics
}

// ClientOption customises a Client.
type ClientOption func(*Client)

// WithMetrics records request outcomes on m.
func WithMetrics(m *metrics.UpstreamMetrics) ClientOption {
	return func(c *Client) { c.metrics = m }
}

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient constructs a scheduling API client.
func NewClient(baseURL string, timeout time.Duration, logger *logging.Logger, opts ...ClientOption) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = logging.Default()
	}
	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger.Component("pysked"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WorkSchedules returns a provider's recurring schedule entries. A body that
// is not a JSON array is treated as "no schedules".
func (c *Client) WorkSchedules(ctx context.Context, providerID string) ([]WorkScheduleEntry, error) {
	path := "/api/ProvidersWorkSchedule/GetWorkScheduleByProviderId/" + url.PathEscape(providerID)

	var raw json.RawMessage
	if err := c.doJSON(ctx, "work_schedules", http.MethodGet, path, nil, &raw); err != nil {
		return nil, fmt.Errorf("get work schedules: %w", err)
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		c.logger.Debug("work schedule response is not a list", "provider_id", providerID)
		return []WorkScheduleEntry{}, nil
	}
	var entries []WorkScheduleEntry
	if err := json.Unmarshal(trimmed, &entries); err != nil {
		return nil, fmt.Errorf("decode work schedules: %w", err)
	}
	if entries == nil {
		entries = []WorkScheduleEntry{}
	}
	return entries, nil
}

// ListProviders returns every healthcare provider.
func (c *Client) ListProviders(ctx context.Context) ([]Provider, error) {
	var providers []Provider
	if err := c.doJSON(ctx, "list_providers", http.MethodGet, "/api/HealthcareProviders/GetAllHealthcareProviders", nil, &providers); err != nil {
		return nil, fmt.Errorf("list providers: %w", err)
	}
	return providers, nil
}

// CreateProvider registers a new provider.
func (c *Client) CreateProvider(ctx context.Context, reg ProviderRegistration) error {
	if err := c.doJSON(ctx, "create_provider", http.MethodPost, "/api/HealthcareProviders/CreateHealthcareProvider", reg, nil); err != nil {
		return fmt.Errorf("create provider: %w", err)
	}
	return nil
}

// ListAppointments returns every appointment.
func (c *Client) ListAppointments(ctx context.Context) ([]Appointment, error) {
	var appts []Appointment
	if err := c.doJSON(ctx, "list_appointments", http.MethodGet, "/api/ProvidersAppointment/GetAllProvidersAppointments", nil, &appts); err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return appts, nil
}

// SearchAppointments runs a paged appointment search.
func (c *Client) SearchAppointments(ctx context.Context, req SearchRequest) (*AppointmentPage, error) {
	if req.SortParams == nil {
		req.SortParams = []SortParam{}
	}
	var page AppointmentPage
	if err := c.doJSON(ctx, "search_appointments", http.MethodPost, "/api/ProvidersAppointment/SearchAppoinment", req, &page); err != nil {
		return nil, fmt.Errorf("search appointments: %w", err)
	}
	return &page, nil
}

// CreateAppointment books an appointment.
func (c *Client) CreateAppointment(ctx context.Context, appt Appointment) error {
	if err := c.doJSON(ctx, "create_appointment", http.MethodPost, "/api/ProvidersAppointment/CreateProvidersAppointment", appt, nil); err != nil {
		return fmt.Errorf("create appointment: %w", err)
	}
	return nil
}

// UpdateAppointment replaces an appointment.
func (c *Client) UpdateAppointment(ctx context.Context, appt Appointment) error {
	if err := c.doJSON(ctx, "update_appointment", http.MethodPost, "/api/ProvidersAppointment/UpdateAppointment", appt, nil); err != nil {
		return fmt.Errorf("update appointment: %w", err)
	}
	return nil
}

// DeleteAppointment removes an appointment by id.
func (c *Client) DeleteAppointment(ctx context.Context, appointmentID string) error {
	q := url.Values{}
	q.Set("appointmentId", appointmentID)
	path := "/api/ProvidersAppointment/DeleteAppointment?" + q.Encode()
	if err := c.doJSON(ctx, "delete_appointment", http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}
	return nil
}

// ListReviews returns every review; the API has no provider filter.
func (c *Client) ListReviews(ctx context.Context) ([]Review, error) {
	var reviews []Review
	if err := c.doJSON(ctx, "list_reviews", http.MethodGet, "/api/Reviews/GetAllReviews", nil, &reviews); err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}

// CreateReview posts a review.
func (c *Client) CreateReview(ctx context.Context, review Review) error {
	if err := c.doJSON(ctx, "create_review", http.MethodPost, "/api/Reviews/CreateReview", review, nil); err != nil {
		return fmt.Errorf("create review: %w", err)
	}
	return nil
}

// CreateRating posts a star rating.
func (c *Client) CreateRating(ctx context.Context, rating Rating) error {
	if err := c.doJSON(ctx, "create_rating", http.MethodPost, "/api/Ratings/CreateRating", rating, nil); err != nil {
		return fmt.Errorf("create rating: %w", err)
	}
	return nil
}

func (c *Client) doJSON(ctx context.Context, op, method, path string, body interface{}, out interface{}) (err error) {
	ctx, span := pyskedTracer.Start(ctx, "pysked."+op, trace.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("pysked.path", path),
	))
	started := time.Now()
	status := "ok"
	defer func() {
		if err != nil {
			span.RecordError(err)
			if status == "ok" {
				status = "error"
			}
		}
		c.metrics.ObserveRequest(serviceName, op, status, time.Since(started).Seconds())
		span.End()
	}()

	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		status = fmt.Sprintf("%dxx", resp.StatusCode/100)
		msg := errorMessage(respBody)
		c.logger.Warn("pysked API non-2xx response", "status", resp.StatusCode, "path", path, "body", msg)
		return &APIError{Status: resp.StatusCode, Path: path, Message: msg}
	}

	if len(respBody) == 0 || out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// errorMessage prefers the API's {"message": "..."} field over the raw body.
func errorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Title   string `json:"title"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Title != "" {
			return payload.Title
		}
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 300 {
		msg = msg[:300]
	}
	return msg
}
