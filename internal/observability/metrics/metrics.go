package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "careapp"

// UpstreamMetrics tracks calls to the scheduling and diagnostics REST APIs.
type UpstreamMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

func NewUpstreamMetrics(reg prometheus.Registerer) *UpstreamMetrics {
	m := &UpstreamMetrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "requests_total",
			Help:      "Total upstream API requests by service, operation and outcome",
		}, []string{"service", "operation", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "request_duration_seconds",
			Help:      "Latency of upstream API requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"service", "operation"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.requestsTotal, m.requestDuration)
	return m
}

// ObserveRequest records one upstream call. status is "ok", "error" or the
// HTTP status class ("4xx", "5xx").
func (m *UpstreamMetrics) ObserveRequest(service, operation, status string, seconds float64) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(service, operation, status).Inc()
	m.requestDuration.WithLabelValues(service, operation).Observe(seconds)
}

// BookingMetrics exposes counters for the booking flow.
type BookingMetrics struct {
	sessionsTotal   *prometheus.CounterVec
	slotsGenerated  prometheus.Histogram
	selectionsTotal *prometheus.CounterVec
	submitsTotal    *prometheus.CounterVec
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		sessionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "booking",
			Name:      "sessions_total",
			Help:      "Booking sessions by lifecycle event",
		}, []string{"event"}),
		slotsGenerated: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "booking",
			Name:      "slots_generated",
			Help:      "Number of slots offered per date selection",
			Buckets:   []float64{0, 4, 8, 16, 32, 48, 64, 96},
		}),
		selectionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "booking",
			Name:      "slot_selections_total",
			Help:      "Slot toggles by resulting event",
		}, []string{"event"}),
		submitsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "booking",
			Name:      "submits_total",
			Help:      "Appointment submissions by outcome",
		}, []string{"status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.sessionsTotal, m.slotsGenerated, m.selectionsTotal, m.submitsTotal)
	return m
}

func (m *BookingMetrics) ObserveSession(event string) {
	if m == nil {
		return
	}
	m.sessionsTotal.WithLabelValues(event).Inc()
}

func (m *BookingMetrics) ObserveSlots(count int) {
	if m == nil {
		return
	}
	m.slotsGenerated.Observe(float64(count))
}

func (m *BookingMetrics) ObserveSelection(event string) {
	if m == nil {
		return
	}
	m.selectionsTotal.WithLabelValues(event).Inc()
}

func (m *BookingMetrics) ObserveSubmit(status string) {
	if m == nil {
		return
	}
	m.submitsTotal.WithLabelValues(status).Inc()
}
