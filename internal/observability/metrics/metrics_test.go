package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestUpstreamMetricsObserve(t *testing.T) {
	m := NewUpstreamMetrics(prometheus.NewRegistry())
	m.ObserveRequest("pysked", "work_schedules", "ok", 0.2)
}

func TestBookingMetricsCustomRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewBookingMetrics(reg)
	m.ObserveSession("started")
	m.ObserveSlots(32)
	m.ObserveSelection("slot_selected")
	m.ObserveSubmit("ok")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	var found bool
	for _, mf := range mfs {
		if mf.GetName() != "careapp_booking_slots_generated" {
			continue
		}
		found = true
		if got := mf.Metric[0].GetHistogram().GetSampleSum(); got != 32 {
			t.Fatalf("slots sample sum = %v, want 32", got)
		}
	}
	if !found {
		t.Fatal("careapp_booking_slots_generated not registered")
	}
}

func TestMetricsNilSafe(t *testing.T) {
	var u *UpstreamMetrics
	u.ObserveRequest("pysked", "op", "ok", 0.1)

	var b *BookingMetrics
	b.ObserveSession("started")
	b.ObserveSlots(1)
	b.ObserveSelection("slot_selected")
	b.ObserveSubmit("error")
}

func TestSnapshotUpstream(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewUpstreamMetrics(reg)
	m.ObserveRequest("pysked", "work_schedules", "ok", 0.1)
	m.ObserveRequest("pysked", "work_schedules", "ok", 0.1)
	m.ObserveRequest("pysked", "work_schedules", "5xx", 0.3)
	m.ObserveRequest("diagnostics", "respond", "error", 1.2)

	got := SnapshotUpstream(reg)
	if len(got) != 2 {
		t.Fatalf("len(snapshot) = %d, want 2", len(got))
	}
	if got[0].Service != "diagnostics" || got[0].Failed != 1 {
		t.Fatalf("snapshot[0] = %+v", got[0])
	}
	if got[1].Operation != "work_schedules" || got[1].OK != 2 || got[1].Failed != 1 {
		t.Fatalf("snapshot[1] = %+v", got[1])
	}
}

type stubGatherer struct {
	families []*dto.MetricFamily
}

func (s stubGatherer) Gather() ([]*dto.MetricFamily, error) { return s.families, nil }

func TestSnapshotUpstreamMissingFamily(t *testing.T) {
	name := "other_total"
	got := SnapshotUpstream(stubGatherer{families: []*dto.MetricFamily{{Name: &name}}})
	if got != nil {
		t.Fatalf("snapshot = %+v, want nil", got)
	}
}
