package metrics

import (
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

const upstreamRequestsFamily = "careapp_upstream_requests_total"

// UpstreamStatus summarises request outcomes for one upstream operation.
type UpstreamStatus struct {
	Service   string `json:"service"`
	Operation string `json:"operation"`
	OK        int64  `json:"ok"`
	Failed    int64  `json:"failed"`
}

// SnapshotUpstream reads the upstream request counter from gatherer and folds
// it into one row per service/operation, sorted by service then operation.
func SnapshotUpstream(gatherer prometheus.Gatherer) []UpstreamStatus {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	mfs, err := gatherer.Gather()
	if err != nil {
		return nil
	}

	var family *dto.MetricFamily
	for _, mf := range mfs {
		if mf != nil && mf.GetName() == upstreamRequestsFamily {
			family = mf
			break
		}
	}
	if family == nil {
		return nil
	}

	type key struct{ service, operation string }
	rows := map[key]*UpstreamStatus{}
	for _, metric := range family.Metric {
		if metric == nil || metric.GetCounter() == nil {
			continue
		}
		k := key{labelValue(metric, "service"), labelValue(metric, "operation")}
		row, ok := rows[k]
		if !ok {
			row = &UpstreamStatus{Service: k.service, Operation: k.operation}
			rows[k] = row
		}
		n := int64(metric.GetCounter().GetValue())
		if labelValue(metric, "status") == "ok" {
			row.OK += n
		} else {
			row.Failed += n
		}
	}

	out := make([]UpstreamStatus, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Service != out[j].Service {
			return out[i].Service < out[j].Service
		}
		return out[i].Operation < out[j].Operation
	})
	return out
}

func labelValue(metric *dto.Metric, name string) string {
	for _, lp := range metric.Label {
		if lp != nil && lp.GetName() == name {
			return lp.GetValue()
		}
	}
	return ""
}
