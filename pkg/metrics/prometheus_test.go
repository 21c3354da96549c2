package metrics

import (
	"testing"

	"ZoneWatch/internal/domain/models"

	"github.com/prometheus/client_golang/prometheus"
)

func TestRecorderRegistersAndRecords(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewWithRegistry(reg)
	r.RecordZones("AAPL", "1d", models.OutcomeSummary{Total: 3, Fresh: 1, Broken: 1, TargetMet: 1})
	r.RecordOrder("AAPL", models.Buy)
	r.RecordError("fetch")
	r.RecordLastPrice("AAPL", 190.5)
	r.RecordLatency("detect", 0.01)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	seen := map[string]bool{}
	for _, mf := range mfs {
		seen[mf.GetName()] = true
	}
	for _, name := range []string{
		"zonewatch_zones",
		"zonewatch_orders_emitted_total",
		"zonewatch_errors_total",
		"zonewatch_last_price",
		"zonewatch_operation_duration_seconds",
	} {
		if !seen[name] {
			t.Fatalf("metric %s not gathered", name)
		}
	}
}
