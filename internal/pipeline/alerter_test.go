package pipeline

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap/zaptest"

	"github.com/sanspareilsmyn/emotionmap/internal/config"
	"github.com/sanspareilsmyn/emotionmap/internal/record"
)

func ptr(v float64) *float64 { return &v }

func TestAlerterReportsViolations(t *testing.T) {
	agg := record.Aggregation{
		PerSeat: map[string]record.WindowedSeries{
			"1": {Data: []*float64{ptr(35), nil, ptr(90)}, Time: []int64{0, 1000, 2000}},
			"2": {Data: []*float64{ptr(80), ptr(190.5), nil}, Time: []int64{0, 1000, 2000}},
		},
	}
	before := testutil.ToFloat64(thresholdViolations.WithLabelValues("2", ">"))

	alerter := NewAlerter(config.ThresholdsConfig{BPMMin: ptr(40), BPMMax: ptr(180)}, zaptest.NewLogger(t))
	got := alerter.Check([]string{"1", "2"}, agg)

	if len(got) != 2 {
		t.Fatalf("expected 2 violations, got %+v", got)
	}
	if got[0].SeatID != "1" || got[0].Comparison != "<" || got[0].WindowStart != 0 || got[0].Mean != 35 {
		t.Fatalf("unexpected first violation %+v", got[0])
	}
	if got[1].SeatID != "2" || got[1].Comparison != ">" || got[1].WindowStart != 1000 || got[1].Threshold != 180 {
		t.Fatalf("unexpected second violation %+v", got[1])
	}
	if delta := testutil.ToFloat64(thresholdViolations.WithLabelValues("2", ">")) - before; delta != 1 {
		t.Fatalf("expected violation counter to grow by 1, got %v", delta)
	}
}

func TestAlerterWithoutThresholds(t *testing.T) {
	agg := record.Aggregation{
		PerSeat: map[string]record.WindowedSeries{
			"1": {Data: []*float64{ptr(500)}, Time: []int64{0}},
		},
	}
	if got := NewAlerter(config.ThresholdsConfig{}, zaptest.NewLogger(t)).Check([]string{"1"}, agg); got != nil {
		t.Fatalf("expected no violations, got %+v", got)
	}
}
