package pipeline

import (
	"go.uber.org/zap"

	"github.com/sanspareilsmyn/emotionmap/internal/config"
	"github.com/sanspareilsmyn/emotionmap/internal/record"
)

// Violation is a windowed seat mean outside the configured bpm range.
type Violation struct {
	SeatID      string
	WindowStart int64
	Mean        float64
	Threshold   float64
	Comparison  string // "<" or ">"
}

// Alerter checks windowed seat means against configured thresholds.
type Alerter struct {
	thresholds config.ThresholdsConfig
	logger     *zap.Logger
}

// NewAlerter creates a new Alerter instance.
func NewAlerter(thresholds config.ThresholdsConfig, logger *zap.Logger) *Alerter {
	logger.Debug("Alerter initialized",
		zap.Bool("bpm_min_set", thresholds.BPMMin != nil),
		zap.Bool("bpm_max_set", thresholds.BPMMax != nil),
	)
	return &Alerter{thresholds: thresholds, logger: logger}
}

// Check walks seats in order and reports every window whose mean breaks a threshold.
func (a *Alerter) Check(seatIDs []string, agg record.Aggregation) []Violation {
	if a.thresholds.BPMMin == nil && a.thresholds.BPMMax == nil {
		return nil
	}

	var violations []Violation
	for _, id := range seatIDs {
		series := agg.PerSeat[id]
		for i, v := range series.Data {
			if v == nil {
				continue
			}
			violations = a.checkWindow(violations, id, series.Time[i], *v)
		}
	}

	if len(violations) > 0 {
		a.logger.Info("Threshold check completed", zap.Int("violations", len(violations)))
	}
	return violations
}

func (a *Alerter) checkWindow(violations []Violation, seatID string, windowStart int64, mean float64) []Violation {
	if minThreshold := a.thresholds.BPMMin; minThreshold != nil && mean < *minThreshold {
		violations = append(violations, a.record(seatID, windowStart, mean, *minThreshold, "<"))
	}
	if maxThreshold := a.thresholds.BPMMax; maxThreshold != nil && mean > *maxThreshold {
		violations = append(violations, a.record(seatID, windowStart, mean, *maxThreshold, ">"))
	}
	return violations
}

func (a *Alerter) record(seatID string, windowStart int64, mean, threshold float64, comparison string) Violation {
	a.logger.Warn("BPM threshold violation",
		zap.String("seat_id", seatID),
		zap.Int64("window_start", windowStart),
		zap.Float64("actual", mean),
		zap.Float64("threshold", threshold),
		zap.String("comparison", comparison),
	)
	thresholdViolations.WithLabelValues(seatID, comparison).Inc()
	return Violation{
		SeatID:      seatID,
		WindowStart: windowStart,
		Mean:        mean,
		Threshold:   threshold,
		Comparison:  comparison,
	}
}
