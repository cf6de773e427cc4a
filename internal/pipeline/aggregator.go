package pipeline

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/sanspareilsmyn/emotionmap/internal/record"
)

// Aggregator buckets per-seat samples into fixed-width windows anchored at the
// earliest timestamp in the set.
type Aggregator struct {
	intervalMs int64
	maxWindows int64
	logger     *zap.Logger
}

// NewAggregator creates an Aggregator for windows of intervalMs milliseconds.
// A set whose timestamp span needs more than maxWindows windows is refused.
func NewAggregator(intervalMs int64, maxWindows int, logger *zap.Logger) (*Aggregator, error) {
	if intervalMs <= 0 {
		return nil, ErrInvalidInterval
	}
	if maxWindows <= 0 {
		return nil, ErrInvalidMaxWindows
	}
	logger.Debug("Aggregator initialized",
		zap.Int64("interval_ms", intervalMs),
		zap.Int("max_windows", maxWindows),
	)
	return &Aggregator{intervalMs: intervalMs, maxWindows: int64(maxWindows), logger: logger}, nil
}

// windowAcc accumulates the bpm values of one seat in one window.
type windowAcc struct {
	sum   int64
	count int64
}

// Aggregate computes every seat's windowed mean and the cross-seat mean per window.
// A sample at t falls in window (t-min)/interval, so within-seat order does not matter.
// Every per-seat series shares the same Time slice; it must not be modified.
func (a *Aggregator) Aggregate(set *record.SeatSet) (record.Aggregation, error) {
	ids := set.IDs()
	result := record.Aggregation{
		IntervalMs: a.intervalMs,
		PerSeat:    make(map[string]record.WindowedSeries, len(ids)),
	}

	minTs, maxTs, ok := set.Bounds()
	if !ok {
		for _, id := range ids {
			result.PerSeat[id] = record.WindowedSeries{Data: []*float64{}, Time: []int64{}}
		}
		result.Global = record.GlobalSeries{Data: []float64{}, Time: []int64{}}
		a.logger.Debug("No samples to aggregate")
		return result, nil
	}

	span := (maxTs - minTs) / a.intervalMs
	if span >= a.maxWindows {
		a.logger.Error("Timestamp span exceeds window limit",
			zap.Int64("min_timestamp", minTs),
			zap.Int64("max_timestamp", maxTs),
			zap.Int64("max_windows", a.maxWindows),
		)
		return record.Aggregation{}, fmt.Errorf("%w: span %d..%d needs %d windows, limit %d",
			ErrTooManyWindows, minTs, maxTs, span+1, a.maxWindows)
	}
	windows := int(span) + 1
	grid := make([]int64, windows)
	for i := range grid {
		grid[i] = minTs + int64(i)*a.intervalMs
	}

	// means[seat][window], nil where the seat had no sample.
	means := make([][]*float64, len(ids))
	for seatIdx, id := range ids {
		series, _ := set.Get(id)
		accs := make([]windowAcc, windows)
		for _, s := range series.Samples {
			w := (s.TimestampMs - minTs) / a.intervalMs
			accs[w].sum += int64(s.BPM)
			accs[w].count++
		}

		data := make([]*float64, windows)
		for w, acc := range accs {
			if acc.count == 0 {
				continue
			}
			mean := record.Round2(float64(acc.sum) / float64(acc.count))
			data[w] = &mean
		}
		means[seatIdx] = data
		result.PerSeat[id] = record.WindowedSeries{Data: data, Time: grid}
	}

	global := record.GlobalSeries{Data: []float64{}, Time: []int64{}}
	for w := 0; w < windows; w++ {
		var total float64
		contributing := 0
		for seatIdx := range ids {
			if v := means[seatIdx][w]; v != nil {
				total += *v
				contributing++
			}
		}
		if contributing == 0 {
			continue
		}
		global.Data = append(global.Data, record.Round2(total/float64(contributing)))
		global.Time = append(global.Time, grid[w])
	}
	result.Global = global

	a.logger.Debug("Aggregation completed",
		zap.Int("seats", len(ids)),
		zap.Int("windows", windows),
		zap.Int("global_windows", len(global.Time)),
		zap.Int64("min_timestamp", minTs),
		zap.Int64("max_timestamp", maxTs),
	)
	return result, nil
}
