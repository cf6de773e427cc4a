// Package dataset exposes the ingested seats and their aggregates as an
// immutable snapshot that request handlers can share without locking.
package dataset

import (
	"fmt"

	"github.com/sanspareilsmyn/emotionmap/internal/record"
)

const (
	CountModeMax      = "max"
	CountModeDistinct = "distinct"

	defaultNamePattern = "Siège %s"
)

// Options controls how seats are presented.
type Options struct {
	NamePattern string // fmt pattern receiving the seat id
	CountMode   string // "max" (highest seat id) or "distinct"
	TotalSeats  int    // overrides the derived count when positive
}

// SeatRef is one entry of the seat listing.
type SeatRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SeatView is the raw and windowed data of one seat.
type SeatView struct {
	ID      string
	Profile string
	BPM     []int
	Time    []int64
	Avg     []*float64
	AvgTime []int64
}

// Snapshot is built once at startup and never modified afterwards.
type Snapshot struct {
	seats     *record.SeatSet
	agg       record.Aggregation
	opts      Options
	summaries map[string]Summary
}

// New assembles a snapshot. A nil set is treated as empty.
func New(set *record.SeatSet, agg record.Aggregation, opts Options) *Snapshot {
	if set == nil {
		set, _ = record.NewBuilder().Build()
	}
	if opts.NamePattern == "" {
		opts.NamePattern = defaultNamePattern
	}
	if opts.CountMode == "" {
		opts.CountMode = CountModeMax
	}

	summaries := make(map[string]Summary, set.Len())
	for _, id := range set.IDs() {
		series, _ := set.Get(id)
		summaries[id] = summarize(series)
	}

	return &Snapshot{
		seats:     set,
		agg:       agg,
		opts:      opts,
		summaries: summaries,
	}
}

// Empty returns a snapshot with no seats.
func Empty(opts Options) *Snapshot {
	return New(nil, record.Aggregation{}, opts)
}

// SeatName renders the display name of a seat.
func (s *Snapshot) SeatName(id string) string {
	return fmt.Sprintf(s.opts.NamePattern, id)
}

// Lookup returns the seat's raw series and its windowed averages.
func (s *Snapshot) Lookup(id string) (SeatView, bool) {
	series, ok := s.seats.Get(id)
	if !ok {
		return SeatView{}, false
	}

	windowed := s.agg.PerSeat[id]
	avg := windowed.Data
	if avg == nil {
		avg = []*float64{}
	}
	avgTime := windowed.Time
	if avgTime == nil {
		avgTime = []int64{}
	}

	return SeatView{
		ID:      id,
		Profile: s.SeatName(id),
		BPM:     series.BPMs(),
		Time:    series.Times(),
		Avg:     avg,
		AvgTime: avgTime,
	}, true
}

// SeatIDs lists seat ids in first-appearance order.
func (s *Snapshot) SeatIDs() []string {
	return s.seats.IDs()
}

// Seats lists seat ids and display names in first-appearance order.
func (s *Snapshot) Seats() []SeatRef {
	ids := s.seats.IDs()
	out := make([]SeatRef, len(ids))
	for i, id := range ids {
		out[i] = SeatRef{ID: id, Name: s.SeatName(id)}
	}
	return out
}

// TotalSeats is the seat count reported to clients. Zero means no seats.
func (s *Snapshot) TotalSeats() int {
	if s.opts.TotalSeats > 0 {
		return s.opts.TotalSeats
	}
	if s.opts.CountMode == CountModeDistinct {
		return s.seats.Len()
	}
	return int(s.seats.MaxSeatID())
}

// Global returns the cross-seat windowed mean.
func (s *Snapshot) Global() record.GlobalSeries {
	g := s.agg.Global
	if g.Data == nil {
		g.Data = []float64{}
	}
	if g.Time == nil {
		g.Time = []int64{}
	}
	return g
}

// IntervalMs is the window width used for the aggregates.
func (s *Snapshot) IntervalMs() int64 {
	return s.agg.IntervalMs
}

// SampleCount is the number of samples ingested.
func (s *Snapshot) SampleCount() int {
	return s.seats.SampleCount()
}

// Summary returns descriptive statistics of a seat's raw samples.
func (s *Snapshot) Summary(id string) (Summary, bool) {
	sum, ok := s.summaries[id]
	return sum, ok
}
