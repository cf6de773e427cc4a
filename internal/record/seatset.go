package record

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	ErrNoSamples     = errors.New("no samples parsed")
	ErrInvalidSeatID = errors.New("seat id is not a non-negative integer")
)

// SeatSet maps seat ids to their series, iterating in first-appearance order.
// It is read-only once built.
type SeatSet struct {
	order     []string
	seats     map[string]*SeatSeries
	maxSeatID int64
	samples   int
}

// IDs returns seat ids in first-appearance order.
func (s *SeatSet) IDs() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Get returns the series for id. Callers must not modify it.
func (s *SeatSet) Get(id string) (*SeatSeries, bool) {
	series, ok := s.seats[id]
	return series, ok
}

// Len is the number of distinct seats.
func (s *SeatSet) Len() int { return len(s.order) }

// SampleCount is the total number of samples across seats.
func (s *SeatSet) SampleCount() int { return s.samples }

// MaxSeatID is the largest numeric seat id seen, or 0 for an empty set.
// With sparse ids this overstates the number of seats.
func (s *SeatSet) MaxSeatID() int64 { return s.maxSeatID }

// Bounds returns the smallest and largest timestamps over all samples.
func (s *SeatSet) Bounds() (minTs, maxTs int64, ok bool) {
	for _, id := range s.order {
		for _, sample := range s.seats[id].Samples {
			if !ok {
				minTs, maxTs, ok = sample.TimestampMs, sample.TimestampMs, true
				continue
			}
			if sample.TimestampMs < minTs {
				minTs = sample.TimestampMs
			}
			if sample.TimestampMs > maxTs {
				maxTs = sample.TimestampMs
			}
		}
	}
	return minTs, maxTs, ok
}

// Builder groups samples by seat. The zero value is not usable; use NewBuilder.
type Builder struct {
	set *SeatSet
}

func NewBuilder() *Builder {
	return &Builder{set: &SeatSet{seats: make(map[string]*SeatSeries)}}
}

// Add appends s to its seat's series, creating the seat on first sight.
func (b *Builder) Add(s Sample) error {
	n, err := strconv.ParseInt(s.SeatID, 10, 64)
	if err != nil || n < 0 {
		return fmt.Errorf("%w: %q", ErrInvalidSeatID, s.SeatID)
	}

	series, ok := b.set.seats[s.SeatID]
	if !ok {
		series = &SeatSeries{ID: s.SeatID}
		b.set.seats[s.SeatID] = series
		b.set.order = append(b.set.order, s.SeatID)
	}
	series.Samples = append(series.Samples, s)
	b.set.samples++

	if n > b.set.maxSeatID {
		b.set.maxSeatID = n
	}
	return nil
}

// Build returns the grouped set. When nothing was added it returns an empty,
// usable set together with ErrNoSamples.
func (b *Builder) Build() (*SeatSet, error) {
	set := b.set
	b.set = &SeatSet{seats: make(map[string]*SeatSeries)}
	if set.samples == 0 {
		return set, ErrNoSamples
	}
	return set, nil
}

// BuildSeatSet groups samples in one call.
func BuildSeatSet(samples []Sample) (*SeatSet, error) {
	b := NewBuilder()
	for _, s := range samples {
		if err := b.Add(s); err != nil {
			return nil, err
		}
	}
	return b.Build()
}
