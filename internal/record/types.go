package record

// Sample is a single heart-rate observation from one seat.
type Sample struct {
	SeatID      string
	BPM         int
	TimestampMs int64
}

// SeatSeries holds every sample of one seat in file order.
// Samples are not sorted by timestamp.
type SeatSeries struct {
	ID      string
	Samples []Sample
}

// BPMs returns the bpm values, index-aligned with Times.
func (s *SeatSeries) BPMs() []int {
	out := make([]int, len(s.Samples))
	for i, sample := range s.Samples {
		out[i] = sample.BPM
	}
	return out
}

// Times returns the sample timestamps in milliseconds, index-aligned with BPMs.
func (s *SeatSeries) Times() []int64 {
	out := make([]int64, len(s.Samples))
	for i, sample := range s.Samples {
		out[i] = sample.TimestampMs
	}
	return out
}

// WindowedSeries is a per-seat series on the common window grid.
// A nil Data entry marks a window in which the seat had no sample.
type WindowedSeries struct {
	Data []*float64 `json:"data"`
	Time []int64    `json:"time"`
}

// GlobalSeries holds the cross-seat mean per window. Windows without any
// contributing seat are omitted, so Time is a subsequence of the grid.
type GlobalSeries struct {
	Data []float64 `json:"data"`
	Time []int64   `json:"time"`
}

// Aggregation is the output of windowing a SeatSet.
type Aggregation struct {
	IntervalMs int64
	PerSeat    map[string]WindowedSeries
	Global     GlobalSeries
}
