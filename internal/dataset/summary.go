package dataset

import (
	"github.com/influxdata/tdigest"

	"github.com/sanspareilsmyn/emotionmap/internal/record"
)

const digestCompression = 100

// Summary describes the distribution of one seat's bpm samples.
type Summary struct {
	Count  int     `json:"count"`
	Min    int     `json:"min"`
	Max    int     `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	P90    float64 `json:"p90"`
}

func summarize(series *record.SeatSeries) Summary {
	if series == nil || len(series.Samples) == 0 {
		return Summary{}
	}

	td := tdigest.NewWithCompression(digestCompression)
	sum := Summary{
		Count: len(series.Samples),
		Min:   series.Samples[0].BPM,
		Max:   series.Samples[0].BPM,
	}
	total := 0
	for _, s := range series.Samples {
		td.Add(float64(s.BPM), 1)
		total += s.BPM
		if s.BPM < sum.Min {
			sum.Min = s.BPM
		}
		if s.BPM > sum.Max {
			sum.Max = s.BPM
		}
	}

	sum.Mean = record.Round2(float64(total) / float64(sum.Count))
	sum.Median = record.Round2(td.Quantile(0.5))
	sum.P90 = record.Round2(td.Quantile(0.9))
	return sum
}
