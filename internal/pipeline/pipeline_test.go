package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap/zaptest"

	"github.com/sanspareilsmyn/emotionmap/internal/config"
)

const sampleLog = `1, /1/ 72 1000.;
2, /2/ 77 1400.;
not a log line

3, /1/ 74 1900.;
4, /3/ 90 2100.;
5, /2/ 79 2200.; trailing
6, /3/ 88 abc.;
7, /1/ 70 4500.;
`

func testConfig(path string) *config.Config {
	return &config.Config{
		Source:   config.SourceConfig{Type: config.SourceFile, Path: path},
		Pipeline: config.PipelineConfig{Interval: time.Second, MaxWindows: 1000},
		Seats:    config.SeatsConfig{NamePattern: "Siège %s", CountMode: config.CountModeMax},
	}
}

func writeLog(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bpm_data.txt")
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write log: %v", err)
	}
	return path
}

func TestPipelineRunFromFile(t *testing.T) {
	skippedBefore := testutil.ToFloat64(ingestLinesSkipped.WithLabelValues("file"))

	p, err := New(testConfig(writeLog(t, sampleLog)), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}

	snap, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if got, want := snap.SeatIDs(), []string{"1", "2", "3"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("SeatIDs() = %v, want %v", got, want)
	}
	if snap.TotalSeats() != 3 {
		t.Fatalf("TotalSeats() = %d, want 3", snap.TotalSeats())
	}
	if snap.SampleCount() != 6 {
		t.Fatalf("SampleCount() = %d, want 6", snap.SampleCount())
	}

	seat, ok := snap.Lookup("1")
	if !ok {
		t.Fatalf("seat 1 missing")
	}
	if want := []int{72, 74, 70}; !reflect.DeepEqual(seat.BPM, want) {
		t.Fatalf("seat 1 bpm = %v, want %v", seat.BPM, want)
	}
	if want := []int64{1000, 2000, 3000, 4000}; !reflect.DeepEqual(seat.AvgTime, want) {
		t.Fatalf("seat 1 avgTime = %v, want %v", seat.AvgTime, want)
	}
	if *seat.Avg[0] != 73 || seat.Avg[1] != nil || seat.Avg[2] != nil || *seat.Avg[3] != 70 {
		t.Fatalf("seat 1 avg unexpected: %v", seat.Avg)
	}

	global := snap.Global()
	if want := []int64{1000, 2000, 4000}; !reflect.DeepEqual(global.Time, want) {
		t.Fatalf("global time = %v, want %v", global.Time, want)
	}
	// window 1000: seat1 73, seat2 77 -> 75; window 2000: seat2 79, seat3 90 -> 84.5
	if want := []float64{75, 84.5, 70}; !reflect.DeepEqual(global.Data, want) {
		t.Fatalf("global data = %v, want %v", global.Data, want)
	}

	if got := testutil.ToFloat64(ingestLinesSkipped.WithLabelValues("file")) - skippedBefore; got != 3 {
		t.Fatalf("expected 3 skipped lines, got %v", got)
	}
	if got := testutil.ToFloat64(seatCount); got != 3 {
		t.Fatalf("expected seats gauge 3, got %v", got)
	}
}

func TestPipelineRunIsIdempotent(t *testing.T) {
	p, err := New(testConfig(writeLog(t, sampleLog)), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}

	first, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("pipeline output differs between runs")
	}
}

func TestPipelineRunNoSamples(t *testing.T) {
	p, err := New(testConfig(writeLog(t, "garbage\n\n")), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}

	snap, err := p.Run(context.Background())
	if !errors.Is(err, ErrNoSamples) {
		t.Fatalf("expected ErrNoSamples, got %v", err)
	}
	if snap == nil {
		t.Fatalf("expected usable empty snapshot")
	}
	if snap.TotalSeats() != 0 || len(snap.SeatIDs()) != 0 || len(snap.Global().Data) != 0 {
		t.Fatalf("expected empty snapshot, got %d seats", snap.TotalSeats())
	}
}

func TestPipelineRunMissingFile(t *testing.T) {
	p, err := New(testConfig(filepath.Join(t.TempDir(), "absent.txt")), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}

	snap, err := p.Run(context.Background())
	if !errors.Is(err, ErrSourceRunFailed) || !errors.Is(err, ErrSourceOpenFailed) {
		t.Fatalf("expected source open failure, got %v", err)
	}
	if snap == nil || snap.TotalSeats() != 0 {
		t.Fatalf("expected usable empty snapshot")
	}
}

func TestPipelineRunCancelled(t *testing.T) {
	p, err := New(testConfig(writeLog(t, sampleLog)), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	snap, err := p.Run(ctx)
	if !errors.Is(err, context.Canceled) || snap != nil {
		t.Fatalf("expected cancellation, got snapshot=%v err=%v", snap, err)
	}
}

func TestNewRejectsInvalidKafkaConfig(t *testing.T) {
	cfg := testConfig("")
	cfg.Source.Type = config.SourceKafka

	if _, err := New(cfg, zaptest.NewLogger(t)); !errors.Is(err, ErrInvalidKafkaConfig) {
		t.Fatalf("expected ErrInvalidKafkaConfig, got %v", err)
	}
}

func TestPipelineRunTooManyWindows(t *testing.T) {
	log := "1, /1/ 72 1749735435000.;\n2, /2/ 70 0.;\n"
	p, err := New(testConfig(writeLog(t, log)), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}

	snap, err := p.Run(context.Background())
	if !errors.Is(err, ErrTooManyWindows) {
		t.Fatalf("expected ErrTooManyWindows, got %v", err)
	}
	if snap == nil || snap.TotalSeats() != 0 || len(snap.Global().Data) != 0 {
		t.Fatalf("expected usable empty snapshot")
	}
}
