// internal/pipeline/pipeline.go
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sanspareilsmyn/emotionmap/internal/config"
	"github.com/sanspareilsmyn/emotionmap/internal/dataset"
	"github.com/sanspareilsmyn/emotionmap/internal/record"
)

const channelBufferSize = 256

// Pipeline reads the log once, groups samples per seat and aggregates them.
// Stages run as goroutines joined by channels; each stage is a single
// goroutine so file order is preserved end to end.
type Pipeline struct {
	cfg        *config.Config
	source     LineSource
	aggregator *Aggregator
	alerter    *Alerter
	logger     *zap.Logger
}

// New creates the pipeline with the source selected by cfg.Source.Type.
func New(cfg *config.Config, logger *zap.Logger) (*Pipeline, error) {
	initLogger := logger.Named("pipeline.init")

	var source LineSource
	switch cfg.Source.Type {
	case config.SourceKafka:
		kafkaSource, err := NewKafkaSource(cfg.Kafka, logger.Named("kafka"))
		if err != nil {
			initLogger.Error("Failed to create Kafka source", zap.Error(err))
			return nil, fmt.Errorf("%w: %w", ErrSourceCreationFailed, err)
		}
		source = kafkaSource
	case config.SourceFile:
		source = NewFileSource(cfg.Source.Path, logger.Named("file"))
	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrSourceCreationFailed, cfg.Source.Type)
	}
	initLogger.Debug("Line source created", zap.String("source", source.Name()))

	return NewWithSource(cfg, source, logger)
}

// NewWithSource creates the pipeline around an already constructed source.
func NewWithSource(cfg *config.Config, source LineSource, logger *zap.Logger) (*Pipeline, error) {
	aggregator, err := NewAggregator(cfg.Pipeline.IntervalMs(), cfg.Pipeline.MaxWindows, logger.Named("aggregator"))
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		cfg:        cfg,
		source:     source,
		aggregator: aggregator,
		alerter:    NewAlerter(cfg.Thresholds, logger.Named("alerter")),
		logger:     logger.Named("pipeline"),
	}
	p.logger.Info("Pipeline instance created",
		zap.String("source", source.Name()),
		zap.Int64("interval_ms", aggregator.intervalMs),
	)
	return p, nil
}

// Run ingests the whole source and returns the resulting snapshot.
//
// When the source fails, yields no samples or spans more windows than allowed,
// Run still returns a usable empty snapshot alongside an error wrapping
// ErrSourceRunFailed, ErrNoSamples or ErrTooManyWindows, so
// the caller may report it and keep serving. A nil snapshot is only returned
// when ctx is cancelled.
func (p *Pipeline) Run(ctx context.Context) (*dataset.Snapshot, error) {
	sugar := p.logger.Sugar()
	started := time.Now()
	opts := p.snapshotOptions()

	rawLines := make(chan []byte, channelBufferSize)
	samples := make(chan record.Sample, channelBufferSize)
	sourceErr := make(chan error, 1)

	var wg sync.WaitGroup
	wg.Add(2)
	go p.runSource(ctx, &wg, rawLines, sourceErr)
	go p.runParser(&wg, rawLines, samples)

	builder := record.NewBuilder()
	for sample := range samples {
		if err := builder.Add(sample); err != nil {
			sugar.Warnw("Dropping sample with invalid seat id", zap.Error(err))
			continue
		}
		ingestSamples.WithLabelValues(p.source.Name()).Inc()
	}
	wg.Wait()

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err := <-sourceErr; err != nil {
		sugar.Errorw("Log source failed, no seat data will be served", zap.Error(err))
		return dataset.Empty(opts), fmt.Errorf("%w: %w", ErrSourceRunFailed, err)
	}

	set, err := builder.Build()
	if errors.Is(err, record.ErrNoSamples) {
		sugar.Errorw("No samples parsed from source, no seat data will be served",
			"source", p.source.Name(),
		)
		p.observe(set, record.Aggregation{}, started)
		return dataset.Empty(opts), fmt.Errorf("%w: %w", ErrNoSamples, err)
	}

	agg, err := p.aggregator.Aggregate(set)
	if err != nil {
		sugar.Errorw("Aggregation refused, no seat data will be served",
			"source", p.source.Name(),
			zap.Error(err),
		)
		p.observe(set, record.Aggregation{}, started)
		return dataset.Empty(opts), err
	}
	violations := p.alerter.Check(set.IDs(), agg)
	p.observe(set, agg, started)

	sugar.Infow("Ingestion completed",
		"seats", set.Len(),
		"max_seat_id", set.MaxSeatID(),
		"samples", set.SampleCount(),
		"global_windows", len(agg.Global.Time),
		"threshold_violations", len(violations),
		"elapsed", time.Since(started),
	)
	return dataset.New(set, agg, opts), nil
}

// runSource executes the line source and closes rawLines when it returns.
func (p *Pipeline) runSource(ctx context.Context, wg *sync.WaitGroup, rawLines chan<- []byte, errCh chan<- error) {
	defer wg.Done()
	defer func() {
		close(rawLines)
		p.logger.Debug("Raw lines channel closed")
	}()

	err := p.source.Run(ctx, rawLines)
	if err != nil && !errors.Is(err, context.Canceled) {
		p.logger.Error("Source exited with error", zap.String("source", p.source.Name()), zap.Error(err))
	}
	errCh <- err
}

// runParser turns raw lines into samples, dropping lines that do not parse.
func (p *Pipeline) runParser(wg *sync.WaitGroup, rawLines <-chan []byte, samples chan<- record.Sample) {
	defer wg.Done()
	defer close(samples)

	name := p.source.Name()
	parserLogger := p.logger.Named("parser")
	skipped := 0
	for line := range rawLines {
		ingestLines.WithLabelValues(name).Inc()
		sample, ok := record.ParseLine(string(line))
		if !ok {
			skipped++
			ingestLinesSkipped.WithLabelValues(name).Inc()
			continue
		}
		samples <- sample
	}
	parserLogger.Debug("Parser finished", zap.Int("skipped_lines", skipped))
}

func (p *Pipeline) observe(set *record.SeatSet, agg record.Aggregation, started time.Time) {
	seatCount.Set(float64(set.Len()))
	maxSeatID.Set(float64(set.MaxSeatID()))
	windows := 0
	for _, series := range agg.PerSeat {
		windows = len(series.Time)
		break
	}
	windowCount.Set(float64(windows))
	globalWindowCount.Set(float64(len(agg.Global.Time)))
	ingestDuration.Observe(time.Since(started).Seconds())
}

func (p *Pipeline) snapshotOptions() dataset.Options {
	return dataset.Options{
		NamePattern: p.cfg.Seats.NamePattern,
		CountMode:   p.cfg.Seats.CountMode,
		TotalSeats:  p.cfg.Seats.Total,
	}
}
