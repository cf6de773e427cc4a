package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/sanspareilsmyn/emotionmap/internal/config"
)

type kafkaZapLogger struct {
	log *zap.Logger
}

func (l kafkaZapLogger) Printf(msg string, args ...interface{}) {
	l.log.Debug(fmt.Sprintf(msg, args...))
}

type kafkaZapErrorLogger struct {
	log *zap.Logger
}

func (l kafkaZapErrorLogger) Printf(msg string, args ...interface{}) {
	l.log.Error(fmt.Sprintf(msg, args...))
}

// messageReader is the subset of *kafka.Reader used by KafkaSource.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// KafkaSource reads a replayed log from one topic partition, from the first
// offset up to the high-water mark observed while reading. It is a bounded
// batch read, not a subscription: an idle partition ends the batch after
// readTimeout.
type KafkaSource struct {
	reader      messageReader
	cfg         config.KafkaConfig
	readTimeout time.Duration
	logger      *zap.Logger
}

// NewKafkaSource creates a partition reader positioned at the first offset.
func NewKafkaSource(cfg config.KafkaConfig, logger *zap.Logger) (*KafkaSource, error) {
	if len(cfg.Brokers) == 0 || cfg.Topic == "" || cfg.ReadTimeout <= 0 {
		logger.Error("Kafka configuration validation failed",
			zap.Strings("brokers", cfg.Brokers),
			zap.String("topic", cfg.Topic),
			zap.Duration("read_timeout", cfg.ReadTimeout),
		)
		return nil, ErrInvalidKafkaConfig
	}

	readerCfg := kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       cfg.Topic,
		Partition:   cfg.Partition,
		MaxWait:     cfg.ReadTimeout / 2,
		Logger:      kafkaZapLogger{logger.Named("kafka-reader").WithOptions(zap.AddCallerSkip(1))},
		ErrorLogger: kafkaZapErrorLogger{logger.Named("kafka-reader-error").WithOptions(zap.AddCallerSkip(1))},
	}
	r := kafka.NewReader(readerCfg)
	if err := r.SetOffset(kafka.FirstOffset); err != nil {
		_ = r.Close()
		return nil, fmt.Errorf("%w: %w", ErrInvalidKafkaConfig, err)
	}

	logger.Info("Kafka source created",
		zap.String("topic", cfg.Topic),
		zap.Int("partition", cfg.Partition),
		zap.Strings("brokers", cfg.Brokers),
		zap.Duration("read_timeout", cfg.ReadTimeout),
	)

	return newKafkaSource(r, cfg, logger), nil
}

func newKafkaSource(r messageReader, cfg config.KafkaConfig, logger *zap.Logger) *KafkaSource {
	return &KafkaSource{
		reader:      r,
		cfg:         cfg,
		readTimeout: cfg.ReadTimeout,
		logger:      logger,
	}
}

func (k *KafkaSource) Name() string { return "kafka" }

// Run forwards message values as lines until the partition is drained.
func (k *KafkaSource) Run(ctx context.Context, out chan<- []byte) error {
	sugar := k.logger.Sugar()
	sugar.Infow("Starting Kafka batch read...", "topic", k.cfg.Topic, "partition", k.cfg.Partition)

	defer func() {
		if err := k.reader.Close(); err != nil {
			sugar.Errorw("Failed to close Kafka reader cleanly", zap.Error(err))
		}
	}()

	read := 0
	for {
		fetchCtx, cancel := context.WithTimeout(ctx, k.readTimeout)
		m, err := k.reader.FetchMessage(fetchCtx)
		cancel()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, context.DeadlineExceeded) {
				sugar.Infow("Kafka partition idle, ending batch", "messages", read)
				return nil
			}
			k.logger.Error("Error fetching message from Kafka", zap.Error(err))
			return fmt.Errorf("%w: %w", ErrKafkaFetchFailed, err)
		}

		select {
		case out <- m.Value:
			read++
		case <-ctx.Done():
			return ctx.Err()
		}

		if m.HighWaterMark > 0 && m.Offset >= m.HighWaterMark-1 {
			sugar.Infow("Reached Kafka high-water mark, ending batch",
				"messages", read,
				"high_water_mark", m.HighWaterMark,
			)
			return nil
		}
	}
}
