// Command replayer publishes a recorded bpm log to the Kafka topic partition
// configured for emotionmap, one message per line, so that it can be ingested
// with source.type=kafka.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/sanspareilsmyn/emotionmap/internal/config"
	"github.com/sanspareilsmyn/emotionmap/internal/logging"
	"github.com/sanspareilsmyn/emotionmap/internal/record"
)

var (
	configFile = flag.String("config", "configs/config.dev.yaml", "Path to the configuration file")
	logFile    = flag.String("file", "", "Recorded bpm log to replay (defaults to source.path)")
	speed      = flag.Float64("speed", 0, "Replay speed relative to recorded timestamps; 0 publishes as fast as possible")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration from %s: %v\n", *configFile, err)
		os.Exit(1)
	}
	if len(cfg.Kafka.Brokers) == 0 || cfg.Kafka.Topic == "" {
		fmt.Fprintf(os.Stderr, "FATAL: kafka.brokers and kafka.topic must be configured in %s\n", *configFile)
		os.Exit(1)
	}
	path := *logFile
	if path == "" {
		path = cfg.Source.Path
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	sugar := logger.Sugar()

	writer := newWriter(cfg.Kafka)
	defer func() {
		if err := writer.Close(); err != nil {
			sugar.Errorw("Error closing kafka writer", zap.Error(err))
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signals
		sugar.Info("Shutdown signal received, stopping replay...")
		cancel()
	}()

	f, err := os.Open(path)
	if err != nil {
		sugar.Fatalw("Cannot open log file", "path", path, zap.Error(err))
	}
	defer f.Close()

	sugar.Infow("Starting replay",
		"file", path,
		"topic", cfg.Kafka.Topic,
		"partition", cfg.Kafka.Partition,
		"brokers", cfg.Kafka.Brokers,
		"speed", *speed,
	)

	var (
		published int
		lastTs    int64
		batch     []kafka.Message
	)
	flush := func() bool {
		if len(batch) == 0 {
			return true
		}
		if err := writer.WriteMessages(ctx, batch...); err != nil {
			if ctx.Err() != nil {
				sugar.Info("Context cancelled, exiting replay loop.")
				return false
			}
			sugar.Errorw("Error writing messages", "count", len(batch), zap.Error(err))
		} else {
			published += len(batch)
		}
		batch = batch[:0]
		return true
	}

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		if sample, ok := record.ParseLine(line); ok && *speed > 0 {
			if lastTs != 0 && sample.TimestampMs > lastTs {
				// Paced replay sends what is pending before waiting.
				if !flush() {
					break
				}
				delay := time.Duration(float64(sample.TimestampMs-lastTs)/(*speed)) * time.Millisecond
				select {
				case <-time.After(delay):
				case <-ctx.Done():
				}
			}
			lastTs = sample.TimestampMs
		}

		batch = append(batch, kafka.Message{Value: []byte(line)})
		if len(batch) >= writerBatchSize && !flush() {
			break
		}
	}
	flush()
	if err := scanner.Err(); err != nil {
		sugar.Errorw("Error reading log file", zap.Error(err))
	}

	sugar.Infow("Replay finished", "published", published)
}
