package main

import (
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/sanspareilsmyn/emotionmap/internal/config"
)

const (
	writerBatchSize    = 100
	writerBatchTimeout = 10 * time.Millisecond
)

// partitionBalancer sends every message to the one partition KafkaSource reads,
// keeping all lines together and in file order.
func partitionBalancer(partition int) kafka.Balancer {
	return kafka.BalancerFunc(func(_ kafka.Message, _ ...int) int {
		return partition
	})
}

func newWriter(cfg config.KafkaConfig) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     partitionBalancer(cfg.Partition),
		BatchSize:    writerBatchSize,
		BatchTimeout: writerBatchTimeout,
		RequiredAcks: kafka.RequireAll,
	}
}
