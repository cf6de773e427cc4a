package pipeline

import "errors"

var (
	ErrInvalidKafkaConfig   = errors.New("invalid Kafka configuration provided")
	ErrKafkaFetchFailed     = errors.New("failed to fetch message from Kafka")
	ErrSourceCreationFailed = errors.New("failed to create line source")
	ErrSourceRunFailed      = errors.New("line source failed")
	ErrSourceOpenFailed     = errors.New("failed to open log file")
	ErrInvalidInterval      = errors.New("aggregation interval must be positive")
	ErrInvalidMaxWindows    = errors.New("aggregation window limit must be positive")
	ErrTooManyWindows       = errors.New("timestamp span needs more windows than allowed")
	ErrNoSamples            = errors.New("no seat data available")
)
