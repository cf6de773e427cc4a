package config

import "errors"

var (
	ErrReadingConfigFile       = errors.New("failed to read config file")
	ErrUnmarshallingConfig     = errors.New("failed to unmarshal config")
	ErrConfigFileMissing       = errors.New("config file not found")
	ErrUnknownSourceType       = errors.New("source type must be \"file\" or \"kafka\"")
	ErrEmptySourcePath         = errors.New("source path cannot be empty for file source")
	ErrEmptyKafkaBrokers       = errors.New("kafka brokers list cannot be empty")
	ErrEmptyKafkaTopic         = errors.New("kafka topic cannot be empty")
	ErrInvalidKafkaReadTimeout = errors.New("kafka readTimeout must be positive")
	ErrInvalidPipelineInterval = errors.New("pipeline interval must be a positive whole number of milliseconds")
	ErrInvalidMaxWindows       = errors.New("pipeline maxWindows must be positive")
	ErrInvalidSeatNamePattern  = errors.New("seats namePattern must contain exactly one %s verb")
	ErrUnknownSeatCountMode    = errors.New("seats countMode must be \"max\" or \"distinct\"")
	ErrNegativeSeatTotal       = errors.New("seats total cannot be negative")
	ErrInvalidThresholds       = errors.New("thresholds bpmMin must not exceed bpmMax")
	ErrEmptyServerAddr         = errors.New("server addr cannot be empty")
	ErrInvalidShutdownTimeout  = errors.New("server shutdownTimeout must be positive")
)
