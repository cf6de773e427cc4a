package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	SourceFile  = "file"
	SourceKafka = "kafka"

	CountModeMax      = "max"
	CountModeDistinct = "distinct"
)

const (
	defaultSourceType       = SourceFile
	defaultSourcePath       = "data/bpm_data.txt"
	defaultKafkaTopic       = "bpm-log"
	defaultKafkaPartition   = 0
	defaultKafkaReadTimeout = 5 * time.Second
	defaultPipelineInterval = 5 * time.Second
	defaultPipelineMaxWin   = 1_000_000
	defaultSeatNamePattern  = "Siège %s"
	defaultSeatCountMode    = CountModeMax
	defaultServerAddr       = ":3000"
	defaultServerStaticDir  = "public"
	defaultShutdownTimeout  = 5 * time.Second
	defaultLogLevel         = "info"
	defaultLogFormat        = "console"
	defaultLogFileEnabled   = false
	defaultLogDirectory     = "log"
	defaultLogFilename      = "emotionmap.log"
	defaultLogMaxSizeMB     = 100
	defaultLogMaxBackups    = 3
	defaultLogMaxAgeDays    = 7
	defaultLogCompress      = false

	// Environment variable prefix
	envPrefix = "EMOTIONMAP"
)

type Config struct {
	Source     SourceConfig     `mapstructure:"source"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	Pipeline   PipelineConfig   `mapstructure:"pipeline"`
	Seats      SeatsConfig      `mapstructure:"seats"`
	Thresholds ThresholdsConfig `mapstructure:"thresholds"`
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
}

type SourceConfig struct {
	Type string `mapstructure:"type"` // "file" or "kafka"
	Path string `mapstructure:"path"`
}

type KafkaConfig struct {
	Brokers     []string      `mapstructure:"brokers"`
	Topic       string        `mapstructure:"topic"`
	Partition   int           `mapstructure:"partition"`
	ReadTimeout time.Duration `mapstructure:"readTimeout"` // idle time before the batch is considered drained
}

type PipelineConfig struct {
	Interval   time.Duration `mapstructure:"interval"`
	MaxWindows int           `mapstructure:"maxWindows"` // upper bound on the aggregation grid
}

// IntervalMs returns the aggregation window width in milliseconds.
func (p PipelineConfig) IntervalMs() int64 {
	return p.Interval.Milliseconds()
}

type SeatsConfig struct {
	NamePattern string `mapstructure:"namePattern"`
	CountMode   string `mapstructure:"countMode"`
	Total       int    `mapstructure:"total"` // 0 derives the count from the data
}

type ThresholdsConfig struct {
	BPMMin *float64 `mapstructure:"bpmMin"`
	BPMMax *float64 `mapstructure:"bpmMax"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	StaticDir       string        `mapstructure:"staticDir"`
	ShutdownTimeout time.Duration `mapstructure:"shutdownTimeout"`
}

type LogConfig struct {
	Level              string `mapstructure:"level"`
	Format             string `mapstructure:"format"`
	FileLoggingEnabled bool   `mapstructure:"fileLoggingEnabled"`
	Directory          string `mapstructure:"directory"`
	Filename           string `mapstructure:"filename"`
	MaxSize            int    `mapstructure:"maxSize"`    // Max size in MB
	MaxBackups         int    `mapstructure:"maxBackups"` // Max backup files
	MaxAge             int    `mapstructure:"maxAge"`     // Max days to retain
	Compress           bool   `mapstructure:"compress"`   // Compress rotated files?
}

// Load initializes viper, reads config, applies defaults, unmarshals, and validates.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	configureViper(v, configPath)

	// Set default values before reading config source .yaml
	setDefaults(v)

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnmarshallingConfig, err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// configureViper sets up viper instance for file and environment variables.
func configureViper(v *viper.Viper, configPath string) {
	if configPath != "" {
		v.SetConfigFile(configPath)
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

// setDefaults applies default configuration values using Viper.
func setDefaults(v *viper.Viper) {
	v.SetDefault("source.type", defaultSourceType)
	v.SetDefault("source.path", defaultSourcePath)
	v.SetDefault("kafka.topic", defaultKafkaTopic)
	v.SetDefault("kafka.partition", defaultKafkaPartition)
	v.SetDefault("kafka.readTimeout", defaultKafkaReadTimeout)
	v.SetDefault("pipeline.interval", defaultPipelineInterval)
	v.SetDefault("pipeline.maxWindows", defaultPipelineMaxWin)
	v.SetDefault("seats.namePattern", defaultSeatNamePattern)
	v.SetDefault("seats.countMode", defaultSeatCountMode)
	v.SetDefault("seats.total", 0)
	v.SetDefault("server.addr", defaultServerAddr)
	v.SetDefault("server.staticDir", defaultServerStaticDir)
	v.SetDefault("server.shutdownTimeout", defaultShutdownTimeout)
	v.SetDefault("log.level", defaultLogLevel)
	v.SetDefault("log.format", defaultLogFormat)
	v.SetDefault("log.fileLoggingEnabled", defaultLogFileEnabled)
	v.SetDefault("log.directory", defaultLogDirectory)
	v.SetDefault("log.filename", defaultLogFilename)
	v.SetDefault("log.maxSize", defaultLogMaxSizeMB)
	v.SetDefault("log.maxBackups", defaultLogMaxBackups)
	v.SetDefault("log.maxAge", defaultLogMaxAgeDays)
	v.SetDefault("log.compress", defaultLogCompress)
}

// readConfigFile attempts to read the configuration file specified in viper.
func readConfigFile(v *viper.Viper) error {
	err := v.ReadInConfig()
	if err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			return ErrConfigFileMissing
		}
		return fmt.Errorf("%w: %w", ErrReadingConfigFile, err)
	}
	return nil
}

// Validate checks cross-field constraints that defaults cannot guarantee.
func Validate(cfg *Config) error {
	switch cfg.Source.Type {
	case SourceFile:
		if cfg.Source.Path == "" {
			return ErrEmptySourcePath
		}
	case SourceKafka:
		if len(cfg.Kafka.Brokers) == 0 {
			return ErrEmptyKafkaBrokers
		}
		if cfg.Kafka.Topic == "" {
			return ErrEmptyKafkaTopic
		}
		if cfg.Kafka.ReadTimeout <= 0 {
			return ErrInvalidKafkaReadTimeout
		}
	default:
		return fmt.Errorf("%w: got %q", ErrUnknownSourceType, cfg.Source.Type)
	}

	if cfg.Pipeline.Interval < time.Millisecond || cfg.Pipeline.Interval%time.Millisecond != 0 {
		return ErrInvalidPipelineInterval
	}
	if cfg.Pipeline.MaxWindows <= 0 {
		return ErrInvalidMaxWindows
	}

	if !validNamePattern(cfg.Seats.NamePattern) {
		return fmt.Errorf("%w: got %q", ErrInvalidSeatNamePattern, cfg.Seats.NamePattern)
	}

	if cfg.Seats.CountMode != CountModeMax && cfg.Seats.CountMode != CountModeDistinct {
		return fmt.Errorf("%w: got %q", ErrUnknownSeatCountMode, cfg.Seats.CountMode)
	}
	if cfg.Seats.Total < 0 {
		return ErrNegativeSeatTotal
	}

	if t := cfg.Thresholds; t.BPMMin != nil && t.BPMMax != nil && *t.BPMMin > *t.BPMMax {
		return ErrInvalidThresholds
	}

	if cfg.Server.Addr == "" {
		return ErrEmptyServerAddr
	}
	if cfg.Server.ShutdownTimeout <= 0 {
		return ErrInvalidShutdownTimeout
	}
	return nil
}

// validNamePattern reports whether pattern has exactly one verb and it is %s.
func validNamePattern(pattern string) bool {
	unescaped := strings.ReplaceAll(pattern, "%%", "")
	return strings.Count(unescaped, "%") == 1 && strings.Count(unescaped, "%s") == 1
}
