// Command seatexport ingests the bpm log and writes one seat_<id>.json file per
// seat containing its display name and raw bpm values.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/sanspareilsmyn/emotionmap/internal/config"
	"github.com/sanspareilsmyn/emotionmap/internal/dataset"
	"github.com/sanspareilsmyn/emotionmap/internal/logging"
	"github.com/sanspareilsmyn/emotionmap/internal/pipeline"
)

var (
	configFile = flag.String("config", "configs/config.dev.yaml", "Path to the configuration file")
	outDir     = flag.String("out", "data", "Directory receiving the seat files")
)

type seatFile struct {
	Name    string `json:"name"`
	BPMData []int  `json:"bpmData"`
}

func main() {
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration from %s: %v\n", *configFile, err)
		os.Exit(1)
	}
	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	sugar := logger.Sugar()

	pipe, err := pipeline.New(cfg, logger)
	if err != nil {
		sugar.Fatalw("Failed to initialize pipeline", zap.Error(err))
	}
	snap, err := pipe.Run(context.Background())
	if err != nil {
		sugar.Fatalw("Ingestion failed", zap.Error(err))
	}

	written, err := exportSeats(snap, *outDir)
	if err != nil {
		sugar.Fatalw("Export failed", zap.Error(err))
	}
	sugar.Infow("Export finished", "dir", *outDir, "files", written)
}

// exportSeats writes seat_<id>.json for every seat and returns how many were written.
func exportSeats(snap *dataset.Snapshot, dir string) (int, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("create output dir: %w", err)
	}

	written := 0
	for _, id := range snap.SeatIDs() {
		seat, _ := snap.Lookup(id)
		data, err := json.MarshalIndent(seatFile{Name: seat.Profile, BPMData: seat.BPM}, "", "  ")
		if err != nil {
			return written, fmt.Errorf("encode seat %s: %w", id, err)
		}
		path := filepath.Join(dir, fmt.Sprintf("seat_%s.json", id))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", path, err)
		}
		written++
	}
	return written, nil
}
