package pipeline

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
)

// LineSource produces raw log lines. Run sends every line to out and returns when
// the input is exhausted or ctx is done. It must not close out.
type LineSource interface {
	Name() string
	Run(ctx context.Context, out chan<- []byte) error
}

const maxLineBytes = 1 << 20

// FileSource reads lines from a local log file.
type FileSource struct {
	path   string
	logger *zap.Logger
}

func NewFileSource(path string, logger *zap.Logger) *FileSource {
	return &FileSource{path: path, logger: logger}
}

func (f *FileSource) Name() string { return "file" }

// Run streams the file line by line.
func (f *FileSource) Run(ctx context.Context, out chan<- []byte) error {
	file, err := os.Open(f.path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSourceOpenFailed, err)
	}
	defer file.Close()

	f.logger.Info("Reading log file", zap.String("path", f.path))

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	lines := 0
	for scanner.Scan() {
		// Scanner reuses its buffer.
		line := append([]byte(nil), scanner.Bytes()...)
		select {
		case out <- line:
			lines++
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read %s: %w", f.path, err)
	}

	f.logger.Debug("Log file exhausted", zap.String("path", f.path), zap.Int("lines", lines))
	return nil
}
