package timing

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// FileSink appends timing records as JSON lines to a file. The file is
// opened with O_APPEND and each record goes out in a single Write call, so
// concurrent appenders cannot interleave within a record.
type FileSink struct {
	mu   sync.Mutex
	file *os.File
}

// NewFileSink opens (or creates) the timing log at path.
func NewFileSink(path string) (*FileSink, error) {
	// #nosec G304 - path comes from operator configuration
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("open timing log: %w", err)
	}
	return &FileSink{file: f}, nil
}

// Report appends one record as a JSON line.
func (s *FileSink) Report(_ context.Context, rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal timing record: %w", err)
	}
	data = append(data, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.file.Write(data); err != nil {
		return fmt.Errorf("append timing record: %w", err)
	}
	return nil
}

// Close closes the underlying file.
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}
