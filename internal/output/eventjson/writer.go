package eventjson

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"panelwatch/internal/logger"
	"panelwatch/pkg/models"
)

// Writer appends classified events to a JSON lines file.
type Writer struct {
	file    *os.File
	encoder *json.Encoder
	mu      sync.Mutex
}

// NewWriter opens (or creates) the event log file for appending.
func NewWriter(path string) (*Writer, error) {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open event log file: %w", err)
	}

	logger.Infof("Event JSON writer initialized: %s", path)
	return &Writer{
		file:    f,
		encoder: json.NewEncoder(f),
	}, nil
}

// Name identifies the sink in logs and metrics.
func (w *Writer) Name() string { return "file" }

// WriteEvents appends a batch of events.
func (w *Writer) WriteEvents(events []*models.EventRecord) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, rec := range events {
		if err := w.encoder.Encode(rec); err != nil {
			return fmt.Errorf("encode event: %w", err)
		}
	}
	return nil
}

// Close closes the log file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file != nil {
		return w.file.Close()
	}
	return nil
}
