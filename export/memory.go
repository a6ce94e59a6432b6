package export

import (
	"context"
	"fmt"
	"sync"
)

// DefaultHistoryLimit bounds the in-memory export history.
const DefaultHistoryLimit = 100

// MemorySink records downloads in memory (test/dev only).
type MemorySink struct {
	mu        sync.RWMutex
	downloads []Download
}

// NewMemorySink creates an in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// Save records a download.
func (s *MemorySink) Save(ctx context.Context, d Download) error {
	_ = ctx
	if d.Filename == "" {
		return NewError(KindValidation, "download filename is required", nil)
	}
	data := make([]byte, len(d.Data))
	copy(data, d.Data)
	d.Data = data

	s.mu.Lock()
	s.downloads = append(s.downloads, d)
	s.mu.Unlock()
	return nil
}

// Downloads returns the recorded downloads in save order.
func (s *MemorySink) Downloads() []Download {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Download, len(s.downloads))
	copy(out, s.downloads)
	return out
}

// Get returns the most recent download saved under filename.
func (s *MemorySink) Get(filename string) (Download, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.downloads) - 1; i >= 0; i-- {
		if s.downloads[i].Filename == filename {
			return s.downloads[i], nil
		}
	}
	return Download{}, NewError(KindNotFound, fmt.Sprintf("download %q not found", filename), nil)
}

// Reset clears recorded downloads.
func (s *MemorySink) Reset() {
	s.mu.Lock()
	s.downloads = nil
	s.mu.Unlock()
}

// History keeps the most recent export results in memory, newest first.
type History struct {
	mu      sync.RWMutex
	limit   int
	results []ExportResult
}

// NewHistory creates a history bounded to limit entries.
func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &History{limit: limit}
}

// Add records a result.
func (h *History) Add(result ExportResult) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.results = append([]ExportResult{result}, h.results...)
	if len(h.results) > h.limit {
		h.results = h.results[:h.limit]
	}
}

// List returns results, optionally filtered by format.
func (h *History) List(format Format) []ExportResult {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]ExportResult, 0, len(h.results))
	for _, result := range h.results {
		if format != "" && result.Format != format {
			continue
		}
		out = append(out, result)
	}
	return out
}
