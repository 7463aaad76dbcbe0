package checkpoint

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// jsonSnapshot is the whole-file shape written on every commit.
type jsonSnapshot struct {
	Metadata Metadata                  `json:"metadata"`
	HasMeta  bool                      `json:"has_metadata"`
	Pages    map[string]PageCheckpoint `json:"pages"`
	Queue    []QueueItem               `json:"queue"`
}

// JSONStore is the single-file checkpoint backend: simple, human-inspectable,
// and fine up to the low tens of thousands of pages. State lives entirely in
// memory between commits; Commit is the only point that touches disk, and it
// does so crash-safely (temp file + fsync + atomic rename into place).
type JSONStore struct {
	path string

	mu   sync.Mutex
	snap jsonSnapshot
}

func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path, snap: jsonSnapshot{Pages: make(map[string]PageCheckpoint)}}
}

// Initialize loads any existing snapshot from disk. A missing file is not an
// error - it means this is a fresh run.
func (s *JSONStore) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("checkpoint: read %s: %w", s.path, err)
	}

	var snap jsonSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("checkpoint: parse %s: %w", s.path, err)
	}
	if snap.Pages == nil {
		snap.Pages = make(map[string]PageCheckpoint)
	}
	s.snap = snap
	return nil
}

func (s *JSONStore) SaveMetadata(ctx context.Context, m Metadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Metadata = m
	s.snap.HasMeta = true
	return nil
}

func (s *JSONStore) LoadMetadata(ctx context.Context) (Metadata, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.Metadata, s.snap.HasMeta, nil
}

func (s *JSONStore) AddPage(ctx context.Context, p PageCheckpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Pages[p.URL] = p
	return nil
}

func (s *JSONStore) GetPage(ctx context.Context, url string) (PageCheckpoint, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.snap.Pages[url]
	return p, ok, nil
}

func (s *JSONStore) HasPage(ctx context.Context, url string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.snap.Pages[url]
	return ok, nil
}

func (s *JSONStore) GetPageCount(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.snap.Pages), nil
}

// IterPages copies the current page set into a buffered channel up front:
// the JSON backend keeps everything in memory anyway, so there is no
// streaming benefit to a lazier implementation, and this avoids holding the
// lock across a caller-controlled receive loop.
func (s *JSONStore) IterPages(ctx context.Context) (<-chan PageCheckpoint, error) {
	s.mu.Lock()
	pages := make([]PageCheckpoint, 0, len(s.snap.Pages))
	for _, p := range s.snap.Pages {
		pages = append(pages, p)
	}
	s.mu.Unlock()

	ch := make(chan PageCheckpoint, len(pages))
	for _, p := range pages {
		ch <- p
	}
	close(ch)
	return ch, nil
}

func (s *JSONStore) SaveQueue(ctx context.Context, items []QueueItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Queue = append([]QueueItem(nil), items...)
	return nil
}

func (s *JSONStore) GetQueue(ctx context.Context) ([]QueueItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]QueueItem, len(s.snap.Queue))
	copy(out, s.snap.Queue)
	return out, nil
}

// Commit writes the full in-memory snapshot to disk: marshal, write to a
// temp file in the same directory, fsync, then atomically rename over the
// target. This guarantees a crash mid-write never leaves a truncated or
// half-written checkpoint in place.
func (s *JSONStore) Commit(ctx context.Context) error {
	s.mu.Lock()
	data, err := json.MarshalIndent(s.snap, "", "  ")
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("checkpoint: marshal: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".checkpoint-*.tmp")
	if err != nil {
		return fmt.Errorf("checkpoint: create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("checkpoint: write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("checkpoint: fsync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("checkpoint: close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("checkpoint: rename temp file into place: %w", err)
	}
	return nil
}

func (s *JSONStore) Close() error {
	return nil
}
