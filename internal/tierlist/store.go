package tierlist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Counts tracks how many cards sit in each tier row of one list.
type Counts map[Tier]int

// ZeroCounts returns a fresh all-zero counter map.
func ZeroCounts() Counts {
	return Counts{TierS: 0, TierA: 0, TierB: 0, TierC: 0, TierD: 0}
}

// ErrNotFound reports an absent canvas.
var ErrNotFound = errors.New("tierlist: not found")

// Store persists the canvas image and the per-tier counters for each list.
// Canvas and counters must be independently loadable: a partial write can
// leave one present without the other. Save writes the canvas before the
// counters so a crash never records a count for a card that was not drawn.
type Store interface {
	LoadCanvas(ctx context.Context, list string) ([]byte, error)
	LoadCounts(ctx context.Context, list string) (Counts, error)
	Save(ctx context.Context, list string, canvas []byte, counts Counts) error
	Reset(ctx context.Context, list string) error
}

// FileStore keeps each list as a PNG plus a small JSON counter file in one
// directory.
type FileStore struct {
	dir string
}

// NewFileStore creates the data directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) canvasPath(list string) string {
	return filepath.Join(s.dir, list+".png")
}

func (s *FileStore) countsPath(list string) string {
	return filepath.Join(s.dir, list+".counts.json")
}

func (s *FileStore) LoadCanvas(ctx context.Context, list string) ([]byte, error) {
	data, err := os.ReadFile(s.canvasPath(list))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *FileStore) LoadCounts(ctx context.Context, list string) (Counts, error) {
	data, err := os.ReadFile(s.countsPath(list))
	if errors.Is(err, os.ErrNotExist) {
		return ZeroCounts(), nil
	}
	if err != nil {
		return nil, err
	}
	var raw map[string]int
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse counts: %w", err)
	}
	counts := ZeroCounts()
	for k, v := range raw {
		counts[Normalize(k)] = v
	}
	return counts, nil
}

func (s *FileStore) Save(ctx context.Context, list string, canvas []byte, counts Counts) error {
	if err := os.WriteFile(s.canvasPath(list), canvas, 0o644); err != nil {
		return fmt.Errorf("write canvas: %w", err)
	}
	data, err := json.Marshal(counts)
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.countsPath(list), data, 0o644); err != nil {
		return fmt.Errorf("write counts: %w", err)
	}
	return nil
}

func (s *FileStore) Reset(ctx context.Context, list string) error {
	if err := os.Remove(s.canvasPath(list)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if err := os.Remove(s.countsPath(list)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
