package store

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"bibfilter/internal/query"
)

// MemStore implements Store in memory. Safe for concurrent use.
type MemStore struct {
	mu      sync.Mutex
	configs map[string]SavedConfig
	runs    []*Run
	nextRun int64
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{configs: make(map[string]SavedConfig)}
}

func (s *MemStore) SaveConfig(name string, cfg *query.Config) error {
	if name == "" {
		return errors.New("config name is empty")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("save config %q: %w", name, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.configs[name] = SavedConfig{Name: name, Config: cfg.Clone(), UpdatedAt: nowUTC()}
	return nil
}

func (s *MemStore) GetConfig(name string) (*query.Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc, ok := s.configs[name]
	if !ok {
		return nil, nil
	}
	return sc.Config.Clone(), nil
}

func (s *MemStore) ListConfigs() ([]SavedConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]SavedConfig, 0, len(s.configs))
	for _, sc := range s.configs {
		sc.Config = sc.Config.Clone()
		out = append(out, sc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemStore) DeleteConfig(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.configs[name]; !ok {
		return fmt.Errorf("config %q: %w", name, ErrNotFound)
	}
	delete(s.configs, name)
	return nil
}

func (s *MemStore) RecordRun(r *Run) (int64, error) {
	if r == nil {
		return 0, errors.New("run is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextRun++
	cp := *r
	cp.ID = s.nextRun
	cp.MatchedKeys = append([]string(nil), r.MatchedKeys...)
	if cp.CreatedAt == "" {
		cp.CreatedAt = nowUTC()
	}
	s.runs = append(s.runs, &cp)
	return cp.ID, nil
}

func (s *MemStore) GetRun(id int64) (*Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.runs {
		if r.ID == id {
			cp := *r
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("run %d: %w", id, ErrNotFound)
}

func (s *MemStore) ListRuns(limit int) ([]*Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*Run
	for i := len(s.runs) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		cp := *s.runs[i]
		out = append(out, &cp)
	}
	return out, nil
}

func (s *MemStore) Close() error { return nil }

var (
	_ Store = (*MemStore)(nil)
	_ Store = (*SqlStore)(nil)
)
