package store

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps state records in a map. Used for tests and local runs.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]StateRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]StateRecord)}
}

var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) FindAll(_ context.Context) ([]StateRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]StateRecord, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, clone(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StateCode < out[j].StateCode })
	return out, nil
}

func (s *MemoryStore) FindOne(_ context.Context, code string) (StateRecord, error) {
	code = normalizeCode(code)
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[code]
	if !ok {
		return StateRecord{}, notFound(code)
	}
	return clone(r), nil
}

func (s *MemoryStore) SetFunFacts(_ context.Context, code string, facts []string) (StateRecord, error) {
	code = normalizeCode(code)
	s.mu.Lock()
	defer s.mu.Unlock()
	r := StateRecord{StateCode: code, FunFacts: copyFacts(facts)}
	s.records[code] = r
	return clone(r), nil
}

func (s *MemoryStore) UnsetFunFacts(_ context.Context, code string) (StateRecord, error) {
	code = normalizeCode(code)
	s.mu.Lock()
	defer s.mu.Unlock()
	r := StateRecord{StateCode: code}
	s.records[code] = r
	return r, nil
}

func (s *MemoryStore) Close() error { return nil }

func clone(r StateRecord) StateRecord {
	if r.FunFacts != nil {
		r.FunFacts = copyFacts(r.FunFacts)
	}
	return r
}
