package repository

import (
	"context"
	"sync"
	"time"

	"github.com/okian/chartrec/internal/domain/model"
	"github.com/okian/chartrec/pkg/metrics"
)

// MemoryStore keeps the collection in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	records model.Collection
	closed  bool
}

// NewMemoryStore returns a store seeded with records.
func NewMemoryStore(records ...model.Record) *MemoryStore {
	return &MemoryStore{records: model.Collection(records).Clone()}
}

func (s *MemoryStore) Load(ctx context.Context) (model.Collection, error) {
	start := time.Now()
	s.mu.RLock()
	defer s.mu.RUnlock()

	var err error
	switch {
	case s.closed:
		err = ErrClosed
	default:
		err = ctx.Err()
	}
	metrics.RecordStoreOperation("load", time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return s.records.Clone(), nil
}

func (s *MemoryStore) Save(ctx context.Context, records model.Collection) error {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	switch {
	case s.closed:
		err = ErrClosed
	default:
		err = ctx.Err()
	}
	if err == nil {
		s.records = records.Clone()
	}
	metrics.RecordStoreOperation("save", time.Since(start), err)
	return err
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}
