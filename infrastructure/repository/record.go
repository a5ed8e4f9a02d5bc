// Package repository holds the stores behind the usecases.
package repository

import (
	"context"
	"sync"

	"github.com/vfg2006/receivables-dashboard-api/internal/domain"
)

// RecordStore keeps one record per customer code. Upsert is an atomic
// read-modify-write: a first-seen code is created with the period label
// attached, a known code gets the row merged over it.
type RecordStore interface {
	Upsert(ctx context.Context, code string, row domain.Row, month string) (created bool, err error)
	UpsertMany(ctx context.Context, inputs []domain.RecordInput, month string) (domain.UpsertCounts, error)
	// Get returns nil, nil for an unknown code.
	Get(ctx context.Context, code string) (*domain.Record, error)
	List(ctx context.Context) ([]domain.Record, error)
	Count(ctx context.Context) (int, error)
}

type memoryRecordStore struct {
	mu      sync.Mutex
	records map[string]*domain.Record
	order   []string
}

// NewMemoryRecordStore returns a process-local store; contents are lost on restart.
func NewMemoryRecordStore() RecordStore {
	return &memoryRecordStore{
		records: make(map[string]*domain.Record),
	}
}

func (s *memoryRecordStore) Upsert(ctx context.Context, code string, row domain.Row, month string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.upsertLocked(code, row, month), nil
}

// UpsertMany applies the batch under a single lock acquisition so a
// concurrent upload never observes half of it.
func (s *memoryRecordStore) UpsertMany(ctx context.Context, inputs []domain.RecordInput, month string) (domain.UpsertCounts, error) {
	if err := ctx.Err(); err != nil {
		return domain.UpsertCounts{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var counts domain.UpsertCounts
	for _, in := range inputs {
		if s.upsertLocked(in.CustomerCode, in.Row, month) {
			counts.Created++
		} else {
			counts.Updated++
		}
	}

	return counts, nil
}

func (s *memoryRecordStore) upsertLocked(code string, row domain.Row, month string) bool {
	if existing, ok := s.records[code]; ok {
		existing.Merge(row)
		return false
	}

	record := domain.NewRecord(code, row, month)
	s.records[code] = &record
	s.order = append(s.order, code)
	return true
}

func (s *memoryRecordStore) Get(ctx context.Context, code string) (*domain.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[code]
	if !ok {
		return nil, nil
	}

	clone := record.Clone()
	return &clone, nil
}

// List returns copies in insertion order.
func (s *memoryRecordStore) List(ctx context.Context) ([]domain.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]domain.Record, 0, len(s.order))
	for _, code := range s.order {
		records = append(records, s.records[code].Clone())
	}

	return records, nil
}

func (s *memoryRecordStore) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.records), nil
}
