// Package memstore provides an in-memory implementation of patient.Store.
package memstore

import (
	"context"
	"sync"

	"github.com/linnemanlabs/triageboard/internal/patient"
)

// Store holds patient records in memory for the process lifetime.
type Store struct {
	mu      sync.RWMutex
	records []*patient.Record // index -> record
}

// New initializes a new in-memory Store.
func New() *Store {
	return &Store{}
}

// Append stores a copy of the record and returns its index.
func (s *Store) Append(_ context.Context, rec *patient.Record) (int, error) {
	cp := rec.Clone()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, cp)
	return len(s.records) - 1, nil
}

// ReadAll returns copies of every record in insertion order.
func (s *Store) ReadAll(_ context.Context) ([]*patient.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*patient.Record, len(s.records))
	for i, r := range s.records {
		out[i] = r.Clone()
	}
	return out, nil
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Reset drops every record. Indices restart at zero.
func (s *Store) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	return nil
}
