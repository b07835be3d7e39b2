// internal/store/application/memory.go
package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"member-registration/internal/models"
)

// MemoryStore is an in-memory record store for tests and local development.
// The mutex gives the same insert-or-conflict atomicity the unique index
// gives in PostgreSQL.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]models.ApplicationRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]models.ApplicationRecord)}
}

func (s *MemoryStore) FindByStudentID(ctx context.Context, studentID string) (*models.ApplicationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[studentID]
	if !ok {
		return nil, ErrNotFound
	}
	out := rec
	return &out, nil
}

func (s *MemoryStore) Create(ctx context.Context, rec *models.ApplicationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[rec.StudentID]; exists {
		return fmt.Errorf("%w: studentId %s", ErrDuplicate, rec.StudentID)
	}

	stored := *rec
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	stored.UpdatedAt = stored.CreatedAt
	s.records[rec.StudentID] = stored
	return nil
}
