// internal/store/enrollment/memory.go
package enrollment

import (
	"context"
	"sync"

	"member-registration/internal/models"
)

// MemoryStore is an in-memory registry for tests and local development.
type MemoryStore struct {
	mu       sync.RWMutex
	students map[string]models.EnrolledStudent
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{students: make(map[string]models.EnrolledStudent)}
}

// Add seeds a registry entry.
func (s *MemoryStore) Add(student models.EnrolledStudent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.students[student.StudentID] = student
}

func (s *MemoryStore) Lookup(ctx context.Context, studentID string) (*models.EnrolledStudent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	student, ok := s.students[studentID]
	if !ok {
		return nil, ErrNotFound
	}
	out := student
	return &out, nil
}

func (s *MemoryStore) Upsert(ctx context.Context, student *models.EnrolledStudent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.students[student.StudentID] = *student
	return nil
}
