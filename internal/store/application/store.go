// Package application persists completed registrations, one per student.
// The unique constraint on the student identifier is the only arbiter for
// concurrent submissions of the same identifier.
package application

import (
	"context"
	"errors"

	"member-registration/internal/models"
)

var (
	// ErrNotFound means no record exists for the identifier.
	ErrNotFound = errors.New("application: record not found")

	// ErrDuplicate means a record for the identifier already exists. Create
	// returns it when the unique constraint rejects the insert, which makes
	// insert-or-conflict atomic at the store layer.
	ErrDuplicate = errors.New("application: record already exists")
)

// Store is the persistence surface for completed registrations.
type Store interface {
	FindByStudentID(ctx context.Context, studentID string) (*models.ApplicationRecord, error)
	Create(ctx context.Context, rec *models.ApplicationRecord) error
}
