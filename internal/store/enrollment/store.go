// Package enrollment holds the eligibility registry: the admin-maintained
// list of students allowed to register for the current intake.
package enrollment

import (
	"context"
	"errors"

	"member-registration/internal/models"
)

// ErrNotFound is returned when a student identifier is absent from the
// registry. Absence is a valid negative answer, not a failure.
var ErrNotFound = errors.New("enrollment: student not found")

// Store is the read surface used by the registration workflow.
type Store interface {
	Lookup(ctx context.Context, studentID string) (*models.EnrolledStudent, error)
}

// Writer is the administrative surface used by the import tool only. The
// workflow never writes to the registry.
type Writer interface {
	Upsert(ctx context.Context, student *models.EnrolledStudent) error
}
