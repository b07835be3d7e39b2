// internal/store/enrollment/postgres.go
package enrollment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"member-registration/internal/models"
)

// PostgresStore reads the eligibility registry from PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Lookup(ctx context.Context, studentID string) (*models.EnrolledStudent, error) {
	var student models.EnrolledStudent
	err := s.db.QueryRowContext(ctx, `
		SELECT student_id, name, username, initial_password, enrolled_at
		FROM enrolled_students
		WHERE student_id = $1`, studentID).Scan(
		&student.StudentID,
		&student.Name,
		&student.Username,
		&student.InitialPassword,
		&student.EnrolledAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("enrollment lookup failed: %w", err)
	}

	return &student, nil
}

// Upsert inserts or replaces a registry entry. Administrative imports are
// authoritative, so conflicts overwrite.
func (s *PostgresStore) Upsert(ctx context.Context, student *models.EnrolledStudent) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO enrolled_students (student_id, name, username, initial_password, enrolled_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (student_id) DO UPDATE SET
			name = EXCLUDED.name,
			username = EXCLUDED.username,
			initial_password = EXCLUDED.initial_password`,
		student.StudentID,
		student.Name,
		student.Username,
		student.InitialPassword,
		student.EnrolledAt,
	)
	if err != nil {
		return fmt.Errorf("enrollment upsert failed: %w", err)
	}
	return nil
}
