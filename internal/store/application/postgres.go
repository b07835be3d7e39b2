// internal/store/application/postgres.go
package application

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"member-registration/internal/models"

	"github.com/lib/pq"
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique constraint failures.
const uniqueViolation = "23505"

// PostgresStore persists application records with JSONB section payloads.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) FindByStudentID(ctx context.Context, studentID string) (*models.ApplicationRecord, error) {
	var (
		rec          models.ApplicationRecord
		basicInfo    []byte
		contact      []byte
		personalInfo []byte
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT student_id, name, basic_info, contact, personal_info, created_at, updated_at
		FROM application_records
		WHERE student_id = $1`, studentID).Scan(
		&rec.StudentID,
		&rec.Name,
		&basicInfo,
		&contact,
		&personalInfo,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("application lookup failed: %w", err)
	}

	if err := json.Unmarshal(basicInfo, &rec.BasicInfo); err != nil {
		return nil, fmt.Errorf("failed to decode basic_info: %w", err)
	}
	if err := json.Unmarshal(contact, &rec.Contact); err != nil {
		return nil, fmt.Errorf("failed to decode contact: %w", err)
	}
	if err := json.Unmarshal(personalInfo, &rec.PersonalInfo); err != nil {
		return nil, fmt.Errorf("failed to decode personal_info: %w", err)
	}

	return &rec, nil
}

// Create inserts a new record. A unique-constraint rejection maps to
// ErrDuplicate so callers never need their own read-then-write check.
func (s *PostgresStore) Create(ctx context.Context, rec *models.ApplicationRecord) error {
	basicInfoJSON, err := json.Marshal(rec.BasicInfo)
	if err != nil {
		return fmt.Errorf("failed to marshal basic info: %w", err)
	}
	contactJSON, err := json.Marshal(rec.Contact)
	if err != nil {
		return fmt.Errorf("failed to marshal contact: %w", err)
	}
	personalInfoJSON, err := json.Marshal(rec.PersonalInfo)
	if err != nil {
		return fmt.Errorf("failed to marshal personal info: %w", err)
	}

	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO application_records (
			student_id, name, basic_info, contact, personal_info, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $6)`,
		rec.StudentID,
		rec.Name,
		basicInfoJSON,
		contactJSON,
		personalInfoJSON,
		createdAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("%w: studentId %s", ErrDuplicate, rec.StudentID)
		}
		return fmt.Errorf("application insert failed: %w", err)
	}

	return nil
}
