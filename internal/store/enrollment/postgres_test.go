// internal/store/enrollment/postgres_test.go
package enrollment

import (
	"context"
	"errors"
	"testing"
	"time"

	"member-registration/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Lookup
// ==========================

func TestPostgresStore_Lookup_Found(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	enrolledAt := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT student_id, name, username, initial_password, enrolled_at`).
		WithArgs("2021000001").
		WillReturnRows(sqlmock.NewRows(
			[]string{"student_id", "name", "username", "initial_password", "enrolled_at"},
		).AddRow("2021000001", "Alice", "alice01", "init-pass", enrolledAt))

	store := NewPostgresStore(db)

	student, err := store.Lookup(context.Background(), "2021000001")

	require.NoError(t, err)
	assert.Equal(t, "2021000001", student.StudentID)
	assert.Equal(t, "Alice", student.Name)
	assert.Equal(t, "alice01", student.Username)
	assert.Equal(t, "init-pass", student.InitialPassword)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Lookup_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT student_id, name, username, initial_password, enrolled_at`).
		WithArgs("9999999999").
		WillReturnRows(sqlmock.NewRows(
			[]string{"student_id", "name", "username", "initial_password", "enrolled_at"},
		))

	store := NewPostgresStore(db)

	student, err := store.Lookup(context.Background(), "9999999999")

	assert.Nil(t, student)
	assert.True(t, errors.Is(err, ErrNotFound))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Lookup_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT student_id, name, username, initial_password, enrolled_at`).
		WithArgs("2021000001").
		WillReturnError(errors.New("connection reset"))

	store := NewPostgresStore(db)

	_, err = store.Lookup(context.Background(), "2021000001")

	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))

	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Upsert
// ==========================

func TestPostgresStore_Upsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO enrolled_students`).
		WithArgs("2021000001", "Alice", "alice01", "init-pass", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	store := NewPostgresStore(db)

	err = store.Upsert(context.Background(), &models.EnrolledStudent{
		StudentID:       "2021000001",
		Name:            "Alice",
		Username:        "alice01",
		InitialPassword: "init-pass",
		EnrolledAt:      time.Now().UTC(),
	})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// MemoryStore parity
// ==========================

func TestMemoryStore_LookupAndUpsert(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.Lookup(context.Background(), "2021000001")
	assert.True(t, errors.Is(err, ErrNotFound))

	store.Add(models.EnrolledStudent{
		StudentID: "2021000001",
		Name:      "Alice",
		Username:  "alice01",
	})

	student, err := store.Lookup(context.Background(), "2021000001")
	require.NoError(t, err)
	assert.Equal(t, "Alice", student.Name)

	err = store.Upsert(context.Background(), &models.EnrolledStudent{
		StudentID: "2021000001",
		Name:      "Alice Zhang",
		Username:  "alice01",
	})
	require.NoError(t, err)

	student, err = store.Lookup(context.Background(), "2021000001")
	require.NoError(t, err)
	assert.Equal(t, "Alice Zhang", student.Name)
}
