// internal/store/application/postgres_test.go
package application

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"member-registration/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestRecord() *models.ApplicationRecord {
	return &models.ApplicationRecord{
		StudentID: "2021000001",
		Name:      "Alice",
		BasicInfo: models.BasicInfo{
			Year:      "2026",
			Gender:    "female",
			College:   "Software",
			Major:     "SE",
			TechGroup: "web",
		},
		Contact: models.Contact{
			Phone: "13800000000",
			Email: "alice@example.com",
			QQ:    "123456",
		},
		PersonalInfo: models.PersonalInfo{
			IDCard:     "610100200301010000",
			Birthday:   "2003-01-01",
			Hometown:   "Xi'an",
			Ethnicity:  "Han",
			HighSchool: "No.1 High School",
		},
	}
}

// ==========================
// FindByStudentID
// ==========================

func TestPostgresStore_FindByStudentID_Found(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rec := createTestRecord()
	basicInfoJSON, _ := json.Marshal(rec.BasicInfo)
	contactJSON, _ := json.Marshal(rec.Contact)
	personalInfoJSON, _ := json.Marshal(rec.PersonalInfo)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT student_id, name, basic_info, contact, personal_info`).
		WithArgs("2021000001").
		WillReturnRows(sqlmock.NewRows(
			[]string{"student_id", "name", "basic_info", "contact", "personal_info", "created_at", "updated_at"},
		).AddRow("2021000001", "Alice", basicInfoJSON, contactJSON, personalInfoJSON, now, now))

	store := NewPostgresStore(db)

	got, err := store.FindByStudentID(context.Background(), "2021000001")

	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Name)
	assert.Equal(t, "web", got.BasicInfo.TechGroup)
	assert.Equal(t, "alice@example.com", got.Contact.Email)
	assert.Equal(t, "Xi'an", got.PersonalInfo.Hometown)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_FindByStudentID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT student_id, name, basic_info, contact, personal_info`).
		WithArgs("9999999999").
		WillReturnRows(sqlmock.NewRows(
			[]string{"student_id", "name", "basic_info", "contact", "personal_info", "created_at", "updated_at"},
		))

	store := NewPostgresStore(db)

	got, err := store.FindByStudentID(context.Background(), "9999999999")

	assert.Nil(t, got)
	assert.True(t, errors.Is(err, ErrNotFound))

	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Create
// ==========================

func TestPostgresStore_Create_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO application_records`).
		WithArgs(
			"2021000001",
			"Alice",
			sqlmock.AnyArg(), // basic_info JSON
			sqlmock.AnyArg(), // contact JSON
			sqlmock.AnyArg(), // personal_info JSON
			sqlmock.AnyArg(), // created_at
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	store := NewPostgresStore(db)

	err = store.Create(context.Background(), createTestRecord())

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Create_Duplicate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO application_records`).
		WithArgs(
			"2021000001",
			"Alice",
			sqlmock.AnyArg(),
			sqlmock.AnyArg(),
			sqlmock.AnyArg(),
			sqlmock.AnyArg(),
		).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "application_records_student_id_key"})

	store := NewPostgresStore(db)

	err = store.Create(context.Background(), createTestRecord())

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicate))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Create_InsertError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO application_records`).
		WithArgs(
			"2021000001",
			"Alice",
			sqlmock.AnyArg(),
			sqlmock.AnyArg(),
			sqlmock.AnyArg(),
			sqlmock.AnyArg(),
		).
		WillReturnError(errors.New("connection lost"))

	store := NewPostgresStore(db)

	err = store.Create(context.Background(), createTestRecord())

	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrDuplicate))

	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// MemoryStore parity
// ==========================

func TestMemoryStore_CreateAndFind(t *testing.T) {
	store := NewMemoryStore()
	rec := createTestRecord()

	_, err := store.FindByStudentID(context.Background(), rec.StudentID)
	assert.True(t, errors.Is(err, ErrNotFound))

	require.NoError(t, store.Create(context.Background(), rec))

	got, err := store.FindByStudentID(context.Background(), rec.StudentID)
	require.NoError(t, err)
	assert.Equal(t, rec.Name, got.Name)
	assert.False(t, got.CreatedAt.IsZero())

	// Second insert for the same identifier loses
	err = store.Create(context.Background(), rec)
	assert.True(t, errors.Is(err, ErrDuplicate))
}
