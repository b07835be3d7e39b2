// internal/registration/validation_test.go
package registration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Schema Validation
// ==========================

func TestValidateRegisterRequest_Valid(t *testing.T) {
	fields, err := validateRegisterRequest(validRegisterRequest())

	require.NoError(t, err)
	assert.Empty(t, fields)
}

func TestValidateRegisterRequest_MissingSections(t *testing.T) {
	req := validRegisterRequest()
	req.BasicInfo = nil
	req.PersonalInfo = nil

	fields, err := validateRegisterRequest(req)

	require.NoError(t, err)
	assert.Contains(t, fields, "basicInfo")
	assert.Contains(t, fields, "personalInfo")
	assert.NotContains(t, fields, "contact")
}

func TestValidateRegisterRequest_MissingNestedFields(t *testing.T) {
	req := validRegisterRequest()
	req.BasicInfo.Year = ""
	req.Contact.Phone = ""
	req.PersonalInfo.IDCard = ""

	fields, err := validateRegisterRequest(req)

	require.NoError(t, err)
	assert.Contains(t, fields, "basicInfo.year")
	assert.Contains(t, fields, "contact.phone")
	assert.Contains(t, fields, "personalInfo.idCard")
}

func TestValidateRegisterRequest_OptionalFieldsMayBeEmpty(t *testing.T) {
	req := validRegisterRequest()
	req.Contact.QQ = ""
	req.PersonalInfo.CurrentResidence = ""
	req.PersonalInfo.DietaryRestrictions = ""

	fields, err := validateRegisterRequest(req)

	require.NoError(t, err)
	assert.Empty(t, fields)
}

func TestValidateRegisterRequest_ShortPassword(t *testing.T) {
	req := validRegisterRequest()
	req.Account.Password = "short"

	fields, err := validateRegisterRequest(req)

	require.NoError(t, err)
	assert.Contains(t, fields, "account.password")
}

func TestValidateRegisterRequest_InvalidEmail(t *testing.T) {
	req := validRegisterRequest()
	req.Contact.Email = "not-an-email"

	fields, err := validateRegisterRequest(req)

	require.NoError(t, err)
	assert.Contains(t, fields, "contact.email")
}

func TestValidateRegisterRequest_MissingIdentity(t *testing.T) {
	req := validRegisterRequest()
	req.StudentID = ""

	fields, err := validateRegisterRequest(req)

	require.NoError(t, err)
	assert.Contains(t, fields, "studentId")
}
