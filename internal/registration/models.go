// internal/registration/models.go
package registration

import "member-registration/internal/models"

// CheckRequest is the query carried by the status endpoint.
type CheckRequest struct {
	StudentID string `json:"studentId"`
}

// CheckResponse reports enrollment and completion status for an identifier.
// The registry's pre-assigned credential pair is echoed for enrolled
// students so the client can offer it as a default. User carries the stored
// record's identity once the registration is completed.
type CheckResponse struct {
	Enrolled        bool            `json:"enrolled"`
	Completed       bool            `json:"completed"`
	Name            string          `json:"name,omitempty"`
	Username        string          `json:"username,omitempty"`
	InitialPassword string          `json:"initialPassword,omitempty"`
	User            *RegisteredUser `json:"user,omitempty"`
}

// RegisteredUser is the identity pair persisted with a completed
// registration.
type RegisteredUser struct {
	StudentID string `json:"studentId"`
	Name      string `json:"name"`
}

// VerifyRequest is the identity claim checked before the wizard starts.
type VerifyRequest struct {
	StudentID string `json:"studentId"`
	Name      string `json:"name,omitempty"`
}

// VerifyResponse confirms the claim and returns the registry name.
type VerifyResponse struct {
	Success bool   `json:"success"`
	Name    string `json:"name"`
}

// CreateUserRequest provisions an identity without persisting a record.
// Email is optional; when absent it is derived from the student identifier.
type CreateUserRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	StudentID string `json:"studentId"`
}

// CreateUserResponse reports the provisioned identity. PasswordSet is false
// when the explicit password call failed; the account still exists and the
// password can be set through a reset flow.
type CreateUserResponse struct {
	Success     bool     `json:"success"`
	User        UserInfo `json:"user"`
	PasswordSet bool     `json:"passwordSet"`
}

// UserInfo is the identity subset returned to clients.
type UserInfo struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
}

// RegisterRequest is the full submission. Section pointers distinguish an
// absent section from an empty one for validation.
type RegisterRequest struct {
	StudentID    string               `json:"studentId"`
	Name         string               `json:"name"`
	BasicInfo    *models.BasicInfo    `json:"basicInfo,omitempty"`
	Contact      *models.Contact      `json:"contact,omitempty"`
	PersonalInfo *models.PersonalInfo `json:"personalInfo,omitempty"`
	Account      *AccountSection      `json:"account,omitempty"`
}

// AccountSection carries the credentials chosen by the applicant.
type AccountSection struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterResponse is the success envelope for a completed registration.
// User is absent when the outcome is an idempotent replay of a registration
// that already completed.
type RegisterResponse struct {
	Success     bool      `json:"success"`
	User        *UserInfo `json:"user,omitempty"`
	PasswordSet bool      `json:"passwordSet"`
}
