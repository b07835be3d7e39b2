// internal/models/enrollment.go
package models

import "time"

// EnrolledStudent is one row of the eligibility registry: a student admitted
// for the current intake, with the account pair pre-assigned by the admins.
type EnrolledStudent struct {
	StudentID       string    `json:"studentId" db:"student_id"`
	Name            string    `json:"name" db:"name"`
	Username        string    `json:"username" db:"username"`
	InitialPassword string    `json:"initialPassword" db:"initial_password"`
	EnrolledAt      time.Time `json:"enrolledAt" db:"enrolled_at"`
}
