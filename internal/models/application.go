// internal/models/application.go
package models

import "time"

// BasicInfo is the academic profile section of an application.
type BasicInfo struct {
	Year      string `json:"year"`
	Gender    string `json:"gender"`
	College   string `json:"college"`
	Major     string `json:"major"`
	TechGroup string `json:"techGroup"`
}

// Contact holds the applicant's contact channels.
type Contact struct {
	Phone string `json:"phone"`
	Email string `json:"email"`
	QQ    string `json:"qq"`
}

// PersonalInfo holds extended personal details collected at sign-up.
type PersonalInfo struct {
	IDCard              string `json:"idCard"`
	Birthday            string `json:"birthday"`
	Hometown            string `json:"hometown"`
	CurrentResidence    string `json:"currentResidence"`
	Ethnicity           string `json:"ethnicity"`
	DietaryRestrictions string `json:"dietaryRestrictions"`
	HighSchool          string `json:"highSchool"`
}

// ApplicationRecord is a completed registration, keyed uniquely by the
// student identifier.
type ApplicationRecord struct {
	StudentID    string       `json:"studentId" db:"student_id"`
	Name         string       `json:"name" db:"name"`
	BasicInfo    BasicInfo    `json:"basicInfo" db:"basic_info"`
	Contact      Contact      `json:"contact" db:"contact"`
	PersonalInfo PersonalInfo `json:"personalInfo" db:"personal_info"`
	CreatedAt    time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time    `json:"updatedAt" db:"updated_at"`
}
