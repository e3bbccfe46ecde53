package models

import (
	"strings"
	"time"
)

// Application defines one student's admission record based on the 'applications' table
type Application struct {
	ID                string            `json:"id" db:"id" example:"6f1c2a8e-3b7d-4c55-9a0e-1d2f3a4b5c6d"`
	FullName          string            `json:"fullName" db:"full_name" example:"Muhammad Ahmad"`
	FatherName        string            `json:"fatherName" db:"father_name" example:"Muhammad Ali"`
	DateOfBirth       string            `json:"dateOfBirth" db:"date_of_birth" example:"2010-05-15"`
	Gender            Gender            `json:"gender" db:"gender" example:"male"`
	Address           string            `json:"address" db:"address" example:"Ribat, Dir Lower, Khyber Pakhtunkhwa"`
	PhoneNumber       string            `json:"phoneNumber" db:"phone_number" example:"03001234567"`
	PreviousEducation string            `json:"previousEducation" db:"previous_education" example:"Primary"`
	ClassApplyingFor  string            `json:"classApplyingFor" db:"class_applying_for" example:"hifz"`
	IDNumber          *string           `json:"idNumber,omitempty" db:"id_number"`
	Status            ApplicationStatus `json:"status" db:"status" example:"pending"`
	RollNumber        *string           `json:"rollNumber,omitempty" db:"roll_number" example:"H-001"`
	Section           *string           `json:"section,omitempty" db:"section" example:"A"`
	AcademicYear      string            `json:"academicYear" db:"academic_year" example:"2024-2025"`
	CreatedAt         time.Time         `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time         `json:"updatedAt" db:"updated_at"`
}

// Clone returns a deep copy so callers never share optional fields with the store
func (a *Application) Clone() *Application {
	if a == nil {
		return nil
	}
	c := *a
	c.IDNumber = cloneString(a.IDNumber)
	c.RollNumber = cloneString(a.RollNumber)
	c.Section = cloneString(a.Section)
	return &c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// Stats holds application counts grouped by status; always derived, never stored
type Stats struct {
	TotalStudents     int `json:"totalStudents" example:"4"`
	PendingAdmissions int `json:"pendingAdmissions" example:"2"`
	ApprovedStudents  int `json:"approvedStudents" example:"2"`
	RejectedStudents  int `json:"rejectedStudents" example:"0"`
}

// Add counts one application into the stats
func (s *Stats) Add(status ApplicationStatus) {
	s.TotalStudents++
	switch status {
	case StatusPending:
		s.PendingAdmissions++
	case StatusApproved:
		s.ApprovedStudents++
	case StatusRejected:
		s.RejectedStudents++
	}
}

// ListOrder controls the order List returns applications in
type ListOrder int

const (
	// OrderNewestFirst sorts by createdAt descending, later insertions first on ties
	OrderNewestFirst ListOrder = iota
	// OrderInserted keeps the order applications were added to the collection
	OrderInserted
)

// ApplicationFilter selects applications for listing and export.
// Zero values mean "all"; Size 0 disables pagination.
type ApplicationFilter struct {
	Status    ApplicationStatus
	ClassCode string
	Search    string
	Order     ListOrder
	Page      int
	Size      int
}

// Matches reports whether a passes the status, class and search criteria
func (f ApplicationFilter) Matches(a *Application) bool {
	if f.Status != "" && a.Status != f.Status {
		return false
	}
	if f.ClassCode != "" && a.ClassApplyingFor != f.ClassCode {
		return false
	}

	// search text is matched as typed, surrounding spaces included
	query := f.Search
	if query == "" {
		return true
	}
	lower := strings.ToLower(query)
	if strings.Contains(strings.ToLower(a.FullName), lower) ||
		strings.Contains(strings.ToLower(a.FatherName), lower) ||
		strings.Contains(a.PhoneNumber, query) {
		return true
	}
	return a.RollNumber != nil && strings.Contains(strings.ToLower(*a.RollNumber), lower)
}
