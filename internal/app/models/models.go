package models

// Role defines the identity role
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTeacher, RoleStudent:
		return true
	default:
		return false
	}
}

// IsStaff reports whether the role may review applications
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleTeacher
}

// ApplicationStatus is the review state of an admission application
type ApplicationStatus string

const (
	StatusPending  ApplicationStatus = "pending"
	StatusApproved ApplicationStatus = "approved"
	StatusRejected ApplicationStatus = "rejected"
)

// Valid reports whether s is one of the known statuses
func (s ApplicationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether the workflow allows moving from s to next.
// Only pending applications can be decided; approved and rejected are final.
func (s ApplicationStatus) CanTransitionTo(next ApplicationStatus) bool {
	if s != StatusPending {
		return false
	}
	return next == StatusApproved || next == StatusRejected
}

// Gender of the applicant
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)
