package dto

import (
	"time"

	"github.com/ribat/admissions/internal/app/models"
)

// ApplicationRequest is the public admission form
type ApplicationRequest struct {
	FullName          string        `json:"fullName" validate:"required,min=2,max=100" example:"Muhammad Ahmad"`
	FatherName        string        `json:"fatherName" validate:"required,min=2,max=100" example:"Muhammad Ali"`
	DateOfBirth       string        `json:"dateOfBirth" validate:"required" example:"2010-05-15"`
	Gender            models.Gender `json:"gender" validate:"required,oneof=male female" example:"male"`
	Address           string        `json:"address" validate:"required,min=10,max=500" example:"Ribat, Dir Lower, Khyber Pakhtunkhwa"`
	PhoneNumber       string        `json:"phoneNumber" validate:"required,phone" example:"03001234567"`
	PreviousEducation string        `json:"previousEducation" validate:"required,min=2,max=200" example:"Primary"`
	ClassApplyingFor  string        `json:"classApplyingFor" validate:"required,classcode" example:"hifz"`
	IDNumber          *string       `json:"idNumber,omitempty" example:"12345-1234567-1"`
	AcademicYear      string        `json:"academicYear" validate:"required" example:"2024-2025"`
}

// ApplicationPatchRequest carries the applicant fields staff may correct.
// Nil fields are left unchanged.
type ApplicationPatchRequest struct {
	FullName          *string        `json:"fullName,omitempty" validate:"omitnil,min=2,max=100"`
	FatherName        *string        `json:"fatherName,omitempty" validate:"omitnil,min=2,max=100"`
	DateOfBirth       *string        `json:"dateOfBirth,omitempty" validate:"omitnil,required"`
	Gender            *models.Gender `json:"gender,omitempty" validate:"omitnil,oneof=male female"`
	Address           *string        `json:"address,omitempty" validate:"omitnil,min=10,max=500"`
	PhoneNumber       *string        `json:"phoneNumber,omitempty" validate:"omitnil,phone"`
	PreviousEducation *string        `json:"previousEducation,omitempty" validate:"omitnil,min=2,max=200"`
	ClassApplyingFor  *string        `json:"classApplyingFor,omitempty" validate:"omitnil,classcode"`
	IDNumber          *string        `json:"idNumber,omitempty"`
	AcademicYear      *string        `json:"academicYear,omitempty" validate:"omitnil,required"`
	// ExpectedUpdatedAt rejects the patch when the record changed after the caller read it
	ExpectedUpdatedAt *time.Time `json:"expectedUpdatedAt,omitempty"`
}

// ApproveRequest places an applicant in a class
type ApproveRequest struct {
	RollNumber string `json:"rollNumber" validate:"notblank" example:"H-001"`
	Section    string `json:"section" validate:"notblank" example:"A"`
}

// ApplicationListQuery holds list and export filters
type ApplicationListQuery struct {
	Status string `form:"status" example:"pending"`
	Class  string `form:"class" example:"hifz"`
	Search string `form:"search" example:"ahmad"`
}

// Filter converts the query to a repository filter
func (q ApplicationListQuery) Filter() models.ApplicationFilter {
	return models.ApplicationFilter{
		Status:    models.ApplicationStatus(q.Status),
		ClassCode: q.Class,
		Search:    q.Search,
	}
}

// CatalogResponse lists the classes, sections and academic years offered
type CatalogResponse struct {
	Classes       []models.ClassOption `json:"classes"`
	Sections      []string             `json:"sections"`
	AcademicYears []string             `json:"academicYears"`
}
