package validation_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ribat/admissions/internal/app/models"
	"github.com/ribat/admissions/internal/app/models/dto"
	"github.com/ribat/admissions/internal/pkg/apperrors"
	"github.com/ribat/admissions/internal/pkg/validation"
)

func validForm() dto.ApplicationRequest {
	return dto.ApplicationRequest{
		FullName:          "Ali",
		FatherName:        "Umar",
		DateOfBirth:       "2012-01-01",
		Gender:            models.GenderMale,
		Address:           "Village Ribat, Dir Lower",
		PhoneNumber:       "03001234567",
		PreviousEducation: "Primary",
		ClassApplyingFor:  "hifz",
		AcademicYear:      "2024-2025",
	}
}

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	var verr *apperrors.ValidationError
	require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	return verr.Fields
}

func TestStruct_ValidApplication(t *testing.T) {
	assert.NoError(t, validation.Struct(validForm()))
}

func TestStruct_ApplicationFieldMessages(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*dto.ApplicationRequest)
		field   string
		message string
	}{
		{"short name", func(r *dto.ApplicationRequest) { r.FullName = "A" }, "fullName", "Name must be at least 2 characters"},
		{"empty name", func(r *dto.ApplicationRequest) { r.FullName = "" }, "fullName", "Name must be at least 2 characters"},
		{"short father name", func(r *dto.ApplicationRequest) { r.FatherName = "B" }, "fatherName", "Father's name must be at least 2 characters"},
		{"missing birth date", func(r *dto.ApplicationRequest) { r.DateOfBirth = "" }, "dateOfBirth", "Date of birth is required"},
		{"unknown gender", func(r *dto.ApplicationRequest) { r.Gender = "other" }, "gender", "Please select gender"},
		{"short address", func(r *dto.ApplicationRequest) { r.Address = "Dir" }, "address", "Please provide a complete address"},
		{"short phone", func(r *dto.ApplicationRequest) { r.PhoneNumber = "12345" }, "phoneNumber", "Please enter a valid phone number"},
		{"letters in phone", func(r *dto.ApplicationRequest) { r.PhoneNumber = "0300abc4567" }, "phoneNumber", "Please enter a valid phone number"},
		{"missing education", func(r *dto.ApplicationRequest) { r.PreviousEducation = "" }, "previousEducation", "Please specify previous education"},
		{"unknown class", func(r *dto.ApplicationRequest) { r.ClassApplyingFor = "physics" }, "classApplyingFor", "Please select a class"},
		{"missing year", func(r *dto.ApplicationRequest) { r.AcademicYear = "" }, "academicYear", "Please select academic year"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validForm()
			tt.mutate(&form)

			err := validation.Struct(form)
			require.Error(t, err)
			fields := fieldsOf(t, err)
			assert.Equal(t, tt.message, fields[tt.field])
			assert.Len(t, fields, 1)
		})
	}
}

func TestStruct_NameLengthCountsRunes(t *testing.T) {
	form := validForm()
	form.FullName = "عل"
	assert.NoError(t, validation.Struct(form))

	form.FullName = strings.Repeat("ب", 101)
	fields := fieldsOf(t, validation.Struct(form))
	assert.Equal(t, "Name is too long", fields["fullName"])
}

func TestStruct_PhoneAcceptsDashesAndSpaces(t *testing.T) {
	for _, phone := range []string{"+92-300-1234567", "0300 123 4567", "0300-1234567"} {
		form := validForm()
		form.PhoneNumber = phone
		assert.NoError(t, validation.Struct(form), phone)
	}
}

func TestStruct_MessageIsFirstFailure(t *testing.T) {
	err := validation.Struct(dto.ApproveRequest{RollNumber: "  ", Section: ""})
	require.Error(t, err)

	fields := fieldsOf(t, err)
	assert.Equal(t, "Roll number is required", fields["rollNumber"])
	assert.Equal(t, "Section is required", fields["section"])
	assert.True(t, strings.HasPrefix(err.Error(), "Roll number is required"))
}

func TestStruct_PatchSkipsNilFields(t *testing.T) {
	assert.NoError(t, validation.Struct(dto.ApplicationPatchRequest{}))

	short := "A"
	fields := fieldsOf(t, validation.Struct(dto.ApplicationPatchRequest{FullName: &short}))
	assert.Equal(t, "Name must be at least 2 characters", fields["fullName"])
}

func TestIsValidPassword(t *testing.T) {
	assert.False(t, validation.IsValidPassword(""))
	assert.False(t, validation.IsValidPassword("12345"))
	assert.True(t, validation.IsValidPassword("123456"))
	// length is counted in runes, not bytes
	assert.False(t, validation.IsValidPassword("سلامت"))
	assert.True(t, validation.IsValidPassword("سلامتی"))
}

func TestLooksLikeEmail(t *testing.T) {
	assert.True(t, validation.LooksLikeEmail("a@b"))
	assert.False(t, validation.LooksLikeEmail("ab.pk"))
}
