package dto

import "github.com/ribat/admissions/internal/app/models"

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" example:"admin@madrasa.pk"`
	Password string `json:"password" example:"secret1"`
}

// SignupRequest represents a new account
type SignupRequest struct {
	Email    string      `json:"email" validate:"required,email" example:"staff@madrasa.pk"`
	Password string      `json:"password" validate:"required,min=6" example:"secret1"`
	Name     string      `json:"name" validate:"required,min=2,max=100" example:"Qari Saeed"`
	Role     models.Role `json:"role" validate:"required,oneof=admin teacher student" example:"teacher"`
}

// TokenResponse represents JWT token information
type TokenResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType" example:"Bearer"`
	ExpiresIn   int64  `json:"expiresIn" example:"86400"`
}

// IdentityResponse is the client view of an identity
type IdentityResponse struct {
	ID        string      `json:"id" example:"1"`
	Email     string      `json:"email" example:"admin@madrasa.pk"`
	Role      models.Role `json:"role" example:"admin"`
	Name      string      `json:"name" example:"مدیر اعلیٰ"`
	CreatedAt string      `json:"createdAt" example:"2024-01-01T00:00:00Z"`
	IsAdmin   bool        `json:"isAdmin" example:"true"`
	IsTeacher bool        `json:"isTeacher" example:"false"`
	IsStudent bool        `json:"isStudent" example:"false"`
}

// NewIdentityResponse maps an identity to its client view
func NewIdentityResponse(identity *models.Identity) *IdentityResponse {
	if identity == nil {
		return nil
	}
	return &IdentityResponse{
		ID:        identity.ID,
		Email:     identity.Email,
		Role:      identity.Role,
		Name:      identity.Name,
		CreatedAt: identity.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		IsAdmin:   identity.Role == models.RoleAdmin,
		IsTeacher: identity.Role == models.RoleTeacher,
		IsStudent: identity.Role == models.RoleStudent,
	}
}

// AuthResponse represents successful authentication response
type AuthResponse struct {
	Token    TokenResponse     `json:"token"`
	Identity *IdentityResponse `json:"identity"`
}
