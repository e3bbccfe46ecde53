package models

import (
	"time"
)

// Identity is the signed-in user held by the session store
type Identity struct {
	ID           string    `json:"id" db:"id" example:"1"`
	Email        string    `json:"email" db:"email" example:"admin@madrasa.pk"`
	Role         Role      `json:"role" db:"role" example:"admin"`
	Name         string    `json:"name" db:"name" example:"Administrator"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at" example:"2024-01-01T10:00:00Z"`
	PasswordHash string    `json:"-" db:"password_hash"` // empty for directory accounts without credentials
}

// Clone returns a copy that callers can hold without sharing state with the store
func (i *Identity) Clone() *Identity {
	if i == nil {
		return nil
	}
	c := *i
	return &c
}
