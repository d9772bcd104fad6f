package models

import (
	"time"

	"github.com/google/uuid"
)

// AdminUser represents an admin user account
type AdminUser struct {
	ID           uuid.UUID  `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"` // never expose
	CreatedAt    time.Time  `json:"created_at"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
}

// AdminIdentity is the public part of an admin carried in session tokens
type AdminIdentity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Identity returns the token-safe view of the admin
func (a *AdminUser) Identity() AdminIdentity {
	return AdminIdentity{
		ID:       a.ID.String(),
		Username: a.Username,
		Email:    a.Email,
	}
}
