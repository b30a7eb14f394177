package users

import "time"

// User is an authentication identity. Superuser and staff flags bypass all
// permission checks.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone,omitempty"`
	Address      string    `json:"address,omitempty"`
	PasswordHash string    `json:"-"`
	Active       bool      `json:"is_active"`
	Staff        bool      `json:"is_staff"`
	Superuser    bool      `json:"is_superuser"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// GetID implements authz.Principal.
func (u *User) GetID() int64 { return u.ID }

// IsSuperuser implements authz.Principal.
func (u *User) IsSuperuser() bool { return u.Superuser }

// IsStaff implements authz.Principal.
func (u *User) IsStaff() bool { return u.Staff }
