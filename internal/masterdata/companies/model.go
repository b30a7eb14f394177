package companies

import "time"

// Company is a tenant: every scoped entity in the system hangs off one.
type Company struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Code           string    `json:"code,omitempty"`
	Email          string    `json:"email,omitempty"`
	Phone          string    `json:"phone,omitempty"`
	Address        string    `json:"address,omitempty"`
	Description    string    `json:"description,omitempty"`
	ProprietorName string    `json:"proprietor_name,omitempty"`
	Website        string    `json:"website,omitempty"`
	Active         bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
