package accounts

import "time"

// AccountHead is a node in the per-company chart of accounts. ParentID
// forms the hierarchy; root heads have a nil parent.
type AccountHead struct {
	ID          int64     `json:"id"`
	CompanyID   *int64    `json:"company_id"`
	ParentID    *int64    `json:"parent_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Active      bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
