package factories

import "time"

// Factory is a physical site (storage shed, plant) under a company and
// business type. Factory-pair grants in permission sets point at these rows.
type Factory struct {
	ID             int64     `json:"id"`
	CompanyID      *int64    `json:"company_id"`
	BusinessTypeID *int64    `json:"business_type_id"`
	Name           string    `json:"name"`
	ShortName      string    `json:"short_name,omitempty"`
	Address        string    `json:"address,omitempty"`
	Active         bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
