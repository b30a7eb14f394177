package businesstypes

import "time"

// BusinessType partitions a company, e.g. cold storage vs. trading.
type BusinessType struct {
	ID          int64     `json:"id"`
	CompanyID   *int64    `json:"company_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
