package loan

import "time"

// LoanType defines the advance terms offered against stored bags.
type LoanType struct {
	ID           int64     `json:"id"`
	CompanyID    *int64    `json:"company_id"`
	Name         string    `json:"name"`
	InterestRate float64   `json:"interest_rate"`
	MaxPerBag    float64   `json:"max_per_bag"`
	Active       bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
