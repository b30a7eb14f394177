package party

import "time"

// PartyType classifies parties (farmer, trader, agent) within a company.
type PartyType struct {
	ID          int64     `json:"id"`
	CompanyID   *int64    `json:"company_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Party is a customer or supplier of the warehouse: the counterparty
// on bookings and loans.
type Party struct {
	ID          int64     `json:"id"`
	CompanyID   *int64    `json:"company_id"`
	PartyTypeID *int64    `json:"party_type_id"`
	Name        string    `json:"name"`
	FatherName  string    `json:"father_name,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	Address     string    `json:"address,omitempty"`
	NID         string    `json:"nid,omitempty"`
	Active      bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
