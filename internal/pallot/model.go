package pallot

import "time"

// PallotType names a storage position layout (chamber, floor, rack) used
// when bags are placed after booking.
type PallotType struct {
	ID          int64     `json:"id"`
	CompanyID   *int64    `json:"company_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Capacity    int       `json:"capacity"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
