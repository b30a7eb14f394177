package booking

import "time"

// Booking records bags received from a party for a storage season. The row
// has no tenant columns of its own; it inherits them from the owning party.
type Booking struct {
	ID        int64     `json:"id"`
	PartyID   *int64    `json:"party_id"`
	ProductID *int64    `json:"product_id"`
	BagTypeID *int64    `json:"bag_type_id"`
	BookingNo string    `json:"booking_no"`
	Session   int       `json:"session"`
	Quantity  int       `json:"quantity"`
	Weight    float64   `json:"weight"`
	BookedAt  time.Time `json:"booked_at"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// CompanyID is read through the party join, never written.
	CompanyID *int64 `json:"company_id,omitempty"`
}
