package bagtypes

import "time"

// BagType holds the per-season rent and charge tariff applied to bookings.
// It carries no tenant columns; visibility is decided by the settings module
// permission alone.
type BagType struct {
	ID           int64     `json:"id"`
	Session      int       `json:"session"`
	Name         string    `json:"name"`
	PerBagRent   float64   `json:"per_bag_rent"`
	PerKgRent    float64   `json:"per_kg_rent"`
	AgentBagRent float64   `json:"agent_bag_rent"`
	AgentKgRent  float64   `json:"agent_kg_rent"`
	PartyBagRent float64   `json:"party_bag_rent"`
	PartyKgRent  float64   `json:"party_kg_rent"`
	PerBagLoan   float64   `json:"per_bag_loan"`
	EmptyBagRate float64   `json:"empty_bag_rate"`
	FanCharge    float64   `json:"fan_charge"`
	Default      bool      `json:"is_default"`
	Active       bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
