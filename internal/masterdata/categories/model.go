package categories

import "time"

// Category groups products under a company, business type and factory.
type Category struct {
	ID             int64     `json:"id"`
	CompanyID      *int64    `json:"company_id"`
	BusinessTypeID *int64    `json:"business_type_id"`
	FactoryID      *int64    `json:"factory_id"`
	ProductTypeID  *int64    `json:"product_type_id"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
