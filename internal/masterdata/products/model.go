package products

import "time"

// Product is a stock item. Bookings and pallots reference products; the
// row carries all three tenant dimensions so factory-pair grants apply.
type Product struct {
	ID             int64     `json:"id"`
	CompanyID      *int64    `json:"company_id"`
	BusinessTypeID *int64    `json:"business_type_id"`
	FactoryID      *int64    `json:"factory_id"`
	ProductTypeID  *int64    `json:"product_type_id"`
	CategoryID     *int64    `json:"category_id"`
	Name           string    `json:"name"`
	ShortName      string    `json:"short_name,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
