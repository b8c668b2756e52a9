package model

import (
	"time"

	"github.com/google/uuid"
)

// Cart is a patient-scoped, mutable collection of pending lab test
// selections. There is exactly one cart per patient; the cart row survives
// a clear so the patient's cart id stays stable across orders.
type Cart struct {
	ID        uuid.UUID  `json:"cart_id" db:"id"`
	PatientID int64      `json:"patient_id" db:"patient_id"`
	Items     []CartItem `json:"items"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

// CartItem is one lab test selection inside a cart. The price and lab
// fields are a snapshot of the catalog state at the moment of the last
// add/merge, not the current catalog state.
type CartItem struct {
	ID            uuid.UUID `json:"-" db:"id"`
	CartID        uuid.UUID `json:"-" db:"cart_id"`
	TestID        int64     `json:"test_id" db:"test_id"`
	TestName      string    `json:"test_name" db:"test_name"`
	Quantity      int       `json:"quantity" db:"quantity"`
	TotalPrice    float64   `json:"total_price" db:"total_price"`
	LabID         int64     `json:"lab_id" db:"lab_id"`
	LabName       string    `json:"lab_name" db:"lab_name"`
	LabAddress    string    `json:"lab_address" db:"lab_address"`
	TestCategory  string    `json:"test_category" db:"test_category"`
	ScheduledDate time.Time `json:"test_date" db:"scheduled_date"`
}

// Total sums the item snapshot prices.
func (c *Cart) Total() float64 {
	var total float64
	for _, item := range c.Items {
		total += item.TotalPrice
	}
	return total
}

// AddToCartRequest represents the request payload for adding a test to a
// patient's cart. Adding a test that is already in the cart overwrites its
// quantity and price snapshot rather than accumulating.
type AddToCartRequest struct {
	PatientID int64     `json:"patient_id" validate:"required,gt=0"`
	TestID    int64     `json:"test_id" validate:"required,gt=0"`
	Quantity  int       `json:"quantity" validate:"required,gte=1"`
	TestDate  time.Time `json:"test_date" validate:"required"`
}
