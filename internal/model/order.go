package model

import (
	"time"

	"github.com/google/uuid"
)

// Initial values stamped on every order item at placement time. Payment
// reconciliation updates them later through the item update operation.
const (
	OrderStatusReceived  = "Received"
	PaymentModeNone      = "None"
	PaymentStatusNotPaid = "Not Paid"
)

// Order is an immutable snapshot created from a cart at checkout time.
// Header fields never change after creation; only per-item status fields
// are mutated afterwards.
type Order struct {
	ID            uuid.UUID   `json:"order_id" db:"id"`
	PatientID     int64       `json:"patient_id" db:"patient_id"`
	PatientName   string      `json:"patient_name" db:"patient_name"`
	TransactionID int64       `json:"transaction_id" db:"transaction_id"`
	TotalAmount   float64     `json:"total_amount" db:"total_amount"`
	CreatedAt     time.Time   `json:"created_at" db:"created_at"`
	Items         []OrderItem `json:"items,omitempty"`
}

// OrderItem is one priced, lab-attributed line within an order,
// corresponding 1:1 to a cart item at the moment of placement. Price is the
// cart item's total price, not a unit price.
type OrderItem struct {
	ID            uuid.UUID `json:"order_item_id" db:"id"`
	OrderID       uuid.UUID `json:"-" db:"order_id"`
	TestID        int64     `json:"test_id" db:"test_id"`
	TestName      string    `json:"test_name" db:"test_name"`
	LabID         int64     `json:"lab_id" db:"lab_id"`
	LabName       string    `json:"lab_name" db:"lab_name"`
	LabAddress    string    `json:"lab_address" db:"lab_address"`
	TestCategory  string    `json:"test_category" db:"test_category"`
	ScheduledDate time.Time `json:"test_date" db:"scheduled_date"`
	Price         float64   `json:"price" db:"price"`
	Quantity      int       `json:"quantity" db:"quantity"`
	OrderStatus   string    `json:"order_status" db:"order_status"`
	PaymentMode   string    `json:"payment_mode" db:"payment_mode"`
	PaymentStatus string    `json:"payment_status" db:"payment_status"`
}

// OrderItemPair is one row of the flattened patient order history: the
// order header repeated against each of its items.
type OrderItemPair struct {
	Order Order     `json:"order"`
	Item  OrderItem `json:"item"`
}

// PlaceOrderRequest represents the request payload for converting a cart
// into an order.
type PlaceOrderRequest struct {
	PatientID int64     `json:"patient_id" validate:"required,gt=0"`
	CartID    uuid.UUID `json:"cart_id" validate:"required"`
}

// UpdateOrderItemRequest addresses one order item and overwrites its
// mutable status, payment and date fields.
type UpdateOrderItemRequest struct {
	OrderID       uuid.UUID `json:"order_id" validate:"required"`
	OrderItemID   uuid.UUID `json:"order_item_id" validate:"required"`
	OrderStatus   string    `json:"order_status" validate:"required"`
	PaymentMode   string    `json:"payment_mode" validate:"required"`
	PaymentStatus string    `json:"payment_status" validate:"required"`
	TestDate      time.Time `json:"test_date" validate:"required"`
}

// UpdateTestDateRequest reschedules one order item.
type UpdateTestDateRequest struct {
	OrderID     uuid.UUID `json:"order_id" validate:"required"`
	OrderItemID uuid.UUID `json:"order_item_id" validate:"required"`
	TestDate    time.Time `json:"test_date" validate:"required"`
}

// UpdateResult reports whether an item-level update matched an item.
type UpdateResult struct {
	Updated bool `json:"updated"`
}

// LabOrderDetail is one row of the lab-facing order listing: the full join
// of order-item fields with the owning order's header fields. Scanned by
// named column list, never by position.
type LabOrderDetail struct {
	OrderItemID   uuid.UUID `json:"order_item_id" db:"order_item_id"`
	TestID        int64     `json:"test_id" db:"test_id"`
	TestName      string    `json:"test_name" db:"test_name"`
	LabID         int64     `json:"lab_id" db:"lab_id"`
	LabName       string    `json:"lab_name" db:"lab_name"`
	LabAddress    string    `json:"lab_address" db:"lab_address"`
	TestCategory  string    `json:"test_category" db:"test_category"`
	ScheduledDate time.Time `json:"test_date" db:"scheduled_date"`
	Price         float64   `json:"price" db:"price"`
	Quantity      int       `json:"quantity" db:"quantity"`
	OrderID       uuid.UUID `json:"order_id" db:"order_id"`
	OrderStatus   string    `json:"order_status" db:"order_status"`
	PaymentMode   string    `json:"payment_mode" db:"payment_mode"`
	PaymentStatus string    `json:"payment_status" db:"payment_status"`
	OrderCreated  time.Time `json:"order_created" db:"order_created"`
	TotalAmount   float64   `json:"total_amount" db:"total_amount"`
	PatientID     int64     `json:"patient_id" db:"patient_id"`
	TransactionID int64     `json:"transaction_id" db:"transaction_id"`
	PatientName   string    `json:"patient_name" db:"patient_name"`
}
