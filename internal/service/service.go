package service

import (
	"context"

	"onehealth-labs/internal/model"

	"github.com/google/uuid"
)

// CartService defines the cart engine's operations.
type CartService interface {
	// AddToCart validates the patient and test against their services and
	// adds the test to the patient's cart, creating the cart on first use.
	// Re-adding a test overwrites its quantity and price snapshot.
	AddToCart(ctx context.Context, req *model.AddToCartRequest) error

	// GetCart returns the patient's cart. The patient's existence is
	// re-validated remotely first, so a cart row alone is not enough.
	GetCart(ctx context.Context, patientID int64) (*model.Cart, error)

	// RemoveItem removes the test from the patient's cart. Removing a test
	// that is not in the cart is a no-op success.
	RemoveItem(ctx context.Context, testID, patientID int64) error

	// GetCartByID returns a cart by primary key.
	GetCartByID(ctx context.Context, cartID uuid.UUID) (*model.Cart, error)

	// ClearCart empties the cart's items, preserving the cart row.
	ClearCart(ctx context.Context, cartID uuid.UUID) error
}

// OrderService defines the order engine's operations, including the
// lab-facing aggregation queries.
type OrderService interface {
	// PlaceOrder converts the cart into an immutable order snapshot,
	// persists it transactionally and then clears the source cart.
	PlaceOrder(ctx context.Context, req *model.PlaceOrderRequest) (*model.Order, error)

	// GetOrdersByPatient returns the patient's order history flattened to
	// one (header, item) pair per order item.
	GetOrdersByPatient(ctx context.Context, patientID int64) ([]model.OrderItemPair, error)

	// GetOrderByID returns an order with its items.
	GetOrderByID(ctx context.Context, orderID uuid.UUID) (*model.Order, error)

	// GetOrderByTransactionID returns the order reconciled against the
	// given payment transaction.
	GetOrderByTransactionID(ctx context.Context, transactionID int64) (*model.Order, error)

	// DeleteOrderByID deletes an order and its items.
	DeleteOrderByID(ctx context.Context, orderID uuid.UUID) error

	// UpdateOrderItem overwrites the status, payment and date fields of
	// one order item. Reports false, not an error, when either id is
	// unmatched.
	UpdateOrderItem(ctx context.Context, req *model.UpdateOrderItemRequest) (bool, error)

	// UpdateTestDate reschedules one order item.
	UpdateTestDate(ctx context.Context, req *model.UpdateTestDateRequest) (bool, error)

	// FindLabOrderDetails returns the denormalized order listing for a lab.
	FindLabOrderDetails(ctx context.Context, labID int64) ([]model.LabOrderDetail, error)

	// FindLabOrderItemDetail narrows the lab listing to one item.
	FindLabOrderItemDetail(ctx context.Context, labID int64, orderID, orderItemID uuid.UUID) (*model.LabOrderDetail, error)
}
