package repository

import (
	"context"

	"onehealth-labs/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CartRepository defines the interface for cart data access operations.
// The one-cart-per-patient rule and the one-item-per-test merge policy
// are both enforced by unique constraints plus upserts, so concurrent
// writers cannot duplicate rows or lose the later write.
type CartRepository interface {
	// EnsureCart returns the patient's cart, creating it if absent.
	EnsureCart(ctx context.Context, patientID int64) (*model.Cart, error)

	// GetByPatientID retrieves a cart with its items. Returns nil when the
	// patient has no cart.
	GetByPatientID(ctx context.Context, patientID int64) (*model.Cart, error)

	// GetByID retrieves a cart with its items by primary key. Returns nil
	// when no such cart exists.
	GetByID(ctx context.Context, cartID uuid.UUID) (*model.Cart, error)

	// UpsertItem inserts a cart item, or overwrites the quantity and
	// snapshot fields of the existing item with the same (cart, test) key.
	UpsertItem(ctx context.Context, item *model.CartItem) error

	// DeleteItem removes the item with the given test id. Removing an
	// absent item is a no-op.
	DeleteItem(ctx context.Context, cartID uuid.UUID, testID int64) error

	// ClearItems empties a cart's items, preserving the cart row.
	// Clearing an empty cart is a no-op.
	ClearItems(ctx context.Context, cartID uuid.UUID) error
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts a new order header within the provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts order items within the provided transaction.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// GetByID retrieves an order with its items. Returns nil when absent.
	GetByID(ctx context.Context, orderID uuid.UUID) (*model.Order, error)

	// GetByTransactionID retrieves an order by its payment transaction id.
	// Returns nil when absent.
	GetByTransactionID(ctx context.Context, transactionID int64) (*model.Order, error)

	// ListByPatientID retrieves all of a patient's orders with their items.
	ListByPatientID(ctx context.Context, patientID int64) ([]model.Order, error)

	// DeleteByID deletes an order and, by cascade, its items. Reports
	// whether an order row was deleted.
	DeleteByID(ctx context.Context, orderID uuid.UUID) (bool, error)

	// UpdateItem overwrites the status, payment and date fields of one
	// order item. Reports whether the (order, item) pair matched a row.
	UpdateItem(ctx context.Context, req *model.UpdateOrderItemRequest) (bool, error)

	// UpdateItemTestDate overwrites the scheduled date of one order item.
	UpdateItemTestDate(ctx context.Context, req *model.UpdateTestDateRequest) (bool, error)

	// FindLabOrderDetails returns one denormalized row per order item
	// belonging to the given lab.
	FindLabOrderDetails(ctx context.Context, labID int64) ([]model.LabOrderDetail, error)

	// FindLabOrderItemDetail narrows the lab listing to a single item.
	// Returns nil when the (lab, order, item) triple matches nothing.
	FindLabOrderItemDetail(ctx context.Context, labID int64, orderID, orderItemID uuid.UUID) (*model.LabOrderDetail, error)
}
