package repository

import (
	"context"
	"errors"
	"fmt"

	"onehealth-labs/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// labOrderDetailColumns is the shared column list of the lab-facing join.
// Each output column is aliased to match a LabOrderDetail field by name so
// a reordering of the list cannot silently shift values between fields.
const labOrderDetailColumns = `
	i.id             AS order_item_id,
	i.test_id        AS test_id,
	i.test_name      AS test_name,
	i.lab_id         AS lab_id,
	i.lab_name       AS lab_name,
	i.lab_address    AS lab_address,
	i.test_category  AS test_category,
	i.scheduled_date AS scheduled_date,
	i.price          AS price,
	i.quantity       AS quantity,
	o.id             AS order_id,
	i.order_status   AS order_status,
	i.payment_mode   AS payment_mode,
	i.payment_status AS payment_status,
	o.created_at     AS order_created,
	o.total_amount   AS total_amount,
	o.patient_id     AS patient_id,
	o.transaction_id AS transaction_id,
	o.patient_name   AS patient_name
`

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// CreateOrder inserts a new order header within the provided transaction.
func (r *orderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		INSERT INTO lab_orders (id, patient_id, patient_name, transaction_id, total_amount, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := tx.Exec(ctx, query,
		order.ID,
		order.PatientID,
		order.PatientName,
		order.TransactionID,
		order.TotalAmount,
		order.CreatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	return nil
}

// CreateOrderItems inserts order items within the provided transaction.
func (r *orderRepository) CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO lab_order_items
			(id, order_id, test_id, test_name, lab_id, lab_name, lab_address,
			 test_category, scheduled_date, price, quantity,
			 order_status, payment_mode, payment_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(query,
			item.ID,
			item.OrderID,
			item.TestID,
			item.TestName,
			item.LabID,
			item.LabName,
			item.LabAddress,
			item.TestCategory,
			item.ScheduledDate,
			item.Price,
			item.Quantity,
			item.OrderStatus,
			item.PaymentMode,
			item.PaymentStatus,
		)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(items); i++ {
		if _, err := results.Exec(); err != nil {
			r.logger.Error().
				Err(err).
				Str("order_id", items[i].OrderID.String()).
				Int64("test_id", items[i].TestID).
				Msg("failed to create order item")
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	r.logger.Debug().Int("count", len(items)).Msg("order items created")

	return nil
}

// GetByID retrieves an order with its items by primary key.
func (r *orderRepository) GetByID(ctx context.Context, orderID uuid.UUID) (*model.Order, error) {
	query := `
		SELECT id, patient_id, patient_name, transaction_id, total_amount, created_at
		FROM lab_orders
		WHERE id = $1
	`
	return r.getOrder(ctx, query, orderID)
}

// GetByTransactionID retrieves an order by its payment transaction id.
func (r *orderRepository) GetByTransactionID(ctx context.Context, transactionID int64) (*model.Order, error) {
	query := `
		SELECT id, patient_id, patient_name, transaction_id, total_amount, created_at
		FROM lab_orders
		WHERE transaction_id = $1
	`
	return r.getOrder(ctx, query, transactionID)
}

func (r *orderRepository) getOrder(ctx context.Context, query string, arg any) (*model.Order, error) {
	var order model.Order
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&order.ID,
		&order.PatientID,
		&order.PatientName,
		&order.TransactionID,
		&order.TotalAmount,
		&order.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	items, err := r.loadItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return &order, nil
}

// ListByPatientID retrieves all of a patient's orders with their items.
func (r *orderRepository) ListByPatientID(ctx context.Context, patientID int64) ([]model.Order, error) {
	query := `
		SELECT id, patient_id, patient_name, transaction_id, total_amount, created_at
		FROM lab_orders
		WHERE patient_id = $1
		ORDER BY created_at
	`

	rows, err := r.pool.Query(ctx, query, patientID)
	if err != nil {
		r.logger.Error().Err(err).Int64("patient_id", patientID).Msg("failed to query orders")
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		var order model.Order
		err := rows.Scan(
			&order.ID,
			&order.PatientID,
			&order.PatientName,
			&order.TransactionID,
			&order.TotalAmount,
			&order.CreatedAt,
		)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order row")
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order rows")
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	for i := range orders {
		items, err := r.loadItems(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}

	return orders, nil
}

func (r *orderRepository) loadItems(ctx context.Context, orderID uuid.UUID) ([]model.OrderItem, error) {
	query := `
		SELECT id, order_id, test_id, test_name, lab_id, lab_name, lab_address,
		       test_category, scheduled_date, price, quantity,
		       order_status, payment_mode, payment_status
		FROM lab_order_items
		WHERE order_id = $1
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to query order items")
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	var items []model.OrderItem
	for rows.Next() {
		var item model.OrderItem
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.TestID,
			&item.TestName,
			&item.LabID,
			&item.LabName,
			&item.LabAddress,
			&item.TestCategory,
			&item.ScheduledDate,
			&item.Price,
			&item.Quantity,
			&item.OrderStatus,
			&item.PaymentMode,
			&item.PaymentStatus,
		)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order item row")
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order item rows")
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return items, nil
}

// DeleteByID deletes an order; its items go with it via the cascade.
func (r *orderRepository) DeleteByID(ctx context.Context, orderID uuid.UUID) (bool, error) {
	query := `DELETE FROM lab_orders WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, orderID)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to delete order")
		return false, fmt.Errorf("failed to delete order: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// UpdateItem overwrites the mutable fields of one order item. The order
// header and every other item are untouched.
func (r *orderRepository) UpdateItem(ctx context.Context, req *model.UpdateOrderItemRequest) (bool, error) {
	query := `
		UPDATE lab_order_items
		SET order_status = $1, payment_mode = $2, payment_status = $3, scheduled_date = $4
		WHERE id = $5 AND order_id = $6
	`

	tag, err := r.pool.Exec(ctx, query,
		req.OrderStatus,
		req.PaymentMode,
		req.PaymentStatus,
		req.TestDate,
		req.OrderItemID,
		req.OrderID,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", req.OrderID.String()).
			Str("order_item_id", req.OrderItemID.String()).
			Msg("failed to update order item")
		return false, fmt.Errorf("failed to update order item: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// UpdateItemTestDate overwrites the scheduled date of one order item.
func (r *orderRepository) UpdateItemTestDate(ctx context.Context, req *model.UpdateTestDateRequest) (bool, error) {
	query := `
		UPDATE lab_order_items
		SET scheduled_date = $1
		WHERE id = $2 AND order_id = $3
	`

	tag, err := r.pool.Exec(ctx, query, req.TestDate, req.OrderItemID, req.OrderID)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", req.OrderID.String()).
			Str("order_item_id", req.OrderItemID.String()).
			Msg("failed to update order item test date")
		return false, fmt.Errorf("failed to update order item test date: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// FindLabOrderDetails returns one denormalized row per order item placed
// against the given lab.
func (r *orderRepository) FindLabOrderDetails(ctx context.Context, labID int64) ([]model.LabOrderDetail, error) {
	query := `
		SELECT ` + labOrderDetailColumns + `
		FROM lab_order_items i
		JOIN lab_orders o ON o.id = i.order_id
		WHERE i.lab_id = $1
		ORDER BY o.created_at, i.id
	`

	rows, err := r.pool.Query(ctx, query, labID)
	if err != nil {
		r.logger.Error().Err(err).Int64("lab_id", labID).Msg("failed to query lab order details")
		return nil, fmt.Errorf("failed to query lab order details: %w", err)
	}

	details, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.LabOrderDetail])
	if err != nil {
		r.logger.Error().Err(err).Int64("lab_id", labID).Msg("failed to collect lab order detail rows")
		return nil, fmt.Errorf("failed to collect lab order details: %w", err)
	}

	return details, nil
}

// FindLabOrderItemDetail narrows the lab listing to a single item.
func (r *orderRepository) FindLabOrderItemDetail(ctx context.Context, labID int64, orderID, orderItemID uuid.UUID) (*model.LabOrderDetail, error) {
	query := `
		SELECT ` + labOrderDetailColumns + `
		FROM lab_order_items i
		JOIN lab_orders o ON o.id = i.order_id
		WHERE i.lab_id = $1 AND o.id = $2 AND i.id = $3
	`

	rows, err := r.pool.Query(ctx, query, labID, orderID, orderItemID)
	if err != nil {
		r.logger.Error().
			Err(err).
			Int64("lab_id", labID).
			Str("order_id", orderID.String()).
			Msg("failed to query lab order item detail")
		return nil, fmt.Errorf("failed to query lab order item detail: %w", err)
	}

	detail, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.LabOrderDetail])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Msg("failed to collect lab order item detail row")
		return nil, fmt.Errorf("failed to collect lab order item detail: %w", err)
	}

	return &detail, nil
}
