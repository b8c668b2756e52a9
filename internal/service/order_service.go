package service

import (
	"context"
	"time"

	"onehealth-labs/internal/clients"
	"onehealth-labs/internal/model"
	"onehealth-labs/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// orderService implements OrderService.
type orderService struct {
	orderRepo repository.OrderRepository
	patients  clients.PatientClient
	carts     clients.CartClient
	logger    zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	patients clients.PatientClient,
	carts clients.CartClient,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo: orderRepo,
		patients:  patients,
		carts:     carts,
		logger:    logger.With().Str("service", "order").Logger(),
	}
}

// PlaceOrder runs in three phases: gather all remote reads, commit the
// order locally in one transaction, then fire the compensating cart clear.
// No remote call happens between BeginTx and Commit.
func (s *orderService) PlaceOrder(ctx context.Context, req *model.PlaceOrderRequest) (*model.Order, error) {
	// Gather phase: validate everything remotely before writing anything.
	patient, err := s.patients.GetByID(ctx, req.PatientID)
	if err != nil {
		s.logger.Warn().Err(err).Int64("patient_id", req.PatientID).Msg("patient lookup failed")
		return nil, err
	}

	cart, err := s.carts.GetByID(ctx, req.CartID)
	if err != nil {
		s.logger.Warn().Err(err).Str("cart_id", req.CartID.String()).Msg("cart fetch failed")
		return nil, err
	}

	order := &model.Order{
		ID:            uuid.New(),
		PatientID:     req.PatientID,
		PatientName:   patient.FullName(),
		TransactionID: 0,
		CreatedAt:     time.Now(),
	}

	items := make([]model.OrderItem, 0, len(cart.Items))
	var total float64
	for _, cartItem := range cart.Items {
		item := model.OrderItem{
			ID:            uuid.New(),
			OrderID:       order.ID,
			TestID:        cartItem.TestID,
			TestName:      cartItem.TestName,
			LabID:         cartItem.LabID,
			LabName:       cartItem.LabName,
			LabAddress:    cartItem.LabAddress,
			TestCategory:  cartItem.TestCategory,
			ScheduledDate: cartItem.ScheduledDate,
			Price:         cartItem.TotalPrice,
			Quantity:      cartItem.Quantity,
			OrderStatus:   model.OrderStatusReceived,
			PaymentMode:   model.PaymentModeNone,
			PaymentStatus: model.PaymentStatusNotPaid,
		}
		total += item.Price
		items = append(items, item)
	}
	order.TotalAmount = total

	if order.TotalAmount <= 0 {
		s.logger.Warn().
			Str("cart_id", req.CartID.String()).
			Int64("patient_id", req.PatientID).
			Msg("rejected order from empty cart")
		return nil, model.Invalid("please add items to the cart before placing an order")
	}

	// Commit phase: header and items in a single transaction.
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, model.Database(err, "failed to place order")
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to create order")
		return nil, model.Database(err, "failed to place order")
	}

	if err = s.orderRepo.CreateOrderItems(ctx, tx, items); err != nil {
		s.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Int("item_count", len(items)).
			Msg("failed to create order items")
		return nil, model.Database(err, "failed to place order")
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return nil, model.Database(err, "failed to place order")
	}
	order.Items = items

	// Post-commit phase: the cart clear is a compensating action with its
	// own retry budget, decoupled from both the committed transaction and
	// the caller's cancellation. If it fails the order stands and the cart
	// keeps its items, so the same cart could be ordered again; that
	// at-least-once gap is accepted and logged, never hidden.
	if err := s.carts.Clear(context.WithoutCancel(ctx), req.CartID); err != nil {
		s.logger.Warn().
			Err(err).
			Str("order_id", order.ID.String()).
			Str("cart_id", req.CartID.String()).
			Msg("order committed but cart clear failed; cart may be re-ordered")
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Int64("patient_id", req.PatientID).
		Int("item_count", len(items)).
		Float64("total_amount", order.TotalAmount).
		Msg("order placed")

	return order, nil
}

// GetOrdersByPatient flattens each order against its items, one pair per
// item, for the patient-facing history view.
func (s *orderService) GetOrdersByPatient(ctx context.Context, patientID int64) ([]model.OrderItemPair, error) {
	orders, err := s.orderRepo.ListByPatientID(ctx, patientID)
	if err != nil {
		s.logger.Error().Err(err).Int64("patient_id", patientID).Msg("failed to list orders")
		return nil, model.Database(err, "failed to list orders for patient %d", patientID)
	}

	pairs := make([]model.OrderItemPair, 0)
	for _, order := range orders {
		header := order
		header.Items = nil
		for _, item := range order.Items {
			pairs = append(pairs, model.OrderItemPair{Order: header, Item: item})
		}
	}

	s.logger.Debug().
		Int64("patient_id", patientID).
		Int("rows", len(pairs)).
		Msg("order history assembled")

	return pairs, nil
}

// GetOrderByID retrieves an order with its items.
func (s *orderService) GetOrderByID(ctx context.Context, orderID uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to get order")
		return nil, model.Database(err, "failed to load order %s", orderID)
	}
	if order == nil {
		return nil, model.NotFound("order not found with order id: %s", orderID)
	}

	return order, nil
}

// GetOrderByTransactionID retrieves an order by payment transaction id.
func (s *orderService) GetOrderByTransactionID(ctx context.Context, transactionID int64) (*model.Order, error) {
	order, err := s.orderRepo.GetByTransactionID(ctx, transactionID)
	if err != nil {
		s.logger.Error().Err(err).Int64("transaction_id", transactionID).Msg("failed to get order")
		return nil, model.Database(err, "failed to load order for transaction %d", transactionID)
	}
	if order == nil {
		return nil, model.NotFound("order not found with transaction id: %d", transactionID)
	}

	return order, nil
}

// DeleteOrderByID deletes an order and its items.
func (s *orderService) DeleteOrderByID(ctx context.Context, orderID uuid.UUID) error {
	deleted, err := s.orderRepo.DeleteByID(ctx, orderID)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to delete order")
		return model.Database(err, "failed to delete order %s", orderID)
	}
	if !deleted {
		return model.NotFound("order not found with order id: %s", orderID)
	}

	s.logger.Info().Str("order_id", orderID.String()).Msg("order deleted")
	return nil
}

// UpdateOrderItem overwrites the mutable fields of one order item. An
// unmatched (order, item) pair reports false rather than an error.
func (s *orderService) UpdateOrderItem(ctx context.Context, req *model.UpdateOrderItemRequest) (bool, error) {
	updated, err := s.orderRepo.UpdateItem(ctx, req)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("order_id", req.OrderID.String()).
			Str("order_item_id", req.OrderItemID.String()).
			Msg("failed to update order item")
		return false, model.Database(err, "failed to update order item %s", req.OrderItemID)
	}

	if updated {
		s.logger.Info().
			Str("order_id", req.OrderID.String()).
			Str("order_item_id", req.OrderItemID.String()).
			Str("order_status", req.OrderStatus).
			Str("payment_status", req.PaymentStatus).
			Msg("order item updated")
	} else {
		s.logger.Warn().
			Str("order_id", req.OrderID.String()).
			Str("order_item_id", req.OrderItemID.String()).
			Msg("order item not found for update")
	}

	return updated, nil
}

// UpdateTestDate reschedules one order item.
func (s *orderService) UpdateTestDate(ctx context.Context, req *model.UpdateTestDateRequest) (bool, error) {
	updated, err := s.orderRepo.UpdateItemTestDate(ctx, req)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("order_id", req.OrderID.String()).
			Str("order_item_id", req.OrderItemID.String()).
			Msg("failed to update test date")
		return false, model.Database(err, "failed to update test date for order item %s", req.OrderItemID)
	}

	return updated, nil
}

// FindLabOrderDetails returns the denormalized order listing for a lab.
func (s *orderService) FindLabOrderDetails(ctx context.Context, labID int64) ([]model.LabOrderDetail, error) {
	details, err := s.orderRepo.FindLabOrderDetails(ctx, labID)
	if err != nil {
		s.logger.Error().Err(err).Int64("lab_id", labID).Msg("failed to load lab order details")
		return nil, model.Database(err, "failed to load order details for lab %d", labID)
	}

	s.logger.Debug().Int64("lab_id", labID).Int("rows", len(details)).Msg("lab order details loaded")
	return details, nil
}

// FindLabOrderItemDetail narrows the lab listing to one item.
func (s *orderService) FindLabOrderItemDetail(ctx context.Context, labID int64, orderID, orderItemID uuid.UUID) (*model.LabOrderDetail, error) {
	detail, err := s.orderRepo.FindLabOrderItemDetail(ctx, labID, orderID, orderItemID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Int64("lab_id", labID).
			Str("order_id", orderID.String()).
			Str("order_item_id", orderItemID.String()).
			Msg("failed to load lab order item detail")
		return nil, model.Database(err, "failed to load order item detail for lab %d", labID)
	}
	if detail == nil {
		return nil, model.NotFound(
			"lab order details not found for lab id: %d, order id: %s, order item id: %s",
			labID, orderID, orderItemID,
		)
	}

	return detail, nil
}
