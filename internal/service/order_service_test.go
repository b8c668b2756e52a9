package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"onehealth-labs/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockOrderRepository is a mock implementation of OrderRepository.
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if tx, ok := args.Get(0).(pgx.Tx); ok {
		return tx, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	args := m.Called(ctx, tx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error {
	args := m.Called(ctx, tx, items)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, orderID uuid.UUID) (*model.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) GetByTransactionID(ctx context.Context, transactionID int64) (*model.Order, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) ListByPatientID(ctx context.Context, patientID int64) ([]model.Order, error) {
	args := m.Called(ctx, patientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrderRepository) DeleteByID(ctx context.Context, orderID uuid.UUID) (bool, error) {
	args := m.Called(ctx, orderID)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) UpdateItem(ctx context.Context, req *model.UpdateOrderItemRequest) (bool, error) {
	args := m.Called(ctx, req)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) UpdateItemTestDate(ctx context.Context, req *model.UpdateTestDateRequest) (bool, error) {
	args := m.Called(ctx, req)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) FindLabOrderDetails(ctx context.Context, labID int64) ([]model.LabOrderDetail, error) {
	args := m.Called(ctx, labID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.LabOrderDetail), args.Error(1)
}

func (m *MockOrderRepository) FindLabOrderItemDetail(ctx context.Context, labID int64, orderID, orderItemID uuid.UUID) (*model.LabOrderDetail, error) {
	args := m.Called(ctx, labID, orderID, orderItemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.LabOrderDetail), args.Error(1)
}

// MockCartClient is a mock implementation of clients.CartClient.
type MockCartClient struct {
	mock.Mock
}

func (m *MockCartClient) GetByID(ctx context.Context, cartID uuid.UUID) (*model.Cart, error) {
	args := m.Called(ctx, cartID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Cart), args.Error(1)
}

func (m *MockCartClient) Clear(ctx context.Context, cartID uuid.UUID) error {
	args := m.Called(ctx, cartID)
	return args.Error(0)
}

// MockTx is a minimal mock implementation of pgx.Tx for testing.
type MockTx struct {
	mock.Mock
	committed  bool
	rolledBack bool
}

func (m *MockTx) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	m.committed = true
	return args.Error(0)
}

func (m *MockTx) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	m.rolledBack = true
	return args.Error(0)
}

// Stub methods to satisfy pgx.Tx interface - these are not used in our tests
func (m *MockTx) Begin(ctx context.Context) (pgx.Tx, error) { return nil, nil }
func (m *MockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (m *MockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (m *MockTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (m *MockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (m *MockTx) Exec(ctx context.Context, sql string, arguments ...any) (commandTag pgconn.CommandTag, err error) {
	return
}
func (m *MockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (m *MockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (m *MockTx) Conn() *pgx.Conn                                               { return nil }

func testCartWithItems(cartID uuid.UUID) *model.Cart {
	return &model.Cart{
		ID:        cartID,
		PatientID: 42,
		Items: []model.CartItem{
			{
				ID:            uuid.New(),
				CartID:        cartID,
				TestID:        7,
				TestName:      "Complete Blood Count",
				Quantity:      2,
				TotalPrice:    500.00,
				LabID:         3,
				LabName:       "City Diagnostics",
				LabAddress:    "12 MG Road",
				TestCategory:  "Hematology",
				ScheduledDate: time.Now().Add(48 * time.Hour),
			},
			{
				ID:            uuid.New(),
				CartID:        cartID,
				TestID:        9,
				TestName:      "Lipid Profile",
				Quantity:      1,
				TotalPrice:    400.00,
				LabID:         5,
				LabName:       "Metro Labs",
				LabAddress:    "4 Park Street",
				TestCategory:  "Biochemistry",
				ScheduledDate: time.Now().Add(72 * time.Hour),
			},
		},
	}
}

func TestOrderService_PlaceOrder_Success(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	cartID := uuid.New()
	cart := testCartWithItems(cartID)
	req := &model.PlaceOrderRequest{PatientID: 42, CartID: cartID}

	mockRepo := new(MockOrderRepository)
	mockPatients := new(MockPatientClient)
	mockCarts := new(MockCartClient)
	mockTx := new(MockTx)

	svc := NewOrderService(mockRepo, mockPatients, mockCarts, logger)

	mockPatients.On("GetByID", ctx, int64(42)).Return(testPatient(), nil)
	mockCarts.On("GetByID", ctx, cartID).Return(cart, nil)
	mockRepo.On("BeginTx", ctx).Return(mockTx, nil)
	mockRepo.On("CreateOrder", ctx, mockTx, mock.AnythingOfType("*model.Order")).Return(nil)
	mockRepo.On("CreateOrderItems", ctx, mockTx, mock.AnythingOfType("[]model.OrderItem")).Return(nil)
	mockTx.On("Commit", ctx).Return(nil)
	// The clear runs on a cancellation-detached context, not the request one.
	mockCarts.On("Clear", mock.Anything, cartID).Return(nil)

	order, err := svc.PlaceOrder(ctx, req)

	require.NoError(t, err)
	require.NotNil(t, order)
	assert.NotEqual(t, uuid.Nil, order.ID)
	assert.Equal(t, int64(42), order.PatientID)
	assert.Equal(t, "Asha Rao", order.PatientName)
	assert.Equal(t, int64(0), order.TransactionID)
	assert.Equal(t, 900.00, order.TotalAmount)
	require.Len(t, order.Items, 2)

	for i, item := range order.Items {
		assert.Equal(t, order.ID, item.OrderID)
		assert.Equal(t, cart.Items[i].TestID, item.TestID)
		assert.Equal(t, cart.Items[i].TotalPrice, item.Price)
		assert.Equal(t, cart.Items[i].LabID, item.LabID)
		assert.Equal(t, model.OrderStatusReceived, item.OrderStatus)
		assert.Equal(t, model.PaymentModeNone, item.PaymentMode)
		assert.Equal(t, model.PaymentStatusNotPaid, item.PaymentStatus)
	}

	mockPatients.AssertExpectations(t)
	mockCarts.AssertExpectations(t)
	mockRepo.AssertExpectations(t)
	mockTx.AssertExpectations(t)
	assert.True(t, mockTx.committed)
	assert.False(t, mockTx.rolledBack)
}

func TestOrderService_PlaceOrder_EmptyCart(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	cartID := uuid.New()
	emptyCart := &model.Cart{ID: cartID, PatientID: 42}
	req := &model.PlaceOrderRequest{PatientID: 42, CartID: cartID}

	mockRepo := new(MockOrderRepository)
	mockPatients := new(MockPatientClient)
	mockCarts := new(MockCartClient)

	svc := NewOrderService(mockRepo, mockPatients, mockCarts, logger)

	mockPatients.On("GetByID", ctx, int64(42)).Return(testPatient(), nil)
	mockCarts.On("GetByID", ctx, cartID).Return(emptyCart, nil)

	order, err := svc.PlaceOrder(ctx, req)

	require.Error(t, err)
	assert.Nil(t, order)
	assert.Equal(t, model.KindInvalid, model.KindOf(err))

	// The guard fires before any write and the cart keeps its state.
	mockRepo.AssertNotCalled(t, "BeginTx")
	mockCarts.AssertNotCalled(t, "Clear")
}

func TestOrderService_PlaceOrder_PatientNotFound(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	req := &model.PlaceOrderRequest{PatientID: 999, CartID: uuid.New()}

	mockRepo := new(MockOrderRepository)
	mockPatients := new(MockPatientClient)
	mockCarts := new(MockCartClient)

	svc := NewOrderService(mockRepo, mockPatients, mockCarts, logger)

	mockPatients.On("GetByID", ctx, int64(999)).
		Return(nil, model.NotFound("patient not found with patient id: %d", 999))

	order, err := svc.PlaceOrder(ctx, req)

	require.Error(t, err)
	assert.Nil(t, order)
	assert.True(t, model.IsNotFound(err))
	mockCarts.AssertNotCalled(t, "GetByID")
	mockRepo.AssertNotCalled(t, "BeginTx")
}

func TestOrderService_PlaceOrder_CartServiceUnavailable(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	cartID := uuid.New()
	req := &model.PlaceOrderRequest{PatientID: 42, CartID: cartID}

	mockRepo := new(MockOrderRepository)
	mockPatients := new(MockPatientClient)
	mockCarts := new(MockCartClient)

	svc := NewOrderService(mockRepo, mockPatients, mockCarts, logger)

	mockPatients.On("GetByID", ctx, int64(42)).Return(testPatient(), nil)
	mockCarts.On("GetByID", ctx, cartID).
		Return(nil, model.Unavailable(errors.New("connection refused"), "remote service unreachable"))

	order, err := svc.PlaceOrder(ctx, req)

	require.Error(t, err)
	assert.Nil(t, order)
	assert.True(t, model.IsUnavailable(err))
	mockRepo.AssertNotCalled(t, "BeginTx")
}

func TestOrderService_PlaceOrder_TransactionRollback(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	cartID := uuid.New()
	req := &model.PlaceOrderRequest{PatientID: 42, CartID: cartID}

	mockRepo := new(MockOrderRepository)
	mockPatients := new(MockPatientClient)
	mockCarts := new(MockCartClient)
	mockTx := new(MockTx)

	svc := NewOrderService(mockRepo, mockPatients, mockCarts, logger)

	mockPatients.On("GetByID", ctx, int64(42)).Return(testPatient(), nil)
	mockCarts.On("GetByID", ctx, cartID).Return(testCartWithItems(cartID), nil)
	mockRepo.On("BeginTx", ctx).Return(mockTx, nil)
	mockRepo.On("CreateOrder", ctx, mockTx, mock.AnythingOfType("*model.Order")).
		Return(errors.New("insert failed"))
	mockTx.On("Rollback", ctx).Return(nil)

	order, err := svc.PlaceOrder(ctx, req)

	require.Error(t, err)
	assert.Nil(t, order)
	assert.Equal(t, model.KindDatabase, model.KindOf(err))
	assert.True(t, mockTx.rolledBack)

	// An aborted order never clears the cart.
	mockCarts.AssertNotCalled(t, "Clear")
}

func TestOrderService_PlaceOrder_ClearFailureKeepsOrder(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	cartID := uuid.New()
	req := &model.PlaceOrderRequest{PatientID: 42, CartID: cartID}

	mockRepo := new(MockOrderRepository)
	mockPatients := new(MockPatientClient)
	mockCarts := new(MockCartClient)
	mockTx := new(MockTx)

	svc := NewOrderService(mockRepo, mockPatients, mockCarts, logger)

	mockPatients.On("GetByID", ctx, int64(42)).Return(testPatient(), nil)
	mockCarts.On("GetByID", ctx, cartID).Return(testCartWithItems(cartID), nil)
	mockRepo.On("BeginTx", ctx).Return(mockTx, nil)
	mockRepo.On("CreateOrder", ctx, mockTx, mock.AnythingOfType("*model.Order")).Return(nil)
	mockRepo.On("CreateOrderItems", ctx, mockTx, mock.AnythingOfType("[]model.OrderItem")).Return(nil)
	mockTx.On("Commit", ctx).Return(nil)
	mockCarts.On("Clear", mock.Anything, cartID).
		Return(model.Unavailable(errors.New("timeout"), "remote service unreachable"))

	// The committed order stands even though the compensating clear failed.
	order, err := svc.PlaceOrder(ctx, req)

	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Equal(t, 900.00, order.TotalAmount)
	mockCarts.AssertExpectations(t)
}

func TestOrderService_GetOrdersByPatient_Flattens(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	orderID := uuid.New()
	orders := []model.Order{
		{
			ID:          orderID,
			PatientID:   42,
			TotalAmount: 900.00,
			Items: []model.OrderItem{
				{ID: uuid.New(), OrderID: orderID, TestID: 7, Price: 500.00},
				{ID: uuid.New(), OrderID: orderID, TestID: 9, Price: 400.00},
			},
		},
	}

	mockRepo := new(MockOrderRepository)
	svc := NewOrderService(mockRepo, new(MockPatientClient), new(MockCartClient), logger)

	mockRepo.On("ListByPatientID", ctx, int64(42)).Return(orders, nil)

	pairs, err := svc.GetOrdersByPatient(ctx, 42)

	require.NoError(t, err)
	require.Len(t, pairs, 2)
	for i, pair := range pairs {
		assert.Equal(t, orderID, pair.Order.ID)
		assert.Nil(t, pair.Order.Items)
		assert.Equal(t, orders[0].Items[i].TestID, pair.Item.TestID)
	}
}

func TestOrderService_GetOrdersByPatient_Empty(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	mockRepo := new(MockOrderRepository)
	svc := NewOrderService(mockRepo, new(MockPatientClient), new(MockCartClient), logger)

	mockRepo.On("ListByPatientID", ctx, int64(42)).Return([]model.Order{}, nil)

	pairs, err := svc.GetOrdersByPatient(ctx, 42)

	require.NoError(t, err)
	assert.NotNil(t, pairs)
	assert.Empty(t, pairs)
}

func TestOrderService_GetOrderByID(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	orderID := uuid.New()
	order := &model.Order{ID: orderID, PatientID: 42}

	tests := []struct {
		name       string
		repoOrder  *model.Order
		repoErr    error
		expectKind model.Kind
	}{
		{name: "Success", repoOrder: order},
		{name: "Not found", expectKind: model.KindNotFound},
		{name: "Repository error", repoErr: errors.New("timeout"), expectKind: model.KindDatabase},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockOrderRepository)
			svc := NewOrderService(mockRepo, new(MockPatientClient), new(MockCartClient), logger)

			mockRepo.On("GetByID", ctx, orderID).Return(tt.repoOrder, tt.repoErr)

			got, err := svc.GetOrderByID(ctx, orderID)

			if tt.repoOrder != nil {
				require.NoError(t, err)
				assert.Equal(t, tt.repoOrder, got)
			} else {
				require.Error(t, err)
				assert.Equal(t, tt.expectKind, model.KindOf(err))
			}
		})
	}
}

func TestOrderService_GetOrderByTransactionID(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	order := &model.Order{ID: uuid.New(), PatientID: 42, TransactionID: 5501}

	mockRepo := new(MockOrderRepository)
	svc := NewOrderService(mockRepo, new(MockPatientClient), new(MockCartClient), logger)

	mockRepo.On("GetByTransactionID", ctx, int64(5501)).Return(order, nil)
	mockRepo.On("GetByTransactionID", ctx, int64(9999)).Return(nil, nil)

	got, err := svc.GetOrderByTransactionID(ctx, 5501)
	require.NoError(t, err)
	assert.Equal(t, order, got)

	got, err = svc.GetOrderByTransactionID(ctx, 9999)
	require.Error(t, err)
	assert.Nil(t, got)
	assert.True(t, model.IsNotFound(err))
}

func TestOrderService_DeleteOrderByID(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	existing := uuid.New()
	missing := uuid.New()

	mockRepo := new(MockOrderRepository)
	svc := NewOrderService(mockRepo, new(MockPatientClient), new(MockCartClient), logger)

	mockRepo.On("DeleteByID", ctx, existing).Return(true, nil)
	mockRepo.On("DeleteByID", ctx, missing).Return(false, nil)

	require.NoError(t, svc.DeleteOrderByID(ctx, existing))

	err := svc.DeleteOrderByID(ctx, missing)
	require.Error(t, err)
	assert.True(t, model.IsNotFound(err))
}

func TestOrderService_UpdateOrderItem(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	req := &model.UpdateOrderItemRequest{
		OrderID:       uuid.New(),
		OrderItemID:   uuid.New(),
		OrderStatus:   "Sample Collected",
		PaymentMode:   "UPI",
		PaymentStatus: "Paid",
		TestDate:      time.Now().Add(24 * time.Hour),
	}

	tests := []struct {
		name        string
		repoUpdated bool
		repoErr     error
		expectErr   bool
	}{
		{name: "Matched", repoUpdated: true},
		{name: "Unmatched pair reports false", repoUpdated: false},
		{name: "Repository error", repoErr: errors.New("timeout"), expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockOrderRepository)
			svc := NewOrderService(mockRepo, new(MockPatientClient), new(MockCartClient), logger)

			mockRepo.On("UpdateItem", ctx, req).Return(tt.repoUpdated, tt.repoErr)

			updated, err := svc.UpdateOrderItem(ctx, req)

			if tt.expectErr {
				require.Error(t, err)
				assert.Equal(t, model.KindDatabase, model.KindOf(err))
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.repoUpdated, updated)
			}
		})
	}
}

func TestOrderService_UpdateTestDate(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	req := &model.UpdateTestDateRequest{
		OrderID:     uuid.New(),
		OrderItemID: uuid.New(),
		TestDate:    time.Now().Add(96 * time.Hour),
	}

	mockRepo := new(MockOrderRepository)
	svc := NewOrderService(mockRepo, new(MockPatientClient), new(MockCartClient), logger)

	mockRepo.On("UpdateItemTestDate", ctx, req).Return(true, nil)

	updated, err := svc.UpdateTestDate(ctx, req)
	require.NoError(t, err)
	assert.True(t, updated)
}

func TestOrderService_FindLabOrderDetails(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	details := []model.LabOrderDetail{
		{OrderItemID: uuid.New(), LabID: 3, TestID: 7, Price: 500.00},
		{OrderItemID: uuid.New(), LabID: 3, TestID: 9, Price: 400.00},
	}

	mockRepo := new(MockOrderRepository)
	svc := NewOrderService(mockRepo, new(MockPatientClient), new(MockCartClient), logger)

	mockRepo.On("FindLabOrderDetails", ctx, int64(3)).Return(details, nil)

	got, err := svc.FindLabOrderDetails(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, details, got)
}

func TestOrderService_FindLabOrderItemDetail_NotFound(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	orderID := uuid.New()
	orderItemID := uuid.New()

	mockRepo := new(MockOrderRepository)
	svc := NewOrderService(mockRepo, new(MockPatientClient), new(MockCartClient), logger)

	mockRepo.On("FindLabOrderItemDetail", ctx, int64(3), orderID, orderItemID).Return(nil, nil)

	got, err := svc.FindLabOrderItemDetail(ctx, 3, orderID, orderItemID)
	require.Error(t, err)
	assert.Nil(t, got)
	assert.True(t, model.IsNotFound(err))
}
