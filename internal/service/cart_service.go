package service

import (
	"context"
	"sync"

	"onehealth-labs/internal/clients"
	"onehealth-labs/internal/model"
	"onehealth-labs/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// patientLocks serializes multi-statement cart mutations per patient so a
// read-modify-write on one cart never interleaves with another for the same
// patient. The storage-level unique constraints backstop this across
// processes; the lock keeps a single instance orderly.
type patientLocks struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func newPatientLocks() *patientLocks {
	return &patientLocks{locks: make(map[int64]*sync.Mutex)}
}

// acquire locks the patient's mutex and returns its unlock func.
func (l *patientLocks) acquire(patientID int64) func() {
	l.mu.Lock()
	m, ok := l.locks[patientID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[patientID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// cartService implements CartService.
type cartService struct {
	cartRepo repository.CartRepository
	patients clients.PatientClient
	catalog  clients.CatalogClient
	locks    *patientLocks
	logger   zerolog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(
	cartRepo repository.CartRepository,
	patients clients.PatientClient,
	catalog clients.CatalogClient,
	logger zerolog.Logger,
) CartService {
	return &cartService{
		cartRepo: cartRepo,
		patients: patients,
		catalog:  catalog,
		locks:    newPatientLocks(),
		logger:   logger.With().Str("service", "cart").Logger(),
	}
}

// AddToCart gathers the remote validations first, then commits the item
// snapshot. The price and lab fields are frozen from the catalog at this
// moment and are not re-validated later.
func (s *cartService) AddToCart(ctx context.Context, req *model.AddToCartRequest) error {
	patient, err := s.patients.GetByID(ctx, req.PatientID)
	if err != nil {
		s.logger.Warn().Err(err).Int64("patient_id", req.PatientID).Msg("patient lookup failed")
		return err
	}

	test, err := s.catalog.GetTestByID(ctx, req.TestID)
	if err != nil {
		s.logger.Warn().Err(err).Int64("test_id", req.TestID).Msg("test lookup failed")
		return err
	}

	unlock := s.locks.acquire(patient.ID)
	defer unlock()

	cart, err := s.cartRepo.EnsureCart(ctx, req.PatientID)
	if err != nil {
		s.logger.Error().Err(err).Int64("patient_id", req.PatientID).Msg("failed to ensure cart")
		return model.Database(err, "failed to load cart for patient %d", req.PatientID)
	}

	item := &model.CartItem{
		ID:            uuid.New(),
		CartID:        cart.ID,
		TestID:        test.ID,
		TestName:      test.Name,
		Quantity:      req.Quantity,
		TotalPrice:    test.Price * float64(req.Quantity),
		LabID:         test.LabID,
		LabName:       test.LabName,
		LabAddress:    test.LabAddress,
		TestCategory:  test.Category,
		ScheduledDate: req.TestDate,
	}

	if err := s.cartRepo.UpsertItem(ctx, item); err != nil {
		s.logger.Error().
			Err(err).
			Str("cart_id", cart.ID.String()).
			Int64("test_id", test.ID).
			Msg("failed to persist cart item")
		return model.Database(err, "failed to add test %d to cart", test.ID)
	}

	s.logger.Info().
		Int64("patient_id", req.PatientID).
		Int64("test_id", req.TestID).
		Int("quantity", req.Quantity).
		Float64("total_price", item.TotalPrice).
		Msg("test added to cart")

	return nil
}

// GetCart validates the patient remotely before touching the store, so a
// cart belonging to a deleted patient is reported as not found rather than
// served stale.
func (s *cartService) GetCart(ctx context.Context, patientID int64) (*model.Cart, error) {
	if _, err := s.patients.GetByID(ctx, patientID); err != nil {
		s.logger.Warn().Err(err).Int64("patient_id", patientID).Msg("patient lookup failed")
		return nil, err
	}

	cart, err := s.cartRepo.GetByPatientID(ctx, patientID)
	if err != nil {
		s.logger.Error().Err(err).Int64("patient_id", patientID).Msg("failed to load cart")
		return nil, model.Database(err, "failed to load cart for patient %d", patientID)
	}
	if cart == nil {
		return nil, model.NotFound("cart not found for patient id: %d", patientID)
	}

	return cart, nil
}

// RemoveItem resolves the cart through GetCart, so the same patient gate
// applies. Removing a test that is not in the cart succeeds silently.
func (s *cartService) RemoveItem(ctx context.Context, testID, patientID int64) error {
	cart, err := s.GetCart(ctx, patientID)
	if err != nil {
		return err
	}

	unlock := s.locks.acquire(patientID)
	defer unlock()

	if err := s.cartRepo.DeleteItem(ctx, cart.ID, testID); err != nil {
		s.logger.Error().
			Err(err).
			Str("cart_id", cart.ID.String()).
			Int64("test_id", testID).
			Msg("failed to remove cart item")
		return model.Database(err, "failed to remove test %d from cart", testID)
	}

	s.logger.Info().
		Int64("patient_id", patientID).
		Int64("test_id", testID).
		Msg("test removed from cart")

	return nil
}

// GetCartByID retrieves a cart by primary key.
func (s *cartService) GetCartByID(ctx context.Context, cartID uuid.UUID) (*model.Cart, error) {
	cart, err := s.cartRepo.GetByID(ctx, cartID)
	if err != nil {
		s.logger.Error().Err(err).Str("cart_id", cartID.String()).Msg("failed to load cart")
		return nil, model.Database(err, "failed to load cart %s", cartID)
	}
	if cart == nil {
		return nil, model.NotFound("cart not found with cart id: %s", cartID)
	}

	return cart, nil
}

// ClearCart empties the cart's items and preserves the cart row, so the
// patient's cart id stays stable across orders. Clearing an already-empty
// cart is a no-op success, which makes a retried clear safe.
func (s *cartService) ClearCart(ctx context.Context, cartID uuid.UUID) error {
	cart, err := s.GetCartByID(ctx, cartID)
	if err != nil {
		return err
	}

	if err := s.cartRepo.ClearItems(ctx, cart.ID); err != nil {
		s.logger.Error().Err(err).Str("cart_id", cartID.String()).Msg("failed to clear cart")
		return model.Database(err, "failed to clear cart %s", cartID)
	}

	s.logger.Info().
		Str("cart_id", cartID.String()).
		Int("removed_items", len(cart.Items)).
		Msg("cart cleared")

	return nil
}
