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

// cartRepository implements the CartRepository interface using PostgreSQL.
type cartRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCartRepository creates a new PostgreSQL-backed cart repository.
func NewCartRepository(pool *pgxpool.Pool, logger zerolog.Logger) CartRepository {
	return &cartRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "cart").Logger(),
	}
}

// EnsureCart returns the patient's cart, creating it if absent. The unique
// constraint on patient_id makes concurrent creates converge on one row.
func (r *cartRepository) EnsureCart(ctx context.Context, patientID int64) (*model.Cart, error) {
	query := `
		INSERT INTO lab_carts (id, patient_id, created_at, updated_at)
		VALUES ($1, $2, now(), now())
		ON CONFLICT (patient_id) DO UPDATE SET updated_at = now()
		RETURNING id, patient_id, created_at, updated_at
	`

	var cart model.Cart
	err := r.pool.QueryRow(ctx, query, uuid.New(), patientID).Scan(
		&cart.ID,
		&cart.PatientID,
		&cart.CreatedAt,
		&cart.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Int64("patient_id", patientID).Msg("failed to ensure cart")
		return nil, fmt.Errorf("failed to ensure cart: %w", err)
	}

	return &cart, nil
}

// GetByPatientID retrieves a cart with its items by patient id.
func (r *cartRepository) GetByPatientID(ctx context.Context, patientID int64) (*model.Cart, error) {
	query := `
		SELECT id, patient_id, created_at, updated_at
		FROM lab_carts
		WHERE patient_id = $1
	`
	return r.getCart(ctx, query, patientID)
}

// GetByID retrieves a cart with its items by primary key.
func (r *cartRepository) GetByID(ctx context.Context, cartID uuid.UUID) (*model.Cart, error) {
	query := `
		SELECT id, patient_id, created_at, updated_at
		FROM lab_carts
		WHERE id = $1
	`
	return r.getCart(ctx, query, cartID)
}

func (r *cartRepository) getCart(ctx context.Context, query string, arg any) (*model.Cart, error) {
	var cart model.Cart
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&cart.ID,
		&cart.PatientID,
		&cart.CreatedAt,
		&cart.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Msg("failed to query cart")
		return nil, fmt.Errorf("failed to query cart: %w", err)
	}

	items, err := r.loadItems(ctx, cart.ID)
	if err != nil {
		return nil, err
	}
	cart.Items = items

	return &cart, nil
}

func (r *cartRepository) loadItems(ctx context.Context, cartID uuid.UUID) ([]model.CartItem, error) {
	query := `
		SELECT id, cart_id, test_id, test_name, quantity, total_price,
		       lab_id, lab_name, lab_address, test_category, scheduled_date
		FROM lab_cart_items
		WHERE cart_id = $1
		ORDER BY test_id
	`

	rows, err := r.pool.Query(ctx, query, cartID)
	if err != nil {
		r.logger.Error().Err(err).Str("cart_id", cartID.String()).Msg("failed to query cart items")
		return nil, fmt.Errorf("failed to query cart items: %w", err)
	}
	defer rows.Close()

	var items []model.CartItem
	for rows.Next() {
		var item model.CartItem
		err := rows.Scan(
			&item.ID,
			&item.CartID,
			&item.TestID,
			&item.TestName,
			&item.Quantity,
			&item.TotalPrice,
			&item.LabID,
			&item.LabName,
			&item.LabAddress,
			&item.TestCategory,
			&item.ScheduledDate,
		)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan cart item row")
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating cart item rows")
		return nil, fmt.Errorf("error iterating cart items: %w", err)
	}

	return items, nil
}

// UpsertItem applies the merge policy atomically: an insert that collides
// on (cart_id, test_id) overwrites the existing item's quantity and
// catalog snapshot instead of adding a second row.
func (r *cartRepository) UpsertItem(ctx context.Context, item *model.CartItem) error {
	query := `
		INSERT INTO lab_cart_items
			(id, cart_id, test_id, test_name, quantity, total_price,
			 lab_id, lab_name, lab_address, test_category, scheduled_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (cart_id, test_id) DO UPDATE SET
			test_name      = EXCLUDED.test_name,
			quantity       = EXCLUDED.quantity,
			total_price    = EXCLUDED.total_price,
			lab_id         = EXCLUDED.lab_id,
			lab_name       = EXCLUDED.lab_name,
			lab_address    = EXCLUDED.lab_address,
			test_category  = EXCLUDED.test_category,
			scheduled_date = EXCLUDED.scheduled_date
	`

	_, err := r.pool.Exec(ctx, query,
		item.ID,
		item.CartID,
		item.TestID,
		item.TestName,
		item.Quantity,
		item.TotalPrice,
		item.LabID,
		item.LabName,
		item.LabAddress,
		item.TestCategory,
		item.ScheduledDate,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("cart_id", item.CartID.String()).
			Int64("test_id", item.TestID).
			Msg("failed to upsert cart item")
		return fmt.Errorf("failed to upsert cart item: %w", err)
	}

	r.logger.Debug().
		Str("cart_id", item.CartID.String()).
		Int64("test_id", item.TestID).
		Int("quantity", item.Quantity).
		Msg("cart item upserted")

	return nil
}

// DeleteItem removes the item with the given test id from the cart.
func (r *cartRepository) DeleteItem(ctx context.Context, cartID uuid.UUID, testID int64) error {
	query := `DELETE FROM lab_cart_items WHERE cart_id = $1 AND test_id = $2`

	_, err := r.pool.Exec(ctx, query, cartID, testID)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("cart_id", cartID.String()).
			Int64("test_id", testID).
			Msg("failed to delete cart item")
		return fmt.Errorf("failed to delete cart item: %w", err)
	}

	return nil
}

// ClearItems empties the cart, preserving the cart row.
func (r *cartRepository) ClearItems(ctx context.Context, cartID uuid.UUID) error {
	query := `DELETE FROM lab_cart_items WHERE cart_id = $1`

	tag, err := r.pool.Exec(ctx, query, cartID)
	if err != nil {
		r.logger.Error().Err(err).Str("cart_id", cartID.String()).Msg("failed to clear cart items")
		return fmt.Errorf("failed to clear cart items: %w", err)
	}

	r.logger.Debug().
		Str("cart_id", cartID.String()).
		Int64("removed", tag.RowsAffected()).
		Msg("cart cleared")

	return nil
}
