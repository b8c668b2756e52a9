package clients

import (
	"context"
	"fmt"

	"onehealth-labs/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CartClient reads and clears carts through the cart engine's public
// endpoints. The order engine talks to the cart store only through this
// client, never through the cart repository directly.
type CartClient interface {
	// GetByID fetches a cart snapshot by cart id.
	GetByID(ctx context.Context, cartID uuid.UUID) (*model.Cart, error)

	// Clear empties the cart's items. Clearing an already-empty cart is a
	// silent no-op, so a retried clear after a transient failure is safe.
	Clear(ctx context.Context, cartID uuid.UUID) error
}

type cartClient struct {
	http *httpClient
}

// NewCartClient creates a cart service client.
func NewCartClient(cfg Config, logger zerolog.Logger) CartClient {
	return &cartClient{http: newHTTPClient(cfg, "cart", logger)}
}

func (c *cartClient) GetByID(ctx context.Context, cartID uuid.UUID) (*model.Cart, error) {
	var cart model.Cart
	path := fmt.Sprintf("/lab-carts/%s", cartID)
	notFound := fmt.Sprintf("cart not found with cart id: %s", cartID)

	if err := c.http.getJSON(ctx, path, notFound, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (c *cartClient) Clear(ctx context.Context, cartID uuid.UUID) error {
	path := fmt.Sprintf("/lab-carts/%s/clear", cartID)
	notFound := fmt.Sprintf("cart not found with cart id: %s", cartID)

	return c.http.post(ctx, path, notFound)
}
