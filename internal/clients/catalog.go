package clients

import (
	"context"
	"fmt"

	"onehealth-labs/internal/model"

	"github.com/rs/zerolog"
)

// CatalogClient reads authoritative test and lab attributes from the lab
// test catalog service.
type CatalogClient interface {
	// GetTestByID fetches a lab test with its price and lab attributes.
	GetTestByID(ctx context.Context, testID int64) (*model.LabTest, error)
}

type catalogClient struct {
	http *httpClient
}

// NewCatalogClient creates a test catalog lookup client.
func NewCatalogClient(cfg Config, logger zerolog.Logger) CatalogClient {
	return &catalogClient{http: newHTTPClient(cfg, "catalog", logger)}
}

func (c *catalogClient) GetTestByID(ctx context.Context, testID int64) (*model.LabTest, error) {
	var test model.LabTest
	path := fmt.Sprintf("/tests/%d", testID)
	notFound := fmt.Sprintf("test not found with test id: %d", testID)

	if err := c.http.getJSON(ctx, path, notFound, &test); err != nil {
		return nil, err
	}
	return &test, nil
}
