package clients

import (
	"context"
	"fmt"

	"onehealth-labs/internal/model"

	"github.com/rs/zerolog"
)

// PatientClient reads patient identity from the patient service.
type PatientClient interface {
	// GetByID fetches a patient. Returns a NOT_FOUND domain error when the
	// patient does not exist and SERVICE_UNAVAILABLE when the service
	// cannot be reached.
	GetByID(ctx context.Context, patientID int64) (*model.Patient, error)
}

type patientClient struct {
	http *httpClient
}

// NewPatientClient creates a patient lookup client.
func NewPatientClient(cfg Config, logger zerolog.Logger) PatientClient {
	return &patientClient{http: newHTTPClient(cfg, "patient", logger)}
}

func (c *patientClient) GetByID(ctx context.Context, patientID int64) (*model.Patient, error) {
	var patient model.Patient
	path := fmt.Sprintf("/patients/%d", patientID)
	notFound := fmt.Sprintf("patient not found with patient id: %d", patientID)

	if err := c.http.getJSON(ctx, path, notFound, &patient); err != nil {
		return nil, err
	}
	return &patient, nil
}
