package router

import (
	"net/http"

	"onehealth-labs/internal/handler"
	"onehealth-labs/internal/middleware"

	"github.com/rs/zerolog"
)

// New creates a new HTTP router with all routes and middleware configured.
func New(
	cartHandler *handler.CartHandler,
	orderHandler *handler.OrderHandler,
	apiKey string,
	logger zerolog.Logger,
) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint (no authentication required)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	// Lab cart routes
	mux.HandleFunc("POST /api/lab-carts/add-to-cart", cartHandler.AddToCart)
	mux.HandleFunc("GET /api/lab-carts/patient/{patientId}", cartHandler.GetCart)
	mux.HandleFunc("DELETE /api/lab-carts/remove-item/{testId}/{patientId}", cartHandler.RemoveItem)
	mux.HandleFunc("GET /api/lab-carts/{cartId}", cartHandler.GetByID)
	mux.HandleFunc("POST /api/lab-carts/{cartId}/clear", cartHandler.Clear)

	// Lab order routes
	mux.HandleFunc("POST /api/lab-orders/place-order", orderHandler.PlaceOrder)
	mux.HandleFunc("GET /api/lab-orders/patient/{patientId}", orderHandler.GetByPatient)
	mux.HandleFunc("GET /api/lab-orders/lab/{labId}", orderHandler.GetByLab)
	mux.HandleFunc("GET /api/lab-orders/lab/{labId}/order/{orderId}/item/{orderItemId}", orderHandler.GetLabOrderItem)
	mux.HandleFunc("GET /api/lab-orders/transaction/{transactionId}", orderHandler.GetByTransaction)
	mux.HandleFunc("GET /api/lab-orders/{orderId}", orderHandler.GetByID)
	mux.HandleFunc("DELETE /api/lab-orders/{orderId}", orderHandler.Delete)
	mux.HandleFunc("PUT /api/lab-orders/update-order", orderHandler.Update)
	mux.HandleFunc("PUT /api/lab-orders/update-test-date", orderHandler.UpdateTestDate)

	// Apply middleware in order: Recovery -> Logging -> CORS -> APIKeyAuth
	var h http.Handler = mux
	h = middleware.APIKeyAuth(apiKey, logger)(h)
	h = middleware.CORS(h)
	h = middleware.Logging(logger)(h)
	h = middleware.Recovery(logger)(h)

	return h
}
