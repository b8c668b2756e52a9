package handler

import (
	"net/http"

	"onehealth-labs/internal/model"
	"onehealth-labs/internal/service"

	"github.com/rs/zerolog"
)

// CartHandler handles lab cart HTTP requests.
type CartHandler struct {
	service service.CartService
	logger  zerolog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(service service.CartService, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		service: service,
		logger:  logger.With().Str("handler", "cart").Logger(),
	}
}

// AddToCart handles POST /api/lab-carts/add-to-cart requests.
func (h *CartHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req model.AddToCartRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), h.logger)
		return
	}

	if err := h.service.AddToCart(r.Context(), &req); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "test added to lab cart successfully"})
}

// GetCart handles GET /api/lab-carts/patient/{patientId} requests.
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	patientID, err := pathInt64(r, "patientId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), h.logger)
		return
	}

	cart, err := h.service.GetCart(r.Context(), patientID)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, cart)
}

// RemoveItem handles DELETE /api/lab-carts/remove-item/{testId}/{patientId} requests.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	testID, err := pathInt64(r, "testId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), h.logger)
		return
	}
	patientID, err := pathInt64(r, "patientId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), h.logger)
		return
	}

	if err := h.service.RemoveItem(r.Context(), testID, patientID); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "test removed from lab cart successfully"})
}

// GetByID handles GET /api/lab-carts/{cartId} requests.
func (h *CartHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	cartID, err := pathUUID(r, "cartId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), h.logger)
		return
	}

	cart, err := h.service.GetCartByID(r.Context(), cartID)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, cart)
}

// Clear handles POST /api/lab-carts/{cartId}/clear requests.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	cartID, err := pathUUID(r, "cartId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), h.logger)
		return
	}

	if err := h.service.ClearCart(r.Context(), cartID); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "cart cleared successfully"})
}
