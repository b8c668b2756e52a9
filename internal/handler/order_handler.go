package handler

import (
	"net/http"

	"onehealth-labs/internal/model"
	"onehealth-labs/internal/service"

	"github.com/rs/zerolog"
)

// OrderHandler handles lab test order HTTP requests.
type OrderHandler struct {
	service service.OrderService
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

// PlaceOrder handles POST /api/lab-orders/place-order requests.
func (h *OrderHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req model.PlaceOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), h.logger)
		return
	}

	order, err := h.service.PlaceOrder(r.Context(), &req)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, order)
}

// GetByPatient handles GET /api/lab-orders/patient/{patientId} requests.
func (h *OrderHandler) GetByPatient(w http.ResponseWriter, r *http.Request) {
	patientID, err := pathInt64(r, "patientId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), h.logger)
		return
	}

	pairs, err := h.service.GetOrdersByPatient(r.Context(), patientID)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, pairs)
}

// GetByLab handles GET /api/lab-orders/lab/{labId} requests.
func (h *OrderHandler) GetByLab(w http.ResponseWriter, r *http.Request) {
	labID, err := pathInt64(r, "labId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), h.logger)
		return
	}

	details, err := h.service.FindLabOrderDetails(r.Context(), labID)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, details)
}

// GetLabOrderItem handles
// GET /api/lab-orders/lab/{labId}/order/{orderId}/item/{orderItemId} requests.
func (h *OrderHandler) GetLabOrderItem(w http.ResponseWriter, r *http.Request) {
	labID, err := pathInt64(r, "labId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), h.logger)
		return
	}
	orderID, err := pathUUID(r, "orderId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), h.logger)
		return
	}
	orderItemID, err := pathUUID(r, "orderItemId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), h.logger)
		return
	}

	detail, err := h.service.FindLabOrderItemDetail(r.Context(), labID, orderID, orderItemID)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, detail)
}

// GetByTransaction handles GET /api/lab-orders/transaction/{transactionId} requests.
func (h *OrderHandler) GetByTransaction(w http.ResponseWriter, r *http.Request) {
	transactionID, err := pathInt64(r, "transactionId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), h.logger)
		return
	}

	order, err := h.service.GetOrderByTransactionID(r.Context(), transactionID)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// GetByID handles GET /api/lab-orders/{orderId} requests.
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathUUID(r, "orderId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), h.logger)
		return
	}

	order, err := h.service.GetOrderByID(r.Context(), orderID)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// Delete handles DELETE /api/lab-orders/{orderId} requests.
func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathUUID(r, "orderId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), h.logger)
		return
	}

	if err := h.service.DeleteOrderByID(r.Context(), orderID); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "order deleted successfully"})
}

// Update handles PUT /api/lab-orders/update-order requests.
func (h *OrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateOrderItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), h.logger)
		return
	}

	updated, err := h.service.UpdateOrderItem(r.Context(), &req)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}
	if !updated {
		writeError(w, http.StatusNotFound, "order or order item not found for update", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, model.UpdateResult{Updated: true})
}

// UpdateTestDate handles PUT /api/lab-orders/update-test-date requests.
func (h *OrderHandler) UpdateTestDate(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateTestDateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), h.logger)
		return
	}

	updated, err := h.service.UpdateTestDate(r.Context(), &req)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}
	if !updated {
		writeError(w, http.StatusNotFound, "order or order item not found for update", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, model.UpdateResult{Updated: true})
}
