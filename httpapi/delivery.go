package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"freightflow/delivery"
	"freightflow/returns"
)

// DeliveryHandler serves delivery confirmations and return records.
type DeliveryHandler struct {
	deliveries *delivery.Service
	returns    *returns.Service
}

func NewDeliveryHandler(deliveries *delivery.Service, rets *returns.Service) *DeliveryHandler {
	return &DeliveryHandler{deliveries: deliveries, returns: rets}
}

type createDeliveryRequest struct {
	ShipmentID  string    `json:"shipment_id"`
	ReceivedBy  string    `json:"received_by"`
	DeliveredAt time.Time `json:"delivered_at"`
	Notes       *string   `json:"notes"`
}

func (h *DeliveryHandler) Create(c *gin.Context) {
	var req createDeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}

	rec, err := h.deliveries.Create(c.Request.Context(), req.ShipmentID, req.ReceivedBy, req.DeliveredAt, req.Notes)
	if err != nil {
		switch {
		case errors.Is(err, delivery.ErrShipmentMissing):
			respondError(c, http.StatusNotFound, "not_found", err)
		case errors.Is(err, delivery.ErrDuplicate):
			respondError(c, http.StatusConflict, "duplicate", err)
		default:
			respondError(c, http.StatusBadRequest, "bad_request", err)
		}
		return
	}
	respondCreated(c, rec)
}

func (h *DeliveryHandler) List(c *gin.Context) {
	items, err := h.deliveries.List(c.Request.Context(), c.Query("shipment_id"))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal", err)
		return
	}
	respondOK(c, gin.H{"items": items})
}

type createReturnRequest struct {
	ShipmentID string `json:"shipment_id"`
	Reason     string `json:"reason"`
}

func (h *DeliveryHandler) CreateReturn(c *gin.Context) {
	var req createReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}

	rec, err := h.returns.Create(c.Request.Context(), req.ShipmentID, req.Reason)
	if err != nil {
		if errors.Is(err, returns.ErrNotFound) {
			respondError(c, http.StatusNotFound, "not_found", err)
			return
		}
		respondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	respondCreated(c, rec)
}

func (h *DeliveryHandler) ResolveReturn(c *gin.Context) {
	rec, err := h.returns.Resolve(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, returns.ErrNotFound):
			respondError(c, http.StatusNotFound, "not_found", err)
		case errors.Is(err, returns.ErrBadStatus):
			respondError(c, http.StatusConflict, "bad_status", err)
		default:
			respondError(c, http.StatusInternalServerError, "internal", err)
		}
		return
	}
	respondOK(c, rec)
}

func (h *DeliveryHandler) ListReturns(c *gin.Context) {
	items, err := h.returns.List(c.Request.Context(), c.Query("shipment_id"))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal", err)
		return
	}
	respondOK(c, gin.H{"items": items})
}
