package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"freightflow/shipment"
)

// ShipmentService abstracts shipment registration for the handlers.
type ShipmentService interface {
	Create(ctx context.Context, params shipment.CreateParams) (shipment.Shipment, error)
	Get(ctx context.Context, id string) (shipment.Shipment, error)
	List(ctx context.Context, filters shipment.ListFilters) ([]shipment.Shipment, int, error)
}

type ShipmentHandler struct {
	svc ShipmentService
}

func NewShipmentHandler(svc ShipmentService) *ShipmentHandler {
	return &ShipmentHandler{svc: svc}
}

type createShipmentRequest struct {
	BilityNumber string    `json:"bility_number"`
	BilityDate   time.Time `json:"bility_date"`
	SenderID     string    `json:"sender_id"`
	ReceiverID   string    `json:"receiver_id"`
	FromCityID   string    `json:"from_city_id"`
	ToCityID     string    `json:"to_city_id"`
	VehicleID    *string   `json:"vehicle_id"`
	Description  *string   `json:"description"`
	Quantity     int       `json:"quantity"`
	WeightKg     float64   `json:"weight_kg"`
	Freight      float64   `json:"freight"`
	LocalCharge  float64   `json:"local_charge"`
	BilityCharge float64   `json:"bility_charge"`
	OtherCharge  float64   `json:"other_charge"`
}

func (h *ShipmentHandler) Create(c *gin.Context) {
	var req createShipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}

	s, err := h.svc.Create(c.Request.Context(), shipment.CreateParams{
		BilityNumber: req.BilityNumber,
		BilityDate:   req.BilityDate,
		SenderID:     req.SenderID,
		ReceiverID:   req.ReceiverID,
		FromCityID:   req.FromCityID,
		ToCityID:     req.ToCityID,
		VehicleID:    req.VehicleID,
		Description:  req.Description,
		Quantity:     req.Quantity,
		WeightKg:     req.WeightKg,
		Freight:      req.Freight,
		LocalCharge:  req.LocalCharge,
		BilityCharge: req.BilityCharge,
		OtherCharge:  req.OtherCharge,
	})
	if err != nil {
		if errors.Is(err, shipment.ErrDuplicateBility) {
			respondError(c, http.StatusConflict, "duplicate_bility", err)
			return
		}
		respondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	respondCreated(c, s)
}

func (h *ShipmentHandler) Get(c *gin.Context) {
	s, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, shipment.ErrNotFound) {
			respondError(c, http.StatusNotFound, "not_found", err)
			return
		}
		respondError(c, http.StatusInternalServerError, "internal", err)
		return
	}
	respondOK(c, s)
}

func (h *ShipmentHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	pageSize, _ := strconv.Atoi(c.Query("page_size"))

	items, total, err := h.svc.List(c.Request.Context(), shipment.ListFilters{
		FromCityID: c.Query("from_city_id"),
		ToCityID:   c.Query("to_city_id"),
		Page:       page,
		PageSize:   pageSize,
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal", err)
		return
	}
	respondOK(c, gin.H{"items": items, "total": total})
}
