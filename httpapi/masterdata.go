package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"freightflow/masterdata"
)

// MasterdataHandler serves the reference-data CRUD endpoints.
type MasterdataHandler struct {
	svc *masterdata.Service
}

func NewMasterdataHandler(svc *masterdata.Service) *MasterdataHandler {
	return &MasterdataHandler{svc: svc}
}

type createCityRequest struct {
	Name string `json:"name"`
}

func (h *MasterdataHandler) CreateCity(c *gin.Context) {
	var req createCityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	city, err := h.svc.CreateCity(c.Request.Context(), req.Name)
	if err != nil {
		respondMasterdataError(c, err)
		return
	}
	respondCreated(c, city)
}

func (h *MasterdataHandler) ListCities(c *gin.Context) {
	items, err := h.svc.ListCities(c.Request.Context())
	if err != nil {
		respondMasterdataError(c, err)
		return
	}
	respondOK(c, gin.H{"items": items})
}

type createAgencyRequest struct {
	Name   string  `json:"name"`
	CityID string  `json:"city_id"`
	Phone  *string `json:"phone"`
}

func (h *MasterdataHandler) CreateAgency(c *gin.Context) {
	var req createAgencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	agency, err := h.svc.CreateAgency(c.Request.Context(), req.Name, req.CityID, req.Phone)
	if err != nil {
		respondMasterdataError(c, err)
		return
	}
	respondCreated(c, agency)
}

func (h *MasterdataHandler) ListAgencies(c *gin.Context) {
	items, err := h.svc.ListAgencies(c.Request.Context())
	if err != nil {
		respondMasterdataError(c, err)
		return
	}
	respondOK(c, gin.H{"items": items})
}

type createVehicleRequest struct {
	Number string `json:"number"`
	Kind   string `json:"kind"`
}

func (h *MasterdataHandler) CreateVehicle(c *gin.Context) {
	var req createVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	vehicle, err := h.svc.CreateVehicle(c.Request.Context(), req.Number, req.Kind)
	if err != nil {
		respondMasterdataError(c, err)
		return
	}
	respondCreated(c, vehicle)
}

func (h *MasterdataHandler) ListVehicles(c *gin.Context) {
	items, err := h.svc.ListVehicles(c.Request.Context())
	if err != nil {
		respondMasterdataError(c, err)
		return
	}
	respondOK(c, gin.H{"items": items})
}

type createPartyRequest struct {
	Name    string  `json:"name"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
	CityID  *string `json:"city_id"`
}

func (h *MasterdataHandler) CreateParty(c *gin.Context) {
	var req createPartyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	party, err := h.svc.CreateParty(c.Request.Context(), req.Name, req.Phone, req.Address, req.CityID)
	if err != nil {
		respondMasterdataError(c, err)
		return
	}
	respondCreated(c, party)
}

func (h *MasterdataHandler) ListParties(c *gin.Context) {
	items, err := h.svc.ListParties(c.Request.Context())
	if err != nil {
		respondMasterdataError(c, err)
		return
	}
	respondOK(c, gin.H{"items": items})
}

type createLabourerRequest struct {
	Name     string  `json:"name"`
	Phone    *string `json:"phone"`
	AgencyID *string `json:"agency_id"`
}

func (h *MasterdataHandler) CreateLabourer(c *gin.Context) {
	var req createLabourerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	labourer, err := h.svc.CreateLabourer(c.Request.Context(), req.Name, req.Phone, req.AgencyID)
	if err != nil {
		respondMasterdataError(c, err)
		return
	}
	respondCreated(c, labourer)
}

func (h *MasterdataHandler) ListLabourers(c *gin.Context) {
	items, err := h.svc.ListLabourers(c.Request.Context())
	if err != nil {
		respondMasterdataError(c, err)
		return
	}
	respondOK(c, gin.H{"items": items})
}

func respondMasterdataError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, masterdata.ErrDuplicate):
		respondError(c, http.StatusConflict, "duplicate", err)
	case errors.Is(err, masterdata.ErrNotFound):
		respondError(c, http.StatusNotFound, "not_found", err)
	default:
		respondError(c, http.StatusBadRequest, "bad_request", err)
	}
}
