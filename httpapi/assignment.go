package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"freightflow/labour"
)

// EngineService abstracts the settlement engine for the handlers.
type EngineService interface {
	Deliver(ctx context.Context, assignmentID string, notes *string) (labour.Assignment, error)
	Collect(ctx context.Context, params labour.CollectParams) (labour.Assignment, error)
	Settle(ctx context.Context, assignmentID string, notes *string) (labour.Assignment, error)
	Cancel(ctx context.Context, assignmentID string, notes *string) (labour.Assignment, error)
}

// AssignmentStore abstracts assignment CRUD for the handlers.
type AssignmentStore interface {
	Create(ctx context.Context, params labour.CreateParams) (labour.Assignment, error)
	Get(ctx context.Context, id string) (labour.Assignment, error)
	List(ctx context.Context, filters labour.ListFilters) ([]labour.Assignment, int, error)
	Corrections(ctx context.Context, assignmentID string) ([]labour.Correction, error)
}

// AssignmentHandler serves assignment CRUD and the four settlement operations.
type AssignmentHandler struct {
	engine EngineService
	store  AssignmentStore
}

func NewAssignmentHandler(engine EngineService, store AssignmentStore) *AssignmentHandler {
	return &AssignmentHandler{engine: engine, store: store}
}

type assignmentResponse struct {
	ID              string     `json:"id"`
	ShipmentID      string     `json:"shipment_id"`
	LabourerID      string     `json:"labourer_id"`
	Status          string     `json:"status"`
	StationExpense  float64    `json:"station_expense"`
	BilityExpense   float64    `json:"bility_expense"`
	StationLabour   float64    `json:"station_labour"`
	CartLabour      float64    `json:"cart_labour"`
	TotalExpenses   float64    `json:"total_expenses"`
	CollectedAmount float64    `json:"collected_amount"`
	AssignedDate    time.Time  `json:"assigned_date"`
	DeliveredDate   *time.Time `json:"delivered_date,omitempty"`
	SettledDate     *time.Time `json:"settled_date,omitempty"`
	DueDate         *time.Time `json:"due_date,omitempty"`
	Notes           *string    `json:"notes,omitempty"`
}

func toAssignmentResponse(a labour.Assignment) assignmentResponse {
	return assignmentResponse{
		ID:              a.ID,
		ShipmentID:      a.ShipmentID,
		LabourerID:      a.LabourerID,
		Status:          string(a.Status),
		StationExpense:  a.StationExpense,
		BilityExpense:   a.BilityExpense,
		StationLabour:   a.StationLabour,
		CartLabour:      a.CartLabour,
		TotalExpenses:   a.TotalExpenses,
		CollectedAmount: a.CollectedAmount,
		AssignedDate:    a.AssignedDate,
		DeliveredDate:   a.DeliveredDate,
		SettledDate:     a.SettledDate,
		DueDate:         a.DueDate,
		Notes:           a.Notes,
	}
}

type createAssignmentRequest struct {
	ShipmentID string     `json:"shipment_id"`
	LabourerID string     `json:"labourer_id"`
	DueDate    *time.Time `json:"due_date"`
	Notes      *string    `json:"notes"`
}

func (h *AssignmentHandler) Create(c *gin.Context) {
	var req createAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}

	a, err := h.store.Create(c.Request.Context(), labour.CreateParams{
		ShipmentID: req.ShipmentID,
		LabourerID: req.LabourerID,
		DueDate:    req.DueDate,
		Notes:      req.Notes,
	})
	if err != nil {
		respondEngineError(c, err)
		return
	}
	respondCreated(c, toAssignmentResponse(a))
}

func (h *AssignmentHandler) Get(c *gin.Context) {
	a, err := h.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondEngineError(c, err)
		return
	}
	respondOK(c, toAssignmentResponse(a))
}

func (h *AssignmentHandler) List(c *gin.Context) {
	filters := labour.ListFilters{
		Status:     labour.Status(c.Query("status")),
		LabourerID: c.Query("labourer_id"),
		ActiveOnly: c.Query("active") == "true",
	}

	items, total, err := h.store.List(c.Request.Context(), filters)
	if err != nil {
		respondEngineError(c, err)
		return
	}

	out := make([]assignmentResponse, 0, len(items))
	for _, a := range items {
		out = append(out, toAssignmentResponse(a))
	}
	respondOK(c, gin.H{"items": out, "total": total})
}

func (h *AssignmentHandler) Corrections(c *gin.Context) {
	items, err := h.store.Corrections(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondEngineError(c, err)
		return
	}
	respondOK(c, gin.H{"items": items})
}

type notesRequest struct {
	Notes *string `json:"notes"`
}

func (h *AssignmentHandler) Deliver(c *gin.Context) {
	var req notesRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "bad_request", err)
			return
		}
	}

	a, err := h.engine.Deliver(c.Request.Context(), c.Param("id"), req.Notes)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	respondOK(c, toAssignmentResponse(a))
}

type expensesRequest struct {
	StationExpense float64 `json:"station_expense"`
	BilityExpense  float64 `json:"bility_expense"`
	StationLabour  float64 `json:"station_labour"`
	CartLabour     float64 `json:"cart_labour"`
}

type collectRequest struct {
	CollectedAmount float64          `json:"collected_amount"`
	Expenses        *expensesRequest `json:"expenses"`
	Notes           *string          `json:"notes"`
}

func (h *AssignmentHandler) Collect(c *gin.Context) {
	var req collectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}

	params := labour.CollectParams{
		AssignmentID:    c.Param("id"),
		CollectedAmount: req.CollectedAmount,
		Notes:           req.Notes,
	}
	if req.Expenses != nil {
		params.Expenses = &labour.Expenses{
			Station:       req.Expenses.StationExpense,
			Bility:        req.Expenses.BilityExpense,
			StationLabour: req.Expenses.StationLabour,
			CartLabour:    req.Expenses.CartLabour,
		}
	}

	a, err := h.engine.Collect(c.Request.Context(), params)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	respondOK(c, toAssignmentResponse(a))
}

func (h *AssignmentHandler) Settle(c *gin.Context) {
	var req notesRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "bad_request", err)
			return
		}
	}

	a, err := h.engine.Settle(c.Request.Context(), c.Param("id"), req.Notes)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	respondOK(c, toAssignmentResponse(a))
}

func (h *AssignmentHandler) Cancel(c *gin.Context) {
	var req notesRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "bad_request", err)
			return
		}
	}

	a, err := h.engine.Cancel(c.Request.Context(), c.Param("id"), req.Notes)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	respondOK(c, toAssignmentResponse(a))
}

// respondEngineError maps the settlement error taxonomy onto HTTP statuses.
// Every branch is recoverable by the operator; the reconciliation response
// carries the signed remaining balance and the exact required total so the
// caller can run the correction protocol.
func respondEngineError(c *gin.Context, err error) {
	var (
		invalid *labour.InvalidTransitionError
		valid   *labour.ValidationError
		pending *labour.ReconciliationPendingError
	)

	switch {
	case errors.As(err, &pending):
		c.JSON(http.StatusUnprocessableEntity, ErrorEnvelope{Error: APIError{
			Message:       pending.Error(),
			Code:          "reconciliation_pending",
			Remaining:     &pending.Remaining,
			RequiredTotal: &pending.RequiredTotal,
		}})
	case errors.As(err, &invalid):
		respondError(c, http.StatusConflict, "invalid_transition", err)
	case errors.As(err, &valid):
		env := ErrorEnvelope{Error: APIError{Message: valid.Error(), Code: "validation_failed"}}
		if valid.RequiredTotal != nil {
			env.Error.RequiredTotal = valid.RequiredTotal
		}
		c.JSON(http.StatusBadRequest, env)
	case errors.Is(err, labour.ErrConflict):
		respondError(c, http.StatusConflict, "conflict", err)
	case errors.Is(err, labour.ErrDuplicateAssignment):
		respondError(c, http.StatusConflict, "duplicate_assignment", err)
	case errors.Is(err, labour.ErrNotFound):
		respondError(c, http.StatusNotFound, "not_found", err)
	default:
		respondError(c, http.StatusInternalServerError, "internal", err)
	}
}
