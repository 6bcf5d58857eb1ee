package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"freightflow/auth"
	"freightflow/labour"
)

type stubEngine struct {
	out labour.Assignment
	err error

	collectParams *labour.CollectParams
}

func (s *stubEngine) Deliver(_ context.Context, _ string, _ *string) (labour.Assignment, error) {
	return s.out, s.err
}

func (s *stubEngine) Collect(_ context.Context, params labour.CollectParams) (labour.Assignment, error) {
	s.collectParams = &params
	return s.out, s.err
}

func (s *stubEngine) Settle(_ context.Context, _ string, _ *string) (labour.Assignment, error) {
	return s.out, s.err
}

func (s *stubEngine) Cancel(_ context.Context, _ string, _ *string) (labour.Assignment, error) {
	return s.out, s.err
}

type stubStore struct {
	out labour.Assignment
	err error
}

func (s *stubStore) Create(_ context.Context, _ labour.CreateParams) (labour.Assignment, error) {
	return s.out, s.err
}

func (s *stubStore) Get(_ context.Context, _ string) (labour.Assignment, error) {
	return s.out, s.err
}

func (s *stubStore) List(_ context.Context, _ labour.ListFilters) ([]labour.Assignment, int, error) {
	return []labour.Assignment{s.out}, 1, s.err
}

func (s *stubStore) Corrections(_ context.Context, _ string) ([]labour.Correction, error) {
	return nil, s.err
}

type allowAllVerifier struct{}

func (allowAllVerifier) VerifyToken(string) (string, auth.Role, error) {
	return "user-1", auth.RoleOperator, nil
}

func newTestRouter(engine *stubEngine, store *stubStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewAssignmentHandler(engine, store)

	grp := r.Group("/api")
	grp.Use(RequireAuth(allowAllVerifier{}))
	grp.POST("/assignments/:id/deliver", h.Deliver)
	grp.POST("/assignments/:id/collect", h.Collect)
	grp.POST("/assignments/:id/settle", h.Settle)
	grp.POST("/assignments/:id/cancel", h.Cancel)
	return r
}

func doRequest(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer token")
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestDeliverEndpoint_OK(t *testing.T) {
	engine := &stubEngine{out: labour.Assignment{ID: "asg-1", Status: labour.StatusDelivered}}
	r := newTestRouter(engine, &stubStore{})

	w := doRequest(t, r, http.MethodPost, "/api/assignments/asg-1/deliver", `{}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", w.Code, w.Body.String())
	}

	var resp assignmentResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "delivered" {
		t.Errorf("status = %s, want delivered", resp.Status)
	}
}

func TestCollectEndpoint_ForwardsExpenses(t *testing.T) {
	engine := &stubEngine{out: labour.Assignment{ID: "asg-1", Status: labour.StatusCollected}}
	r := newTestRouter(engine, &stubStore{})

	body := `{"collected_amount":1500,"expenses":{"station_expense":200,"bility_expense":50,"station_labour":100,"cart_labour":150}}`
	w := doRequest(t, r, http.MethodPost, "/api/assignments/asg-1/collect", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d (body %s)", w.Code, w.Body.String())
	}

	p := engine.collectParams
	if p == nil {
		t.Fatalf("collect not invoked")
	}
	if p.CollectedAmount != 1500 {
		t.Errorf("collected = %.2f", p.CollectedAmount)
	}
	if p.Expenses == nil || p.Expenses.Sum() != 500 {
		t.Errorf("expenses = %+v", p.Expenses)
	}
}

func TestSettleEndpoint_ReconciliationPending(t *testing.T) {
	engine := &stubEngine{err: &labour.ReconciliationPendingError{Remaining: 100, RequiredTotal: 1500}}
	r := newTestRouter(engine, &stubStore{})

	w := doRequest(t, r, http.MethodPost, "/api/assignments/asg-1/settle", `{}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422 (body %s)", w.Code, w.Body.String())
	}

	var env ErrorEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Error.Code != "reconciliation_pending" {
		t.Errorf("code = %s", env.Error.Code)
	}
	if env.Error.Remaining == nil || *env.Error.Remaining != 100 {
		t.Errorf("remaining = %v", env.Error.Remaining)
	}
	if env.Error.RequiredTotal == nil || *env.Error.RequiredTotal != 1500 {
		t.Errorf("required total = %v", env.Error.RequiredTotal)
	}
}

func TestCancelEndpoint_InvalidTransition(t *testing.T) {
	engine := &stubEngine{err: &labour.InvalidTransitionError{Current: labour.StatusSettled, Op: labour.OpCancel}}
	r := newTestRouter(engine, &stubStore{})

	w := doRequest(t, r, http.MethodPost, "/api/assignments/asg-1/cancel", `{}`)
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", w.Code)
	}
}

func TestCollectEndpoint_ValidationCarriesRequiredTotal(t *testing.T) {
	required := 1500.0
	engine := &stubEngine{err: &labour.ValidationError{Msg: "correction must confirm total collection of 1500.00", RequiredTotal: &required}}
	r := newTestRouter(engine, &stubStore{})

	w := doRequest(t, r, http.MethodPost, "/api/assignments/asg-1/collect", `{"collected_amount":1450}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}

	var env ErrorEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Error.RequiredTotal == nil || *env.Error.RequiredTotal != 1500 {
		t.Errorf("required total = %v", env.Error.RequiredTotal)
	}
}

func TestCollectEndpoint_ValidationZeroRequiredTotal(t *testing.T) {
	required := 0.0
	engine := &stubEngine{err: &labour.ValidationError{Msg: "correction must confirm total collection of 0.00", RequiredTotal: &required}}
	r := newTestRouter(engine, &stubStore{})

	w := doRequest(t, r, http.MethodPost, "/api/assignments/asg-1/collect", `{"collected_amount":10}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}

	var raw map[string]map[string]json.RawMessage
	if err := json.Unmarshal(w.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	val, ok := raw["error"]["required_total"]
	if !ok {
		t.Fatalf("required_total missing from body %s", w.Body.String())
	}
	if string(val) != "0" {
		t.Errorf("required_total = %s, want 0", val)
	}
}

func TestEndpoints_RequireAuth(t *testing.T) {
	r := newTestRouter(&stubEngine{}, &stubStore{})

	req := httptest.NewRequest(http.MethodPost, "/api/assignments/asg-1/deliver", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}
