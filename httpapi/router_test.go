package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"freightflow/auth"
	"freightflow/delivery"
	"freightflow/masterdata"
	"freightflow/returns"
)

type stubAuthService struct {
	user     auth.User
	loginErr error
}

func (s *stubAuthService) Register(_ context.Context, _ auth.RegisterRequest) (*auth.User, error) {
	return &s.user, nil
}

func (s *stubAuthService) Login(_ context.Context, _ auth.LoginRequest) (auth.LoginResult, error) {
	if s.loginErr != nil {
		return auth.LoginResult{}, s.loginErr
	}
	return auth.LoginResult{Token: "tok", User: s.user}, nil
}

func newFullRouter(authSvc *stubAuthService) http.Handler {
	return NewRouter(RouterConfig{
		Verifier:    allowAllVerifier{},
		Auth:        NewAuthHandler(authSvc),
		Assignments: NewAssignmentHandler(&stubEngine{}, &stubStore{}),
		Shipments:   NewShipmentHandler(nil),
		Masterdata:  NewMasterdataHandler(masterdata.NewService(nil)),
		Deliveries:  NewDeliveryHandler(delivery.NewService(nil), returns.NewService(nil)),
	})
}

func TestRouter_Healthz(t *testing.T) {
	r := newFullRouter(&stubAuthService{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestRouter_ProtectedWithoutToken(t *testing.T) {
	r := newFullRouter(&stubAuthService{})

	req := httptest.NewRequest(http.MethodGet, "/api/assignments", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestRouter_Login(t *testing.T) {
	r := newFullRouter(&stubAuthService{user: auth.User{ID: "u1", Email: "ops@freightflow.dev", FullName: "Ops", Role: auth.RoleOperator}})

	body := `{"email":"ops@freightflow.dev","password":"secret123"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d (body %s)", w.Code, w.Body.String())
	}

	var payload struct {
		Token string       `json:"token"`
		User  userResponse `json:"user"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Token != "tok" || payload.User.ID != "u1" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestRouter_LoginInvalidCredentials(t *testing.T) {
	r := newFullRouter(&stubAuthService{loginErr: auth.ErrInvalidCredentials})

	body := `{"email":"ops@freightflow.dev","password":"wrong"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestRouter_AssignmentRouteReachable(t *testing.T) {
	r := newFullRouter(&stubAuthService{})

	req := httptest.NewRequest(http.MethodPost, "/api/assignments/asg-1/deliver", strings.NewReader(`{}`))
	req.Header.Set("Authorization", "Bearer token")
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d (body %s)", w.Code, w.Body.String())
	}
}
