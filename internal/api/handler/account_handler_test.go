package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/bankcore/account-service/internal/core/domain"
	"github.com/bankcore/account-service/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Stub account service
// ---------------------------------------------------------------------------

type stubAccountService struct {
	registerFn       func(ctx context.Context, input ports.RegisterInput) (*domain.Account, error)
	loginFn          func(ctx context.Context, username, password string) (*ports.LoginResult, error)
	listAllFn        func(ctx context.Context) ([]*domain.Account, error)
	listByStatusFn   func(ctx context.Context, status domain.Status) ([]*domain.Account, error)
	updatePasswordFn func(ctx context.Context, identity *domain.AuthenticatedIdentity, oldPassword, newPassword string) error
	updateEmailFn    func(ctx context.Context, identity *domain.AuthenticatedIdentity, email string) error
	deleteFn         func(ctx context.Context, identity *domain.AuthenticatedIdentity, targetID string) error
	setStatusFn      func(ctx context.Context, id string, status domain.Status) error
}

func (s *stubAccountService) Register(ctx context.Context, input ports.RegisterInput) (*domain.Account, error) {
	return s.registerFn(ctx, input)
}

func (s *stubAccountService) Login(ctx context.Context, username, password string) (*ports.LoginResult, error) {
	return s.loginFn(ctx, username, password)
}

func (s *stubAccountService) ListAll(ctx context.Context) ([]*domain.Account, error) {
	return s.listAllFn(ctx)
}

func (s *stubAccountService) ListAllByStatus(ctx context.Context, status domain.Status) ([]*domain.Account, error) {
	return s.listByStatusFn(ctx, status)
}

func (s *stubAccountService) UpdatePassword(ctx context.Context, identity *domain.AuthenticatedIdentity, oldPassword, newPassword string) error {
	return s.updatePasswordFn(ctx, identity, oldPassword, newPassword)
}

func (s *stubAccountService) UpdateEmail(ctx context.Context, identity *domain.AuthenticatedIdentity, email string) error {
	return s.updateEmailFn(ctx, identity, email)
}

func (s *stubAccountService) SetStatusDeletedByID(ctx context.Context, identity *domain.AuthenticatedIdentity, targetID string) error {
	return s.deleteFn(ctx, identity, targetID)
}

func (s *stubAccountService) SetStatusByID(ctx context.Context, id string, status domain.Status) error {
	return s.setStatusFn(ctx, id, status)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

// authedContext mimics what the Auth middleware injects.
func authedContext(e *echo.Echo, req *http.Request, rec *httptest.ResponseRecorder) echo.Context {
	c := e.NewContext(req, rec)
	c.Set("account_id", "acc_1")
	c.Set("username", "alice")
	c.Set("email", "a@x.com")
	c.Set("roles", []string{"ROLE_CUSTOMER"})
	return c
}

// ---------------------------------------------------------------------------
// Register
// ---------------------------------------------------------------------------

func TestAuthHandler_Register_Success(t *testing.T) {
	e := newEcho()
	stub := &stubAccountService{
		registerFn: func(_ context.Context, input ports.RegisterInput) (*domain.Account, error) {
			if input.Username != "alice" || input.Email != "a@x.com" {
				t.Fatalf("unexpected input: %+v", input)
			}
			if len(input.Roles) != 1 || input.Roles[0] != "staff" {
				t.Fatalf("unexpected roles: %v", input.Roles)
			}
			return &domain.Account{
				ID:       "acc_1",
				Username: input.Username,
				Email:    input.Email,
				Status:   domain.StatusActive,
				Roles:    []domain.Role{{Name: domain.RoleStaff}, {Name: domain.RoleCustomer}},
			}, nil
		},
	}
	handler := NewAuthHandler(stub)

	req := jsonRequest(http.MethodPost, "/v1/auth/register",
		`{"username":"alice","email":"a@x.com","password":"secret1","roles":["staff"]}`)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["username"] != "alice" || resp["status"] != "active" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestAuthHandler_Register_DuplicateUsernamePropagates(t *testing.T) {
	e := newEcho()
	stub := &stubAccountService{
		registerFn: func(context.Context, ports.RegisterInput) (*domain.Account, error) {
			return nil, domain.ErrDuplicateUsername
		},
	}
	handler := NewAuthHandler(stub)

	req := jsonRequest(http.MethodPost, "/v1/auth/register",
		`{"username":"alice","email":"a@x.com","password":"secret1"}`)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := handler.Register(c)
	if !errors.Is(err, domain.ErrDuplicateUsername) {
		t.Fatalf("expected ErrDuplicateUsername to propagate, got %v", err)
	}
}

func TestAuthHandler_Register_InvalidPayload(t *testing.T) {
	e := newEcho()
	stub := &stubAccountService{
		registerFn: func(context.Context, ports.RegisterInput) (*domain.Account, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	handler := NewAuthHandler(stub)

	req := jsonRequest(http.MethodPost, "/v1/auth/register", "not-json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := handler.Register(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestAuthHandler_Register_ValidationFailure(t *testing.T) {
	e := newEcho()
	stub := &stubAccountService{
		registerFn: func(context.Context, ports.RegisterInput) (*domain.Account, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	handler := NewAuthHandler(stub)

	// Missing email, password too short.
	req := jsonRequest(http.MethodPost, "/v1/auth/register", `{"username":"alice","password":"x"}`)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := handler.Register(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Login
// ---------------------------------------------------------------------------

func TestAuthHandler_Login_Success(t *testing.T) {
	e := newEcho()
	stub := &stubAccountService{
		loginFn: func(_ context.Context, username, password string) (*ports.LoginResult, error) {
			if username != "alice" || password != "secret1" {
				t.Fatalf("unexpected args: %s %s", username, password)
			}
			return &ports.LoginResult{
				Token:    "token123",
				ID:       "acc_1",
				Username: "alice",
				Email:    "a@x.com",
				Roles:    []string{"ROLE_CUSTOMER"},
			}, nil
		},
	}
	handler := NewAuthHandler(stub)

	req := jsonRequest(http.MethodPost, "/v1/auth/login", `{"username":"alice","password":"secret1"}`)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["token"] != "token123" || resp["username"] != "alice" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	roles, ok := resp["roles"].([]any)
	if !ok || len(roles) != 1 || roles[0] != "ROLE_CUSTOMER" {
		t.Fatalf("unexpected roles: %v", resp["roles"])
	}
}

func TestAuthHandler_Login_BadCredentialsPropagate(t *testing.T) {
	e := newEcho()
	stub := &stubAccountService{
		loginFn: func(context.Context, string, string) (*ports.LoginResult, error) {
			return nil, domain.ErrAuthenticationFailed
		},
	}
	handler := NewAuthHandler(stub)

	req := jsonRequest(http.MethodPost, "/v1/auth/login", `{"username":"alice","password":"bad"}`)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := handler.Login(c)
	if !errors.Is(err, domain.ErrAuthenticationFailed) {
		t.Fatalf("expected ErrAuthenticationFailed to propagate, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// List
// ---------------------------------------------------------------------------

func TestAccountHandler_List_All(t *testing.T) {
	e := newEcho()
	stub := &stubAccountService{
		listAllFn: func(context.Context) ([]*domain.Account, error) {
			return []*domain.Account{
				{ID: "1", Username: "alice", Status: domain.StatusActive},
				{ID: "2", Username: "bob", Status: domain.StatusDeleted},
			}, nil
		},
	}
	handler := NewAccountHandler(stub)

	req := httptest.NewRequest(http.MethodGet, "/v1/accounts", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["total"] != float64(2) {
		t.Fatalf("expected total 2, got %v", resp["total"])
	}
}

func TestAccountHandler_List_ByStatus(t *testing.T) {
	e := newEcho()
	stub := &stubAccountService{
		listByStatusFn: func(_ context.Context, status domain.Status) ([]*domain.Account, error) {
			if status != domain.StatusDeleted {
				t.Fatalf("expected deleted filter, got %q", status)
			}
			return []*domain.Account{{ID: "2", Username: "bob", Status: domain.StatusDeleted}}, nil
		},
	}
	handler := NewAccountHandler(stub)

	req := httptest.NewRequest(http.MethodGet, "/v1/accounts?status=deleted", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAccountHandler_List_UnknownStatus(t *testing.T) {
	e := newEcho()
	handler := NewAccountHandler(&stubAccountService{})

	req := httptest.NewRequest(http.MethodGet, "/v1/accounts?status=frozen", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := handler.List(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// UpdatePassword / UpdateEmail
// ---------------------------------------------------------------------------

func TestAccountHandler_UpdatePassword_ThreadsIdentity(t *testing.T) {
	e := newEcho()
	stub := &stubAccountService{
		updatePasswordFn: func(_ context.Context, identity *domain.AuthenticatedIdentity, oldPassword, newPassword string) error {
			if identity == nil || identity.Username != "alice" {
				t.Fatalf("identity not threaded: %+v", identity)
			}
			if oldPassword != "pw1" || newPassword != "pw2secret" {
				t.Fatalf("unexpected args: %s %s", oldPassword, newPassword)
			}
			return nil
		},
	}
	handler := NewAccountHandler(stub)

	req := jsonRequest(http.MethodPut, "/v1/account/password",
		`{"old_password":"pw1","new_password":"pw2secret"}`)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec)

	if err := handler.UpdatePassword(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAccountHandler_UpdatePassword_NoIdentity(t *testing.T) {
	e := newEcho()
	handler := NewAccountHandler(&stubAccountService{})

	req := jsonRequest(http.MethodPut, "/v1/account/password",
		`{"old_password":"pw1","new_password":"pw2secret"}`)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec) // no claims injected

	err := handler.UpdatePassword(c)
	if !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
}

func TestAccountHandler_UpdateEmail_Success(t *testing.T) {
	e := newEcho()
	stub := &stubAccountService{
		updateEmailFn: func(_ context.Context, identity *domain.AuthenticatedIdentity, email string) error {
			if identity.Username != "alice" || email != "new@x.com" {
				t.Fatalf("unexpected args: %+v %s", identity, email)
			}
			return nil
		},
	}
	handler := NewAccountHandler(stub)

	req := jsonRequest(http.MethodPut, "/v1/account/email", `{"email":"new@x.com"}`)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec)

	if err := handler.UpdateEmail(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

// ---------------------------------------------------------------------------
// Delete / SetStatus
// ---------------------------------------------------------------------------

func TestAccountHandler_Delete_SelfWhenNoTarget(t *testing.T) {
	e := newEcho()
	stub := &stubAccountService{
		deleteFn: func(_ context.Context, identity *domain.AuthenticatedIdentity, targetID string) error {
			if targetID != "" {
				t.Fatalf("expected empty target, got %q", targetID)
			}
			if identity.ID != "acc_1" {
				t.Fatalf("identity not threaded: %+v", identity)
			}
			return nil
		},
	}
	handler := NewAccountHandler(stub)

	req := httptest.NewRequest(http.MethodDelete, "/v1/account", nil)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec)

	if err := handler.Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAccountHandler_Delete_TargetForwarded(t *testing.T) {
	e := newEcho()
	stub := &stubAccountService{
		deleteFn: func(_ context.Context, _ *domain.AuthenticatedIdentity, targetID string) error {
			if targetID != "acc_9" {
				t.Fatalf("expected target acc_9, got %q", targetID)
			}
			return nil
		},
	}
	handler := NewAccountHandler(stub)

	req := httptest.NewRequest(http.MethodDelete, "/v1/account?id=acc_9", nil)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec)

	if err := handler.Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
}

func TestAccountHandler_Delete_GuardErrorPropagates(t *testing.T) {
	e := newEcho()
	stub := &stubAccountService{
		deleteFn: func(context.Context, *domain.AuthenticatedIdentity, string) error {
			return domain.ErrCannotModifyAdmin
		},
	}
	handler := NewAccountHandler(stub)

	req := httptest.NewRequest(http.MethodDelete, "/v1/account?id=acc_9", nil)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec)

	err := handler.Delete(c)
	if !errors.Is(err, domain.ErrCannotModifyAdmin) {
		t.Fatalf("expected ErrCannotModifyAdmin, got %v", err)
	}
}

func TestAccountHandler_SetStatus_Success(t *testing.T) {
	e := newEcho()
	stub := &stubAccountService{
		setStatusFn: func(_ context.Context, id string, status domain.Status) error {
			if id != "acc_9" || status != domain.StatusDeleted {
				t.Fatalf("unexpected args: %s %s", id, status)
			}
			return nil
		},
	}
	handler := NewAccountHandler(stub)

	req := jsonRequest(http.MethodPatch, "/v1/admin/accounts/acc_9/status", `{"status":"deleted"}`)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("acc_9")

	if err := handler.SetStatus(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAccountHandler_SetStatus_UnknownStatus(t *testing.T) {
	e := newEcho()
	handler := NewAccountHandler(&stubAccountService{})

	req := jsonRequest(http.MethodPatch, "/v1/admin/accounts/acc_9/status", `{"status":"frozen"}`)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("acc_9")

	err := handler.SetStatus(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || (he.Code != http.StatusBadRequest && he.Code != http.StatusUnprocessableEntity) {
		t.Fatalf("expected 400/422, got %v", err)
	}
}
