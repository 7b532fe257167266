package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"attire-store/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockAuthService is a mock implementation of service.AuthService.
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AuthResponse), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AuthResponse), args.Error(1)
}

func TestAuthHandler_Register(t *testing.T) {
	mockService := new(MockAuthService)
	handler := NewAuthHandler(mockService, zerolog.Nop())

	resp := &model.AuthResponse{
		Token: "signed-token",
		User:  model.User{ID: uuid.New(), Name: "Asha", Email: "asha@example.com", Role: model.RoleCustomer},
	}
	mockService.On("Register", mock.Anything, mock.AnythingOfType("*model.RegisterRequest")).Return(resp, nil)

	body, _ := json.Marshal(model.RegisterRequest{Name: "Asha", Email: "asha@example.com", Password: "s3cretpass"})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewBuffer(body))
	rec := httptest.NewRecorder()

	handler.Register(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	var got model.AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "signed-token", got.Token)
	assert.Equal(t, "asha@example.com", got.User.Email)
}

func TestAuthHandler_Register_EmailTaken(t *testing.T) {
	mockService := new(MockAuthService)
	handler := NewAuthHandler(mockService, zerolog.Nop())

	mockService.On("Register", mock.Anything, mock.AnythingOfType("*model.RegisterRequest")).
		Return(nil, model.ErrEmailTaken)

	body, _ := json.Marshal(model.RegisterRequest{Name: "Asha", Email: "asha@example.com", Password: "s3cretpass"})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewBuffer(body))
	rec := httptest.NewRecorder()

	handler.Register(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	var errResp model.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.Equal(t, model.ErrCodeEmailTaken, errResp.Error)
}

func TestAuthHandler_Register_InvalidJSON(t *testing.T) {
	mockService := new(MockAuthService)
	handler := NewAuthHandler(mockService, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()

	handler.Register(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	mockService.AssertNotCalled(t, "Register")
}

func TestAuthHandler_Login(t *testing.T) {
	mockService := new(MockAuthService)
	handler := NewAuthHandler(mockService, zerolog.Nop())

	resp := &model.AuthResponse{
		Token: "signed-token",
		User:  model.User{ID: uuid.New(), Email: "asha@example.com", Role: model.RoleCustomer},
	}
	mockService.On("Login", mock.Anything, mock.AnythingOfType("*model.LoginRequest")).Return(resp, nil)

	body, _ := json.Marshal(model.LoginRequest{Email: "asha@example.com", Password: "s3cretpass"})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBuffer(body))
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var got model.AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "signed-token", got.Token)
}

func TestAuthHandler_Login_BadCredentials(t *testing.T) {
	mockService := new(MockAuthService)
	handler := NewAuthHandler(mockService, zerolog.Nop())

	mockService.On("Login", mock.Anything, mock.AnythingOfType("*model.LoginRequest")).
		Return(nil, model.NewDomainError(model.ErrCodeUnauthorised, "Invalid email or password"))

	body, _ := json.Marshal(model.LoginRequest{Email: "asha@example.com", Password: "wrong"})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBuffer(body))
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	var errResp model.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.Equal(t, model.ErrCodeUnauthorised, errResp.Error)
}

func TestAuthHandler_MethodNotAllowed(t *testing.T) {
	mockService := new(MockAuthService)
	handler := NewAuthHandler(mockService, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/auth/login", nil)
	rec := httptest.NewRecorder()
	handler.Login(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/auth/register", nil)
	rec = httptest.NewRecorder()
	handler.Register(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
