package service

import (
	"context"
	"testing"
	"time"

	"attire-store/internal/auth"
	"attire-store/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func newAuthService(userRepo *MockUserRepository) (AuthService, *auth.TokenProvider) {
	tokens := auth.NewTokenProvider("test-secret-test-secret", time.Hour)
	return NewAuthService(userRepo, tokens, zerolog.Nop()), tokens
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	service, tokens := newAuthService(mockRepo)

	req := &model.RegisterRequest{
		Name:     "Asha Rao",
		Email:    "Asha@Example.com",
		Password: "s3cretpass",
	}

	var created *model.User
	mockRepo.On("ExistsByEmail", ctx, "asha@example.com").Return(false, nil)
	mockRepo.On("Create", ctx, mock.AnythingOfType("*model.User")).
		Run(func(args mock.Arguments) { created = args.Get(1).(*model.User) }).
		Return(nil)

	resp, err := service.Register(ctx, req)

	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.NotEmpty(t, resp.Token)
	// Email is normalised to lower case before storage.
	assert.Equal(t, "asha@example.com", resp.User.Email)
	assert.Equal(t, model.RoleCustomer, resp.User.Role)

	require.NotNil(t, created)
	assert.NotEqual(t, req.Password, created.PasswordHash)
	assert.True(t, auth.CheckPassword(created.PasswordHash, req.Password))

	claims, err := tokens.Parse(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, created.ID, claims.UserID)
	assert.Equal(t, model.RoleCustomer, claims.Role)
}

func TestAuthService_Register_EmailTaken(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	service, _ := newAuthService(mockRepo)

	req := &model.RegisterRequest{Name: "Asha", Email: "asha@example.com", Password: "s3cretpass"}
	mockRepo.On("ExistsByEmail", ctx, "asha@example.com").Return(true, nil)

	resp, err := service.Register(ctx, req)

	assert.Nil(t, resp)
	assert.Equal(t, model.ErrEmailTaken, err)
	mockRepo.AssertNotCalled(t, "Create")
}

func TestAuthService_Register_InvalidRequest(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	service, _ := newAuthService(mockRepo)

	resp, err := service.Register(ctx, &model.RegisterRequest{Name: "Asha", Email: "bad", Password: "s3cretpass"})

	require.Error(t, err)
	assert.Nil(t, resp)
	mockRepo.AssertNotCalled(t, "ExistsByEmail")
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	service, tokens := newAuthService(mockRepo)

	hash, err := auth.HashPassword("s3cretpass")
	require.NoError(t, err)

	user := &model.User{
		ID:           uuid.New(),
		Name:         "Asha Rao",
		Email:        "asha@example.com",
		PasswordHash: hash,
		Role:         model.RoleAdmin,
	}
	mockRepo.On("GetByEmail", ctx, "asha@example.com").Return(user, nil)

	resp, err := service.Login(ctx, &model.LoginRequest{Email: " Asha@Example.com ", Password: "s3cretpass"})

	require.NoError(t, err)
	assert.Equal(t, user.ID, resp.User.ID)

	claims, err := tokens.Parse(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, claims.Role)
}

func TestAuthService_Login_BadCredentials(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	service, _ := newAuthService(mockRepo)

	hash, err := auth.HashPassword("s3cretpass")
	require.NoError(t, err)
	user := &model.User{ID: uuid.New(), Email: "asha@example.com", PasswordHash: hash}

	mockRepo.On("GetByEmail", ctx, "asha@example.com").Return(user, nil)
	mockRepo.On("GetByEmail", ctx, "unknown@example.com").Return(nil, nil)

	// Wrong password and unknown email produce the same error.
	wrongPassword, err1 := service.Login(ctx, &model.LoginRequest{Email: "asha@example.com", Password: "wrong"})
	unknownEmail, err2 := service.Login(ctx, &model.LoginRequest{Email: "unknown@example.com", Password: "s3cretpass"})

	assert.Nil(t, wrongPassword)
	assert.Nil(t, unknownEmail)
	require.Error(t, err1)
	require.Error(t, err2)
	assert.Equal(t, err1.Error(), err2.Error())

	var domainErr *model.DomainError
	require.ErrorAs(t, err1, &domainErr)
	assert.Equal(t, model.ErrCodeUnauthorised, domainErr.Code)
}
