package auth

import (
	"testing"
	"time"

	"attire-store/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenProvider_RoundTrip(t *testing.T) {
	provider := NewTokenProvider("test-secret-test-secret", time.Hour)

	user := &model.User{
		ID:    uuid.New(),
		Email: "asha@example.com",
		Role:  model.RoleAdmin,
	}

	token, err := provider.Generate(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := provider.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.Email, claims.Email)
	assert.Equal(t, model.RoleAdmin, claims.Role)
}

func TestTokenProvider_Parse_Expired(t *testing.T) {
	provider := NewTokenProvider("test-secret-test-secret", -time.Minute)

	token, err := provider.Generate(&model.User{ID: uuid.New(), Email: "asha@example.com", Role: model.RoleCustomer})
	require.NoError(t, err)

	claims, err := provider.Parse(token)
	require.Error(t, err)
	assert.Nil(t, claims)
}

func TestTokenProvider_Parse_WrongSecret(t *testing.T) {
	issuer := NewTokenProvider("issuer-secret", time.Hour)
	verifier := NewTokenProvider("other-secret", time.Hour)

	token, err := issuer.Generate(&model.User{ID: uuid.New(), Email: "asha@example.com", Role: model.RoleCustomer})
	require.NoError(t, err)

	claims, err := verifier.Parse(token)
	require.Error(t, err)
	assert.Nil(t, claims)
}

func TestTokenProvider_Parse_Garbage(t *testing.T) {
	provider := NewTokenProvider("test-secret-test-secret", time.Hour)

	claims, err := provider.Parse("not.a.token")
	require.Error(t, err)
	assert.Nil(t, claims)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cretpass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cretpass", hash)

	assert.True(t, CheckPassword(hash, "s3cretpass"))
	assert.False(t, CheckPassword(hash, "wrongpass"))
	assert.False(t, CheckPassword("not-a-hash", "s3cretpass"))
}
