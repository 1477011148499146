package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-access-secret-key-for-testing-purposes"

func signClaims(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestNewService(t *testing.T) {
	service := NewService(testSecret, time.Hour)

	assert.NotNil(t, service)
	assert.Equal(t, testSecret, service.secret)
	assert.Equal(t, time.Hour, service.tokenExpiry)
}

func TestGenerateAndValidateAccessToken(t *testing.T) {
	service := NewService(testSecret, time.Hour)
	userID := uuid.New()
	phone := "0771234567"
	roles := []string{"ticketer", "operator"}

	token, err := service.GenerateAccessToken(userID, phone, roles)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := service.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, phone, claims.Phone)
	assert.Equal(t, roles, claims.Roles)
	assert.Equal(t, AccessToken, claims.TokenType)
	assert.Equal(t, Issuer, claims.Issuer)
}

func TestValidateAccessToken_Rejections(t *testing.T) {
	service := NewService(testSecret, time.Hour)
	userID := uuid.New()
	now := time.Now()
	registered := jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		IssuedAt:  jwt.NewNumericDate(now),
	}

	tests := []struct {
		name  string
		token string
	}{
		{"Malformed", "invalid.token.here"},
		{"Wrong secret", signClaims(t, "wrong-secret", Claims{UserID: userID, TokenType: AccessToken, RegisteredClaims: registered})},
		{"Refresh token", signClaims(t, testSecret, Claims{UserID: userID, TokenType: RefreshToken, RegisteredClaims: registered})},
		{"No user", signClaims(t, testSecret, Claims{TokenType: AccessToken, RegisteredClaims: registered})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.ValidateAccessToken(tt.token)
			assert.Error(t, err)
		})
	}
}

func TestValidateAccessToken_WrongTypeSentinel(t *testing.T) {
	service := NewService(testSecret, time.Hour)
	token := signClaims(t, testSecret, Claims{
		UserID:    uuid.New(),
		TokenType: RefreshToken,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	_, err := service.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrWrongTokenType)
}

func TestIsTokenExpired(t *testing.T) {
	service := NewService(testSecret, time.Hour)
	token, err := service.GenerateAccessToken(uuid.New(), "0771234567", []string{"ticketer"})
	require.NoError(t, err)

	assert.False(t, service.IsTokenExpired(token))
	assert.True(t, service.IsTokenExpired("garbage"))

	service.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	assert.True(t, service.IsTokenExpired(token))

	_, err = service.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestExtractClaims(t *testing.T) {
	service := NewService(testSecret, time.Hour)
	userID := uuid.New()
	token, err := NewService("another-secret", time.Hour).GenerateAccessToken(userID, "0771234567", nil)
	require.NoError(t, err)

	claims, err := service.ExtractClaims(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)

	_, err = service.ValidateAccessToken(token)
	assert.Error(t, err)
}
