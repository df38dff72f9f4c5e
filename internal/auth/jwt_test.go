package auth

import (
	"testing"
	"time"

	gjwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestService_GenerateAndValidate(t *testing.T) {
	svc := NewService("secret", time.Minute)
	walletID := uuid.New()

	token, err := svc.Generate(walletID, "owner@mail.com", RoleUser)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := svc.Validate(token)
	assert.NoError(t, err)
	assert.Equal(t, walletID, claims.WalletID)
	assert.Equal(t, "owner@mail.com", claims.Email)
	assert.Equal(t, RoleUser, claims.Role)
	assert.False(t, claims.IsAdmin())
}

func TestService_AdminClaims(t *testing.T) {
	svc := NewService("secret", time.Minute)

	token, err := svc.Generate(uuid.New(), "ops@mail.com", RoleAdmin)
	assert.NoError(t, err)

	claims, err := svc.Validate(token)
	assert.NoError(t, err)
	assert.True(t, claims.IsAdmin())
}

func TestService_ValidateInvalidToken(t *testing.T) {
	svc := NewService("secret", time.Minute)

	_, err := svc.Validate("not-a-token")
	assert.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestService_ValidateWrongSecret(t *testing.T) {
	svc := NewService("secret", time.Minute)
	other := NewService("different-secret", time.Minute)

	token, err := svc.Generate(uuid.New(), "owner@mail.com", RoleUser)
	assert.NoError(t, err)

	_, err = other.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestService_ValidateExpiredToken(t *testing.T) {
	svc := NewService("secret", -time.Second)

	token, err := svc.Generate(uuid.New(), "expired@mail.com", RoleUser)
	assert.NoError(t, err)

	_, err = svc.Validate(token)
	assert.Error(t, err)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestService_ValidateWrongSigningMethod(t *testing.T) {
	svc := NewService("secret", time.Minute)

	claims := gjwt.MapClaims{
		"walletId": uuid.NewString(),
		"email":    "x@y.z",
		"role":     RoleUser,
		"exp":      time.Now().Add(time.Minute).Unix(),
		"iat":      time.Now().Unix(),
		"nbf":      time.Now().Unix(),
	}
	unsigned := gjwt.NewWithClaims(gjwt.SigningMethodNone, claims)
	tokenStr, err := unsigned.SignedString(gjwt.UnsafeAllowNoneSignatureType)
	assert.NoError(t, err)

	_, err = svc.Validate(tokenStr)
	assert.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
