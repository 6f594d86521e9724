package token_adapter

import (
	"context"
	"easystay-service/internal/core/domain"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAffiliate() *domain.Affiliate {
	return &domain.Affiliate{ID: uuid.New(), Email: "partner@example.com", Name: "Partner"}
}

func TestNewTokenService_EmptyKey(t *testing.T) {
	_, err := NewTokenService("")
	assert.Error(t, err)
}

func TestTokenRoundTrip(t *testing.T) {
	svc, err := NewTokenService("secret")
	require.NoError(t, err)
	a := newAffiliate()

	token, err := svc.GenerateToken(context.Background(), a, time.Hour)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, a.ID, claims.AffiliateID)
	assert.Equal(t, a.Email, claims.Email)
}

func TestValidateToken_Expired(t *testing.T) {
	svc, err := NewTokenService("secret")
	require.NoError(t, err)
	issued := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issued }

	token, err := svc.GenerateToken(context.Background(), newAffiliate(), time.Minute)
	require.NoError(t, err)

	svc.now = func() time.Time { return issued.Add(2 * time.Minute) }
	_, err = svc.ValidateToken(context.Background(), token)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestValidateToken_WrongKey(t *testing.T) {
	issuerSvc, _ := NewTokenService("secret")
	otherSvc, _ := NewTokenService("another-secret")

	token, err := issuerSvc.GenerateToken(context.Background(), newAffiliate(), time.Hour)
	require.NoError(t, err)

	_, err = otherSvc.ValidateToken(context.Background(), token)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestValidateToken_RejectsOtherAlgorithms(t *testing.T) {
	svc, _ := NewTokenService("secret")

	claims := &affiliateClaims{
		AffiliateID: uuid.New(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.ValidateToken(context.Background(), unsigned)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = svc.ValidateToken(context.Background(), hs512)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestValidateToken_Garbage(t *testing.T) {
	svc, _ := NewTokenService("secret")
	_, err := svc.ValidateToken(context.Background(), "not.a.token")
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}
