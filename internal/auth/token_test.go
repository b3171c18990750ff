package auth

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsai-yu-xuan/vuetify-shop-back/internal/domain"
)

func TestGenerateAndDecode(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)

	issued, err := tm.GenerateToken("user-1", domain.RoleAdmin)
	require.NoError(t, err)
	assert.NotEmpty(t, issued.ID)
	assert.Equal(t, time.Hour, issued.ExpiresAt.Sub(issued.IssuedAt))

	claims, err := tm.Decode(issued.Token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, issued.ID, claims.ID)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
	assert.False(t, tm.Expired(claims))
}

func TestEveryIssuedTokenIsDistinct(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)

	a, err := tm.GenerateToken("user-1", domain.RoleMember)
	require.NoError(t, err)
	b, err := tm.GenerateToken("user-1", domain.RoleMember)
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.NotEqual(t, a.Token, b.Token)
	assert.NotEqual(t, hashToken(a.Token), hashToken(b.Token))
}

func TestDecodeToleratesExpiry(t *testing.T) {
	tm := NewTokenManager("secret", time.Minute)
	issuedAt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tm.now = func() time.Time { return issuedAt }

	issued, err := tm.GenerateToken("user-1", domain.RoleMember)
	require.NoError(t, err)

	tm.now = func() time.Time { return issuedAt.Add(2 * time.Minute) }
	claims, err := tm.Decode(issued.Token)
	require.NoError(t, err)
	assert.True(t, tm.Expired(claims))
}

func TestDecodeRejectsForeignTokens(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	other := NewTokenManager("other-secret", time.Hour)

	foreign, err := other.GenerateToken("user-1", domain.RoleMember)
	require.NoError(t, err)

	hs512 := jwt.NewWithClaims(jwt.SigningMethodHS512, &Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "user-1",
		ID:        "jti",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}})
	hs512Token, err := hs512.SignedString([]byte("secret"))
	require.NoError(t, err)

	noJTI := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}})
	noJTIToken, err := noJTI.SignedString([]byte("secret"))
	require.NoError(t, err)

	for name, raw := range map[string]string{
		"wrong secret": foreign.Token,
		"wrong alg":    hs512Token,
		"missing jti":  noJTIToken,
		"garbage":      "not.a.token",
		"empty":        "",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := tm.Decode(raw)
			require.ErrorIs(t, err, ErrMalformedToken)
		})
	}
}

func TestTokenMatches(t *testing.T) {
	hash := hashToken("raw-token")
	assert.Len(t, hash, 64)
	assert.True(t, tokenMatches("raw-token", hash))
	assert.False(t, tokenMatches("raw-token-2", hash))
}
