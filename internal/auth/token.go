package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/tsai-yu-xuan/vuetify-shop-back/internal/domain"
)

// ErrMalformedToken covers every decode failure: bad encoding, bad
// signature, wrong algorithm or missing claims.
var ErrMalformedToken = errors.New("malformed token")

// TokenManager handles issuing and decoding JWT bearer tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Claims describes JWT payload. Subject carries the user id and ID the
// registry key.
type Claims struct {
	Role domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// IssuedToken is a freshly signed token with its registry metadata.
type IssuedToken struct {
	Token     string
	ID        string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// GenerateToken signs a new token for the user.
func (tm *TokenManager) GenerateToken(userID string, role domain.Role) (*IssuedToken, error) {
	now := tm.now().UTC().Truncate(time.Second)
	expiresAt := now.Add(tm.ttl)
	id := uuid.NewString()
	claims := &Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return nil, err
	}
	return &IssuedToken{Token: tokenString, ID: id, IssuedAt: now, ExpiresAt: expiresAt}, nil
}

// Decode verifies the signature and claim shape but not expiry. Callers
// decide what an expired token may still do.
func (tm *TokenManager) Decode(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return tm.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrMalformedToken
	}
	if claims.Subject == "" || claims.ID == "" || claims.ExpiresAt == nil {
		return nil, fmt.Errorf("%w: missing sub, jti or exp", ErrMalformedToken)
	}
	return claims, nil
}

// Expired reports whether claims are past their expiry at the manager's clock.
func (tm *TokenManager) Expired(claims *Claims) bool {
	return claims.ExpiresAt.Time.Before(tm.now())
}

func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func tokenMatches(raw, expectedHash string) bool {
	return subtle.ConstantTimeCompare([]byte(hashToken(raw)), []byte(expectedHash)) == 1
}
