package service

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/froker/lending-system/internal/core/domain"
)

// AccessClaims is the payload of a short-lived access token. The subject
// is the user id.
type AccessClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// refreshClaims carries only the user id plus a unique token id, so two
// refresh tokens issued in the same second still differ.
type refreshClaims struct {
	jwt.RegisteredClaims
}

// TokenCodec signs and verifies the two token kinds. Access and refresh
// tokens use independent secrets and TTLs, so one kind never verifies as
// the other.
type TokenCodec struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewTokenCodec(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenCodec {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &TokenCodec{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// RefreshTTL exposes the refresh token lifetime so the replay guard can
// expire its entries together with the tokens they block.
func (tc *TokenCodec) RefreshTTL() time.Duration {
	return tc.refreshTTL
}

// IssueAccessToken signs an access token carrying id, email, and name.
func (tc *TokenCodec) IssueAccessToken(user *domain.User) (string, error) {
	now := time.Now()
	claims := &AccessClaims{
		Email: user.Email,
		Name:  user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tc.accessTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tc.accessSecret)
}

// IssueRefreshToken signs a refresh token carrying only the user id.
func (tc *TokenCodec) IssueRefreshToken(userID string) (string, error) {
	now := time.Now()
	claims := &refreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        newTokenID(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tc.refreshTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tc.refreshSecret)
}

// VerifyAccessToken validates signature and expiry and returns the claims.
func (tc *TokenCodec) VerifyAccessToken(token string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := tc.verify(token, claims, tc.accessSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

// VerifyRefreshToken validates signature and expiry and returns the user id.
func (tc *TokenCodec) VerifyRefreshToken(token string) (string, error) {
	claims := &refreshClaims{}
	if err := tc.verify(token, claims, tc.refreshSecret); err != nil {
		return "", err
	}
	return claims.Subject, nil
}

func (tc *TokenCodec) verify(token string, claims jwt.Claims, secret []byte) error {
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.ErrTokenExpired
		}
		return domain.ErrUnauthorized
	}
	if !parsed.Valid {
		return domain.ErrUnauthorized
	}
	return nil
}

func newTokenID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
