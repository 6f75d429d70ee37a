package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/frahmantamala/attendance-management/internal"
	"github.com/golang-jwt/jwt/v5"
)

// JWTTokenService signs HS256 tokens with a shared secret.
type JWTTokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

type TokenOption func(*JWTTokenService)

// WithClock replaces the wall clock used for issuance and expiry checks.
func WithClock(now func() time.Time) TokenOption {
	return func(s *JWTTokenService) {
		s.now = now
	}
}

func NewJWTTokenService(secret string, ttl time.Duration, opts ...TokenOption) (*JWTTokenService, error) {
	if secret == "" {
		return nil, errors.New("jwt secret must not be empty")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	s := &JWTTokenService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *JWTTokenService) TTL() time.Duration {
	return s.ttl
}

// Issue signs claims, overwriting iat, exp and sub.
func (s *JWTTokenService) Issue(claims Claims) (string, error) {
	now := s.now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(claims.UserID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", internal.NewInternalError("failed to sign token", err)
	}
	return signed, nil
}

// Verify returns the claims of a valid token. Every failure is reported as internal.ErrInvalidToken.
func (s *JWTTokenService) Verify(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, internal.ErrInvalidToken
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return nil, internal.ErrInvalidToken
	}
	if claims.UserID == 0 {
		return nil, internal.ErrInvalidToken
	}
	return claims, nil
}
