package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/99minutos/identity-service/internal/core/domain"
	"github.com/99minutos/identity-service/internal/core/ports"
)

var errEmptySecret = errors.New("jwt: empty signing secret")

type tokenClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	AppID string `json:"app_id"`
	jwt.RegisteredClaims
}

// JWTIssuer signs HS256 tokens carrying the account identity.
type JWTIssuer struct {
	secret []byte
	now    func() time.Time
}

func NewJWTIssuer(secret string, now func() time.Time) *JWTIssuer {
	if now == nil {
		now = time.Now
	}
	return &JWTIssuer{secret: []byte(secret), now: now}
}

func (j *JWTIssuer) Issue(c ports.Claims, ttl time.Duration) (string, error) {
	if len(j.secret) == 0 {
		return "", errEmptySecret
	}
	issuedAt := j.now()
	claims := tokenClaims{
		Email: c.Email,
		Role:  string(c.Role),
		AppID: c.AppID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   c.AccountID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, algorithm and expiry. Every failure is reported as
// domain.ErrInvalidToken; the cause is kept in the chain for logging only.
func (j *JWTIssuer) Verify(token string) (*ports.Claims, error) {
	claims := &tokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return j.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(j.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, domain.ErrInvalidToken
	}

	out := &ports.Claims{
		AccountID: claims.Subject,
		Email:     claims.Email,
		Role:      domain.Role(claims.Role),
		AppID:     claims.AppID,
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}
