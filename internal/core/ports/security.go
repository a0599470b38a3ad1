package ports

import (
	"time"

	"github.com/99minutos/identity-service/internal/core/domain"
)

// CredentialHasher performs one-way salted password hashing.
type CredentialHasher interface {
	Hash(plaintext string) (string, error)
	// Verify never fails loudly: a malformed hash simply does not match.
	Verify(plaintext, hash string) bool
}

// CodePurpose says why a one-time code was issued.
type CodePurpose string

const (
	PurposeActivation CodePurpose = "activation"
	PurposeReset      CodePurpose = "reset"
)

// CodeGenerator produces six digit numeric codes with a purpose-specific expiry.
type CodeGenerator interface {
	Generate(purpose CodePurpose) (code string, expiresAt time.Time, err error)
}

// Claims is the identity carried by an issued token.
type Claims struct {
	AccountID string
	Email     string
	Role      domain.Role
	AppID     string
	ExpiresAt time.Time
}

// TokenIssuer mints and verifies signed, expiring tokens.
type TokenIssuer interface {
	Issue(claims Claims, ttl time.Duration) (string, error)
	// Verify returns domain.ErrInvalidToken for any bad or expired token.
	Verify(token string) (*Claims, error)
}
