package ports

import (
	"context"

	"github.com/99minutos/identity-service/internal/core/domain"
)

// AccountRepository defines persistence operations for accounts.
// Implementations surface domain.ErrAccountNotFound, domain.ErrAccountExists
// and domain.ErrStorageUnavailable; every call is atomic for a single record.
type AccountRepository interface {
	// Insert stores a new account and fills in its ID. It fails with
	// domain.ErrAccountExists when (email, role) is already taken.
	Insert(ctx context.Context, account *domain.Account) error
	FindByEmailAndRole(ctx context.Context, email string, role domain.Role) (*domain.Account, error)
	// FindByEmail returns the earliest-created account for email.
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	// Update replaces every mutable field of the stored record.
	Update(ctx context.Context, account *domain.Account) error
	DeleteByID(ctx context.Context, id string) error
	// List returns the secret-free projection of all accounts.
	List(ctx context.Context) ([]*domain.Profile, error)
}

// AuditRepository persists lifecycle events.
type AuditRepository interface {
	InsertEvent(ctx context.Context, event *domain.AccountEvent) error
}
