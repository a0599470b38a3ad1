package ports

import (
	"context"

	"github.com/99minutos/identity-service/internal/core/domain"
)

// RegisterInput carries the data needed to create an account.
type RegisterInput struct {
	Name     string
	Address  string
	Phone    string
	Email    string
	Password string
	Role     domain.Role
	AppID    string
}

// ActivateInput carries an activation attempt. Role is optional; when empty
// the earliest account registered with Email is used.
type ActivateInput struct {
	Email string
	Role  domain.Role
	Code  string
}

// LoginInput carries login credentials. Role is optional.
type LoginInput struct {
	Email    string
	Password string
	Role     domain.Role
	AppID    string
}

// ProfileUpdate holds the fields to patch; nil fields keep their value.
type ProfileUpdate struct {
	Name    *string
	Address *string
	Phone   *string
}

// UpdatePasswordInput carries a password rotation.
type UpdatePasswordInput struct {
	Email       string
	Role        domain.Role
	OldPassword string
	NewPassword string
}

// TokenPair is returned by a successful login.
type TokenPair struct {
	// UserToken is short lived and meant for user-facing sessions.
	UserToken string
	// AppToken is long lived and meant for application-level trust.
	AppToken string
}

// IdentityService defines the account lifecycle use cases.
type IdentityService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.Profile, error)
	Activate(ctx context.Context, in ActivateInput) error
	ResendActivationCode(ctx context.Context, email string, role domain.Role) error
	Login(ctx context.Context, in LoginInput) (*TokenPair, error)
	GetProfile(ctx context.Context, accountID string) (*domain.Profile, error)
	ListAccounts(ctx context.Context) ([]*domain.Profile, error)
	UpdateProfile(ctx context.Context, accountID string, patch ProfileUpdate) error
	ForgotPassword(ctx context.Context, email string, role domain.Role) error
	UpdatePassword(ctx context.Context, in UpdatePasswordInput) error
	DeleteAccount(ctx context.Context, accountID string) error
}
