package domain

import "time"

// Role enumerates the roles an account may be registered under.
type Role string

const (
	RoleCustomer    Role = "customer"
	RoleAdmin       Role = "admin"
	RoleDriver      Role = "driver"
	RoleMasterAdmin Role = "masteradmin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleAdmin, RoleDriver, RoleMasterAdmin:
		return true
	}
	return false
}

// Status is the lifecycle state of an account.
type Status string

const (
	StatusPendingActivation Status = "pending_activation"
	StatusActive            Status = "active"
)

// Account is the identity aggregate. The pair (Email, Role) is unique.
type Account struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Address      string     `json:"address"`
	Phone        string     `json:"phone"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role"`
	AppID        string     `json:"app_id"`
	IsActive     bool       `json:"is_active"`
	OTP          string     `json:"-"`
	OTPExpiresAt *time.Time `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Status derives the lifecycle state from the active flag.
func (a *Account) Status() Status {
	if a.IsActive {
		return StatusActive
	}
	return StatusPendingActivation
}

// SetOTP stores a code together with its expiry.
func (a *Account) SetOTP(code string, expiresAt time.Time) {
	exp := expiresAt
	a.OTP = code
	a.OTPExpiresAt = &exp
}

// ClearOTP removes both the code and its expiry.
func (a *Account) ClearOTP() {
	a.OTP = ""
	a.OTPExpiresAt = nil
}

// OTPExpired reports whether the stored code can no longer be used at now.
// A missing expiry counts as expired.
func (a *Account) OTPExpired(now time.Time) bool {
	if a.OTPExpiresAt == nil {
		return true
	}
	return !now.Before(*a.OTPExpiresAt)
}

// Activate moves the account to the active state and drops the OTP.
func (a *Account) Activate() {
	a.IsActive = true
	a.ClearOTP()
}

// Profile returns the display projection of the account.
func (a *Account) Profile() *Profile {
	return &Profile{
		ID:        a.ID,
		Name:      a.Name,
		Address:   a.Address,
		Phone:     a.Phone,
		Email:     a.Email,
		Role:      a.Role,
		AppID:     a.AppID,
		IsActive:  a.IsActive,
		CreatedAt: a.CreatedAt,
	}
}

// Profile is the read model of an account without any secret fields.
type Profile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	AppID     string    `json:"app_id"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}
