package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestRole_Valid(t *testing.T) {
	for _, r := range []Role{RoleCustomer, RoleAdmin, RoleDriver, RoleMasterAdmin} {
		if !r.Valid() {
			t.Fatalf("%s should be valid", r)
		}
	}
	if Role("guest").Valid() || Role("").Valid() {
		t.Fatalf("unknown roles must be invalid")
	}
}

func TestAccount_OTPLifecycle(t *testing.T) {
	now := time.Now()
	a := &Account{}

	if !a.OTPExpired(now) {
		t.Fatalf("missing expiry counts as expired")
	}

	a.SetOTP("123456", now.Add(time.Minute))
	if a.OTP != "123456" || a.OTPExpiresAt == nil {
		t.Fatalf("code and expiry must be set together")
	}
	if a.OTPExpired(now) {
		t.Fatalf("code should still be valid")
	}
	if !a.OTPExpired(now.Add(time.Minute)) {
		t.Fatalf("code must be expired at its expiry instant")
	}

	a.Activate()
	if !a.IsActive || a.OTP != "" || a.OTPExpiresAt != nil {
		t.Fatalf("activate must set active and clear OTP: %+v", a)
	}
	if a.Status() != StatusActive {
		t.Fatalf("unexpected status %s", a.Status())
	}
}

func TestAccount_ProfileHasNoSecrets(t *testing.T) {
	a := &Account{ID: "1", Email: "a@x.com", PasswordHash: "h", OTP: "123456", Role: RoleAdmin}
	p := a.Profile()
	if p.ID != "1" || p.Email != "a@x.com" || p.Role != RoleAdmin {
		t.Fatalf("unexpected profile %+v", p)
	}
}

func TestKindOf(t *testing.T) {
	cases := []struct {
		err  error
		want Kind
	}{
		{nil, ""},
		{ErrAccountNotFound, KindNotFound},
		{fmt.Errorf("activate: %w", ErrCodeMismatch), KindCodeMismatch},
		{fmt.Errorf("%w: %w", ErrDeliveryFailed, errors.New("smtp")), KindDeliveryFailed},
		{fmt.Errorf("find: %w: %w", ErrStorageUnavailable, errors.New("timeout")), KindInternal},
		{errors.New("boom"), KindInternal},
	}
	for _, tc := range cases {
		if got := KindOf(tc.err); got != tc.want {
			t.Fatalf("KindOf(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
