package mongo

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/99minutos/identity-service/internal/core/domain"
)

func TestAccountDoc_RoundTrip(t *testing.T) {
	exp := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	a := &domain.Account{
		Name:         "Alice",
		Email:        "a@x.com",
		PasswordHash: "hash",
		Role:         domain.RoleDriver,
		AppID:        "app1",
		CreatedAt:    exp.Add(-time.Hour),
	}
	a.SetOTP("123456", exp)

	doc := toDoc(a)
	doc.ID = primitive.NewObjectID()
	back := doc.toDomain()

	if back.ID != doc.ID.Hex() || back.Email != a.Email || back.Role != a.Role || back.PasswordHash != "hash" {
		t.Fatalf("unexpected account: %+v", back)
	}
	if back.OTP != "123456" || back.OTPExpiresAt == nil || !back.OTPExpiresAt.Equal(exp) {
		t.Fatalf("OTP not preserved: %+v", back)
	}
}

func TestAccountDoc_ClearedOTPStoredAsNull(t *testing.T) {
	a := &domain.Account{Email: "a@x.com", Role: domain.RoleCustomer}
	raw, err := bson.Marshal(toDoc(a))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v, ok := m["otp"]; !ok || v != nil {
		t.Fatalf("expected otp null, got %v", v)
	}
	if v, ok := m["otp_expires"]; !ok || v != nil {
		t.Fatalf("expected otp_expires null, got %v", v)
	}
}

func TestSecretFieldsProjection(t *testing.T) {
	for _, f := range []string{"password", "otp", "otp_expires"} {
		if secretFields[f] != 0 {
			t.Fatalf("%s must be excluded", f)
		}
	}
}
