package config

import (
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoadWith_Defaults(t *testing.T) {
	cfg, err := LoadWith(envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "s3cret",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "8080" || cfg.Env != "development" || cfg.LogLevel != "info" {
		t.Errorf("unexpected server defaults: %+v", cfg)
	}
	if cfg.Auth.UserTokenTTL != time.Hour || cfg.Auth.AppTokenTTL != 24*time.Hour {
		t.Errorf("unexpected token ttls: %s %s", cfg.Auth.UserTokenTTL, cfg.Auth.AppTokenTTL)
	}
	if cfg.Auth.OTPTTL != time.Minute || cfg.Auth.ResetCodeTTL != 3*time.Minute {
		t.Errorf("unexpected code ttls: %s %s", cfg.Auth.OTPTTL, cfg.Auth.ResetCodeTTL)
	}
	if cfg.Auth.BcryptCost != 10 {
		t.Errorf("expected bcrypt cost 10, got %d", cfg.Auth.BcryptCost)
	}
	if cfg.Mongo.Database != "identity" || cfg.Redis.Addr != "localhost:6379" || cfg.Redis.PoolSize != 10 {
		t.Errorf("unexpected storage defaults: %+v %+v", cfg.Mongo, cfg.Redis)
	}
	if cfg.Notifier.Provider != "log" || cfg.Notifier.SMTPPort != "587" {
		t.Errorf("unexpected notifier defaults: %+v", cfg.Notifier)
	}
	if cfg.Audit.Workers != 4 || cfg.RequestTimeout != 10*time.Second {
		t.Errorf("unexpected audit/timeout defaults")
	}
	if !cfg.IsDevelopment() {
		t.Error("expected development env")
	}
}

func TestLoadWith_Overrides(t *testing.T) {
	cfg, err := LoadWith(envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":        "s3cret",
		"ENV":               "production",
		"OTP_TTL":           "2m",
		"NOTIFIER_PROVIDER": "ses",
		"AWS_REGION":        "eu-west-1",
		"AUDIT_WORKERS":     "8",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.IsDevelopment() {
		t.Error("expected production env")
	}
	if cfg.Auth.OTPTTL != 2*time.Minute {
		t.Errorf("expected 2m otp ttl, got %s", cfg.Auth.OTPTTL)
	}
	if cfg.Notifier.Provider != "ses" || cfg.Notifier.AWSRegion != "eu-west-1" {
		t.Errorf("unexpected notifier: %+v", cfg.Notifier)
	}
	if cfg.Audit.Workers != 8 {
		t.Errorf("expected 8 workers, got %d", cfg.Audit.Workers)
	}
}

func TestLoadWith_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing secret", map[string]string{}},
		{"unknown provider", map[string]string{"JWT_SECRET": "s", "NOTIFIER_PROVIDER": "fax"}},
		{"bad duration", map[string]string{"JWT_SECRET": "s", "OTP_TTL": "soon"}},
		{"non positive otp", map[string]string{"JWT_SECRET": "s", "OTP_TTL": "0s"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadWith(envconfig.MapLookuper(tt.env)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
