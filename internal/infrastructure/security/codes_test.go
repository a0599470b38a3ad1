package security

import (
	"testing"
	"time"

	"github.com/99minutos/identity-service/internal/core/ports"
)

func TestCodeGenerator_RangeAndWidth(t *testing.T) {
	g := NewCodeGenerator(time.Minute, 3*time.Minute, nil)
	for i := 0; i < 500; i++ {
		code, _, err := g.Generate(ports.PurposeActivation)
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("code %q is not six digits", code)
		}
		if code < "100000" || code > "999999" {
			t.Fatalf("code %q out of range", code)
		}
	}
}

func TestCodeGenerator_Expiry(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	g := NewCodeGenerator(time.Minute, 3*time.Minute, func() time.Time { return now })

	_, exp, _ := g.Generate(ports.PurposeActivation)
	if !exp.Equal(now.Add(time.Minute)) {
		t.Fatalf("activation expiry = %v", exp)
	}
	_, exp, _ = g.Generate(ports.PurposeReset)
	if !exp.Equal(now.Add(3 * time.Minute)) {
		t.Fatalf("reset expiry = %v", exp)
	}
}

func TestCodeGenerator_Defaults(t *testing.T) {
	g := NewCodeGenerator(0, 0, nil)
	if g.TTL(ports.PurposeActivation) != time.Minute || g.TTL(ports.PurposeReset) != 3*time.Minute {
		t.Fatalf("unexpected default TTLs")
	}
}
