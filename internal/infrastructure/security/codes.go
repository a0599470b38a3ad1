package security

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"time"

	"github.com/99minutos/identity-service/internal/core/ports"
)

const (
	codeMin = 100000
	codeMax = 999999
)

// CodeGenerator issues six digit codes drawn uniformly from 100000..999999.
type CodeGenerator struct {
	activationTTL time.Duration
	resetTTL      time.Duration
	now           func() time.Time
}

// NewCodeGenerator builds a generator; non-positive TTLs use 1 and 3 minutes.
func NewCodeGenerator(activationTTL, resetTTL time.Duration, now func() time.Time) *CodeGenerator {
	if activationTTL <= 0 {
		activationTTL = time.Minute
	}
	if resetTTL <= 0 {
		resetTTL = 3 * time.Minute
	}
	if now == nil {
		now = time.Now
	}
	return &CodeGenerator{activationTTL: activationTTL, resetTTL: resetTTL, now: now}
}

func (g *CodeGenerator) Generate(purpose ports.CodePurpose) (string, time.Time, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeMax-codeMin+1))
	if err != nil {
		return "", time.Time{}, err
	}
	code := strconv.FormatInt(n.Int64()+codeMin, 10)

	ttl := g.activationTTL
	if purpose == ports.PurposeReset {
		ttl = g.resetTTL
	}
	return code, g.now().UTC().Add(ttl), nil
}

// TTL returns the validity window used for purpose, after defaults. Message
// templates quote it so the text matches the stored expiry.
func (g *CodeGenerator) TTL(purpose ports.CodePurpose) time.Duration {
	if purpose == ports.PurposeReset {
		return g.resetTTL
	}
	return g.activationTTL
}
