package notify

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/99minutos/identity-service/internal/core/ports"
	"github.com/99minutos/identity-service/internal/pkg/metrics"
)

// ErrDuplicateDelivery is returned when the (address, purpose, code) triple
// was already claimed, so this call delivered nothing.
var ErrDuplicateDelivery = errors.New("code already delivered to this address")

// DeliveryClaimer abstracts the dedup store (Redis).
type DeliveryClaimer interface {
	Claim(ctx context.Context, address, purpose, code string) (bool, error)
}

// DedupNotifier gives each (address, purpose, code) at most one delivery
// attempt. The claim is taken before sending, so a failed attempt is not
// retried with the same code; callers retry by issuing a new code. A skipped
// send returns ErrDuplicateDelivery rather than nil.
type DedupNotifier struct {
	next  ports.Notifier
	dedup DeliveryClaimer
	log   zerolog.Logger
}

func NewDedupNotifier(next ports.Notifier, dedup DeliveryClaimer, log zerolog.Logger) *DedupNotifier {
	return &DedupNotifier{next: next, dedup: dedup, log: log}
}

func (n *DedupNotifier) SendCode(ctx context.Context, address string, purpose ports.CodePurpose, code string) error {
	claimed, err := n.dedup.Claim(ctx, address, string(purpose), code)
	if err != nil {
		n.log.Warn().Err(err).Str("to", address).Msg("delivery dedup unavailable, sending anyway")
	} else if !claimed {
		metrics.CodesDeliveredTotal.WithLabelValues(string(purpose), "skipped").Inc()
		n.log.Debug().Str("to", address).Str("purpose", string(purpose)).Msg("duplicate delivery skipped")
		return ErrDuplicateDelivery
	}
	return n.next.SendCode(ctx, address, purpose, code)
}
