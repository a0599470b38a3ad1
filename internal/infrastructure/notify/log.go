package notify

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/99minutos/identity-service/internal/core/ports"
)

// LogNotifier writes notifications to the logger instead of sending them.
// Intended for development; the code is logged at debug level only.
type LogNotifier struct {
	composer Composer
	log      zerolog.Logger
}

func NewLogNotifier(composer Composer, log zerolog.Logger) *LogNotifier {
	return &LogNotifier{composer: composer, log: log}
}

func (n *LogNotifier) SendCode(_ context.Context, address string, purpose ports.CodePurpose, code string) error {
	msg := n.composer.Compose(address, purpose, code)
	n.log.Info().Str("to", msg.To).Str("subject", msg.Subject).Msg("notification sent (log provider)")
	n.log.Debug().Str("to", msg.To).Str("code", code).Msg("notification code")
	return nil
}
