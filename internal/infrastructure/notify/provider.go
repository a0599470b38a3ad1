package notify

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/99minutos/identity-service/internal/core/ports"
)

const (
	ProviderLog  = "log"
	ProviderSES  = "ses"
	ProviderSMTP = "smtp"
)

// Options selects and configures a delivery provider.
type Options struct {
	Provider  string
	From      string
	AWSRegion string
	SMTP      SMTPConfig
	Composer  Composer
}

// New builds the notifier named by opts.Provider.
func New(ctx context.Context, opts Options, log zerolog.Logger) (ports.Notifier, error) {
	switch opts.Provider {
	case "", ProviderLog:
		return NewLogNotifier(opts.Composer, log), nil
	case ProviderSES:
		client, err := NewSESClient(ctx, opts.AWSRegion)
		if err != nil {
			return nil, err
		}
		return NewSESNotifier(client, opts.From, opts.Composer), nil
	case ProviderSMTP:
		cfg := opts.SMTP
		if cfg.From == "" {
			cfg.From = opts.From
		}
		if cfg.Host == "" || cfg.Port == "" {
			return nil, fmt.Errorf("smtp provider requires host and port")
		}
		return NewSMTPNotifier(cfg, opts.Composer), nil
	default:
		return nil, fmt.Errorf("unknown notifier provider %q", opts.Provider)
	}
}
