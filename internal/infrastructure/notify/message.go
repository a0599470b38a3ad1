// Package notify delivers one-time codes to users. Providers share the
// message layout defined here and differ only in transport.
package notify

import (
	"fmt"
	"time"

	"github.com/99minutos/identity-service/internal/core/ports"
)

// Message is a rendered notification.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Composer renders code notifications. ActivationTTL is the real validity of
// activation codes; ResetWindow is the advisory rotation window quoted in
// reset notices.
type Composer struct {
	ActivationTTL time.Duration
	ResetWindow   time.Duration
}

func (c Composer) Compose(address string, purpose ports.CodePurpose, code string) Message {
	switch purpose {
	case ports.PurposeReset:
		return Message{
			To:      address,
			Subject: "Password reset - your temporary password",
			Body: fmt.Sprintf(
				"Hello,\n\nWe received a request to reset your password.\n"+
					"Your temporary password is: %s\n\n"+
					"It replaces your previous password right away and stays valid until you change it. "+
					"Please sign in and change it within %s.\n"+
					"If you did not request this, contact support immediately.\n\nSupport Team\n",
				code, humanDuration(c.ResetWindow)),
		}
	default:
		return Message{
			To:      address,
			Subject: "Activate your account - verification code",
			Body: fmt.Sprintf(
				"Hello and welcome!\n\nThanks for signing up. To complete your registration, "+
					"enter the following code to activate your account:\n\n"+
					"Code: %s\n\nThis code is valid for %s. If you did not register, ignore this email.\n\nSupport Team\n",
				code, humanDuration(c.ActivationTTL)),
		}
	}
}

func humanDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return "a short time"
	case d%time.Hour == 0:
		return plural(int(d/time.Hour), "hour")
	case d%time.Minute == 0:
		return plural(int(d/time.Minute), "minute")
	default:
		return d.String()
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
