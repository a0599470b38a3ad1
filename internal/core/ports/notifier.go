package ports

import "context"

// Notifier delivers a code to an out-of-band address.
type Notifier interface {
	SendCode(ctx context.Context, address string, purpose CodePurpose, code string) error
}
