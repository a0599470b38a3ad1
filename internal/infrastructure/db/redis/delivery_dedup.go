package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultDedupTTL = 10 * time.Minute

// DeliveryDedup remembers which codes were already handed to a notifier.
// Key format: delivery:<purpose>:<sha256(address|code)>
// The code is hashed so Redis never holds a usable secret.
type DeliveryDedup struct {
	client *redis.Client
	ttl    time.Duration
}

// NewDeliveryDedup wraps client; a non-positive ttl uses ten minutes.
func NewDeliveryDedup(client *redis.Client, ttl time.Duration) *DeliveryDedup {
	if ttl <= 0 {
		ttl = defaultDedupTTL
	}
	return &DeliveryDedup{client: client, ttl: ttl}
}

// Claim atomically marks the delivery. It reports false when the same code
// was already claimed for the address and purpose.
func (d *DeliveryDedup) Claim(ctx context.Context, address, purpose, code string) (bool, error) {
	ok, err := d.client.SetNX(ctx, deliveryKey(address, purpose, code), "1", d.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("delivery dedup: %w", err)
	}
	return ok, nil
}

func deliveryKey(address, purpose, code string) string {
	sum := sha256.Sum256([]byte(address + "|" + code))
	return "delivery:" + purpose + ":" + hex.EncodeToString(sum[:])
}
