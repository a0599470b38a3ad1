package redis

import (
	"testing"
	"time"
)

func TestConfigOptions(t *testing.T) {
	opts := Config{Addr: "cache:6379", Password: "pw", DB: 2, PoolSize: 20}.options()

	if opts.Addr != "cache:6379" || opts.Password != "pw" || opts.DB != 2 || opts.PoolSize != 20 {
		t.Fatalf("unexpected options: %+v", opts)
	}
	if opts.DialTimeout != defaultTimeout || opts.ReadTimeout != defaultTimeout || opts.WriteTimeout != defaultTimeout {
		t.Fatalf("expected default timeouts, got %s %s %s", opts.DialTimeout, opts.ReadTimeout, opts.WriteTimeout)
	}

	opts = Config{Addr: "cache:6379", Timeout: time.Second}.options()
	if opts.ReadTimeout != time.Second {
		t.Fatalf("expected 1s read timeout, got %s", opts.ReadTimeout)
	}
}
