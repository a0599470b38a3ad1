package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port           string        `env:"PORT,            default=8080"`
	Env            string        `env:"ENV,             default=development"`
	LogLevel       string        `env:"LOG_LEVEL,       default=info"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT, default=10s"`

	Auth     AuthConfig
	Mongo    MongoConfig
	Redis    RedisConfig
	Notifier NotifierConfig
	Audit    AuditConfig
}

type AuthConfig struct {
	JWTSecret    string        `env:"JWT_SECRET,     required"`
	UserTokenTTL time.Duration `env:"USER_TOKEN_TTL, default=1h"`
	AppTokenTTL  time.Duration `env:"APP_TOKEN_TTL,  default=24h"`
	OTPTTL       time.Duration `env:"OTP_TTL,        default=1m"`
	ResetCodeTTL time.Duration `env:"RESET_CODE_TTL, default=3m"`
	BcryptCost   int           `env:"BCRYPT_COST,    default=10"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=identity"`
}

type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR,         default=localhost:6379"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB,           default=0"`
	PoolSize int           `env:"REDIS_POOL_SIZE,    default=10"`
	DedupTTL time.Duration `env:"DELIVERY_DEDUP_TTL, default=10m"`
}

type NotifierConfig struct {
	Provider  string `env:"NOTIFIER_PROVIDER, default=log"`
	From      string `env:"NOTIFIER_FROM,     default=no-reply@localhost"`
	AWSRegion string `env:"AWS_REGION,        default=us-east-1"`
	SMTPHost  string `env:"SMTP_HOST,         default=smtp.gmail.com"`
	SMTPPort  string `env:"SMTP_PORT,         default=587"`
	SMTPUser  string `env:"SMTP_USER"`
	SMTPPass  string `env:"SMTP_PASS"`
}

type AuditConfig struct {
	Workers int `env:"AUDIT_WORKERS, default=4"`
}

// IsDevelopment reports whether human-friendly output should be used.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadWith(envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadWith reads configuration from l.
func LoadWith(l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(context.Background(), &envconfig.Config{
		Target:   &cfg,
		Lookuper: l,
	}); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Notifier.Provider {
	case "log", "ses", "smtp":
	default:
		return fmt.Errorf("NOTIFIER_PROVIDER must be one of log, ses, smtp: got %q", c.Notifier.Provider)
	}
	if c.Auth.UserTokenTTL <= 0 || c.Auth.AppTokenTTL <= 0 {
		return fmt.Errorf("token TTLs must be positive")
	}
	if c.Auth.OTPTTL <= 0 {
		return fmt.Errorf("OTP_TTL must be positive")
	}
	return nil
}
