package config

import (
	"fmt"

	env "github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every knob the service reads from the environment. A single
// parsed struct is passed down explicitly; nothing reads os.Getenv at call
// sites.
type Config struct {
	Port     string `env:"PORT" envDefault:"8080"`
	GinMode  string `env:"GIN_MODE" envDefault:""`
	RedisURL string `env:"REDIS_URL" envDefault:"localhost:6379"`

	DBUser     string `env:"DB_USER" envDefault:"root"`
	DBPassword string `env:"DB_PASSWORD" envDefault:""`
	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"3306"`
	DBName     string `env:"DB_NAME" envDefault:"prediction_wallet"`

	// Identity provider boundary. Tokens are issued elsewhere; we only verify.
	JWTSecret string `env:"JWT_SECRET,required"`

	// Odds/wager API.
	OddsAPIBaseURL string `env:"ODDS_API_BASE_URL" envDefault:"http://localhost:9100"`
	OddsAPIKey     string `env:"ODDS_API_KEY,required"`

	// Settlement webhook shared secret (hex HMAC over the raw body).
	SettlementSecret string `env:"SETTLEMENT_WEBHOOK_SECRET,required"`

	// Payment gateway credentials. The signature key is ApiSecret+Salt.
	GatewayBaseURL   string `env:"GATEWAY_BASE_URL" envDefault:"https://pg.sandbox.example.in"`
	GatewayAPIKey    string `env:"GATEWAY_API_KEY,required"`
	GatewayAPISecret string `env:"GATEWAY_API_SECRET,required"`
	GatewaySalt      string `env:"GATEWAY_SALT,required"`

	// Lenient mode tolerates a missing gateway webhook signature header with
	// a logged warning. Strict mode rejects it outright.
	WebhookStrictSignature bool `env:"WEBHOOK_STRICT_SIGNATURE" envDefault:"false"`

	// Points credited per rupee of a completed purchase.
	PurchaseBonusRate float64 `env:"PURCHASE_BONUS_RATE" envDefault:"1.0"`

	// Pending payins older than this many minutes are swept to EXPIRED.
	PaymentExpiryMinutes int `env:"PAYMENT_EXPIRY_MINUTES" envDefault:"30"`
}

// Load reads .env (best effort, same lookup order the deploy scripts use)
// and parses the environment into a Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../.env"); err != nil {
			// fall through to plain env vars
		}
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}
