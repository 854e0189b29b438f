package config

import (
	"flag"
	"os"
	"strings"
	"sync"

	"github.com/joho/godotenv"
)

const (
	defaultServerAddress = ":5000"
	defaultDatabaseDSN   = ""
	defaultStripeAPIAddr = "https://api.stripe.com"
	defaultSuccessURL    = "http://localhost:5173/success"
	defaultCancelURL     = "http://localhost:5173/cancel"
	defaultLogLevel      = "debug"
)

type Config struct {
	ServerAddr          string
	DatabaseDSN         string
	StripeAPIAddr       string
	StripeAPIKey        string
	StripeWebhookSecret string
	SuccessURL          string
	CancelURL           string
	RedisAddr           string
	KafkaBrokers        []string
	LogLevel            string
}

var (
	once      sync.Once
	singleton *Config
)

// New returns new Config. It parses command line and environment variables only once.
// Secrets (Stripe API key and webhook secret) come from the environment only.
func New() (*Config, error) {
	once.Do(func() {
		// optional .env file for local runs
		_ = godotenv.Load()

		cfg := Config{}

		// initialize flags
		flag.StringVar(&cfg.ServerAddr, "a", defaultServerAddress, "checkout server address")
		flag.StringVar(&cfg.DatabaseDSN, "d", defaultDatabaseDSN, "checkout database DSN")
		flag.StringVar(&cfg.StripeAPIAddr, "r", defaultStripeAPIAddr, "stripe api address")
		flag.StringVar(&cfg.LogLevel, "l", defaultLogLevel, "log level")

		flag.Parse()

		cfg.SuccessURL = defaultSuccessURL
		cfg.CancelURL = defaultCancelURL

		// if environment variable is set, then using it
		if runAddrEnv := os.Getenv("RUN_ADDRESS"); runAddrEnv != "" {
			cfg.ServerAddr = runAddrEnv
		}
		if dataBaseURIEnv := os.Getenv("DATABASE_URI"); dataBaseURIEnv != "" {
			cfg.DatabaseDSN = dataBaseURIEnv
		}
		if stripeAddrEnv := os.Getenv("STRIPE_API_ADDRESS"); stripeAddrEnv != "" {
			cfg.StripeAPIAddr = stripeAddrEnv
		}
		if successURLEnv := os.Getenv("SUCCESS_URL"); successURLEnv != "" {
			cfg.SuccessURL = successURLEnv
		}
		if cancelURLEnv := os.Getenv("CANCEL_URL"); cancelURLEnv != "" {
			cfg.CancelURL = cancelURLEnv
		}
		if logLevelEnv := os.Getenv("LOG_LEVEL"); logLevelEnv != "" {
			cfg.LogLevel = logLevelEnv
		}

		cfg.StripeAPIKey = os.Getenv("STRIPE_SECRET_KEY")
		cfg.StripeWebhookSecret = os.Getenv("STRIPE_WEBHOOK_SECRET")
		cfg.RedisAddr = os.Getenv("REDIS_ADDR")
		cfg.KafkaBrokers = splitCSV(os.Getenv("KAFKA_BROKERS"))

		singleton = &cfg
	})

	return singleton, nil
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
