package app

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Issuer string // Required: issuer claim for session tokens

	RPID          string   // Optional: WebAuthn relying party ID (default: localhost)
	RPDisplayName string   // Optional: relying party name shown by authenticators (default: Outlay)
	RPOrigins     []string // Optional: allowed WebAuthn origins (default: http://localhost:8080)

	SigningKeyFile string        // Optional: path to Ed25519 PKCS8 PEM key (default: ephemeral key)
	SessionTTL     time.Duration // Optional: session token lifetime (default: 12h)

	DatabaseFile string // Optional: path to SQLite database file (default: ./outlay.db)
	PepperFile   string // Optional: path to the password hashing pepper file (default: ./pepper)

	BootstrapEmail string // Optional: seed an admin invite for this email when the database is empty
	BootstrapName  string // Optional: display name for the bootstrap admin (default: Administrator)
	BootstrapToken string // Optional: fixed activation token for the bootstrap invite (generated when empty)

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
}

func LoadConfig() Config {
	// A .env file is a development convenience; missing is fine.
	_ = godotenv.Load()

	cfg := Config{
		Issuer:               getEnvOrDefault("OUTLAY_ISSUER", "outlay"),
		RPID:                 getEnvOrDefault("OUTLAY_RP_ID", "localhost"),
		RPDisplayName:        getEnvOrDefault("OUTLAY_RP_NAME", "Outlay"),
		SigningKeyFile:       os.Getenv("OUTLAY_SIGNING_KEY_FILE"),
		SessionTTL:           getEnvDurationOrDefault("OUTLAY_SESSION_TTL", 12*time.Hour),
		DatabaseFile:         getEnvOrDefault("OUTLAY_DATABASE_FILE", "outlay.db"),
		PepperFile:           getEnvOrDefault("OUTLAY_PEPPER_FILE", "pepper"),
		BootstrapEmail:       os.Getenv("OUTLAY_BOOTSTRAP_EMAIL"),
		BootstrapName:        getEnvOrDefault("OUTLAY_BOOTSTRAP_NAME", "Administrator"),
		BootstrapToken:       os.Getenv("OUTLAY_BOOTSTRAP_TOKEN"),
		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}

	if origins := os.Getenv("OUTLAY_RP_ORIGINS"); origins != "" {
		for _, origin := range strings.Split(origins, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.RPOrigins = append(cfg.RPOrigins, origin)
			}
		}
	}
	if len(cfg.RPOrigins) == 0 {
		cfg.RPOrigins = []string{"http://localhost:8080"}
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are taken as minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
