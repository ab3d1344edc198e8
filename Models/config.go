package Models

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds everything read from the environment at startup. The DB handle
// and the ledger engine are built from this once in main and passed down, so no
// package mutates connection state lazily on first request.
type Config struct {
	Port     string
	DBDriver string // "sqlite" or "mysql"
	DBPath   string // sqlite file path
	DBDSN    string // mysql DSN

	JWTSecret string

	// Business rules
	RetentionHours int // transactions older than this cannot be deleted
	BalanceRetries int // optimistic-lock retry budget on customer balance writes

	// Default price overrides (per kg for refills/swaps, per cylinder for outright)
	RefillPricePerKg   string
	SwapPricePerKg     string
	OutrightPrice6kg   string
	OutrightPrice13kg  string
	OutrightPrice50kg  string

	ReconcileSchedule string // cron spec for the nightly drift check
}

func LoadConfig() Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using environment defaults")
	}

	return Config{
		Port:     getEnv("PORT", "3001"),
		DBDriver: getEnv("DB_DRIVER", "sqlite"),
		DBPath:   getEnv("DB_PATH", "database.db"),
		DBDSN:    getEnv("DB_DSN", ""),

		JWTSecret: getEnv("JWT_SECRET", "secret"),

		RetentionHours: getEnvInt("TRANSACTION_RETENTION_HOURS", 168),
		BalanceRetries: getEnvInt("BALANCE_RETRIES", 5),

		RefillPricePerKg:  getEnv("REFILL_PRICE_PER_KG", ""),
		SwapPricePerKg:    getEnv("SWAP_PRICE_PER_KG", ""),
		OutrightPrice6kg:  getEnv("OUTRIGHT_PRICE_6KG", ""),
		OutrightPrice13kg: getEnv("OUTRIGHT_PRICE_13KG", ""),
		OutrightPrice50kg: getEnv("OUTRIGHT_PRICE_50KG", ""),

		ReconcileSchedule: getEnv("RECONCILE_SCHEDULE", "0 0 2 * * *"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Invalid value for %s: %v, using default %d", key, err, fallback)
		return fallback
	}
	return parsed
}
