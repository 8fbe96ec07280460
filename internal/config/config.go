package config

import (
	"os"
	"strconv"
	"time"
)

// Defaults de negocio. El límite diario y el tamaño de sachet son
// constantes globales salvo override por mascota / env.
const (
	DefaultDailyLimit        = 3
	DefaultSachetSizeGrams   = 85
	DefaultLowStockThreshold = 5
	DefaultSessionMaxAge     = 7 * 24 * time.Hour

	SeedGramsDefault  = 85
	SeedEventsDefault = 2
	SeedDietDefault   = "Whiskas Poultry"
)

// Config es inmutable: se construye una vez en cmd/api y se inyecta
// a los constructores (nada de globals mutables).
type Config struct {
	Addr  string
	DBDSN string

	AppVersion string

	DailyLimit        int
	SachetSizeGrams   int
	LowStockThreshold int

	SessionMaxAge time.Duration

	VAPIDPublicKey  string
	VAPIDPrivateKey string
	VAPIDSubject    string

	DeviceToken string
	SeedToken   string
}

// FromEnv arma la config desde env:
// - PORT (default 8080)
// - DB_DSN (vacío => repos in-memory)
// - LOW_STOCK_THRESHOLD, APP_VERSION
// - VAPID_PUBLIC_KEY / VAPID_PRIVATE_KEY / VAPID_SUBJECT
// - DEVICE_TOKEN, SEED_TOKEN
func FromEnv() Config {
	addr := ":8080"
	if v := os.Getenv("PORT"); v != "" {
		addr = ":" + v
	}

	return Config{
		Addr:              addr,
		DBDSN:             os.Getenv("DB_DSN"),
		AppVersion:        envOr("APP_VERSION", "V.0.2"),
		DailyLimit:        DefaultDailyLimit,
		SachetSizeGrams:   DefaultSachetSizeGrams,
		LowStockThreshold: envInt("LOW_STOCK_THRESHOLD", DefaultLowStockThreshold),
		SessionMaxAge:     DefaultSessionMaxAge,
		VAPIDPublicKey:    os.Getenv("VAPID_PUBLIC_KEY"),
		VAPIDPrivateKey:   os.Getenv("VAPID_PRIVATE_KEY"),
		VAPIDSubject:      envOr("VAPID_SUBJECT", "mailto:admin@example.com"),
		DeviceToken:       os.Getenv("DEVICE_TOKEN"),
		SeedToken:         os.Getenv("SEED_TOKEN"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
