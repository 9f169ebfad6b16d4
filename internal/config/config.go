package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the whole application configuration, populated from
// environment variables (godotenv loads .env in development).
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	VNPay    VNPayConfig
	Booking  BookingConfig
	Worker   WorkerConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MinConns int
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
}

// VNPayConfig carries the merchant credentials and endpoints for the
// payment gateway. HashSecret signs every outbound URL and verifies
// every inbound callback.
type VNPayConfig struct {
	TmnCode       string // merchant code (provided by VNPay)
	HashSecret    string // secret key for HMAC-SHA512
	BaseURL       string // VNPay gateway base URL
	ReturnURL     string // where the gateway redirects the browser back to
	ResultPageURL string // frontend page the API redirects to after reconciliation
}

type BookingConfig struct {
	// PendingOrderTTL is how long an order may stay pending before the
	// expiry sweep reconciles it as failed (abandoned payment session).
	PendingOrderTTL time.Duration
	// SeatLockTTL bounds the advisory lock held per (trip, seat) while
	// the booking transaction runs.
	SeatLockTTL time.Duration
}

type WorkerConfig struct {
	Concurrency int
	// ExpirySweepCron is the schedule for the pending-order expiry job.
	ExpirySweepCron string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Busticket API"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "8080"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("PG_HOST", "localhost"),
			Port:     getEnvInt("PG_PORT", 5432),
			User:     getEnv("PG_USERNAME", "postgres"),
			Password: getEnv("PG_PASSWORD", "postgres"),
			Database: getEnv("PG_DBNAME", "busticket"),
			SSLMode:  getEnv("PG_SSLMODE", "disable"),
			MaxConns: getEnvInt("PG_MAX_CONNS", 20),
			MinConns: getEnvInt("PG_MIN_CONNS", 2),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
		},
		VNPay: VNPayConfig{
			TmnCode:       getEnv("VNPAY_TMN_CODE", ""),
			HashSecret:    getEnv("VNPAY_HASH_SECRET", ""),
			BaseURL:       getEnv("VNPAY_BASE_URL", "https://sandbox.vnpayment.vn/paymentv2"),
			ReturnURL:     getEnv("VNPAY_RETURN_URL", "http://localhost:8080/api/v1/payments/vnpay/return"),
			ResultPageURL: getEnv("VNPAY_RESULT_PAGE_URL", "http://localhost:3000/payment/result"),
		},
		Booking: BookingConfig{
			PendingOrderTTL: time.Duration(getEnvInt("BOOKING_PENDING_TTL_MINUTES", 30)) * time.Minute,
			SeatLockTTL:     time.Duration(getEnvInt("BOOKING_SEAT_LOCK_SECONDS", 15)) * time.Second,
		},
		Worker: WorkerConfig{
			Concurrency:     getEnvInt("WORKER_CONCURRENCY", 5),
			ExpirySweepCron: getEnv("WORKER_EXPIRY_SWEEP_CRON", "*/5 * * * *"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.VNPay.TmnCode == "" {
		return fmt.Errorf("VNPAY_TMN_CODE is required")
	}
	if c.VNPay.HashSecret == "" {
		return fmt.Errorf("VNPAY_HASH_SECRET is required")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
