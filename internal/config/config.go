package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	SMTP     SMTPConfig
	Midtrans MidtransConfig
	Billing  BillingConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
}

type MidtransConfig struct {
	ServerKey  string
	ClientKey  string
	Production bool
	// Timeout bounds every outbound status query during reconciliation.
	Timeout time.Duration
}

type BillingConfig struct {
	TrialDays          int
	InvoiceDueDays     int
	MaxRetryInvoices   int
	FailedPaymentDays  int
	CleanupRetainDays  int
	ReconcileInterval  time.Duration
	UsageWarnThreshold float64
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "POS Billing"),
		},
		Midtrans: MidtransConfig{
			ServerKey:  getEnv("MIDTRANS_SERVER_KEY", ""),
			ClientKey:  getEnv("MIDTRANS_CLIENT_KEY", ""),
			Production: getEnv("MIDTRANS_ENV", "sandbox") == "production",
			Timeout:    getEnvAsDuration("MIDTRANS_TIMEOUT", 15*time.Second),
		},
		Billing: BillingConfig{
			TrialDays:          getEnvAsInt("BILLING_TRIAL_DAYS", 14),
			InvoiceDueDays:     getEnvAsInt("BILLING_INVOICE_DUE_DAYS", 7),
			MaxRetryInvoices:   getEnvAsInt("BILLING_MAX_RETRY_INVOICES", 3),
			FailedPaymentDays:  getEnvAsInt("BILLING_FAILED_PAYMENT_DAYS", 7),
			CleanupRetainDays:  getEnvAsInt("BILLING_CLEANUP_RETAIN_DAYS", 90),
			ReconcileInterval:  getEnvAsDuration("BILLING_RECONCILE_INTERVAL", 15*time.Minute),
			UsageWarnThreshold: 0.8,
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
