package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	Database   DatabaseConfig
	JWT        JWTConfig
	App        AppConfig
	Payroll    PayrollConfig
	Attendance AttendanceConfig
	Cron       CronConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret     string
	Expiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Name           string
	Version        string
	Port           int
	Env            string
	AllowedOrigins []string
}

// PayrollConfig holds the statutory deduction settings.
type PayrollConfig struct {
	EOBIAmount        decimal.Decimal
	ProvidentFundRate decimal.Decimal
}

// AttendanceConfig holds punch ingestion settings. Device timestamps are
// local time; the offset converts them to UTC once at ingestion.
type AttendanceConfig struct {
	DeviceUTCOffset     time.Duration
	GraceMinutes        int
	HalfDayMinMinutes   int
	DefaultBreakMinutes int
}

// CronConfig holds background job intervals.
type CronConfig struct {
	PayrollRecomputeInterval time.Duration
	LoanOverdueInterval      time.Duration
	LoanGracePeriod          time.Duration
}

func Load() (*Config, error) {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	config := &Config{}

	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "hrpay"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Name:           getEnv("APP_NAME", "hrpay-backend"),
		Version:        getEnv("APP_VERSION", "v1.0.0"),
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		AllowedOrigins: getEnvSlice("ALLOWED_ORIGINS", "http://localhost:3000"),
	}

	config.JWT = JWTConfig{
		Secret:     getEnv("JWT_SECRET_KEY", ""),
		Expiration: getEnv("JWT_EXPIRATION_TIME", "24h"),
	}

	eobi, err := decimal.NewFromString(getEnv("PAYROLL_EOBI_AMOUNT", "370"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYROLL_EOBI_AMOUNT: %w", err)
	}
	pfRate, err := decimal.NewFromString(getEnv("PAYROLL_PF_RATE", "8.834"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYROLL_PF_RATE: %w", err)
	}
	config.Payroll = PayrollConfig{
		EOBIAmount:        eobi,
		ProvidentFundRate: pfRate,
	}

	deviceOffset, err := time.ParseDuration(getEnv("ATTENDANCE_DEVICE_UTC_OFFSET", "5h"))
	if err != nil {
		return nil, fmt.Errorf("invalid ATTENDANCE_DEVICE_UTC_OFFSET: %w", err)
	}
	config.Attendance = AttendanceConfig{
		DeviceUTCOffset:     deviceOffset,
		GraceMinutes:        getEnvInt("ATTENDANCE_GRACE_MINUTES", 15),
		HalfDayMinMinutes:   getEnvInt("ATTENDANCE_HALF_DAY_MINUTES", 240),
		DefaultBreakMinutes: getEnvInt("ATTENDANCE_DEFAULT_BREAK_MINUTES", 60),
	}

	recomputeInterval, err := time.ParseDuration(getEnv("CRON_PAYROLL_RECOMPUTE_INTERVAL", "15m"))
	if err != nil {
		return nil, fmt.Errorf("invalid CRON_PAYROLL_RECOMPUTE_INTERVAL: %w", err)
	}
	overdueInterval, err := time.ParseDuration(getEnv("CRON_LOAN_OVERDUE_INTERVAL", "6h"))
	if err != nil {
		return nil, fmt.Errorf("invalid CRON_LOAN_OVERDUE_INTERVAL: %w", err)
	}
	loanGrace, err := time.ParseDuration(getEnv("LOAN_GRACE_PERIOD", "2160h")) // 90 days
	if err != nil {
		return nil, fmt.Errorf("invalid LOAN_GRACE_PERIOD: %w", err)
	}
	config.Cron = CronConfig{
		PayrollRecomputeInterval: recomputeInterval,
		LoanOverdueInterval:      overdueInterval,
		LoanGracePeriod:          loanGrace,
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.Attendance.GraceMinutes < 0 {
		return fmt.Errorf("ATTENDANCE_GRACE_MINUTES must be non-negative")
	}
	if c.Payroll.EOBIAmount.IsNegative() || c.Payroll.ProvidentFundRate.IsNegative() {
		return fmt.Errorf("payroll deduction settings must be non-negative")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvSlice(key, fallback string) []string {
	raw := getEnv(key, fallback)
	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
