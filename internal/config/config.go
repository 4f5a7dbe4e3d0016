package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Env         string
	Port        string
	AppName     string
	LogLevel    string
	DatabaseURL string
	FrontendURL string
	CORSOrigins string

	JWTSecret  string
	JWTTTL     time.Duration
	CookieName string

	ResetTokenTTL time.Duration

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	MailFrom     string
	MailFromName string
}

// Load reads configuration from the environment. Call godotenv first if a
// .env file should be honoured.
func Load() (*Config, error) {
	smtpPort, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}
	ttlHours, err := strconv.Atoi(getEnv("JWT_TTL_HOURS", "24"))
	if err != nil || ttlHours <= 0 {
		return nil, fmt.Errorf("invalid JWT_TTL_HOURS %q", os.Getenv("JWT_TTL_HOURS"))
	}
	resetMinutes, err := strconv.Atoi(getEnv("RESET_TOKEN_TTL_MINUTES", "60"))
	if err != nil || resetMinutes <= 0 {
		return nil, fmt.Errorf("invalid RESET_TOKEN_TTL_MINUTES %q", os.Getenv("RESET_TOKEN_TTL_MINUTES"))
	}

	cfg := &Config{
		Env:           getEnv("APP_ENV", "development"),
		Port:          getEnv("PORT", "3000"),
		AppName:       getEnv("APP_NAME", "Media CMS"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DatabaseURL:   databaseURL(),
		FrontendURL:   getEnv("FRONTEND_URL", "http://localhost:3001"),
		CORSOrigins:   getEnv("CORS_ORIGINS", "*"),
		JWTSecret:     getEnv("JWT_SECRET", "your-super-secret-key-change-in-production"),
		JWTTTL:        time.Duration(ttlHours) * time.Hour,
		CookieName:    getEnv("COOKIE_NAME", "media-token"),
		ResetTokenTTL: time.Duration(resetMinutes) * time.Minute,
		SMTPHost:      getEnv("SMTP_HOST", ""),
		SMTPPort:      smtpPort,
		SMTPUsername:  getEnv("SMTP_USERNAME", ""),
		SMTPPassword:  getEnv("SMTP_PASSWORD", ""),
		MailFrom:      getEnv("SMTP_FROM_EMAIL", "noreply@media.local"),
		MailFromName:  getEnv("SMTP_FROM_NAME", "Media CMS"),
	}
	return cfg, nil
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func databaseURL() string {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return dsn
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_USER", "postgres"),
		os.Getenv("DB_PASSWORD"),
		getEnv("DB_NAME", "media"),
		getEnv("DB_PORT", "5432"),
	)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
