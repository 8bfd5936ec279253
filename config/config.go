package config

import (
	"os"
	"strconv"
)

// App is the process-wide configuration, set by Load.
var App *Config

// Config holds runtime settings for the community-serve API server.
// Every field has a development default and can be overridden through
// the environment (godotenv loads .env before this runs).
type Config struct {
	Port        string
	MongoURI    string
	MongoDB     string
	JWTSecret   string
	JWTExpHours int
	FrontendURL string
	OTPTTLMin   int
	SMTPHost    string
	SMTPPort    string
	SMTPUser    string
	SMTPPass    string
}

// Load builds a Config from the environment and installs it as App.
func Load() *Config {
	cfg := &Config{
		Port:        envOr("PORT", "8000"),
		MongoURI:    envOr("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:     envOr("MONGO_DB", "community-serve"),
		JWTSecret:   envOr("JWT_SECRET", ""),
		JWTExpHours: envIntOr("JWT_EXP_HOURS", 168),
		FrontendURL: envOr("FRONTEND_URL", "http://localhost:3000"),
		OTPTTLMin:   envIntOr("OTP_TTL_MIN", 10),
		SMTPHost:    os.Getenv("SMTP_HOST"),
		SMTPPort:    os.Getenv("SMTP_PORT"),
		SMTPUser:    os.Getenv("SMTP_USER"),
		SMTPPass:    os.Getenv("SMTP_PASS"),
	}
	App = cfg
	return cfg
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}
