package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable. Secrets are plain strings; durations and costs
// are ints matching how they are consumed.
type Config struct {
	Env          string // application environment (e.g. "dev", "prod")
	Port         string // HTTP port to listen on
	DBUser       string // database username
	DBPass       string // database password (optional)
	DBHost       string // database host address
	DBPort       string // database port number
	DBName       string // database name
	JWTSecret    string // secret used to sign JWT access tokens
	QRSecret     string // secret used to sign QR access payloads
	AccessTTLMin int    // access token time-to-live in minutes
	BcryptCost   int    // bcrypt cost for password hashing
}

// Load reads configuration values from environment variables and returns a
// Config. Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message. QR_SECRET defaults to
// the JWT secret so a single-secret deployment keeps working.
func Load() Config {
	cfg := Config{
		Env:          getenv("APP_ENV", "dev"),
		Port:         getenv("APP_PORT", "8000"),
		DBUser:       must("DB_USER"),
		DBPass:       os.Getenv("DB_PASS"), // empty allowed
		DBHost:       must("DB_HOST"),
		DBPort:       must("DB_PORT"),
		DBName:       must("DB_NAME"),
		JWTSecret:    must("JWT_SECRET"),
		QRSecret:     os.Getenv("QR_SECRET"),
		AccessTTLMin: intenv("ACCESS_TOKEN_TTL_MIN", 480),
		BcryptCost:   intenv("BCRYPT_COST", 10),
	}
	if cfg.QRSecret == "" {
		cfg.QRSecret = cfg.JWTSecret
	}
	return cfg
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// intenv reads an integer environment variable, falling back to def when
// the variable is unset. A malformed value is fatal rather than silently
// ignored.
func intenv(key string, def int) int {
	s, ok := os.LookupEnv(key)
	if !ok || s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
