package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds everything the server needs at startup.
type Config struct {
	Port            string
	DatabaseURI     string
	DatabaseName    string
	JWTSecret       string
	JWTExpiry       time.Duration
	CookieExpiry    time.Duration
	ProductsPerPage int
	Mail            MailConfig
	Redaction       Redaction
}

// MailConfig selects and configures the outbound email transport.
type MailConfig struct {
	Transport      string
	Sender         string
	SMTPHost       string
	SMTPPort       int
	SMTPUser       string
	SMTPPass       string
	PostmarkToken  string
	SendGridAPIKey string
}

// Redaction lists the JSON fields dropped from each document kind before it is
// written to a response.
type Redaction struct {
	User    []string `yaml:"user"`
	Product []string `yaml:"product"`
	Order   []string `yaml:"order"`
}

// UserSecrets are never serialized, whatever the redaction file says.
var UserSecrets = []string{"password", "resetPasswordToken", "resetPasswordExpiry"}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Proceeding with environment variables.")
	}

	cfg := &Config{
		Port:         getEnv("PORT", "5000"),
		DatabaseURI:  getEnv("DB_URI", "mongodb://localhost:27017"),
		DatabaseName: getEnv("DB_NAME", "ecommerce"),
		JWTSecret:    os.Getenv("JWT_SECRET"),
		Mail: MailConfig{
			Transport:      strings.ToLower(getEnv("EMAIL_TRANSPORT", "log")),
			Sender:         os.Getenv("EMAIL_SENDER"),
			SMTPHost:       os.Getenv("SMTP_HOST"),
			SMTPUser:       os.Getenv("SMTP_USER"),
			SMTPPass:       os.Getenv("SMTP_PASS"),
			PostmarkToken:  os.Getenv("POSTMARK_API_TOKEN"),
			SendGridAPIKey: os.Getenv("SENDGRID_API_KEY"),
		},
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is not set")
	}

	var err error
	if cfg.JWTExpiry, err = ParseDuration(getEnv("JWT_EXPIRY", "5d")); err != nil {
		return nil, fmt.Errorf("JWT_EXPIRY: %w", err)
	}
	days, err := strconv.Atoi(getEnv("COOKIE_EXPIRY", "5"))
	if err != nil || days <= 0 {
		return nil, fmt.Errorf("COOKIE_EXPIRY must be a positive number of days")
	}
	cfg.CookieExpiry = time.Duration(days) * 24 * time.Hour

	if cfg.ProductsPerPage, err = strconv.Atoi(getEnv("PRODUCTS_PER_PAGE", "5")); err != nil || cfg.ProductsPerPage <= 0 {
		return nil, fmt.Errorf("PRODUCTS_PER_PAGE must be a positive number")
	}
	if cfg.Mail.SMTPPort, err = strconv.Atoi(getEnv("SMTP_PORT", "587")); err != nil {
		return nil, fmt.Errorf("SMTP_PORT: %w", err)
	}

	cfg.Redaction = DefaultRedaction()
	if path := os.Getenv("REDACTION_FILE"); path != "" {
		if err := cfg.Redaction.LoadFile(path); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// DefaultRedaction drops only the user secrets.
func DefaultRedaction() Redaction {
	return Redaction{User: append([]string(nil), UserSecrets...)}
}

// LoadFile merges the lists found in a YAML file into r.
func (r *Redaction) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading redaction file: %w", err)
	}
	return r.parse(data)
}

func (r *Redaction) parse(data []byte) error {
	var loaded Redaction
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("parsing redaction file: %w", err)
	}
	r.User = mergeFields(r.User, loaded.User)
	r.Product = mergeFields(r.Product, loaded.Product)
	r.Order = mergeFields(r.Order, loaded.Order)
	r.User = mergeFields(r.User, UserSecrets)
	return nil
}

// ParseDuration accepts Go durations plus a whole-day form such as "5d".
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil || days <= 0 {
			return 0, fmt.Errorf("invalid day count %q", s)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive, got %q", s)
	}
	return d, nil
}

func mergeFields(base, extra []string) []string {
	seen := make(map[string]bool, len(base))
	for _, f := range base {
		seen[f] = true
	}
	for _, f := range extra {
		if !seen[f] {
			base = append(base, f)
			seen[f] = true
		}
	}
	return base
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
