package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	DatabaseURL string
	HTTPAddr    string
	LogLevel    string
	Env         string // dev|prod
	SentryDSN   string

	ScorerURL         string
	VerifiedThreshold int // score >= this => VERIFIED
	PartialThreshold  int // score >= this => PARTIAL, else FAILED

	SMTPAddr string // host:port, empty disables mail
	SMTPFrom string
	SMTPUser string
	SMTPPass string

	BotToken string // optional telegram admin alerts
	AdminIDs []int64
}

func Load() (*Config, error) {
	adminIDs, err := parseIDs(os.Getenv("ADMIN_IDS"))
	if err != nil {
		return nil, fmt.Errorf("ADMIN_IDS: %w", err)
	}

	verified, err := intenv("VERIFY_VERIFIED_THRESHOLD", 80)
	if err != nil {
		return nil, err
	}
	partial, err := intenv("VERIFY_PARTIAL_THRESHOLD", 50)
	if err != nil {
		return nil, err
	}
	if partial > verified {
		return nil, fmt.Errorf("VERIFY_PARTIAL_THRESHOLD %d must not exceed VERIFY_VERIFIED_THRESHOLD %d", partial, verified)
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	scorerURL := os.Getenv("SCORER_URL")
	if scorerURL == "" {
		return nil, fmt.Errorf("SCORER_URL is required")
	}

	cfg := &Config{
		DatabaseURL:       dbURL,
		HTTPAddr:          getenv("HTTP_ADDR", ":8080"),
		LogLevel:          getenv("LOG_LEVEL", "info"),
		Env:               getenv("ENV", "dev"),
		SentryDSN:         os.Getenv("SENTRY_DSN"),
		ScorerURL:         scorerURL,
		VerifiedThreshold: verified,
		PartialThreshold:  partial,
		SMTPAddr:          os.Getenv("SMTP_ADDR"),
		SMTPFrom:          getenv("SMTP_FROM", "no-reply@achievement-portal.local"),
		SMTPUser:          os.Getenv("SMTP_USER"),
		SMTPPass:          os.Getenv("SMTP_PASS"),
		BotToken:          os.Getenv("BOT_TOKEN"),
		AdminIDs:          adminIDs,
	}
	return cfg, nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func intenv(k string, def int) (int, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", k, err)
	}
	return n, nil
}

func parseIDs(s string) ([]int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad id %q: %w", p, err)
		}
		out = append(out, n)
	}
	return out, nil
}
