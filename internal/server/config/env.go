package config

import (
	"os"
	"strconv"
	"time"
)

// parseEnv overlays values from environment variables. Invalid numeric or
// duration values are ignored, keeping the previous layer's value.
func parseEnv(cfg *Config) {
	envString(&cfg.HTTPAddr, "PORTAL_HTTP_ADDR")
	envString(&cfg.DatabaseDSN, "PORTAL_DATABASE_DSN")
	envString(&cfg.SecretKey, "PORTAL_SECRET_KEY")
	envDuration(&cfg.AccessTokenTTL, "PORTAL_ACCESS_TOKEN_TTL")
	envDuration(&cfg.RefreshTokenTTL, "PORTAL_REFRESH_TOKEN_TTL")
	envDuration(&cfg.OneTimeCodeTTL, "PORTAL_ONE_TIME_CODE_TTL")
	envDuration(&cfg.SweepInterval, "PORTAL_SWEEP_INTERVAL")
	envString(&cfg.LogFormat, "PORTAL_LOG_FORMAT")
	envInt(&cfg.BcryptCost, "PORTAL_BCRYPT_COST")
	envString(&cfg.SMTPHost, "PORTAL_SMTP_HOST")
	envInt(&cfg.SMTPPort, "PORTAL_SMTP_PORT")
	envString(&cfg.SMTPUsername, "PORTAL_SMTP_USERNAME")
	envString(&cfg.SMTPPassword, "PORTAL_SMTP_PASSWORD")
	envString(&cfg.SMTPFrom, "PORTAL_SMTP_FROM")
}

func envString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func envInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envDuration(dst *time.Duration, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
