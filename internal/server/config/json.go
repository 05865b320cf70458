package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/trainerhub/portal/internal/flagx"
)

// jsonConfig mirrors Config with optional fields; durations are given as
// strings understood by time.ParseDuration ("15m", "168h").
type jsonConfig struct {
	HTTPAddr        *string `json:"http_addr"`
	DatabaseDSN     *string `json:"database_dsn"`
	SecretKey       *string `json:"secret_key"`
	AccessTokenTTL  *string `json:"access_token_ttl"`
	RefreshTokenTTL *string `json:"refresh_token_ttl"`
	OneTimeCodeTTL  *string `json:"one_time_code_ttl"`
	SweepInterval   *string `json:"sweep_interval"`
	LogFormat       *string `json:"log_format"`
	BcryptCost      *int    `json:"bcrypt_cost"`
	SMTPHost        *string `json:"smtp_host"`
	SMTPPort        *int    `json:"smtp_port"`
	SMTPUsername    *string `json:"smtp_username"`
	SMTPPassword    *string `json:"smtp_password"`
	SMTPFrom        *string `json:"smtp_from"`
}

// parseJSON overlays values from the file named by -c/-config, when given.
// A missing or unreadable file is ignored; flags and env still apply.
func parseJSON(cfg *Config) {
	path := flagx.JSONConfigFlag()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return
	}

	var jc jsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return
	}

	setString(&cfg.HTTPAddr, jc.HTTPAddr)
	setString(&cfg.DatabaseDSN, jc.DatabaseDSN)
	setString(&cfg.SecretKey, jc.SecretKey)
	setDuration(&cfg.AccessTokenTTL, jc.AccessTokenTTL)
	setDuration(&cfg.RefreshTokenTTL, jc.RefreshTokenTTL)
	setDuration(&cfg.OneTimeCodeTTL, jc.OneTimeCodeTTL)
	setDuration(&cfg.SweepInterval, jc.SweepInterval)
	setString(&cfg.LogFormat, jc.LogFormat)
	setInt(&cfg.BcryptCost, jc.BcryptCost)
	setString(&cfg.SMTPHost, jc.SMTPHost)
	setInt(&cfg.SMTPPort, jc.SMTPPort)
	setString(&cfg.SMTPUsername, jc.SMTPUsername)
	setString(&cfg.SMTPPassword, jc.SMTPPassword)
	setString(&cfg.SMTPFrom, jc.SMTPFrom)
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

func setDuration(dst *time.Duration, src *string) {
	if src == nil {
		return
	}
	if d, err := time.ParseDuration(*src); err == nil {
		*dst = d
	}
}
