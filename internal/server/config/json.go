package config

import (
	"encoding/json"
	"os"

	"github.com/tatame/backend/internal/flagx"
	"github.com/tatame/backend/internal/timex"
)

// JsonConfig is an intermediate DTO for reading JSON configuration files.
// It uses timex.Duration for lifetime fields, which parses both string
// values such as "15m" and integer nanoseconds. After unmarshalling, its
// fields are copied into the runtime Config.
type JsonConfig struct {
	EndpointAddrHTTP                string         `json:"endpoint_addr_http"`
	DatabaseDSN                     string         `json:"database_dsn"`
	SecretKey                       string         `json:"secret_key"`
	AccessTokenValidityDuration     timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration    timex.Duration `json:"refresh_token_validity_duration"`
	ActivationTokenValidityDuration timex.Duration `json:"activation_token_validity_duration"`
	RecoveryCodeValidityDuration    timex.Duration `json:"recovery_code_validity_duration"`
}

// parseJson loads configuration values from the JSON file named by the
// -c/-config flags into the provided Config. When no file is given, nothing
// is loaded. Unreadable or invalid files panic: a half-applied config is
// worse than no start.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(data, c); err != nil {
		panic(err)
	}

	if c.EndpointAddrHTTP != "" {
		config.EndpointAddrHTTP = c.EndpointAddrHTTP
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.AccessTokenValidityDuration.Duration != 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.RefreshTokenValidityDuration.Duration != 0 {
		config.RefreshTokenValidityDuration = c.RefreshTokenValidityDuration.Duration
	}
	if c.ActivationTokenValidityDuration.Duration != 0 {
		config.ActivationTokenValidityDuration = c.ActivationTokenValidityDuration.Duration
	}
	if c.RecoveryCodeValidityDuration.Duration != 0 {
		config.RecoveryCodeValidityDuration = c.RecoveryCodeValidityDuration.Duration
	}
}
