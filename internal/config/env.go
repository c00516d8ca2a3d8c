package config

import (
	"os"

	"github.com/tonimelisma/datalake-api/internal/driveid"
)

// Environment variable names for overrides.
const (
	EnvConfig       = "DATALAKE_CONFIG"
	EnvTenantID     = "DATALAKE_TENANT_ID"
	EnvClientID     = "DATALAKE_CLIENT_ID"
	EnvClientSecret = "DATALAKE_CLIENT_SECRET"
	EnvDriveID      = "DATALAKE_DRIVE_ID"
	EnvPathPrefix   = "DATALAKE_PATH_PREFIX"
	EnvListen       = "DATALAKE_LISTEN"
)

// EnvOverrides holds values derived from environment variables.
// Empty strings mean "not set".
type EnvOverrides struct {
	ConfigPath   string // DATALAKE_CONFIG: override config file path
	TenantID     string // DATALAKE_TENANT_ID
	ClientID     string // DATALAKE_CLIENT_ID
	ClientSecret string // DATALAKE_CLIENT_SECRET
	DriveID      string // DATALAKE_DRIVE_ID
	PathPrefix   string // DATALAKE_PATH_PREFIX
	Listen       string // DATALAKE_LISTEN
}

// ReadEnvOverrides reads environment variables and returns any overrides found.
// This does not modify the Config; Resolve applies the relevant fields.
func ReadEnvOverrides() EnvOverrides {
	return EnvOverrides{
		ConfigPath:   os.Getenv(EnvConfig),
		TenantID:     os.Getenv(EnvTenantID),
		ClientID:     os.Getenv(EnvClientID),
		ClientSecret: os.Getenv(EnvClientSecret),
		DriveID:      os.Getenv(EnvDriveID),
		PathPrefix:   os.Getenv(EnvPathPrefix),
		Listen:       os.Getenv(EnvListen),
	}
}

// apply copies every non-empty override onto cfg.
func (e EnvOverrides) apply(cfg *Config) {
	setIf(&cfg.Auth.TenantID, e.TenantID)
	setIf(&cfg.Auth.ClientID, e.ClientID)
	setIf(&cfg.Auth.ClientSecret, e.ClientSecret)
	setIf(&cfg.Drive.PathPrefix, e.PathPrefix)
	setIf(&cfg.Server.Listen, e.Listen)

	if e.DriveID != "" {
		cfg.Drive.DriveID = driveid.New(e.DriveID)
	}
}

func setIf(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
