package extension

import "time"

// Config holds the Stipend extension configuration.
// Fields can be set programmatically via Option functions or loaded from
// YAML configuration files (under "extensions.stipend" or "stipend" keys).
type Config struct {
	// DisableMigrate prevents auto-migration on start.
	DisableMigrate bool `json:"disable_migrate" mapstructure:"disable_migrate" yaml:"disable_migrate"`

	// PoolAccount is the settlement account the reward pool transfers
	// against (default: "reward-pool").
	PoolAccount string `json:"pool_account" mapstructure:"pool_account" yaml:"pool_account"`

	// ReportRetention is how long accepted telemetry reports are kept
	// before the background purge removes them. Zero keeps reports forever.
	ReportRetention time.Duration `json:"report_retention" mapstructure:"report_retention" yaml:"report_retention"`

	// PurgeInterval is how frequently the report purge worker runs
	// (default: 1h). Ignored when ReportRetention is zero.
	PurgeInterval time.Duration `json:"purge_interval" mapstructure:"purge_interval" yaml:"purge_interval"`

	// RequireConfig requires config to be present in YAML files.
	// If true and no config is found, Register returns an error.
	RequireConfig bool `json:"-" yaml:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		PoolAccount:   "reward-pool",
		PurgeInterval: time.Hour,
	}
}
