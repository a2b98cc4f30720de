package config

import (
	"fmt"
	"time"

	"github.com/Veraticus/tally/internal/common"
	"github.com/spf13/viper"
)

// Viper keys.
const (
	KeyMerchants    = "rules.merchants"
	KeyLegacyCSV    = "rules.legacy_csv"
	KeyRegexTimeout = "rules.regex_timeout"
	KeyDatabasePath = "database.path"
	KeyWorkers      = "categorize.workers"
	KeyLogLevel     = "logging.level"
	KeyLogFormat    = "logging.format"
)

// Defaults.
const (
	DefaultDatabasePath = "~/.local/share/tally/tally.db"
	DefaultWorkers      = 4
	maxWorkers          = 64
)

// Config holds resolved settings. Paths are already expanded.
type Config struct {
	MerchantsPath string
	LegacyCSVPath string
	DatabasePath  string
	LogLevel      string
	LogFormat     string
	RegexTimeout  time.Duration
	Workers       int
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyRegexTimeout, common.DefaultRegexTimeout)
	v.SetDefault(KeyDatabasePath, DefaultDatabasePath)
	v.SetDefault(KeyWorkers, DefaultWorkers)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
}

// Load reads settings from the global viper instance.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom reads and validates settings from v.
func LoadFrom(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	cfg := &Config{
		MerchantsPath: ExpandPath(v.GetString(KeyMerchants)),
		LegacyCSVPath: ExpandPath(v.GetString(KeyLegacyCSV)),
		DatabasePath:  ExpandPath(v.GetString(KeyDatabasePath)),
		LogLevel:      v.GetString(KeyLogLevel),
		LogFormat:     v.GetString(KeyLogFormat),
		RegexTimeout:  v.GetDuration(KeyRegexTimeout),
		Workers:       v.GetInt(KeyWorkers),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that settings are usable.
func (c *Config) Validate() error {
	if c.RegexTimeout < 0 {
		return fmt.Errorf("%w: %s must not be negative", common.ErrInvalidConfig, KeyRegexTimeout)
	}
	if c.Workers < 1 || c.Workers > maxWorkers {
		return fmt.Errorf("%w: %s must be between 1 and %d, got %d",
			common.ErrInvalidConfig, KeyWorkers, maxWorkers, c.Workers)
	}
	if _, err := common.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// RuleFiles returns the configured rule files, native format first.
func (c *Config) RuleFiles() (merchants, legacyCSV string, err error) {
	if c.MerchantsPath == "" && c.LegacyCSVPath == "" {
		return "", "", fmt.Errorf("%w: set %s or %s", common.ErrMissingConfig, KeyMerchants, KeyLegacyCSV)
	}
	return c.MerchantsPath, c.LegacyCSVPath, nil
}
