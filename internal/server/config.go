package server

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Config represents the complete service configuration.
type Config struct {
	Server     ServerSettings      `hcl:"server,block"`
	Catalog    *CatalogSettings    `hcl:"catalog,block"`
	Ledger     *LedgerSettings     `hcl:"ledger,block"`
	Oracle     *OracleSettings     `hcl:"oracle,block"`
	Adaptation *AdaptationSettings `hcl:"adaptation,block"`
}

// ServerSettings contains listener and logging configuration.
type ServerSettings struct {
	Address  string `hcl:"address,optional"`
	Port     int    `hcl:"port,optional"`
	LogLevel string `hcl:"log_level,optional"`
	LogFile  string `hcl:"log_file,optional"`

	// RetainCompleted is how long a finished match stays in the registry.
	RetainCompleted string `hcl:"retain_completed,optional"`
}

// CatalogSettings selects the card source. DSN wins over Path.
type CatalogSettings struct {
	Path      string `hcl:"path,optional"`
	DSN       string `hcl:"dsn,optional"`
	CacheSize int    `hcl:"cache_size,optional"`
}

// LedgerSettings selects the round history store. DSN wins over Path.
type LedgerSettings struct {
	Path      string `hcl:"path,optional"`
	DSN       string `hcl:"dsn,optional"`
	LegacyCSV string `hcl:"legacy_csv,optional"`
}

// OracleSettings configures the optional prediction service. An empty URL
// disables it.
type OracleSettings struct {
	URL           string  `hcl:"url,optional"`
	TimeoutMS     int     `hcl:"timeout_ms,optional"`
	RatePerSecond float64 `hcl:"rate_per_second,optional"`
	Burst         int     `hcl:"burst,optional"`
}

// AdaptationSettings controls when the strategy table is recomputed.
type AdaptationSettings struct {
	Interval     string `hcl:"interval,optional"`
	OnMatchStart *bool  `hcl:"on_match_start,optional"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// LoadConfig loads configuration from an HCL file. A missing file yields
// the defaults.
func LoadConfig(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	config.applyDefaults()
	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Address == "" {
		c.Server.Address = "localhost"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
	if c.Server.RetainCompleted == "" {
		c.Server.RetainCompleted = DefaultRetainCompleted.String()
	}

	if c.Catalog == nil {
		c.Catalog = &CatalogSettings{}
	}
	if c.Catalog.CacheSize == 0 {
		c.Catalog.CacheSize = 128
	}

	if c.Ledger == nil {
		c.Ledger = &LedgerSettings{}
	}
	if c.Ledger.Path == "" && c.Ledger.DSN == "" {
		c.Ledger.Path = "history.jsonl"
	}

	if c.Oracle == nil {
		c.Oracle = &OracleSettings{}
	}
	if c.Oracle.TimeoutMS == 0 {
		c.Oracle.TimeoutMS = 250
	}
	if c.Oracle.RatePerSecond == 0 {
		c.Oracle.RatePerSecond = 20
	}
	if c.Oracle.Burst == 0 {
		c.Oracle.Burst = 5
	}

	if c.Adaptation == nil {
		c.Adaptation = &AdaptationSettings{}
	}
	if c.Adaptation.Interval == "" {
		c.Adaptation.Interval = "10m"
	}
	if c.Adaptation.OnMatchStart == nil {
		on := true
		c.Adaptation.OnMatchStart = &on
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}

	switch c.Server.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Server.LogLevel)
	}

	retain, err := time.ParseDuration(c.Server.RetainCompleted)
	if err != nil {
		return fmt.Errorf("server: invalid retain_completed %q: %w", c.Server.RetainCompleted, err)
	}
	if retain <= 0 {
		return fmt.Errorf("server: retain_completed must be positive")
	}

	if c.Catalog.CacheSize < 0 {
		return fmt.Errorf("catalog: cache size must not be negative")
	}

	if c.Oracle.TimeoutMS < 0 {
		return fmt.Errorf("oracle: timeout must not be negative")
	}
	if c.Oracle.RatePerSecond < 0 || c.Oracle.Burst < 0 {
		return fmt.Errorf("oracle: rate and burst must not be negative")
	}

	d, err := time.ParseDuration(c.Adaptation.Interval)
	if err != nil {
		return fmt.Errorf("adaptation: invalid interval %q: %w", c.Adaptation.Interval, err)
	}
	if d < 0 {
		return fmt.Errorf("adaptation: interval must not be negative")
	}

	return nil
}

// Address returns the full listen address.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// OracleTimeout returns the oracle timeout as a duration.
func (c *Config) OracleTimeout() time.Duration {
	return time.Duration(c.Oracle.TimeoutMS) * time.Millisecond
}

// AdaptationInterval returns the scheduled adaptation period; zero disables it.
func (c *Config) AdaptationInterval() time.Duration {
	d, _ := time.ParseDuration(c.Adaptation.Interval)
	return d
}

// RetainCompleted returns how long completed matches stay readable.
func (c *Config) RetainCompleted() time.Duration {
	d, _ := time.ParseDuration(c.Server.RetainCompleted)
	return d
}

// AdaptOnMatchStart reports whether starting a match triggers adaptation.
func (c *Config) AdaptOnMatchStart() bool {
	return c.Adaptation.OnMatchStart != nil && *c.Adaptation.OnMatchStart
}
