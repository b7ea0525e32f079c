package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/books/internal/logging"
	"github.com/cleared-dev/books/internal/reconcile"
)

// FileName is the config file created by init.
const FileName = "books.yaml"

// Environment overrides applied by ApplyEnv.
const (
	EnvDBPath    = "BOOKS_DB_PATH"
	EnvLogLevel  = "BOOKS_LOG_LEVEL"
	EnvLogFormat = "BOOKS_LOG_FORMAT"
	EnvActor     = "BOOKS_ACTOR"
)

// Config represents the top-level books.yaml configuration.
type Config struct {
	Business       BusinessConfig       `yaml:"business"`
	Database       DatabaseConfig       `yaml:"database"`
	BankAccounts   []BankAccount        `yaml:"bank_accounts,omitempty"`
	Reconciliation ReconciliationConfig `yaml:"reconciliation"`
	Logging        LoggingConfig        `yaml:"logging"`
}

// BusinessConfig identifies the business entity.
type BusinessConfig struct {
	Name       string `yaml:"name"`
	EntityType string `yaml:"entity_type"`
	Currency   string `yaml:"currency"` // ISO 4217, display only
}

// DatabaseConfig locates the sqlite database.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// BankAccount gives a short name to a ledger account that receives statements.
type BankAccount struct {
	Name      string `yaml:"name"`
	LastFour  string `yaml:"last_four,omitempty"`
	AccountID string `yaml:"account_id"`
}

// ReconciliationConfig holds the matcher windows.
type ReconciliationConfig struct {
	ExactAmount float64 `yaml:"exact_amount"`
	ExactDays   int     `yaml:"exact_days"`
	FuzzyAmount float64 `yaml:"fuzzy_amount"`
	FuzzyDays   int     `yaml:"fuzzy_days"`
	Selection   string  `yaml:"selection"` // "closest" or "first"
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" or "json"
}

// Load reads a books.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default("", "")
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default(businessName, entityType string) *Config {
	return &Config{
		Business: BusinessConfig{
			Name:       businessName,
			EntityType: entityType,
			Currency:   money.USD,
		},
		Database: DatabaseConfig{
			Path: "books.db",
		},
		Reconciliation: ReconciliationConfig{
			ExactAmount: 1,
			ExactDays:   3,
			FuzzyAmount: 10,
			FuzzyDays:   7,
			Selection:   string(reconcile.SelectClosest),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set. A missing file is not
// an error.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides file values with BOOKS_* environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvDBPath); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		c.Logging.Format = v
	}
}

// Actor names who is making changes, for the audit log: BOOKS_ACTOR, then
// USER, then "books".
func Actor() string {
	for _, k := range []string{EnvActor, "USER"} {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return "books"
}

// Validate checks the values that have no safe fallback.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database.path is required")
	}
	if money.GetCurrency(c.Business.Currency) == nil {
		return fmt.Errorf("business.currency: unknown currency %q", c.Business.Currency)
	}
	if err := c.MatcherConfig().Validate(); err != nil {
		return fmt.Errorf("reconciliation: %w", err)
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging.format: unknown format %q", c.Logging.Format)
	}
	for _, b := range c.BankAccounts {
		if b.Name == "" || b.AccountID == "" {
			return errors.New("bank_accounts: name and account_id are required")
		}
	}
	return nil
}

// MatcherConfig converts the reconciliation section for the matcher.
func (c *Config) MatcherConfig() reconcile.Config {
	r := c.Reconciliation
	return reconcile.Config{
		ExactAmount: decimal.NewFromFloat(r.ExactAmount),
		ExactDays:   r.ExactDays,
		FuzzyAmount: decimal.NewFromFloat(r.FuzzyAmount),
		FuzzyDays:   r.FuzzyDays,
		Selection:   reconcile.Selection(strings.ToLower(r.Selection)),
	}
}

// LoggerConfig converts the logging section for logging.New.
func (c *Config) LoggerConfig() *logging.Config {
	lc := logging.DefaultConfig()
	lc.Level = c.Logging.Level
	lc.Format = c.Logging.Format
	return lc
}

// ResolveAccount maps a bank account name to its ledger account ID.
// Anything else is returned unchanged.
func (c *Config) ResolveAccount(nameOrID string) string {
	for _, b := range c.BankAccounts {
		if strings.EqualFold(b.Name, nameOrID) {
			return b.AccountID
		}
	}
	return nameOrID
}
