package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Defaults mirror the tables the pipeline ships with. Both are plain data
// so deployments can swap them via config without touching code.
var (
	// Kept as map[string]interface{} so viper can hand it back through
	// GetStringMap.
	defaultRates = map[string]interface{}{
		"USD": 1.0,
		"EUR": 1.08,
		"GBP": 1.27,
		"INR": 0.012,
		"CAD": 0.74,
		"AUD": 0.65,
		"JPY": 0.0067,
		"MXN": 0.058,
	}

	// FATF high-risk / monitored jurisdictions (simplified).
	defaultHighRisk = []string{"MM", "IQ", "IR", "KP", "SY", "YE", "AF", "LY", "SO"}
)

// Config holds the runtime configuration for a pipeline run.
type Config struct {
	DBPath            string
	ReportDir         string
	ReferenceCurrency string
	BatchSize         int
	ExchangeRates     map[string]float64
	HighRiskCountries []string
}

// Build loads configuration from defaults, an optional YAML config file and
// command-line flags, in increasing order of precedence. An explicitly
// named config file must exist; the implicit ./config.yaml is optional.
func Build(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	v.SetDefault("db", "data/transactions.db")
	v.SetDefault("report-dir", ".")
	v.SetDefault("reference-currency", "USD")
	v.SetDefault("batch-size", 100)
	v.SetDefault("exchange-rates", defaultRates)
	v.SetDefault("high-risk-countries", defaultHighRisk)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("failed to bind flags: %w", err)
		}
	}

	cfg := &Config{
		DBPath:            v.GetString("db"),
		ReportDir:         v.GetString("report-dir"),
		ReferenceCurrency: v.GetString("reference-currency"),
		BatchSize:         v.GetInt("batch-size"),
		ExchangeRates:     stringToFloat64Map(v.GetStringMap("exchange-rates")),
		HighRiskCountries: v.GetStringSlice("high-risk-countries"),
	}

	if ratesPath := v.GetString("rates-file"); ratesPath != "" {
		if err := cfg.loadRatesFile(ratesPath); err != nil {
			return nil, err
		}
	}

	if cfg.BatchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got %d", cfg.BatchSize)
	}
	return cfg, nil
}

// ratesFile is the shape of an external rate-table YAML file.
type ratesFile struct {
	Reference         string             `yaml:"reference"`
	Rates             map[string]float64 `yaml:"rates"`
	HighRiskCountries []string           `yaml:"high_risk_countries"`
}

// loadRatesFile replaces the rate table (and optionally the reference
// currency and high-risk set) with the contents of a YAML file.
func (c *Config) loadRatesFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read rates file: %w", err)
	}

	var rf ratesFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return fmt.Errorf("failed to parse rates file: %w", err)
	}
	if len(rf.Rates) == 0 {
		return fmt.Errorf("rates file %s has no rates", path)
	}

	c.ExchangeRates = rf.Rates
	if rf.Reference != "" {
		c.ReferenceCurrency = rf.Reference
	}
	if len(rf.HighRiskCountries) > 0 {
		c.HighRiskCountries = rf.HighRiskCountries
	}
	return nil
}

// Rates returns the exchange-rate table as decimals, ready for the
// converter. Currency codes are upper-cased here because viper lower-cases
// map keys it loads.
func (c *Config) Rates() map[string]decimal.Decimal {
	rates := make(map[string]decimal.Decimal, len(c.ExchangeRates))
	for currency, rate := range c.ExchangeRates {
		rates[strings.ToUpper(currency)] = decimal.NewFromFloat(rate)
	}
	return rates
}

func stringToFloat64Map(m map[string]interface{}) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, val := range m {
		switch n := val.(type) {
		case float64:
			out[k] = n
		case int:
			out[k] = float64(n)
		}
	}
	return out
}
