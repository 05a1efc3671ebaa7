package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
)

func TestDefaults(t *testing.T) {
	cfg, err := Build("", nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if cfg.ReferenceCurrency != "USD" {
		t.Errorf("expected USD reference, got %s", cfg.ReferenceCurrency)
	}
	if cfg.BatchSize != 100 {
		t.Errorf("expected batch size 100, got %d", cfg.BatchSize)
	}
	if len(cfg.HighRiskCountries) != 9 {
		t.Errorf("expected 9 default high-risk countries, got %d", len(cfg.HighRiskCountries))
	}

	rates := cfg.Rates()
	if rate, ok := rates["EUR"]; !ok || !rate.Equal(decimal.NewFromFloat(1.08)) {
		t.Errorf("expected default EUR rate 1.08, got %v (ok=%t)", rate, ok)
	}
}

func TestConfigFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `db: /tmp/custom.db
reference-currency: EUR
batch-size: 25
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Build(path, nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if cfg.DBPath != "/tmp/custom.db" {
		t.Errorf("expected overridden db path, got %s", cfg.DBPath)
	}
	if cfg.ReferenceCurrency != "EUR" {
		t.Errorf("expected EUR reference, got %s", cfg.ReferenceCurrency)
	}
	if cfg.BatchSize != 25 {
		t.Errorf("expected batch size 25, got %d", cfg.BatchSize)
	}
}

func TestMissingExplicitConfigFileIsError(t *testing.T) {
	if _, err := Build(filepath.Join(t.TempDir(), "absent.yaml"), nil); err == nil {
		t.Error("expected an error for a missing explicit config file")
	}
}

func TestRatesFile(t *testing.T) {
	dir := t.TempDir()
	ratesPath := filepath.Join(dir, "rates.yaml")
	ratesContent := `reference: GBP
rates:
  EUR: 0.85
  USD: 0.79
high_risk_countries: [KP, IR]
`
	if err := os.WriteFile(ratesPath, []byte(ratesContent), 0644); err != nil {
		t.Fatalf("failed to write rates file: %v", err)
	}

	cfgPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("rates-file: "+ratesPath+"\n"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Build(cfgPath, nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if cfg.ReferenceCurrency != "GBP" {
		t.Errorf("expected GBP reference from rates file, got %s", cfg.ReferenceCurrency)
	}
	if len(cfg.HighRiskCountries) != 2 {
		t.Errorf("expected rates file to replace the high-risk set, got %v", cfg.HighRiskCountries)
	}
	rates := cfg.Rates()
	if rate, ok := rates["EUR"]; !ok || !rate.Equal(decimal.NewFromFloat(0.85)) {
		t.Errorf("expected EUR rate 0.85, got %v", rate)
	}
	if _, ok := rates["JPY"]; ok {
		t.Error("default rates must be replaced, not merged")
	}
}

func TestInvalidBatchSizeRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("batch-size: 0\n"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	if _, err := Build(path, nil); err == nil {
		t.Error("expected an error for non-positive batch size")
	}
}

func TestRatesUppercasesCurrencyCodes(t *testing.T) {
	cfg := &Config{ExchangeRates: map[string]float64{"eur": 1.08}}
	if _, ok := cfg.Rates()["EUR"]; !ok {
		t.Error("expected lower-cased keys to be normalized")
	}
}
