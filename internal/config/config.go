// Package config loads ProjectionConfig from, in priority order: an
// explicit struct literal passed by a library caller, environment
// variables (loaded from a .env file first), a YAML defaults file, and
// finally hard defaults baked into this package.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/almready/irrbb/canonical"
)

// ProjectionConfig holds the ambient knobs a projection run needs.
type ProjectionConfig struct {
	HorizonMonths                      int                        `yaml:"horizon_months"`
	BalanceConstant                    bool                       `yaml:"balance_constant"`
	DiscountIndex                      string                     `yaml:"discount_index"`
	RiskFreeIndex                      string                     `yaml:"risk_free_index"`
	Currency                           string                     `yaml:"currency"`
	VariableAnnuityPaymentMode         canonical.AnnuityPaymentMode `yaml:"variable_annuity_payment_mode"`
	CPRAnnual                          float64                    `yaml:"cpr_annual"`
	TDRRAnnual                         float64                    `yaml:"tdrr_annual"`
	NMDParams                          *canonical.NMDParameters   `yaml:"nmd_params"`
	MarginLookbackMonths               int                        `yaml:"margin_lookback_months"`
	OpenEndedBucketRepresentativeYears float64                    `yaml:"open_ended_bucket_representative_years"`
	LogDir                             string                     `yaml:"log_dir"`
	OriginationsDBPath                 string                     `yaml:"originations_db_path"`
}

// Defaults returns the hard-coded fallback configuration: 10y open-ended
// bucket representative, 12-month margin lookback.
func Defaults() ProjectionConfig {
	return ProjectionConfig{
		HorizonMonths:                      12,
		BalanceConstant:                    true,
		DiscountIndex:                      "OIS",
		RiskFreeIndex:                      "OIS",
		Currency:                           "EUR",
		VariableAnnuityPaymentMode:         canonical.RepriceOnReset,
		MarginLookbackMonths:               12,
		OpenEndedBucketRepresentativeYears: 10,
		LogDir:                             "./logs",
		OriginationsDBPath:                 "./irrbb_originations.db",
	}
}

// Load resolves ProjectionConfig via an env-then-YAML two-tier lookup:
//  1. envPath (if non-empty) is loaded via godotenv so IRRBB_* variables
//     are available through os.Getenv.
//  2. yamlPath (if non-empty and present on disk) is unmarshalled over the
//     hard defaults.
//  3. Any IRRBB_* environment variable present overrides the
//     corresponding field, taking priority over the YAML file.
func Load(envPath, yamlPath string) (ProjectionConfig, error) {
	cfg := Defaults()

	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
			return cfg, fmt.Errorf("config: loading env file %s: %w", envPath, err)
		}
	}

	if yamlPath != "" {
		if data, err := os.ReadFile(yamlPath); err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("config: parsing yaml defaults %s: %w", yamlPath, err)
			}
		} else if !os.IsNotExist(err) {
			return cfg, fmt.Errorf("config: reading yaml defaults %s: %w", yamlPath, err)
		}
	}

	applyEnvOverrides(&cfg)

	return cfg, nil
}

func applyEnvOverrides(cfg *ProjectionConfig) {
	if v := os.Getenv("IRRBB_HORIZON_MONTHS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.HorizonMonths = n
		}
	}
	if v := os.Getenv("IRRBB_BALANCE_CONSTANT"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.BalanceConstant = b
		}
	}
	if v := os.Getenv("IRRBB_DISCOUNT_INDEX"); v != "" {
		cfg.DiscountIndex = v
	}
	if v := os.Getenv("IRRBB_RISK_FREE_INDEX"); v != "" {
		cfg.RiskFreeIndex = v
	}
	if v := os.Getenv("IRRBB_CURRENCY"); v != "" {
		cfg.Currency = v
	}
	if v := os.Getenv("IRRBB_VARIABLE_ANNUITY_PAYMENT_MODE"); v != "" {
		if mode, ok := parseAnnuityPaymentMode(v); ok {
			cfg.VariableAnnuityPaymentMode = mode
		}
	}
	if v := os.Getenv("IRRBB_CPR_ANNUAL"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.CPRAnnual = f
		}
	}
	if v := os.Getenv("IRRBB_TDRR_ANNUAL"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.TDRRAnnual = f
		}
	}
	if v := os.Getenv("IRRBB_MARGIN_LOOKBACK_MONTHS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MarginLookbackMonths = n
		}
	}
	if v := os.Getenv("IRRBB_OPEN_ENDED_BUCKET_REPRESENTATIVE_YEARS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.OpenEndedBucketRepresentativeYears = f
		}
	}
	if v := os.Getenv("IRRBB_LOG_DIR"); v != "" {
		cfg.LogDir = v
	}
	if v := os.Getenv("IRRBB_ORIGINATIONS_DB_PATH"); v != "" {
		cfg.OriginationsDBPath = v
	}
}

func parseAnnuityPaymentMode(s string) (canonical.AnnuityPaymentMode, bool) {
	switch s {
	case "reprice_on_reset":
		return canonical.RepriceOnReset, true
	case "fixed_payment":
		return canonical.FixedPayment, true
	default:
		return 0, false
	}
}
