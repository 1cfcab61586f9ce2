package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	internalconfig "github.com/almready/irrbb/internal/config"
	"github.com/almready/irrbb/margin"
	"github.com/almready/irrbb/orchestrator"
	"github.com/almready/irrbb/shock"
	"github.com/almready/irrbb/whatif"
)

var (
	whatifSpecPath    string
	whatifCurvePath   string
	whatifEnvPath     string
	whatifYAMLPath    string
	whatifOutPath     string
)

var whatifCmd = &cobra.Command{
	Use:   "whatif",
	Short: "Decompose a hypothetical loan and report its marginal EVE/NII impact",
	RunE:  runWhatIf,
}

func init() {
	rootCmd.AddCommand(whatifCmd)

	whatifCmd.Flags().StringVar(&whatifSpecPath, "spec", "", "path to a LoanSpec JSON file (required)")
	whatifCmd.Flags().StringVar(&whatifCurvePath, "curves", "", "path to a canonical forward curve set JSON file (required)")
	whatifCmd.Flags().StringVar(&whatifEnvPath, "env", "", "optional .env file for IRRBB_* overrides")
	whatifCmd.Flags().StringVar(&whatifYAMLPath, "config", "", "optional YAML defaults file")
	whatifCmd.Flags().StringVar(&whatifOutPath, "out", "", "write the JSON result here instead of stdout")

	whatifCmd.MarkFlagRequired("spec")
	whatifCmd.MarkFlagRequired("curves")
}

type loanSpecFile struct {
	Notional        float64  `json:"notional"`
	TermYears       float64  `json:"term_years"`
	Side            string   `json:"side"`
	RateType        string   `json:"rate_type"`
	FixedRate       float64  `json:"fixed_rate"`
	VariableIndex   string   `json:"variable_index"`
	SpreadBps       float64  `json:"spread_bps"`
	MixedFixedYears *float64 `json:"mixed_fixed_years"`
	Amortization    string   `json:"amortization"`
	GraceYears      float64  `json:"grace_years"`
	Daycount        string   `json:"daycount"`
	PaymentFreq     string   `json:"payment_freq"`
	RepricingFreq   string   `json:"repricing_freq"`
	StartDate       string   `json:"start_date"`
}

func loadLoanSpec(path string, analysisDate time.Time) (whatif.LoanSpec, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return whatif.LoanSpec{}, fmt.Errorf("cmd: reading loan spec %s: %w", path, err)
	}
	var f loanSpecFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return whatif.LoanSpec{}, fmt.Errorf("cmd: parsing loan spec %s: %w", path, err)
	}

	spec := whatif.LoanSpec{
		Notional:        f.Notional,
		TermYears:       f.TermYears,
		RateType:        whatif.RateKind(f.RateType),
		FixedRate:       f.FixedRate,
		VariableIndex:   f.VariableIndex,
		SpreadBps:       f.SpreadBps,
		MixedFixedYears: f.MixedFixedYears,
		Amortization:    whatif.Amortization(f.Amortization),
		GraceYears:      f.GraceYears,
		Daycount:        f.Daycount,
		PaymentFreq:     f.PaymentFreq,
		RepricingFreq:   f.RepricingFreq,
		AnalysisDate:    analysisDate,
	}
	switch f.Side {
	case "A":
		spec.Side = 'A'
	case "L":
		spec.Side = 'L'
	}
	if f.StartDate != "" {
		if spec.StartDate, err = parseDate(f.StartDate); err != nil {
			return spec, fmt.Errorf("cmd: loan spec start_date: %w", err)
		}
	}
	return spec, nil
}

func runWhatIf(c *cobra.Command, args []string) error {
	cfg, err := internalconfig.Load(whatifEnvPath, whatifYAMLPath)
	if err != nil {
		return err
	}
	curveSet, err := loadCurveSet(whatifCurvePath)
	if err != nil {
		return err
	}
	spec, err := loadLoanSpec(whatifSpecPath, curveSet.AnalysisDate)
	if err != nil {
		return err
	}

	additions, err := whatif.DecomposeLoan(spec)
	if err != nil {
		return err
	}

	params, err := shock.ParametersForCurrency(cfg.Currency)
	if err != nil {
		return err
	}
	scenarioIDs, err := shock.BuildScenarioSet("eve", false)
	if err != nil {
		return err
	}
	marginSet, err := margin.Calibrate(nil, curveSet, cfg.RiskFreeIndex, curveSet.AnalysisDate, cfg.MarginLookbackMonths)
	if err != nil {
		return err
	}

	orchCfg := orchestrator.Config{
		RiskFreeIndex:   cfg.RiskFreeIndex,
		DiscountIndex:   cfg.DiscountIndex,
		HorizonMonths:   cfg.HorizonMonths,
		BalanceConstant: cfg.BalanceConstant,
		ShockParameters: params,
		FloorParameters: shock.DefaultFloorParameters,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	result, err := orchestrator.RunWhatIf(ctx, nil, curveSet, scenarioIDs, marginSet, orchCfg, curveSet.AnalysisDate, additions, nil)
	if err != nil {
		return err
	}

	return writeJSON(whatifOutPath, result)
}
