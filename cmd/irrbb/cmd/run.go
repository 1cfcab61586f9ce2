package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/almready/irrbb/canonical"
	internalconfig "github.com/almready/irrbb/internal/config"
	"github.com/almready/irrbb/internal/logger"
	"github.com/almready/irrbb/internal/originations"
	"github.com/almready/irrbb/margin"
	"github.com/almready/irrbb/orchestrator"
	"github.com/almready/irrbb/shock"
)

var (
	runContractsPath string
	runFlowsPath     string
	runCurvePath     string
	runEnvPath       string
	runYAMLPath      string
	runOutPath       string
	runWorkers       int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full regulatory scenario sweep over a position book",
	RunE:  runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runContractsPath, "contracts", "", "path to a canonical contracts JSON file (required)")
	runCmd.Flags().StringVar(&runFlowsPath, "flows", "", "path to a canonical scheduled-flows JSON file (optional)")
	runCmd.Flags().StringVar(&runCurvePath, "curves", "", "path to a canonical forward curve set JSON file (required)")
	runCmd.Flags().StringVar(&runEnvPath, "env", "", "optional .env file for IRRBB_* overrides")
	runCmd.Flags().StringVar(&runYAMLPath, "config", "", "optional YAML defaults file")
	runCmd.Flags().StringVar(&runOutPath, "out", "", "write the JSON result here instead of stdout")
	runCmd.Flags().IntVar(&runWorkers, "workers", 0, "bound on concurrent scenario workers (0 = unbounded)")

	runCmd.MarkFlagRequired("contracts")
	runCmd.MarkFlagRequired("curves")
}

func runRun(c *cobra.Command, args []string) error {
	cfg, err := internalconfig.Load(runEnvPath, runYAMLPath)
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.LogDir)
	if err != nil {
		return err
	}
	log.Info("run command invoked", "contracts", runContractsPath, "curves", runCurvePath)

	contracts, err := loadContracts(runContractsPath)
	if err != nil {
		return err
	}
	flows, err := loadFlows(runFlowsPath)
	if err != nil {
		return err
	}
	curveSet, err := loadCurveSet(runCurvePath)
	if err != nil {
		return err
	}

	store, err := originations.Open(cfg.OriginationsDBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	recent, err := store.RecentWithin(curveSet.AnalysisDate, cfg.MarginLookbackMonths)
	if err != nil {
		return err
	}
	for _, ct := range contracts {
		if err := store.Record(ct.ContractID, contractToOrigination(ct)); err != nil {
			return err
		}
	}

	params, err := shock.ParametersForCurrency(cfg.Currency)
	if err != nil {
		return err
	}

	scenarioIDs, err := shock.BuildScenarioSet("eve", false)
	if err != nil {
		return err
	}

	marginSet, err := margin.Calibrate(recent, curveSet, cfg.RiskFreeIndex, curveSet.AnalysisDate, cfg.MarginLookbackMonths)
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
		WorkerLimit:     runWorkers,
		Logger:          log,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	result, err := orchestrator.Run(ctx, contracts, flows, curveSet, scenarioIDs, marginSet, orchCfg, curveSet.AnalysisDate)
	if err != nil {
		log.Info("run failed", "error", err)
		return err
	}
	log.Info("run completed", "run_id", result.RunID, "worst_scenario", result.WorstScenarioID)

	return writeJSON(runOutPath, result)
}

// contractToOrigination projects the fields of a live position-table
// contract onto an origination row, so today's book feeds tomorrow's
// margin calibration lookback once it has rolled into history.
func contractToOrigination(c canonical.Contract) margin.Origination {
	notional, _ := c.Notional.Float64()
	return margin.Origination{
		RateType:           margin.RateType(c.RateType),
		SourceContractType: string(c.SourceContractType),
		Side:               c.Side.String(),
		RepricingFreq:      c.RepricingFreq,
		IndexName:          c.IndexName,
		FixedRate:          c.FixedRate,
		Spread:             c.Spread,
		Notional:           notional,
		StartDate:          c.StartDate,
		MaturityDate:       c.MaturityDate,
	}
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("cmd: marshalling result: %w", err)
	}
	if path == "" {
		fmt.Println(string(data))
		return nil
	}
	return os.WriteFile(path, data, 0644)
}
