package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/almready/irrbb/canonical"
	"github.com/almready/irrbb/curve"
	"github.com/almready/irrbb/daycount"
)

// contractFile/curveSetFile are the JSON forms of canonical.Contract and
// curve.Set (contractFile carries no annuity payment mode, so loaded
// contracts use the default). Bank-specific column mapping is out of scope here — the CLI
// accepts the motor's own canonical shape, not a raw ingestion format.
type contractFile struct {
	ContractID         string   `json:"contract_id"`
	Side               string   `json:"side"`
	StartDate          string   `json:"start_date"`
	MaturityDate       string   `json:"maturity_date"`
	Notional           float64  `json:"notional"`
	DaycountBase       string   `json:"daycount_base"`
	SourceContractType string   `json:"source_contract_type"`
	RateType           string   `json:"rate_type"`
	FixedRate          float64  `json:"fixed_rate"`
	Spread             float64  `json:"spread"`
	IndexName          string   `json:"index_name"`
	NextRepriceDate    string   `json:"next_reprice_date"`
	RepricingFreq      string   `json:"repricing_freq"`
	PaymentFreq        string   `json:"payment_freq"`
	FloorRate          *float64 `json:"floor_rate"`
	CapRate            *float64 `json:"cap_rate"`
	CPRAnnual          float64  `json:"cpr_annual"`
	TDRRAnnual         float64  `json:"tdrr_annual"`
	IsTermDeposit      bool     `json:"is_term_deposit"`

	NMD *nmdFile `json:"nmd,omitempty"`
}

type nmdFile struct {
	CoreProportion      float64            `json:"core_proportion"`
	PassThroughBeta     float64            `json:"pass_through_beta"`
	CoreAverageMaturity float64            `json:"core_average_maturity"`
	BucketDistribution  map[string]float64 `json:"bucket_distribution"`
}

func loadContracts(path string) ([]canonical.Contract, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("io: reading contracts %s: %w", path, err)
	}
	var files []contractFile
	if err := json.Unmarshal(raw, &files); err != nil {
		return nil, fmt.Errorf("io: parsing contracts %s: %w", path, err)
	}

	out := make([]canonical.Contract, 0, len(files))
	for _, f := range files {
		c, err := toContract(f)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func toContract(f contractFile) (canonical.Contract, error) {
	c := canonical.Contract{
		ContractID:         f.ContractID,
		Notional:           canonical.MoneyFromFloat(f.Notional),
		DaycountBase:       f.DaycountBase,
		SourceContractType: canonical.SourceContractType(f.SourceContractType),
		FixedRate:          f.FixedRate,
		Spread:             f.Spread,
		IndexName:          f.IndexName,
		RepricingFreq:      f.RepricingFreq,
		PaymentFreq:        f.PaymentFreq,
		FloorRate:          f.FloorRate,
		CapRate:            f.CapRate,
		CPRAnnual:          f.CPRAnnual,
		TDRRAnnual:         f.TDRRAnnual,
		IsTermDeposit:      f.IsTermDeposit,
	}

	switch f.Side {
	case "A":
		c.Side = canonical.Asset
	case "L":
		c.Side = canonical.Liability
	default:
		return c, fmt.Errorf("io: contract %s: invalid side %q", f.ContractID, f.Side)
	}

	switch f.RateType {
	case "fixed":
		c.RateType = canonical.Fixed
	case "variable":
		c.RateType = canonical.Float
	default:
		return c, fmt.Errorf("io: contract %s: invalid rate_type %q", f.ContractID, f.RateType)
	}

	var err error
	if c.StartDate, err = parseDate(f.StartDate); err != nil {
		return c, fmt.Errorf("io: contract %s start_date: %w", f.ContractID, err)
	}
	if f.MaturityDate != "" {
		if c.MaturityDate, err = parseDate(f.MaturityDate); err != nil {
			return c, fmt.Errorf("io: contract %s maturity_date: %w", f.ContractID, err)
		}
	}
	if f.NextRepriceDate != "" {
		if c.NextRepriceDate, err = parseDate(f.NextRepriceDate); err != nil {
			return c, fmt.Errorf("io: contract %s next_reprice_date: %w", f.ContractID, err)
		}
	}

	if f.NMD != nil {
		dist := make(map[canonical.EBABucket]float64, len(f.NMD.BucketDistribution))
		for label, weight := range f.NMD.BucketDistribution {
			dist[canonical.EBABucket(label)] = weight
		}
		c.NMD = &canonical.NMDParameters{
			CoreProportion:      f.NMD.CoreProportion,
			PassThroughBeta:     f.NMD.PassThroughBeta,
			CoreAverageMaturity: f.NMD.CoreAverageMaturity,
			Distribution:        dist,
		}
	}

	return c, nil
}

func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

type scheduledFlowFile struct {
	ContractID      string  `json:"contract_id"`
	FlowDate        string  `json:"flow_date"`
	PrincipalAmount float64 `json:"principal_amount"`
}

func loadFlows(path string) ([]canonical.ScheduledFlow, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("io: reading flows %s: %w", path, err)
	}
	var files []scheduledFlowFile
	if err := json.Unmarshal(raw, &files); err != nil {
		return nil, fmt.Errorf("io: parsing flows %s: %w", path, err)
	}
	out := make([]canonical.ScheduledFlow, 0, len(files))
	for _, f := range files {
		d, err := parseDate(f.FlowDate)
		if err != nil {
			return nil, fmt.Errorf("io: flow %s flow_date: %w", f.ContractID, err)
		}
		out = append(out, canonical.ScheduledFlow{
			ContractID:      f.ContractID,
			FlowDate:        d,
			PrincipalAmount: canonical.MoneyFromFloat(f.PrincipalAmount),
		})
	}
	return out, nil
}

type curveSetFile struct {
	AnalysisDate string                  `json:"analysis_date"`
	Base         string                  `json:"base"`
	Curves       map[string][]curve.Sample `json:"curves"`
}

func loadCurveSet(path string) (*curve.Set, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("io: reading curve set %s: %w", path, err)
	}
	var f curveSetFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("io: parsing curve set %s: %w", path, err)
	}

	analysisDate, err := parseDate(f.AnalysisDate)
	if err != nil {
		return nil, fmt.Errorf("io: curve set analysis_date: %w", err)
	}
	base, err := daycount.Parse(f.Base)
	if err != nil {
		return nil, fmt.Errorf("io: curve set base: %w", err)
	}

	curves := make(map[string]*curve.ForwardCurve, len(f.Curves))
	for name, samples := range f.Curves {
		curves[name] = curve.New(samples)
	}

	return &curve.Set{AnalysisDate: analysisDate, Base: base, Curves: curves}, nil
}
