// Package shock implements the regulatory yield-curve shock engine:
// Annex Part A currency table, the six shape functions, and the
// post-shock maturity floor with its observed-lower-rate carve-out.
package shock

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// ScenarioID is the closed catalog of regulatory scenario identifiers.
type ScenarioID string

const (
	ParallelUp   ScenarioID = "parallel-up"
	ParallelDown ScenarioID = "parallel-down"
	ShortUp      ScenarioID = "short-up"
	ShortDown    ScenarioID = "short-down"
	Steepener    ScenarioID = "steepener"
	Flattener    ScenarioID = "flattener"
	LongUp       ScenarioID = "long-up"   // internal extension, off by default
	LongDown     ScenarioID = "long-down" // internal extension, off by default
)

// EVEScenarios is the six official EVE scenarios, in the catalog order.
var EVEScenarios = []ScenarioID{ParallelUp, ParallelDown, ShortUp, ShortDown, Steepener, Flattener}

// NIIScenarios is the two official NII scenarios.
var NIIScenarios = []ScenarioID{ParallelUp, ParallelDown}

// extendedInternal are optional, off-by-default internal scenarios.
var extendedInternal = []ScenarioID{LongUp, LongDown}

// UnsupportedScenarioError means the requested scenario ID is not in the catalog.
type UnsupportedScenarioError struct {
	ScenarioID ScenarioID
}

func (e *UnsupportedScenarioError) Error() string {
	return fmt.Sprintf("shock: unsupported scenario id %q", e.ScenarioID)
}

// IsSupported reports whether id is in the closed scenario catalog
// (official six plus the internal extensions).
func IsSupported(id ScenarioID) bool {
	for _, s := range append(append([]ScenarioID{}, EVEScenarios...), extendedInternal...) {
		if s == id {
			return true
		}
	}
	return false
}

// BuildScenarioSet returns the scenario list for a given purpose,
// "eve" (6 official) or "nii" (2 official), optionally with the internal
// long-up/long-down extensions appended.
func BuildScenarioSet(purpose string, includeInternalExtended bool) ([]ScenarioID, error) {
	var base []ScenarioID
	switch strings.ToLower(purpose) {
	case "eve":
		base = EVEScenarios
	case "nii":
		base = NIIScenarios
	default:
		return nil, fmt.Errorf("shock: purpose must be \"eve\" or \"nii\", got %q", purpose)
	}
	if includeInternalExtended {
		out := append([]ScenarioID{}, base...)
		return append(out, extendedInternal...), nil
	}
	return base, nil
}

// Parameters holds a currency's parallel/short/long shock magnitudes, in
// decimal rate units (already divided by 10000 from bps).
type Parameters struct {
	Parallel, Short, Long float64
}

// CurrencyShockBps is the raw Annex Part A row, in basis points.
type CurrencyShockBps struct {
	Parallel, Short, Long int
}

// AnnexPartA is the closed currency -> shock-magnitude table from the
// delegated regulation (Reglamento Delegado (UE) 2024/856, Annex Part A).
var AnnexPartA = map[string]CurrencyShockBps{
	"ARS": {Parallel: 400, Short: 500, Long: 300},
	"AUD": {Parallel: 300, Short: 450, Long: 200},
	"BGN": {Parallel: 250, Short: 350, Long: 150},
	"BRL": {Parallel: 400, Short: 500, Long: 300},
	"CAD": {Parallel: 200, Short: 300, Long: 150},
	"CHF": {Parallel: 100, Short: 150, Long: 100},
	"CNY": {Parallel: 250, Short: 300, Long: 150},
	"CZK": {Parallel: 200, Short: 250, Long: 100},
	"DKK": {Parallel: 200, Short: 250, Long: 150},
	"EUR": {Parallel: 200, Short: 250, Long: 100},
	"GBP": {Parallel: 250, Short: 300, Long: 150},
	"HKD": {Parallel: 200, Short: 250, Long: 100},
	"HUF": {Parallel: 300, Short: 450, Long: 200},
	"IDR": {Parallel: 400, Short: 500, Long: 350},
	"INR": {Parallel: 400, Short: 500, Long: 300},
	"JPY": {Parallel: 100, Short: 100, Long: 100},
	"KRW": {Parallel: 300, Short: 400, Long: 200},
	"MXN": {Parallel: 400, Short: 500, Long: 300},
	"PLN": {Parallel: 250, Short: 350, Long: 150},
	"RON": {Parallel: 350, Short: 500, Long: 250},
	"RUB": {Parallel: 400, Short: 500, Long: 300},
	"SAR": {Parallel: 200, Short: 300, Long: 150},
	"SEK": {Parallel: 200, Short: 300, Long: 150},
	"SGD": {Parallel: 150, Short: 200, Long: 100},
	"TRY": {Parallel: 400, Short: 500, Long: 300},
	"USD": {Parallel: 200, Short: 300, Long: 150},
	"ZAR": {Parallel: 400, Short: 500, Long: 300},
}

// MissingCurrencyShockError means the Annex Part A table has no row for the currency.
type MissingCurrencyShockError struct {
	Currency  string
	Available []string
}

func (e *MissingCurrencyShockError) Error() string {
	return fmt.Sprintf("shock: currency %q has no Annex Part A parameters (available: %v)", e.Currency, e.Available)
}

// ParametersForCurrency looks up and converts a currency's Annex Part A bps
// row into decimal-rate Parameters.
func ParametersForCurrency(currency string) (Parameters, error) {
	code := strings.ToUpper(strings.TrimSpace(currency))
	v, ok := AnnexPartA[code]
	if !ok {
		avail := make([]string, 0, len(AnnexPartA))
		for k := range AnnexPartA {
			avail = append(avail, k)
		}
		sort.Strings(avail)
		return Parameters{}, &MissingCurrencyShockError{Currency: code, Available: avail}
	}
	return Parameters{
		Parallel: float64(v.Parallel) / 10000.0,
		Short:    float64(v.Short) / 10000.0,
		Long:     float64(v.Long) / 10000.0,
	}, nil
}

// FloorParameters parametrizes the post-shock maturity floor
// floor(t) = min(maxFloor, immediateFloor + annualStep*t).
type FloorParameters struct {
	ImmediateFloor float64
	AnnualStep     float64
	MaxFloor       float64
}

// DefaultFloorParameters is the regulatory default: floor(t) = min(0, -0.015 + 0.0003*t).
var DefaultFloorParameters = FloorParameters{ImmediateFloor: -0.015, AnnualStep: 0.0003, MaxFloor: 0}

// MaturityPostShockFloor returns the regulatory floor curve value at t years.
func MaturityPostShockFloor(tYears float64, fp FloorParameters) float64 {
	t := math.Max(0, tYears)
	return math.Min(fp.MaxFloor, fp.ImmediateFloor+fp.AnnualStep*t)
}

// Delta returns δ(t) for the given scenario and shock parameters, per the
// six (eight with internal extensions) shape functions
func Delta(tYears float64, id ScenarioID, p Parameters) (float64, error) {
	t := math.Max(0, tYears)
	deltaShort := p.Short * math.Exp(-t/4.0)
	deltaLong := p.Long * (1.0 - math.Exp(-t/4.0))

	switch id {
	case ParallelUp:
		return p.Parallel, nil
	case ParallelDown:
		return -p.Parallel, nil
	case ShortUp:
		return deltaShort, nil
	case ShortDown:
		return -deltaShort, nil
	case LongUp:
		return deltaLong, nil
	case LongDown:
		return -deltaLong, nil
	case Steepener:
		return (-0.65 * math.Abs(deltaShort)) + (0.9 * math.Abs(deltaLong)), nil
	case Flattener:
		return (0.8 * math.Abs(deltaShort)) - (0.6 * math.Abs(deltaLong)), nil
	default:
		return 0, &UnsupportedScenarioError{ScenarioID: id}
	}
}

// ApplyToRiskFreeRate shocks a base risk-free rate at t years under the
// given scenario, then applies the post-shock floor with the
// observed-lower-rate carve-out: the effective floor is never above the
// base rate, so a base rate already below the regulatory floor curve is
// never dragged up.
func ApplyToRiskFreeRate(baseRate, tYears float64, id ScenarioID, p Parameters, fp FloorParameters) (float64, error) {
	delta, err := Delta(tYears, id, p)
	if err != nil {
		return 0, err
	}
	shocked := baseRate + delta

	floorCurve := MaturityPostShockFloor(tYears, fp)
	effectiveFloor := math.Min(floorCurve, baseRate)
	return math.Max(shocked, effectiveFloor), nil
}

// ApplyToBasisRate shocks a non-risk-free (basis) index by the same delta,
// without the post-shock floor, preserving basis.
func ApplyToBasisRate(baseRate, tYears float64, id ScenarioID, p Parameters) (float64, error) {
	delta, err := Delta(tYears, id, p)
	if err != nil {
		return 0, err
	}
	return baseRate + delta, nil
}
