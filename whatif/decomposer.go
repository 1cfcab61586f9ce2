// Package whatif turns a high-level LoanSpec into one or more
// motor-native canonical.Contract rows, built row by row rather than as a
// single schedule: a closed SourceContractType enum and typed
// DecompositionError drive the dispatch instead of ad hoc string building.
package whatif

import (
	"fmt"
	"time"

	"github.com/almready/irrbb/canonical"
)

// RateKind is the user-facing rate regime of a LoanSpec.
type RateKind string

const (
	RateFixed    RateKind = "fixed"
	RateVariable RateKind = "variable"
	RateMixed    RateKind = "mixed"
)

// Amortization is the user-facing amortisation shape.
type Amortization string

const (
	AmortBullet  Amortization = "bullet"
	AmortLinear  Amortization = "linear"
	AmortAnnuity Amortization = "annuity"
)

// LoanSpec is the user-level instrument description.
type LoanSpec struct {
	Notional     float64
	TermYears    float64
	Side         canonical.Side
	Currency     string

	RateType      RateKind
	FixedRate     float64
	VariableIndex string
	SpreadBps     float64

	MixedFixedYears *float64

	Amortization Amortization
	GraceYears   float64

	Daycount      string
	PaymentFreq   string
	RepricingFreq string

	StartDate    time.Time
	AnalysisDate time.Time

	FloorRate *float64
	CapRate   *float64

	IDPrefix string
}

// DecompositionError means a LoanSpec's fields are inconsistent or missing.
type DecompositionError struct {
	Reason string
}

func (e *DecompositionError) Error() string {
	return fmt.Sprintf("whatif: %s", e.Reason)
}

// resolveDates mirrors decomposer.py's _resolve_dates: start defaults to
// start_date, else analysis_date; maturity = start + term_years (in
// 365.25-day years); grace_end = start + grace_years when grace applies.
func resolveDates(spec *LoanSpec) (start, graceEnd, maturity time.Time) {
	start = spec.StartDate
	if start.IsZero() {
		start = spec.AnalysisDate
	}
	maturity = addYears(start, spec.TermYears)
	graceEnd = start
	if spec.GraceYears > 0 {
		graceEnd = addYears(start, spec.GraceYears)
	}
	return
}

func addYears(d time.Time, years float64) time.Time {
	days := int(years*365.25 + 0.5)
	return d.AddDate(0, 0, days)
}

func sct(ratePrefix string, amort Amortization) canonical.SourceContractType {
	return canonical.SourceContractType(ratePrefix + "_" + string(amort))
}

// DecomposeLoan is the single entry point: it dispatches on
// rate_type and amortization/grace and returns the motor-native rows that
// together replicate the hypothetical loan's economics.
func DecomposeLoan(spec LoanSpec) ([]canonical.Contract, error) {
	if spec.IDPrefix == "" {
		spec.IDPrefix = "whatif"
	}
	start, graceEnd, maturity := resolveDates(&spec)

	switch spec.RateType {
	case RateMixed:
		if spec.MixedFixedYears == nil {
			return nil, &DecompositionError{Reason: "mixed_fixed_years required for rate_type=mixed"}
		}
		return decomposeMixed(&spec, start, graceEnd, maturity)
	case RateVariable:
		if spec.VariableIndex == "" {
			return nil, &DecompositionError{Reason: "variable_index required for rate_type=variable"}
		}
		return decomposeSimple(&spec, "variable", start, graceEnd, maturity), nil
	default:
		return decomposeSimple(&spec, "fixed", start, graceEnd, maturity), nil
	}
}

func baseRow(id string, side canonical.Side, sourceType canonical.SourceContractType, notional, fixedRate, spread float64, start, maturity time.Time, spec *LoanSpec) canonical.Contract {
	return canonical.Contract{
		ContractID:         id,
		Side:               side,
		StartDate:          start,
		MaturityDate:       maturity,
		Notional:           canonical.MoneyFromFloat(notional),
		DaycountBase:       spec.Daycount,
		SourceContractType: sourceType,
		RateType:           canonical.Fixed,
		FixedRate:          fixedRate,
		Spread:             spread,
		PaymentFreq:        spec.PaymentFreq,
		FloorRate:          spec.FloorRate,
		CapRate:            spec.CapRate,
	}
}

func decomposeSimple(spec *LoanSpec, ratePrefix string, start, graceEnd, maturity time.Time) []canonical.Contract {
	spread := 0.0
	if ratePrefix == "variable" {
		spread = spec.SpreadBps / 10000
	}
	var fixedRate float64
	var index string
	if ratePrefix == "fixed" {
		fixedRate = spec.FixedRate
	} else {
		index = spec.VariableIndex
	}
	repriceFreq := spec.RepricingFreq
	if repriceFreq == "" {
		repriceFreq = spec.PaymentFreq
	}
	rateType := canonical.Fixed
	if ratePrefix == "variable" {
		rateType = canonical.Float
	}

	hasGrace := spec.GraceYears > 0 && spec.Amortization != AmortBullet

	mk := func(id string, s, m time.Time) canonical.Contract {
		c := baseRow(id, spec.Side, sct(ratePrefix, spec.Amortization), spec.Notional, fixedRate, spread, s, m, spec)
		c.RateType = rateType
		if index != "" {
			c.IndexName = index
			c.NextRepriceDate = s
			c.RepricingFreq = repriceFreq
		}
		return c
	}

	if !hasGrace {
		return []canonical.Contract{mk(spec.IDPrefix+"_main", start, maturity)}
	}

	graceRow := baseRow(spec.IDPrefix+"_grace", spec.Side, sct(ratePrefix, AmortBullet), spec.Notional, fixedRate, spread, start, graceEnd, spec)
	graceRow.RateType = rateType
	if index != "" {
		graceRow.IndexName = index
		graceRow.NextRepriceDate = start
		graceRow.RepricingFreq = repriceFreq
	}

	amortRow := mk(spec.IDPrefix+"_amort", graceEnd, maturity)

	offsetSide := canonical.Liability
	if spec.Side == canonical.Liability {
		offsetSide = canonical.Asset
	}
	offsetRow := baseRow(spec.IDPrefix+"_offset", offsetSide, canonical.FixedBullet, spec.Notional, 0, 0, graceEnd.AddDate(0, 0, -1), graceEnd, spec)

	return []canonical.Contract{graceRow, amortRow, offsetRow}
}

func decomposeMixed(spec *LoanSpec, start, graceEnd, maturity time.Time) ([]canonical.Contract, error) {
	switchDate := addYears(start, *spec.MixedFixedYears)
	spread := spec.SpreadBps / 10000
	repriceFreq := spec.RepricingFreq
	if repriceFreq == "" {
		repriceFreq = spec.PaymentFreq
	}
	hasGrace := spec.GraceYears > 0 && spec.Amortization != AmortBullet
	amortStart := start
	if hasGrace {
		amortStart = graceEnd
	}

	offsetSide := canonical.Liability
	if spec.Side == canonical.Liability {
		offsetSide = canonical.Asset
	}

	if spec.Amortization == AmortBullet {
		fixedLeg := baseRow(spec.IDPrefix+"_fixed", spec.Side, canonical.FixedBullet, spec.Notional, spec.FixedRate, 0, start, switchDate, spec)

		varLeg := baseRow(spec.IDPrefix+"_var", spec.Side, canonical.VariableBullet, spec.Notional, 0, spread, switchDate, maturity, spec)
		varLeg.RateType = canonical.Float
		varLeg.IndexName = spec.VariableIndex
		varLeg.NextRepriceDate = switchDate
		varLeg.RepricingFreq = repriceFreq

		offset := baseRow(spec.IDPrefix+"_offset", offsetSide, canonical.FixedBullet, spec.Notional, 0, 0, switchDate.AddDate(0, 0, -1), switchDate, spec)

		return []canonical.Contract{fixedLeg, varLeg, offset}, nil
	}

	totalAmortDays := maturity.Sub(amortStart).Hours() / 24
	remainingAtSwitch := maturity.Sub(switchDate).Hours() / 24
	notionalAtSwitch := 0.0
	if totalAmortDays > 0 {
		notionalAtSwitch = spec.Notional * remainingAtSwitch / totalAmortDays
	}

	var rows []canonical.Contract
	if hasGrace {
		rows = append(rows, baseRow(spec.IDPrefix+"_grace", spec.Side, canonical.FixedBullet, spec.Notional, spec.FixedRate, 0, start, graceEnd, spec))
	}

	rows = append(rows, baseRow(spec.IDPrefix+"_amort", spec.Side, sct("fixed", spec.Amortization), spec.Notional, spec.FixedRate, 0, amortStart, maturity, spec))

	rows = append(rows, baseRow(spec.IDPrefix+"_cancel", offsetSide, sct("fixed", spec.Amortization), notionalAtSwitch, spec.FixedRate, 0, switchDate, maturity, spec))

	varRow := baseRow(spec.IDPrefix+"_var", spec.Side, sct("variable", spec.Amortization), notionalAtSwitch, 0, spread, switchDate, maturity, spec)
	varRow.RateType = canonical.Float
	varRow.IndexName = spec.VariableIndex
	varRow.NextRepriceDate = switchDate
	varRow.RepricingFreq = repriceFreq
	rows = append(rows, varRow)

	if hasGrace {
		rows = append(rows, baseRow(spec.IDPrefix+"_goffset", offsetSide, canonical.FixedBullet, spec.Notional, 0, 0, graceEnd.AddDate(0, 0, -1), graceEnd, spec))
	}

	return rows, nil
}
