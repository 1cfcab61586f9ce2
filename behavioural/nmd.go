// Package behavioural implements the non-contractual overlays: NMD
// core/non-core expansion, the NII β-repricing correction for NMD client
// rates, and the CPR/TDRR prepayment overlay.
package behavioural

import (
	"fmt"
	"math"
	"time"

	"github.com/almready/irrbb/canonical"
)

// MissingNMDParametersError is raised when ExpandFixedNMD is called on a
// contract with no NMD parameters attached.
type MissingNMDParametersError struct {
	ContractID string
}

func (e *MissingNMDParametersError) Error() string {
	return fmt.Sprintf("behavioural: contract %q has no NMD parameters", e.ContractID)
}

// ExpandFixedNMD turns a fixed_non_maturity contract into its core/non-core
// principal rows: one non-core row at analysis_date+1day
// carrying N*(1-core_proportion), and one core row per populated EBA bucket
// carrying N*distribution[bucket] at analysis_date+bucket_midpoint (years,
// converted via the ACT/365.25 convention used for all bucket-midpoint
// horizons). All rows carry zero interest.
func ExpandFixedNMD(contract *canonical.Contract, analysisDate time.Time) ([]canonical.Cashflow, error) {
	if contract.NMD == nil {
		return nil, &MissingNMDParametersError{ContractID: contract.ContractID}
	}
	p := contract.NMD
	notional, _ := contract.Notional.Float64()
	sign := contract.Side.Sign()

	var rows []canonical.Cashflow

	nonCore := notional * (1 - p.CoreProportion/100)
	if nonCore != 0 {
		rows = append(rows, principalRow(contract, sign*nonCore, analysisDate.AddDate(0, 0, 1)))
	}

	for _, b := range canonical.EBABuckets {
		pct, ok := p.Distribution[b.ID]
		if !ok || pct == 0 {
			continue
		}
		principal := notional * pct / 100
		days := int(math.Round(b.Midpoint * 365.25))
		date := analysisDate.AddDate(0, 0, days)
		rows = append(rows, principalRow(contract, sign*principal, date))
	}

	return rows, nil
}

func principalRow(contract *canonical.Contract, signedPrincipal float64, date time.Time) canonical.Cashflow {
	amount := canonical.RoundCents(canonical.MoneyFromFloat(signedPrincipal))
	return canonical.Cashflow{
		ContractID:         contract.ContractID,
		SourceContractType: contract.SourceContractType,
		RateType:           contract.RateType,
		Side:               contract.Side,
		IndexName:          contract.IndexName,
		FlowDate:           date,
		InterestAmount:     canonical.ZeroMoney(),
		PrincipalAmount:    amount,
		TotalAmount:        amount,
	}
}

// NMDBetaCorrection computes the NII correction for one fixed-NMD flow
// bucket under a shocked risk-free delta deltaR:
// N_bucket · (max(client_rate + β·Δr, 0) − client_rate) · yearFraction.
// clientRate and beta are decimal fractions (beta already divided by 100).
func NMDBetaCorrection(balance, clientRate, beta, deltaR, yearFraction float64) float64 {
	adjusted := math.Max(clientRate+beta*deltaR, 0)
	return balance * (adjusted - clientRate) * yearFraction
}

// RewriteVariableNMD returns a copy of contract with SourceContractType
// rewritten to variable_bullet and a synthetic 30-year maturity
// Variable-rate NMDs are not expanded into core/non-core rows; instead
// they are rewritten to variable_bullet with a 30-year synthetic maturity
// and flow through the normal variable-rate engine. EVE sensitivity is
// then driven by repricing_freq, not this synthetic maturity.
func RewriteVariableNMD(contract canonical.Contract, analysisDate time.Time) canonical.Contract {
	rewritten := contract
	rewritten.SourceContractType = canonical.VariableBullet
	if rewritten.StartDate.IsZero() {
		rewritten.StartDate = analysisDate
	}
	rewritten.MaturityDate = analysisDate.AddDate(30, 0, 0)
	return rewritten
}
