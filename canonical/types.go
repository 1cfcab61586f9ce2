package canonical

import (
	"fmt"
	"time"
)

// Side is asset ('A') or liability ('L').
type Side byte

const (
	Asset     Side = 'A'
	Liability Side = 'L'
)

func (s Side) String() string {
	if s == Asset {
		return "A"
	}
	return "L"
}

// Sign returns +1 for Asset, -1 for Liability.
func (s Side) Sign() float64 {
	if s == Asset {
		return 1
	}
	return -1
}

// RateType is fixed or floating.
type RateType byte

const (
	Fixed RateType = iota
	Float
)

// SourceContractType is the closed set of contractual shapes:
// {fixed,variable} x {bullet,linear,annuity,scheduled} plus the behavioural
// and excluded types.
type SourceContractType string

const (
	FixedBullet    SourceContractType = "fixed_bullet"
	FixedLinear    SourceContractType = "fixed_linear"
	FixedAnnuity   SourceContractType = "fixed_annuity"
	FixedScheduled SourceContractType = "fixed_scheduled"

	VariableBullet    SourceContractType = "variable_bullet"
	VariableLinear    SourceContractType = "variable_linear"
	VariableAnnuity   SourceContractType = "variable_annuity"
	VariableScheduled SourceContractType = "variable_scheduled"

	FixedNonMaturity    SourceContractType = "fixed_non_maturity"
	VariableNonMaturity SourceContractType = "variable_non_maturity"
	StaticPosition      SourceContractType = "static_position"
)

// IsScheduled reports whether sct requires scheduled principal flows.
func (sct SourceContractType) IsScheduled() bool {
	return sct == FixedScheduled || sct == VariableScheduled
}

// IsVariable reports whether sct is a floating-rate shape.
func (sct SourceContractType) IsVariable() bool {
	switch sct {
	case VariableBullet, VariableLinear, VariableAnnuity, VariableScheduled, VariableNonMaturity:
		return true
	default:
		return false
	}
}

// AnnuityPaymentMode selects how variable_annuity recomputes its level
// payment.
type AnnuityPaymentMode byte

const (
	RepriceOnReset AnnuityPaymentMode = iota // default/legacy: recompute payment at every reset
	FixedPayment                             // payment fixed at cycle start
)

func (m AnnuityPaymentMode) String() string {
	if m == FixedPayment {
		return "fixed_payment"
	}
	return "reprice_on_reset"
}

// MarshalYAML renders the token form so config files read "reprice_on_reset"
// / "fixed_payment" rather than a raw byte.
func (m AnnuityPaymentMode) MarshalYAML() (interface{}, error) {
	return m.String(), nil
}

// UnmarshalYAML accepts either token; anything else defaults to
// RepriceOnReset.
func (m *AnnuityPaymentMode) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	if s == "fixed_payment" {
		*m = FixedPayment
	} else {
		*m = RepriceOnReset
	}
	return nil
}

// Contract is one row of the position table.
type Contract struct {
	ContractID   string
	Side         Side
	StartDate    time.Time
	MaturityDate time.Time // zero value for NMD types
	Notional     Money
	DaycountBase string // canonical token, e.g. "ACT/360"

	SourceContractType SourceContractType

	RateType       RateType
	FixedRate      float64 // also the current-coupon stub rate for floating
	IndexName      string
	Spread         float64
	RepricingFreq  string
	NextRepriceDate time.Time
	FloorRate      *float64
	CapRate        *float64
	PaymentFreq    string

	IsTermDeposit     bool
	AnnuityPaymentMode AnnuityPaymentMode

	// CPRAnnual/TDRRAnnual are the behavioural decay rates applied by the
	// CPR/TDRR overlay: CPRAnnual to assets, TDRRAnnual only
	// to liability rows with IsTermDeposit set. Zero means no decay.
	CPRAnnual  float64
	TDRRAnnual float64

	NMD *NMDParameters // non-nil iff SourceContractType is an NMD type and params are provided
}

// ScheduledFlow is one (contract_id, flow_date, principal_amount) row.
// Amounts are unsigned magnitudes; sign comes from the
// contract's Side at emission time.
type ScheduledFlow struct {
	ContractID      string
	FlowDate        time.Time
	PrincipalAmount Money
}

// Cashflow is one emitted row of the cashflow table.
type Cashflow struct {
	ContractID         string
	SourceContractType SourceContractType
	RateType           RateType
	Side               Side
	IndexName          string
	FlowDate           time.Time
	InterestAmount     Money
	PrincipalAmount    Money
	TotalAmount        Money
}

// SortCashflows sorts a cashflow table by (flow_date, source_contract_type,
// contract_id), the engine's canonical, deterministic table order.
func SortCashflows(rows []Cashflow) {
	sortCashflows(rows)
}

// NMDParameters are the behavioural parameters for a non-maturity deposit
type NMDParameters struct {
	CoreProportion     float64 // %, [0,100]
	PassThroughBeta    float64 // %, [0,100]
	CoreAverageMaturity float64 // years
	Distribution       map[EBABucket]float64 // % per bucket, must sum to CoreProportion
}

// EBABucket is one of the 18 EBA non-maturity-deposit distribution buckets
type EBABucket string

// EBABuckets is the ordered 18-bucket EBA grid with bucket midpoints in
// years, used both for NMD distribution validation and core-row emission.
var EBABuckets = []struct {
	ID       EBABucket
	Midpoint float64 // years
}{
	{"ON_1M", 0.5 / 12},
	{"1M_3M", 2.0 / 12},
	{"3M_6M", 4.5 / 12},
	{"6M_9M", 7.5 / 12},
	{"9M_1Y", 10.5 / 12},
	{"1Y_1.5Y", 1.25},
	{"1.5Y_2Y", 1.75},
	{"2Y_3Y", 2.5},
	{"3Y_4Y", 3.5},
	{"4Y_5Y", 4.5},
	{"5Y_6Y", 5.5},
	{"6Y_7Y", 6.5},
	{"7Y_8Y", 7.5},
	{"8Y_9Y", 8.5},
	{"9Y_10Y", 9.5},
	{"10Y_15Y", 12.5},
	{"15Y_20Y", 17.5},
	{"20Y_PLUS", 22.5},
}

// ValidationError (InvalidInput): a required field is
// blank, malformed, or out of its allowed domain.
type ValidationError struct {
	ContractID string
	Field      string
	Reason     string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("canonical: contract %q invalid field %q: %s", e.ContractID, e.Field, e.Reason)
}

// InconsistentScheduleError means a scheduled-flow table is inconsistent with its contract.
type InconsistentScheduleError struct {
	ContractID string
	Reason     string
}

func (e *InconsistentScheduleError) Error() string {
	return fmt.Sprintf("canonical: contract %q has an inconsistent schedule: %s", e.ContractID, e.Reason)
}

// Validate checks the per-contract invariants that do not
// depend on the curve set or sibling positions (maturity >= start, floating
// rows carry an index, unique ids are checked at the table level).
func (c *Contract) Validate() error {
	if c.ContractID == "" {
		return &ValidationError{Field: "contract_id", Reason: "must not be blank"}
	}
	if c.Side != Asset && c.Side != Liability {
		return &ValidationError{ContractID: c.ContractID, Field: "side", Reason: "must be A or L"}
	}
	if c.SourceContractType == StaticPosition {
		return nil // silently excluded downstream, not validated further
	}
	isNMD := c.SourceContractType == FixedNonMaturity || c.SourceContractType == VariableNonMaturity
	if !isNMD && c.MaturityDate.Before(c.StartDate) {
		return &InconsistentScheduleError{ContractID: c.ContractID, Reason: "maturity_date < start_date"}
	}
	if c.RateType == Float && c.IndexName == "" {
		return &InconsistentScheduleError{ContractID: c.ContractID, Reason: "floating row has no index_name"}
	}
	return nil
}

// ValidateTable checks table-wide invariants: unique contract ids, and that
// every *_scheduled contract has at least one scheduled flow when any
// position in the table requires them.
func ValidateTable(contracts []Contract, flows []ScheduledFlow) error {
	seen := make(map[string]bool, len(contracts))
	flowIDs := make(map[string]bool, len(flows))
	for _, f := range flows {
		flowIDs[f.ContractID] = true
	}

	for _, c := range contracts {
		if seen[c.ContractID] {
			return &ValidationError{ContractID: c.ContractID, Field: "contract_id", Reason: "duplicate contract_id"}
		}
		seen[c.ContractID] = true

		if err := c.Validate(); err != nil {
			return err
		}

		if c.SourceContractType.IsScheduled() && !flowIDs[c.ContractID] {
			return &InconsistentScheduleError{
				ContractID: c.ContractID,
				Reason:     "scheduled contract type with no scheduled_principal_flows rows",
			}
		}
	}
	return nil
}
