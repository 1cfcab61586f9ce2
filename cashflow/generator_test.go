package cashflow

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/almready/irrbb/canonical"
	"github.com/almready/irrbb/curve"
	"github.com/almready/irrbb/daycount"
)

func TestGenerateTableSkipsStaticPositions(t *testing.T) {
	analysisDate := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := canonical.Contract{
		ContractID:         "P1",
		SourceContractType: canonical.StaticPosition,
	}

	rows, counts, err := GenerateTable([]canonical.Contract{c}, nil, nil, analysisDate)
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Equal(t, 1, counts.Static)
}

func TestGenerateTableCountsNMDWithoutParams(t *testing.T) {
	analysisDate := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := canonical.Contract{
		ContractID:         "N1",
		SourceContractType: canonical.FixedNonMaturity,
	}

	rows, counts, err := GenerateTable([]canonical.Contract{c}, nil, nil, analysisDate)
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Equal(t, 1, counts.NMDWithoutParams)
}

func TestGenerateTableUnknownShapeErrors(t *testing.T) {
	analysisDate := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := canonical.Contract{
		ContractID:         "U1",
		SourceContractType: canonical.SourceContractType("bogus"),
	}

	_, _, err := GenerateTable([]canonical.Contract{c}, nil, nil, analysisDate)
	require.Error(t, err)
	var target *UnknownShapeError
	assert.ErrorAs(t, err, &target)
}

func TestGenerateTableSignsCashflowsByLiabilitySide(t *testing.T) {
	analysisDate := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := canonical.Contract{
		ContractID:         "L1",
		Side:               canonical.Liability,
		SourceContractType: canonical.FixedBullet,
		RateType:           canonical.Fixed,
		Notional:           decimal.NewFromInt(1000),
		DaycountBase:       "ACT/360",
		PaymentFreq:        "1Y",
		StartDate:          analysisDate,
		MaturityDate:       analysisDate.AddDate(1, 0, 0),
		FixedRate:          0.03,
	}

	rows, _, err := GenerateTable([]canonical.Contract{c}, nil, nil, analysisDate)
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	for _, r := range rows {
		principal, _ := r.PrincipalAmount.Float64()
		if principal != 0 {
			assert.LessOrEqual(t, principal, 0.0)
		}
	}
}

func TestGenerateContractRewritesVariableNMD(t *testing.T) {
	analysisDate := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := canonical.Contract{
		ContractID:         "VN1",
		Side:               canonical.Liability,
		SourceContractType: canonical.VariableNonMaturity,
		RateType:           canonical.Float,
		IndexName:          "EURIBOR_3M",
		RepricingFreq:      "3M",
		Notional:           decimal.NewFromInt(1000),
		DaycountBase:       "ACT/360",
		PaymentFreq:        "3M",
		FixedRate:          0.01,
	}

	curveSet := &curve.Set{
		AnalysisDate: analysisDate,
		Base:         daycount.Act365,
		Curves: map[string]*curve.ForwardCurve{
			"EURIBOR_3M": curve.New([]curve.Sample{{TYears: 0.25, Rate: 0.02}, {TYears: 30, Rate: 0.02}}),
		},
	}

	rows, err := GenerateContract(&c, nil, curveSet, analysisDate)
	require.NoError(t, err)
	assert.NotEmpty(t, rows)
}
