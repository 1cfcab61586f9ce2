package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/almready/irrbb/canonical"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadContractsParsesCanonicalFields(t *testing.T) {
	path := writeTempFile(t, "contracts.json", `[
		{
			"contract_id": "C1",
			"side": "A",
			"start_date": "2026-01-01",
			"maturity_date": "2030-01-01",
			"notional": 1000,
			"daycount_base": "ACT/360",
			"source_contract_type": "fixed_bullet",
			"rate_type": "fixed",
			"fixed_rate": 0.04
		}
	]`)

	contracts, err := loadContracts(path)
	require.NoError(t, err)
	require.Len(t, contracts, 1)
	assert.Equal(t, "C1", contracts[0].ContractID)
	assert.Equal(t, canonical.Asset, contracts[0].Side)
	assert.Equal(t, canonical.Fixed, contracts[0].RateType)
	assert.Equal(t, canonical.FixedBullet, contracts[0].SourceContractType)
	notional, _ := contracts[0].Notional.Float64()
	assert.Equal(t, 1000.0, notional)
}

func TestLoadContractsRejectsInvalidSide(t *testing.T) {
	path := writeTempFile(t, "contracts.json", `[{"contract_id":"C1","side":"X","start_date":"2026-01-01","rate_type":"fixed"}]`)
	_, err := loadContracts(path)
	assert.Error(t, err)
}

func TestLoadContractsParsesNMDDistribution(t *testing.T) {
	path := writeTempFile(t, "contracts.json", `[
		{
			"contract_id": "N1",
			"side": "L",
			"start_date": "2026-01-01",
			"rate_type": "fixed",
			"source_contract_type": "fixed_non_maturity",
			"nmd": {
				"core_proportion": 70,
				"bucket_distribution": {"1Y_1.5Y": 30}
			}
		}
	]`)

	contracts, err := loadContracts(path)
	require.NoError(t, err)
	require.NotNil(t, contracts[0].NMD)
	assert.Equal(t, 70.0, contracts[0].NMD.CoreProportion)
	assert.Equal(t, 30.0, contracts[0].NMD.Distribution["1Y_1.5Y"])
}

func TestLoadFlowsEmptyPathReturnsNil(t *testing.T) {
	flows, err := loadFlows("")
	require.NoError(t, err)
	assert.Nil(t, flows)
}

func TestLoadFlowsParsesRows(t *testing.T) {
	path := writeTempFile(t, "flows.json", `[{"contract_id":"S1","flow_date":"2026-06-01","principal_amount":250}]`)
	flows, err := loadFlows(path)
	require.NoError(t, err)
	require.Len(t, flows, 1)
	assert.Equal(t, "S1", flows[0].ContractID)
	amount, _ := flows[0].PrincipalAmount.Float64()
	assert.Equal(t, 250.0, amount)
}

func TestLoadCurveSetParsesSamplesAndBase(t *testing.T) {
	path := writeTempFile(t, "curves.json", `{
		"analysis_date": "2026-01-01",
		"base": "ACT/365",
		"curves": {"OIS": [{"TYears": 0, "Rate": 0.02}, {"TYears": 10, "Rate": 0.03}]}
	}`)

	cs, err := loadCurveSet(path)
	require.NoError(t, err)
	assert.Contains(t, cs.Curves, "OIS")
	assert.False(t, cs.AnalysisDate.IsZero())
}

func TestLoadCurveSetRejectsBadBase(t *testing.T) {
	path := writeTempFile(t, "curves.json", `{"analysis_date":"2026-01-01","base":"BOGUS","curves":{}}`)
	_, err := loadCurveSet(path)
	assert.Error(t, err)
}
