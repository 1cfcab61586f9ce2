package cashflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLinearBalanceAtStartIsFullNotional(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	maturity := start.AddDate(2, 0, 0)
	assert.Equal(t, 1000.0, linearBalanceAt(1000, start, maturity, start))
}

func TestLinearBalanceAtMaturityIsZero(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	maturity := start.AddDate(2, 0, 0)
	assert.Equal(t, 0.0, linearBalanceAt(1000, start, maturity, maturity))
}

func TestLinearBalanceAtMidpointIsHalf(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	maturity := start.AddDate(2, 0, 0)
	mid := start.Add(maturity.Sub(start) / 2)
	assert.InDelta(t, 500.0, linearBalanceAt(1000, start, maturity, mid), 1.0)
}

func TestLinearBalanceAtBeforeStartClampsToFull(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	maturity := start.AddDate(2, 0, 0)
	assert.Equal(t, 1000.0, linearBalanceAt(1000, start, maturity, start.AddDate(0, -1, 0)))
}

func TestLinearBalanceAtDegenerateRangeIsZero(t *testing.T) {
	d := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 0.0, linearBalanceAt(1000, d, d, d))
}
