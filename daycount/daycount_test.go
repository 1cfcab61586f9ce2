package daycount

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func TestParse(t *testing.T) {
	cases := []struct {
		token string
		want  Convention
	}{
		{"ACT/360", Act360},
		{"ACT/365", Act365},
		{"30/360", Thirty360},
	}
	for _, c := range cases {
		got, err := Parse(c.token)
		require.NoError(t, err)
		assert.Equal(t, c.want, got)
	}

	_, err := Parse("")
	assert.Error(t, err)
	_, err = Parse("bogus")
	assert.Error(t, err)
}

func TestYearFractionAct360(t *testing.T) {
	yf := YearFraction(d(2026, 1, 1), d(2026, 7, 1), Act360)
	assert.InDelta(t, 181.0/360.0, yf, 1e-9)
}

func TestYearFractionThirty360PullsBack31(t *testing.T) {
	yf := YearFraction(d(2026, 1, 31), d(2026, 2, 28), Thirty360)
	// day 31 -> 30, so 30/360 sees Jan 30 to Feb 28: 28 days in month delta.
	assert.InDelta(t, (30.0*1+(-2))/360.0, yf, 1e-9)
}

func TestYearFractionNegativeWhenReversed(t *testing.T) {
	yf := YearFraction(d(2026, 7, 1), d(2026, 1, 1), Act360)
	assert.Less(t, yf, 0.0)
}

func TestParseFrequencyBlankAndZero(t *testing.T) {
	for _, tok := range []string{"", "0D", "0M", "0Y", "0W"} {
		f, ok, err := ParseFrequency(tok, true, "field")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.True(t, f.IsZero())
	}
}

func TestParseFrequencyOvernight(t *testing.T) {
	f, ok, err := ParseFrequency("O/N", false, "field")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, Frequency{Count: 1, Unit: Day}, f)
}

func TestParseFrequencyTokens(t *testing.T) {
	cases := []struct {
		token string
		want  Frequency
	}{
		{"3M", Frequency{Count: 3, Unit: Month}},
		{"12m", Frequency{Count: 12, Unit: Month}},
		{"2Y", Frequency{Count: 2, Unit: Year}},
		{"1W", Frequency{Count: 1, Unit: Week}},
	}
	for _, c := range cases {
		f, ok, err := ParseFrequency(c.token, true, "field")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, c.want, f)
	}
}

func TestParseFrequencyStrictRejectsGarbage(t *testing.T) {
	_, _, err := ParseFrequency("nonsense", true, "repricing_freq")
	require.Error(t, err)
	var target *InvalidFrequencyError
	assert.ErrorAs(t, err, &target)
	assert.Equal(t, "repricing_freq", target.Field)
}

func TestParseFrequencyNonStrictToleratesGarbage(t *testing.T) {
	f, ok, err := ParseFrequency("nonsense", false, "field")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, f.IsZero())
}

func TestAdd(t *testing.T) {
	start := d(2026, 1, 31)
	assert.Equal(t, d(2026, 4, 30), Add(start, Frequency{Count: 3, Unit: Month}))
	assert.Equal(t, d(2027, 1, 31), Add(start, Frequency{Count: 1, Unit: Year}))
	assert.Equal(t, d(2026, 2, 7), Add(start, Frequency{Count: 1, Unit: Week}))
	assert.Equal(t, start, Add(start, Frequency{}))
}
