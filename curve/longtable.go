package curve

import (
	"time"

	"github.com/almready/irrbb/daycount"
)

// LongRow is one row of the canonical yield-curve long table:
// (index_name, tenor_token, forward_rate, tenor_date, year_fraction).
type LongRow struct {
	IndexName    string
	TenorToken   string
	ForwardRate  float64
	TenorDate    time.Time
	YearFraction float64
}

// BuildSet groups a long table into a Set, one ForwardCurve per index_name.
// YearFraction on each row is trusted as already computed by the ingestion
// collaborator against (analysisDate, base); the core never recomputes it
// from TenorToken, since tokens are bank-specific free text beyond the
// frequency-token grammar.
func BuildSet(rows []LongRow, analysisDate time.Time, base daycount.Convention) *Set {
	byIndex := map[string][]Sample{}
	for _, r := range rows {
		byIndex[r.IndexName] = append(byIndex[r.IndexName], Sample{TYears: r.YearFraction, Rate: r.ForwardRate})
	}

	curves := make(map[string]*ForwardCurve, len(byIndex))
	for idx, samples := range byIndex {
		curves[idx] = New(samples)
	}

	return &Set{AnalysisDate: analysisDate, Base: base, Curves: curves}
}
