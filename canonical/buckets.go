package canonical

import "math"

// Bucket is one cell of the regulatory time-bucket grid used to break EVE
// down by maturity band. Upper is +Inf for the last, open-ended
// bucket.
type Bucket struct {
	Label          string
	Lower          float64 // years, inclusive
	Upper          float64 // years, exclusive
	Representative float64 // years, the bucket's midpoint (a fixed 10 for the open-ended bucket); eve.Evaluate discounts each flow at its own date and does not read it
}

// EVEBuckets is the regulatory EVE/visualization bucket grid: the same
// maturity bands as the EBA non-maturity-deposit distribution,
// reused here as the standard bucketing grid for bucketed EVE breakdowns so
// that an NMD's behavioural distribution and a bucketed EVE report always
// speak the same bucket labels.
var EVEBuckets = []Bucket{
	{"ON_1M", 0, 1.0 / 12, 0.5 / 12},
	{"1M_3M", 1.0 / 12, 3.0 / 12, 2.0 / 12},
	{"3M_6M", 3.0 / 12, 6.0 / 12, 4.5 / 12},
	{"6M_9M", 6.0 / 12, 9.0 / 12, 7.5 / 12},
	{"9M_1Y", 9.0 / 12, 1, 10.5 / 12},
	{"1Y_1.5Y", 1, 1.5, 1.25},
	{"1.5Y_2Y", 1.5, 2, 1.75},
	{"2Y_3Y", 2, 3, 2.5},
	{"3Y_4Y", 3, 4, 3.5},
	{"4Y_5Y", 4, 5, 4.5},
	{"5Y_6Y", 5, 6, 5.5},
	{"6Y_7Y", 6, 7, 6.5},
	{"7Y_8Y", 7, 8, 7.5},
	{"8Y_9Y", 8, 9, 8.5},
	{"9Y_10Y", 9, 10, 9.5},
	{"10Y_15Y", 10, 15, 12.5},
	{"15Y_20Y", 15, 20, 17.5},
	{"20Y_PLUS", 20, math.Inf(1), 10}, // open-ended representative t is fixed at 10y; ProjectionConfig.OpenEndedBucketRepresentativeYears does not change it
}

// VisualizationBuckets is the coarser reporting grid: a
// reduced set of the same bands, useful for UI display where the full
// 18-band EVE grid is too granular.
var VisualizationBuckets = []Bucket{
	{"0_1Y", 0, 1, 0.5},
	{"1Y_3Y", 1, 3, 2},
	{"3Y_5Y", 3, 5, 4},
	{"5Y_10Y", 5, 10, 7.5},
	{"10Y_20Y", 10, 20, 15},
	{"20Y_PLUS", 20, math.Inf(1), 10},
}

// BucketFor returns the index into grid holding tYears. Values below zero
// are clamped to the first bucket.
func BucketFor(grid []Bucket, tYears float64) int {
	t := math.Max(0, tYears)
	for i, b := range grid {
		if t >= b.Lower && t < b.Upper {
			return i
		}
	}
	return len(grid) - 1
}

// BucketLabel is a convenience wrapper returning the bucket's label directly.
func BucketLabel(grid []Bucket, tYears float64) string {
	return grid[BucketFor(grid, tYears)].Label
}
