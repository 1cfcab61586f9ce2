package shock

import (
	"github.com/almready/irrbb/curve"
)

// BuildScenarioCurveSet applies scenario id to every curve in base, shocking
// and flooring the named risk-free index and shifting every other (basis)
// index by the same δ(t) without flooring. The returned set shares
// base's analysis date and daycount.
func BuildScenarioCurveSet(base *curve.Set, id ScenarioID, riskFreeIndex string, p Parameters, fp FloorParameters) (*curve.Set, error) {
	shocked := &curve.Set{
		AnalysisDate: base.AnalysisDate,
		Base:         base.Base,
		Curves:       make(map[string]*curve.ForwardCurve, len(base.Curves)),
	}

	for index, fc := range base.Curves {
		isRiskFree := index == riskFreeIndex
		var shiftErr error
		shifted := fc.Shift(func(t float64) float64 {
			if shiftErr != nil {
				return 0
			}
			baseRate := fc.Rate(t)
			var newRate float64
			var err error
			if isRiskFree {
				newRate, err = ApplyToRiskFreeRate(baseRate, t, id, p, fp)
			} else {
				newRate, err = ApplyToBasisRate(baseRate, t, id, p)
			}
			if err != nil {
				shiftErr = err
				return 0
			}
			return newRate - baseRate
		})
		if shiftErr != nil {
			return nil, shiftErr
		}
		shocked.Curves[index] = shifted
	}

	return shocked, nil
}

// BuildAllScenarioCurveSets builds one shocked curve set per scenario id.
func BuildAllScenarioCurveSets(base *curve.Set, ids []ScenarioID, riskFreeIndex string, p Parameters, fp FloorParameters) (map[ScenarioID]*curve.Set, error) {
	out := make(map[ScenarioID]*curve.Set, len(ids))
	for _, id := range ids {
		set, err := BuildScenarioCurveSet(base, id, riskFreeIndex, p, fp)
		if err != nil {
			return nil, err
		}
		out[id] = set
	}
	return out, nil
}
