package zones

import (
	"math"

	"ZoneWatch/internal/domain/models"
)

// Confirmer accepts or rejects candidates and computes the zone band.
type Confirmer struct {
	demand bool
	supply bool
}

func NewConfirmer(t Thresholds) *Confirmer {
	return &Confirmer{demand: t.Allows(models.Demand), supply: t.Allows(models.Supply)}
}

// Confirm returns the zone for an accepted candidate. Rejection is not an error.
//
// Demand: leg-out is bullish and closes above the leg-in high and every base high.
// Supply mirrors it below the leg-in low and every base low.
func (c *Confirmer) Confirm(candles []models.Candle, cand Candidate) (models.Zone, bool) {
	legIn, legOut := candles[cand.LegIn], candles[cand.LegOut]

	baseHigh, baseLow := math.Inf(-1), math.Inf(1)
	for _, k := range cand.Base {
		baseHigh = math.Max(baseHigh, candles[k].High)
		baseLow = math.Min(baseLow, candles[k].Low)
	}

	var dir models.Direction
	switch {
	case c.demand && legOut.IsBullish() && legOut.Close > legIn.High && legOut.Close > baseHigh:
		dir = models.Demand
	case c.supply && legOut.IsBearish() && legOut.Close < legIn.Low && legOut.Close < baseLow:
		dir = models.Supply
	default:
		return models.Zone{}, false
	}

	lower, upper := baseLow, baseHigh
	if len(cand.Base) == 0 {
		lower = math.Min(legIn.Low, legOut.Low)
		upper = math.Max(legIn.High, legOut.High)
	}

	return models.Zone{
		Direction:     dir,
		LegInIndex:    cand.LegIn,
		LegOutIndex:   cand.LegOut,
		BaseIndices:   append([]int{}, cand.Base...),
		StartTime:     legIn.Time,
		EndTime:       legOut.Time,
		LowerBound:    lower,
		UpperBound:    upper,
		Outcome:       models.OutcomeUntested,
		Risk:          upper - lower,
		EntryIndex:    -1,
		ResolvedIndex: -1,
	}, true
}
