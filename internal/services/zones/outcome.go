package zones

import "ZoneWatch/internal/domain/models"

// OutcomeClassifier forward-simulates the series after a zone's leg-out.
type OutcomeClassifier struct {
	multiple float64
}

func NewOutcomeClassifier(t Thresholds) *OutcomeClassifier {
	return &OutcomeClassifier{multiple: t.TargetRiskMultiple}
}

// Classify returns a copy of z with Outcome, Risk, TargetPrice and the entry/resolution
// indices set. Target is checked before break on the same candle.
func (o *OutcomeClassifier) Classify(z models.Zone, candles []models.Candle) models.Zone {
	z.Risk = z.UpperBound - z.LowerBound
	if z.Direction == models.Supply {
		z.TargetPrice = z.LowerBound - o.multiple*z.Risk
	} else {
		z.TargetPrice = z.UpperBound + o.multiple*z.Risk
	}
	z.Outcome = models.OutcomeFresh
	z.Entered = false
	z.EntryIndex, z.ResolvedIndex = -1, -1

	for k := z.LegOutIndex + 1; k < len(candles); k++ {
		c := candles[k]
		if !z.Entered {
			if c.Low > z.UpperBound || c.High < z.LowerBound {
				continue
			}
			z.Entered = true
			z.EntryIndex = k
		}
		if out, done := o.resolve(z, c); done {
			z.Outcome = out
			z.ResolvedIndex = k
			return z
		}
	}
	return z
}

func (o *OutcomeClassifier) resolve(z models.Zone, c models.Candle) (models.Outcome, bool) {
	if z.Direction == models.Supply {
		switch {
		case c.Low <= z.TargetPrice:
			return models.OutcomeTargetMet, true
		case c.High > z.UpperBound:
			return models.OutcomeBroken, true
		}
		return "", false
	}
	switch {
	case c.High >= z.TargetPrice:
		return models.OutcomeTargetMet, true
	case c.Low < z.LowerBound:
		return models.OutcomeBroken, true
	}
	return "", false
}
