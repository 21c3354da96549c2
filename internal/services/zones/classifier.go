package zones

import "ZoneWatch/internal/domain/models"

// Category is the per-candle label used by the scanner.
type Category int

const (
	Neutral Category = iota
	Leg
	Base
)

func (c Category) String() string {
	switch c {
	case Leg:
		return "leg"
	case Base:
		return "base"
	default:
		return "neutral"
	}
}

// Classifier labels candles by body percentage. Labels are never stored on the candle,
// so the same series can be reclassified under other thresholds.
type Classifier struct {
	legMin, legMax       float64
	baseMin, baseMax     float64
	legOutMin, legOutMax float64
}

func NewClassifier(t Thresholds) *Classifier {
	outMin, outMax := t.LegOutBand()
	return &Classifier{
		legMin: t.LegMinPct, legMax: t.LegMaxPct,
		baseMin: t.BaseMinPct, baseMax: t.BaseMaxPct,
		legOutMin: outMin, legOutMax: outMax,
	}
}

// Classify returns Leg, Base or Neutral. When the bands overlap, Leg wins.
func (c *Classifier) Classify(candle models.Candle) Category {
	p := candle.BodyPercentage()
	switch {
	case within(p, c.legMin, c.legMax):
		return Leg
	case within(p, c.baseMin, c.baseMax):
		return Base
	default:
		return Neutral
	}
}

func (c *Classifier) IsLegIn(candle models.Candle) bool { return c.Classify(candle) == Leg }

func (c *Classifier) IsBase(candle models.Candle) bool { return c.Classify(candle) == Base }

func (c *Classifier) IsLegOut(candle models.Candle) bool {
	return within(candle.BodyPercentage(), c.legOutMin, c.legOutMax)
}

func within(v, lo, hi float64) bool { return v >= lo && v <= hi }
