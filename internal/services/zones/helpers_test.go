package zones

import (
	"time"

	"ZoneWatch/internal/domain/models"
)

var t0 = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

func ohlc(o, h, l, c float64) models.Candle {
	return models.Candle{Open: o, High: h, Low: l, Close: c}
}

// series stamps daily times onto the candles.
func series(cs ...models.Candle) []models.Candle {
	out := make([]models.Candle, len(cs))
	for i, c := range cs {
		c.Time = t0.AddDate(0, 0, i)
		out[i] = c
	}
	return out
}

// scenarioThresholds: leg [60,100], base [0,50].
func scenarioThresholds() Thresholds {
	t := DefaultThresholds()
	t.LegMinPct = 60
	return t
}

// Body percentages 80, 20, 20, 75; leg-out closes above the leg-in and base highs.
func demandPattern() []models.Candle {
	return series(
		ohlc(100, 110, 100, 108),
		ohlc(108, 110, 105, 109),
		ohlc(109, 111, 106, 108),
		ohlc(110, 118, 110, 116),
	)
}

func supplyPattern() []models.Candle {
	return series(
		ohlc(110, 110, 100, 102),
		ohlc(102, 104, 99, 101),
		ohlc(101, 103, 98, 102),
		ohlc(97, 97, 89, 91),
	)
}

var (
	legCandle     = ohlc(100, 110, 100, 108)   // 80%
	baseCandle    = ohlc(100, 110, 100, 102)   // 20%
	neutralCandle = ohlc(100, 110, 100, 105.5) // 55%
)
