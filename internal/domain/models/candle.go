package models

import (
	"fmt"
	"math"
	"time"
)

// Candle represents one OHLCV period. Values are never mutated after ingestion;
// every derived metric is computed on demand.
type Candle struct {
	Time   time.Time `json:"time"`
	Symbol string    `json:"symbol,omitempty"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// BodySize is |close - open|.
func (c Candle) BodySize() float64 { return math.Abs(c.Close - c.Open) }

// Range is high - low.
func (c Candle) Range() float64 { return c.High - c.Low }

// BodyPercentage is the share of the range covered by the body, 0..100.
// A zero range yields 0.
func (c Candle) BodyPercentage() float64 {
	r := c.Range()
	if r == 0 {
		return 0
	}
	return c.BodySize() / r * 100
}

func (c Candle) IsBullish() bool { return c.Close > c.Open }

func (c Candle) IsBearish() bool { return c.Close < c.Open }

// Validate reports a *MalformedCandleError when the OHLC values are not a real candle.
func (c Candle) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{{"open", c.Open}, {"high", c.High}, {"low", c.Low}, {"close", c.Close}} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return &MalformedCandleError{Index: -1, Reason: f.name + " is not a finite number"}
		}
	}
	if c.High < c.Low {
		return &MalformedCandleError{Index: -1, Reason: fmt.Sprintf("high %.6f below low %.6f", c.High, c.Low)}
	}
	if c.Open < c.Low || c.Open > c.High {
		return &MalformedCandleError{Index: -1, Reason: fmt.Sprintf("open %.6f outside [%.6f, %.6f]", c.Open, c.Low, c.High)}
	}
	if c.Close < c.Low || c.Close > c.High {
		return &MalformedCandleError{Index: -1, Reason: fmt.Sprintf("close %.6f outside [%.6f, %.6f]", c.Close, c.Low, c.High)}
	}
	return nil
}

// MalformedCandleError is returned when a candle sequence contains an impossible candle.
type MalformedCandleError struct {
	Index  int
	Time   time.Time
	Reason string
}

func (e *MalformedCandleError) Error() string {
	if e.Index < 0 {
		return "malformed candle: " + e.Reason
	}
	return fmt.Sprintf("malformed candle at index %d: %s", e.Index, e.Reason)
}

// ValidateCandles checks every candle and returns the first failure with its index set.
func ValidateCandles(candles []Candle) error {
	for i, c := range candles {
		if err := c.Validate(); err != nil {
			me := err.(*MalformedCandleError)
			me.Index = i
			me.Time = c.Time
			return me
		}
	}
	return nil
}
