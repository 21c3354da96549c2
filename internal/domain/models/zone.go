package models

import "time"

// Direction tells whether a zone is a demand (bullish leg-out) or supply (bearish leg-out) zone.
type Direction string

const (
	Demand Direction = "demand"
	Supply Direction = "supply"
)

// Outcome is the fate of a zone after its leg-out candle.
type Outcome string

const (
	OutcomeUntested  Outcome = "untested" // not classified yet
	OutcomeFresh     Outcome = "fresh"
	OutcomeBroken    Outcome = "broken"
	OutcomeTargetMet Outcome = "target_met"
)

// Zone is a confirmed leg-in / base / leg-out pattern and its price band.
type Zone struct {
	Direction   Direction `json:"direction"`
	LegInIndex  int       `json:"leg_in_index"`
	LegOutIndex int       `json:"leg_out_index"`
	BaseIndices []int     `json:"base_indices"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	LowerBound  float64   `json:"lower_bound"`
	UpperBound  float64   `json:"upper_bound"`

	Outcome       Outcome `json:"outcome"`
	Risk          float64 `json:"risk"`
	TargetPrice   float64 `json:"target_price"`
	Entered       bool    `json:"entered"`
	EntryIndex    int     `json:"entry_index"`    // -1 when never entered
	ResolvedIndex int     `json:"resolved_index"` // -1 while fresh
}

// ProximalPrice is the boundary price approaches first: upper bound for demand, lower for supply.
func (z Zone) ProximalPrice() float64 {
	if z.Direction == Supply {
		return z.LowerBound
	}
	return z.UpperBound
}

// OutcomeSummary counts zones per outcome.
type OutcomeSummary struct {
	Total     int `json:"total"`
	Fresh     int `json:"fresh"`
	Broken    int `json:"broken"`
	TargetMet int `json:"target_met"`
}

// Summarize counts outcomes of the given zones.
func Summarize(zones []Zone) OutcomeSummary {
	s := OutcomeSummary{Total: len(zones)}
	for _, z := range zones {
		switch z.Outcome {
		case OutcomeFresh:
			s.Fresh++
		case OutcomeBroken:
			s.Broken++
		case OutcomeTargetMet:
			s.TargetMet++
		}
	}
	return s
}

// ZoneReport is the result of running detection over one symbol/interval.
type ZoneReport struct {
	Symbol    string         `json:"symbol"`
	Interval  string         `json:"interval"`
	Candles   int            `json:"candles"`
	Zones     []Zone         `json:"zones"`
	Summary   OutcomeSummary `json:"summary"`
	Generated time.Time      `json:"generated_at"`
}

// NestedZoneReport holds lower-timeframe zones that sit inside higher-timeframe zones.
type NestedZoneReport struct {
	Symbol         string `json:"symbol"`
	LowerInterval  string `json:"lower_interval"`
	HigherInterval string `json:"higher_interval"`
	Mode           string `json:"mode"`
	HigherZones    []Zone `json:"higher_zones"`
	LowerZones     []Zone `json:"lower_zones"`
	Nested         []Zone `json:"nested"`
}
