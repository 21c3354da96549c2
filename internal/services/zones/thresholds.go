package zones

import (
	"errors"
	"fmt"

	"ZoneWatch/internal/domain/models"
)

var (
	ErrInvalidThresholds = errors.New("invalid thresholds")
	ErrUnknownPreset     = errors.New("unknown preset")
)

// Thresholds configures classification, scanning and outcome rules.
// Body percentages are inclusive bands in 0..100. The leg and base bands may
// overlap; a body in the overlap classifies as a leg, never as a base. The
// default bands share only 50%, so a 50% body is a leg.
type Thresholds struct {
	LegMinPct  float64 `yaml:"leg_min_pct" json:"leg_min_pct" default:"50"`
	LegMaxPct  float64 `yaml:"leg_max_pct" json:"leg_max_pct" default:"100"`
	BaseMinPct float64 `yaml:"base_min_pct" json:"base_min_pct" default:"0"`
	BaseMaxPct float64 `yaml:"base_max_pct" json:"base_max_pct" default:"50"`
	// Leg-out band; both zero means "same as the leg band".
	LegOutMinPct float64 `yaml:"leg_out_min_pct" json:"leg_out_min_pct"`
	LegOutMaxPct float64 `yaml:"leg_out_max_pct" json:"leg_out_max_pct"`

	MinBaseCount       int     `yaml:"min_base_count" json:"min_base_count" default:"1"`
	MaxBaseCount       int     `yaml:"max_base_count" json:"max_base_count" default:"5"`
	MinPatternLength   int     `yaml:"min_pattern_length" json:"min_pattern_length" default:"3"`
	TargetRiskMultiple float64 `yaml:"target_risk_multiple" json:"target_risk_multiple" default:"2"`

	Directions []models.Direction `yaml:"directions" json:"directions" default:"[\"demand\",\"supply\"]"`
}

// DefaultThresholds returns the "default" preset.
func DefaultThresholds() Thresholds {
	return Thresholds{
		LegMinPct:          50,
		LegMaxPct:          100,
		BaseMinPct:         0,
		BaseMaxPct:         50,
		MinBaseCount:       1,
		MaxBaseCount:       5,
		MinPatternLength:   3,
		TargetRiskMultiple: 2,
		Directions:         []models.Direction{models.Demand, models.Supply},
	}
}

// PresetNames lists the named threshold configurations.
var PresetNames = []string{"default", "strict", "balanced", "momentum"}

// Preset returns a named threshold configuration.
func Preset(name string) (Thresholds, error) {
	t := DefaultThresholds()
	switch name {
	case "", "default":
	case "strict":
		t.LegMinPct = 60
		t.BaseMaxPct = 45
		t.LegOutMinPct, t.LegOutMaxPct = 60, 100
	case "balanced":
		t.MinBaseCount = 0
		t.MaxBaseCount = 4
	case "momentum":
		t.LegOutMinPct, t.LegOutMaxPct = 70, 100
		t.MaxBaseCount = 4
	default:
		return Thresholds{}, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	return t, nil
}

// LegOutBand returns the effective leg-out band.
func (t Thresholds) LegOutBand() (float64, float64) {
	if t.LegOutMinPct == 0 && t.LegOutMaxPct == 0 {
		return t.LegMinPct, t.LegMaxPct
	}
	return t.LegOutMinPct, t.LegOutMaxPct
}

// Allows reports whether zones of direction d are produced.
func (t Thresholds) Allows(d models.Direction) bool {
	for _, x := range t.Directions {
		if x == d {
			return true
		}
	}
	return false
}

// ThresholdError describes an invalid threshold configuration.
type ThresholdError struct {
	Field  string
	Reason string
}

func (e *ThresholdError) Error() string {
	return fmt.Sprintf("invalid thresholds: %s %s", e.Field, e.Reason)
}

func (e *ThresholdError) Unwrap() error { return ErrInvalidThresholds }

// Validate checks ranges and band ordering.
func (t Thresholds) Validate() error {
	pcts := []struct {
		name string
		v    float64
	}{
		{"leg_min_pct", t.LegMinPct}, {"leg_max_pct", t.LegMaxPct},
		{"base_min_pct", t.BaseMinPct}, {"base_max_pct", t.BaseMaxPct},
		{"leg_out_min_pct", t.LegOutMinPct}, {"leg_out_max_pct", t.LegOutMaxPct},
	}
	for _, p := range pcts {
		if p.v < 0 || p.v > 100 {
			return &ThresholdError{Field: p.name, Reason: fmt.Sprintf("must be within [0, 100], got %g", p.v)}
		}
	}
	if t.LegMinPct > t.LegMaxPct {
		return &ThresholdError{Field: "leg_min_pct", Reason: "must not exceed leg_max_pct"}
	}
	if t.BaseMinPct > t.BaseMaxPct {
		return &ThresholdError{Field: "base_min_pct", Reason: "must not exceed base_max_pct"}
	}
	if lo, hi := t.LegOutBand(); lo > hi {
		return &ThresholdError{Field: "leg_out_min_pct", Reason: "must not exceed leg_out_max_pct"}
	}
	if t.MinBaseCount < 0 {
		return &ThresholdError{Field: "min_base_count", Reason: "must be >= 0"}
	}
	if t.MaxBaseCount < t.MinBaseCount {
		return &ThresholdError{Field: "max_base_count", Reason: "must be >= min_base_count"}
	}
	if t.MinPatternLength < 2 {
		return &ThresholdError{Field: "min_pattern_length", Reason: "must be >= 2"}
	}
	if t.TargetRiskMultiple <= 0 {
		return &ThresholdError{Field: "target_risk_multiple", Reason: "must be > 0"}
	}
	if len(t.Directions) == 0 {
		return &ThresholdError{Field: "directions", Reason: "cannot be empty"}
	}
	for _, d := range t.Directions {
		if d != models.Demand && d != models.Supply {
			return &ThresholdError{Field: "directions", Reason: fmt.Sprintf("unknown direction %q", d)}
		}
	}
	return nil
}
