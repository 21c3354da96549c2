package zones

import (
	"fmt"

	"ZoneWatch/internal/domain/models"
	"ZoneWatch/internal/domain/service"
)

var _ service.ZoneDetector = (*Detector)(nil)

// Detector runs validate -> scan -> confirm -> outcome. It holds no mutable
// state and is safe for concurrent use.
type Detector struct {
	t         Thresholds
	scanner   *Scanner
	confirmer *Confirmer
	outcome   *OutcomeClassifier
}

// NewDetector validates t and builds the pipeline.
func NewDetector(t Thresholds) (*Detector, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	cls := NewClassifier(t)
	return &Detector{
		t:         t,
		scanner:   NewScanner(cls, t),
		confirmer: NewConfirmer(t),
		outcome:   NewOutcomeClassifier(t),
	}, nil
}

func (d *Detector) Thresholds() Thresholds { return d.t }

// Detect returns confirmed, outcome-annotated zones in leg-in order.
// A series without patterns yields an empty slice.
func (d *Detector) Detect(candles []models.Candle) ([]models.Zone, error) {
	if err := models.ValidateCandles(candles); err != nil {
		return nil, err
	}
	zones := make([]models.Zone, 0)
	for _, cand := range d.scanner.Scan(candles) {
		z, ok := d.confirmer.Confirm(candles, cand)
		if !ok {
			continue
		}
		zones = append(zones, d.outcome.Classify(z, candles))
	}
	return zones, nil
}

// Registry resolves detectors by preset name. The empty name maps to the configured base.
type Registry struct {
	base    *Detector
	presets map[string]*Detector
}

func NewRegistry(base Thresholds) (*Registry, error) {
	bd, err := NewDetector(base)
	if err != nil {
		return nil, err
	}
	r := &Registry{base: bd, presets: make(map[string]*Detector, len(PresetNames))}
	for _, name := range PresetNames {
		t, err := Preset(name)
		if err != nil {
			return nil, err
		}
		d, err := NewDetector(t)
		if err != nil {
			return nil, fmt.Errorf("preset %s: %w", name, err)
		}
		r.presets[name] = d
	}
	return r, nil
}

func (r *Registry) Get(preset string) (*Detector, error) {
	if preset == "" {
		return r.base, nil
	}
	d, ok := r.presets[preset]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPreset, preset)
	}
	return d, nil
}
