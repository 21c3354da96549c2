package zones

import (
	"fmt"

	"ZoneWatch/internal/domain/models"
)

// NestingMode selects how a lower-timeframe zone must relate to a higher-timeframe zone.
type NestingMode string

const (
	// NestOverlap keeps a lower zone whose lower bound is below any higher zone's upper bound.
	NestOverlap NestingMode = "overlap"
	// NestContained requires the lower zone band to lie inside a higher zone band.
	NestContained NestingMode = "contained"
)

func ParseNestingMode(s string) (NestingMode, error) {
	switch NestingMode(s) {
	case "", NestOverlap:
		return NestOverlap, nil
	case NestContained:
		return NestContained, nil
	}
	return "", fmt.Errorf("unknown nesting mode %q", s)
}

// FilterNested returns the lower-timeframe zones nested in at least one
// higher-timeframe zone of the same direction.
func FilterNested(lower, higher []models.Zone, mode NestingMode) []models.Zone {
	out := make([]models.Zone, 0, len(lower))
	for _, lz := range lower {
		for _, hz := range higher {
			if nested(lz, hz, mode) {
				out = append(out, lz)
				break
			}
		}
	}
	return out
}

func nested(lz, hz models.Zone, mode NestingMode) bool {
	if lz.Direction != hz.Direction {
		return false
	}
	if mode == NestContained {
		return hz.LowerBound <= lz.LowerBound && lz.UpperBound <= hz.UpperBound
	}
	return lz.LowerBound < hz.UpperBound
}
