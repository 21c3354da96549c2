package service

import "ZoneWatch/internal/domain/models"

// ZoneDetector finds demand/supply zones in a chronological candle series.
type ZoneDetector interface {
	Detect(candles []models.Candle) ([]models.Zone, error)
}
