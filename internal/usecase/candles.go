package usecase

import (
	"context"
	"fmt"

	"ZoneWatch/internal/domain/models"
	domrepo "ZoneWatch/internal/domain/repository"
)

// CandlesUseCase serves raw candles for charting alongside zones.
type CandlesUseCase struct {
	source domrepo.CandleSource
}

func NewCandlesUseCase(source domrepo.CandleSource) *CandlesUseCase {
	return &CandlesUseCase{source: source}
}

type GetCandlesParams struct {
	Symbol   string
	Interval domrepo.Interval
	Range    domrepo.FetchRange
	Limit    int
}

type GetCandlesResult struct {
	Symbol   string          `json:"symbol"`
	Interval string          `json:"interval"`
	Count    int             `json:"count"`
	Candles  []models.Candle `json:"candles"`
}

// GetCandles returns at most Limit candles, keeping the most recent ones.
func (uc *CandlesUseCase) GetCandles(ctx context.Context, p GetCandlesParams) (*GetCandlesResult, error) {
	if p.Symbol == "" {
		return nil, fmt.Errorf("symbol required")
	}
	if p.Range.IsExplicit() && p.Range.From.After(p.Range.To) {
		return nil, fmt.Errorf("from must be <= to")
	}
	if p.Limit <= 0 {
		p.Limit = 5000
	}
	if p.Limit > 50000 {
		p.Limit = 50000
	}

	candles, err := uc.source.FetchCandles(ctx, p.Symbol, p.Interval, p.Range)
	if err != nil {
		return nil, fmt.Errorf("get candles: %w", err)
	}
	if len(candles) > p.Limit {
		candles = candles[len(candles)-p.Limit:]
	}
	if candles == nil {
		candles = []models.Candle{}
	}

	return &GetCandlesResult{
		Symbol:   p.Symbol,
		Interval: string(p.Interval),
		Count:    len(candles),
		Candles:  candles,
	}, nil
}
