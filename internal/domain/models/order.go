package models

import (
	"time"

	"github.com/google/uuid"
)

// Side of an order record.
type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

// SideFor maps a zone direction to the order side taken on proximity.
func SideFor(d Direction) Side {
	if d == Supply {
		return Sell
	}
	return Buy
}

// OrderRecord is emitted by the monitor when live price approaches a zone.
type OrderRecord struct {
	ID        string    `json:"id"`
	Symbol    string    `json:"symbol"`
	Side      Side      `json:"side"`
	Price     float64   `json:"price"`
	ZonePrice float64   `json:"zone_price"`
	Interval  string    `json:"interval"`
	CreatedAt time.Time `json:"created_at"`
}

// NewOrderRecord builds a record with a fresh ID.
func NewOrderRecord(symbol string, side Side, price, zonePrice float64, interval string, at time.Time) *OrderRecord {
	return &OrderRecord{
		ID:        uuid.NewString(),
		Symbol:    symbol,
		Side:      side,
		Price:     price,
		ZonePrice: zonePrice,
		Interval:  interval,
		CreatedAt: at.UTC(),
	}
}
