package clickhouse

import "fmt"

// Schema returns the DDL for the candle and order tables in database db.
// Candles are deduplicated on (symbol, interval, ts); the latest write wins.
func Schema(db string) []string {
	return []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", db),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.candles (
	symbol LowCardinality(String),
	interval LowCardinality(String),
	ts DateTime64(3, 'UTC'),
	open Float64,
	high Float64,
	low Float64,
	close Float64,
	volume Float64,
	inserted_at DateTime64(3, 'UTC') DEFAULT now64(3)
) ENGINE = ReplacingMergeTree(inserted_at)
PARTITION BY (interval, toYYYYMM(ts))
ORDER BY (symbol, interval, ts)`, db),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.orders (
	id String,
	symbol LowCardinality(String),
	side LowCardinality(String),
	price Float64,
	zone_price Float64,
	interval LowCardinality(String),
	created_at DateTime64(3, 'UTC')
) ENGINE = MergeTree
PARTITION BY toYYYYMM(created_at)
ORDER BY (symbol, created_at, id)`, db),
	}
}
