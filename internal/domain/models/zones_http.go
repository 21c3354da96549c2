package models

// Requests for zone HTTP endpoints. Defined in domain for consistency and reuse.

type ZonesRequest struct {
	Symbol   string `query:"symbol" json:"symbol" validate:"required,symbol"`
	Interval string `query:"interval" json:"interval" default:"1d" validate:"oneof=1m 5m 15m 1h 1d 1wk 1mo"`
	Period   string `query:"period" json:"period" default:"1y" validate:"omitempty,oneof=1d 5d 1mo 3mo 6mo 1y 2y 5y 10y max"`
	From     string `query:"from" json:"from"`
	To       string `query:"to" json:"to"`
	Preset   string `query:"preset" json:"preset" validate:"omitempty,oneof=default strict balanced momentum"`
}

type NestedZonesRequest struct {
	Symbol         string `query:"symbol" json:"symbol" validate:"required,symbol"`
	LowerInterval  string `query:"lower_interval" json:"lower_interval" default:"1d" validate:"oneof=1m 5m 15m 1h 1d 1wk 1mo"`
	LowerPeriod    string `query:"lower_period" json:"lower_period" default:"1y" validate:"oneof=1d 5d 1mo 3mo 6mo 1y 2y 5y 10y max"`
	HigherInterval string `query:"higher_interval" json:"higher_interval" default:"1mo" validate:"oneof=1h 1d 1wk 1mo"`
	HigherPeriod   string `query:"higher_period" json:"higher_period" default:"5y" validate:"oneof=1mo 3mo 6mo 1y 2y 5y 10y max"`
	Mode           string `query:"mode" json:"mode" default:"overlap" validate:"oneof=overlap contained"`
	Preset         string `query:"preset" json:"preset" validate:"omitempty,oneof=default strict balanced momentum"`
}

type CandlesRequest struct {
	Symbol   string `query:"symbol" json:"symbol" validate:"required,symbol"`
	Interval string `query:"interval" json:"interval" default:"1d" validate:"oneof=1m 5m 15m 1h 1d 1wk 1mo"`
	Period   string `query:"period" json:"period" default:"1y" validate:"omitempty,oneof=1d 5d 1mo 3mo 6mo 1y 2y 5y 10y max"`
	From     string `query:"from" json:"from"`
	To       string `query:"to" json:"to"`
	Limit    int    `query:"limit" json:"limit" default:"5000" validate:"gte=1,lte=50000"`
}

type OrdersRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"omitempty,symbol"`
	Limit  int    `query:"limit" json:"limit" default:"100" validate:"gte=1,lte=1000"`
}

type CatalogRequest struct {
	Latest bool `query:"latest" json:"latest"`
}
