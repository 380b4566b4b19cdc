package domain

// Ticker is the backend's last-price snapshot for a symbol.
type Ticker struct {
	Symbol       string  `json:"symbol"`
	LastPrice    float64 `json:"last_price"`
	Price24hPcnt float64 `json:"price_24h_pcnt"`
	Volume24h    float64 `json:"volume_24h"`
}

// GainerRow is one row of the top-gainers board. Selecting a row in the
// dashboard feeds its LastPrice into the calculator as reference price.
type GainerRow struct {
	Rank         int     `json:"rank"`
	Symbol       string  `json:"symbol"`
	LastPrice    float64 `json:"last_price"`
	Price24hPcnt float64 `json:"price_24h_pcnt"`
	Volume24h    float64 `json:"volume_24h"`
}

// BotStatus is the trading bot state reported by the backend.
type BotStatus struct {
	Running       bool   `json:"running"`
	Strategy      string `json:"strategy"`
	UptimeSec     int64  `json:"uptime_sec"`
	OpenPositions int    `json:"open_positions"`
}
