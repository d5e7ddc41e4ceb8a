package domain

import "time"

// PricePoint represents the USD price of an asset on one day.
// Corresponds to price_points table in PostgreSQL.
type PricePoint struct {
	AssetID     string    // asset identifier
	Date        time.Time // UTC day
	Price       float64   // USD price
	MarketCap   *float64  // USD market cap (nullable)
	Imputed     bool      // synthesized, no real quote existed
	DaysImputed int       // consecutive imputed days up to and including Date
}
