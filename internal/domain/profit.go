package domain

import "time"

// ProfitRecord is the USD valuation of one balance row.
// Corresponds to profits table in ClickHouse.
type ProfitRecord struct {
	AssetID              string    // asset identifier
	Wallet               string    // normalized wallet address
	Date                 time.Time // UTC day
	TransferSequence     int64     // copied from BalanceRecord, 0 for price-only rows
	Price                float64   // USD price used
	NetTransferTokens    float64   // net transfer in tokens
	BalanceTokens        float64   // balance in tokens
	UsdNetTransfers      float64   // net_transfer_tokens * price
	UsdBalance           float64   // recurrence result
	ProfitsChange        float64   // prev_balance_tokens * (price - prev_price)
	ProfitsCumulative    float64   // running sum of profits_change
	UsdInflows           float64   // max(usd_net_transfers, 0)
	UsdInflowsCumulative float64   // running sum of usd_inflows
	TotalReturn          *float64  // profits_cumulative / usd_inflows_cumulative (nullable)
	Imputed              bool      // price was imputed or row was collapsed from pre-price history
}
