// Package reporting renders ledger summaries as Markdown and CSV.
package reporting

import (
	"time"

	"coin-wallet-ledger/internal/orchestrator"
)

// Report is the rendered view of one run.
type Report struct {
	GeneratedAt time.Time
	Run         *orchestrator.RunReport
	Assets      []AssetSummary // ordered by asset ID
}

// AssetSummary aggregates the latest profit row of every wallet of an asset.
type AssetSummary struct {
	AssetID              string
	Source               string
	Status               orchestrator.Status
	Wallets              int
	UsdBalance           float64
	ProfitsCumulative    float64
	UsdInflowsCumulative float64
	TotalReturn          *float64 // nil when no inflows
	LastDate             time.Time
}
