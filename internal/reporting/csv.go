package reporting

import (
	"fmt"
	"strings"
	"time"

	"coin-wallet-ledger/internal/domain"
)

// RenderCSV renders asset summaries as CSV string.
func RenderCSV(assets []AssetSummary) string {
	var sb strings.Builder

	sb.WriteString("asset_id,source,status,wallets,last_date,")
	sb.WriteString("usd_balance,profits_cumulative,usd_inflows_cumulative,total_return\n")

	for _, a := range assets {
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%d,%s,%.6f,%.6f,%.6f,%s\n",
			a.AssetID,
			a.Source,
			a.Status,
			a.Wallets,
			formatDate(a.LastDate),
			a.UsdBalance,
			a.ProfitsCumulative,
			a.UsdInflowsCumulative,
			formatRatio(a.TotalReturn),
		))
	}

	return sb.String()
}

// RenderProfitsCSV renders profit rows as CSV string.
func RenderProfitsCSV(rows []*domain.ProfitRecord) string {
	var sb strings.Builder

	sb.WriteString("asset_id,wallet,date,transfer_sequence,price,net_transfer_tokens,balance_tokens,")
	sb.WriteString("usd_net_transfers,usd_balance,profits_change,profits_cumulative,")
	sb.WriteString("usd_inflows,usd_inflows_cumulative,total_return,imputed\n")

	for _, r := range rows {
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%d,%.8f,%.8f,%.8f,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%s,%t\n",
			r.AssetID,
			r.Wallet,
			formatDate(r.Date),
			r.TransferSequence,
			r.Price,
			r.NetTransferTokens,
			r.BalanceTokens,
			r.UsdNetTransfers,
			r.UsdBalance,
			r.ProfitsChange,
			r.ProfitsCumulative,
			r.UsdInflows,
			r.UsdInflowsCumulative,
			formatRatio(r.TotalReturn),
			r.Imputed,
		))
	}

	return sb.String()
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.DateOnly)
}

func formatRatio(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.6f", *v)
}
