package valuation

import "coin-wallet-ledger/internal/domain"

// accumulator carries the previous row of a (asset, wallet) through the fold.
type accumulator struct {
	started           bool
	prevBalance       float64 // tokens
	prevPrice         float64
	prevUsdBalance    float64
	inflowsCumulative float64
	profitsCumulative float64
}

// step values one row and advances the accumulator.
//
//	usd_net_transfers      = net * price
//	profits_change         = prev_balance * (price - prev_price)
//	usd_balance            = prev_usd_balance + usd_net_transfers + profits_change
//	usd_inflows_cumulative = prev + max(usd_net_transfers, 0)
//
// The first row has usd_balance = balance * price and profits_change = 0.
func (a *accumulator) step(net, balance, price float64) *domain.ProfitRecord {
	usdNet := net * price

	var change, usdBalance float64
	if a.started {
		change = a.prevBalance * (price - a.prevPrice)
		usdBalance = a.prevUsdBalance + usdNet + change
	} else {
		usdBalance = balance * price
	}

	inflow := usdNet
	if inflow < 0 {
		inflow = 0
	}
	a.inflowsCumulative += inflow
	a.profitsCumulative += change

	rec := &domain.ProfitRecord{
		Price:                price,
		NetTransferTokens:    net,
		BalanceTokens:        balance,
		UsdNetTransfers:      usdNet,
		UsdBalance:           usdBalance,
		ProfitsChange:        change,
		ProfitsCumulative:    a.profitsCumulative,
		UsdInflows:           inflow,
		UsdInflowsCumulative: a.inflowsCumulative,
	}
	if a.inflowsCumulative != 0 {
		ret := a.profitsCumulative / a.inflowsCumulative
		rec.TotalReturn = &ret
	}

	a.started = true
	a.prevBalance = balance
	a.prevPrice = price
	a.prevUsdBalance = usdBalance
	return rec
}
