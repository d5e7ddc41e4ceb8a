// Package validation checks derived ledger partitions against the accounting invariants.
// Rows inside the freshness window and rows priced from imputed quotes are excluded
// from the numeric checks.
package validation

import (
	"fmt"
	"math"
	"sort"
	"time"

	"coin-wallet-ledger/internal/domain"
	"coin-wallet-ledger/internal/pricing"
)

// Check names a validation rule.
type Check string

const (
	CheckBalanceSequence  Check = "balance_sequence"
	CheckZeroNetTransfer  Check = "zero_net_transfer"
	CheckRecurrence       Check = "usd_balance_recurrence"
	CheckProfitsChange    Check = "profits_change"
	CheckInflowsMonotonic Check = "usd_inflows_monotonic"
	CheckMarketCap        Check = "usd_balance_market_cap"
)

// Options holds the tunable tolerances.
type Options struct {
	AbsTolerance    float64 // USD
	RelTolerance    float64 // fraction of the previous usd_balance
	InflowTolerance float64 // allowed relative decrease of usd_inflows_cumulative
	FreshnessDays   int
}

// DefaultOptions returns the tolerances used by the ledger.
func DefaultOptions() Options {
	return Options{
		AbsTolerance:    1.0,
		RelTolerance:    0.01,
		InflowTolerance: 0.0001,
		FreshnessDays:   10,
	}
}

// Finding is one failed check.
type Finding struct {
	Check    Check
	Kind     domain.ErrorKind
	AssetID  string
	Wallet   string
	Date     time.Time
	Expected float64
	Actual   float64
}

// Fatal reports whether the finding aborts its partition.
func (f Finding) Fatal() bool {
	return f.Kind.Fatal()
}

func (f Finding) String() string {
	return fmt.Sprintf("%s %s wallet=%s date=%s expected=%.6f actual=%.6f",
		f.Kind, f.Check, f.Wallet, f.Date.Format(time.DateOnly), f.Expected, f.Actual)
}

// Report contains the validation outcome of one asset partition.
type Report struct {
	AssetID         string
	FreshnessCutoff time.Time // rows after this day are not checked; zero when unknown
	RowsChecked     int
	SkippedImputed  int
	SkippedFresh    int
	Findings        []Finding
}

// Fatal reports whether any finding is fatal.
func (r *Report) Fatal() bool {
	for _, f := range r.Findings {
		if f.Fatal() {
			return true
		}
	}
	return false
}

// Warnings returns the non-fatal findings.
func (r *Report) Warnings() []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if !f.Fatal() {
			out = append(out, f)
		}
	}
	return out
}

// Input is the derived data of one asset partition.
type Input struct {
	Asset        *domain.Asset
	NetTransfers []*domain.NetTransferRecord
	Balances     []*domain.BalanceRecord
	Profits      []*domain.ProfitRecord
	Prices       []*domain.PricePoint
}

// FreshnessCutoff returns the last day eligible for validation: the earlier of
// latestRealPrice and latestTransfer, minus days. A zero input yields a zero cutoff.
func FreshnessCutoff(latestRealPrice, latestTransfer time.Time, days int) time.Time {
	if latestRealPrice.IsZero() || latestTransfer.IsZero() {
		return time.Time{}
	}
	boundary := latestRealPrice
	if latestTransfer.Before(boundary) {
		boundary = latestTransfer
	}
	return domain.TruncateDay(boundary).AddDate(0, 0, -days)
}

// Validator runs the partition checks.
type Validator struct {
	opts Options
}

// NewValidator creates a validator.
func NewValidator(opts Options) *Validator {
	return &Validator{opts: opts}
}

// Validate checks one asset partition.
func (v *Validator) Validate(in Input) *Report {
	rep := &Report{AssetID: in.Asset.AssetID}

	var latestTransfer time.Time
	for _, r := range in.NetTransfers {
		if r.Date.After(latestTransfer) {
			latestTransfer = r.Date
		}
		if r.Amount.IsZero() {
			rep.Findings = append(rep.Findings, Finding{
				Check:   CheckZeroNetTransfer,
				Kind:    domain.KindSequenceViolation,
				AssetID: r.AssetID,
				Wallet:  r.Wallet,
				Date:    r.Date,
			})
		}
	}
	latestPrice, _ := pricing.LatestReal(in.Prices)
	rep.FreshnessCutoff = FreshnessCutoff(latestPrice, latestTransfer, v.opts.FreshnessDays)

	v.checkBalances(rep, in.Balances)
	v.checkProfits(rep, in.Asset, in.Profits, in.Prices)
	return rep
}

func (v *Validator) checkBalances(rep *Report, balances []*domain.BalanceRecord) {
	byWallet := make(map[string][]*domain.BalanceRecord)
	for _, b := range balances {
		byWallet[b.Wallet] = append(byWallet[b.Wallet], b)
	}
	for _, wallet := range sortedKeys(byWallet) {
		rs := append([]*domain.BalanceRecord(nil), byWallet[wallet]...)
		sort.SliceStable(rs, func(i, j int) bool { return rs[i].TransferSequence < rs[j].TransferSequence })
		for i := 1; i < len(rs); i++ {
			if rs[i].TransferSequence > rs[i-1].TransferSequence && rs[i].Date.After(rs[i-1].Date) {
				continue
			}
			rep.Findings = append(rep.Findings, Finding{
				Check:    CheckBalanceSequence,
				Kind:     domain.KindSequenceViolation,
				AssetID:  rs[i].AssetID,
				Wallet:   wallet,
				Date:     rs[i].Date,
				Expected: float64(rs[i-1].TransferSequence + 1),
				Actual:   float64(rs[i].TransferSequence),
			})
		}
	}
}

func (v *Validator) checkProfits(rep *Report, asset *domain.Asset, profits []*domain.ProfitRecord, prices []*domain.PricePoint) {
	marketCaps := pricing.Index(prices)

	byWallet := make(map[string][]*domain.ProfitRecord)
	for _, p := range profits {
		byWallet[p.Wallet] = append(byWallet[p.Wallet], p)
	}

	for _, wallet := range sortedKeys(byWallet) {
		rs := append([]*domain.ProfitRecord(nil), byWallet[wallet]...)
		sort.SliceStable(rs, func(i, j int) bool { return rs[i].Date.Before(rs[j].Date) })

		for i, cur := range rs {
			if i > 0 {
				v.checkInflows(rep, rs[i-1], cur)
			}
			if pp, ok := marketCaps[cur.Date]; ok && pp.MarketCap != nil && *pp.MarketCap > 0 && cur.UsdBalance > *pp.MarketCap {
				rep.Findings = append(rep.Findings, Finding{
					Check:    CheckMarketCap,
					Kind:     domain.KindValuationAnomaly,
					AssetID:  asset.AssetID,
					Wallet:   wallet,
					Date:     cur.Date,
					Expected: *pp.MarketCap,
					Actual:   cur.UsdBalance,
				})
			}

			if !rep.FreshnessCutoff.IsZero() && cur.Date.After(rep.FreshnessCutoff) {
				rep.SkippedFresh++
				continue
			}
			if cur.Imputed || (i > 0 && rs[i-1].Imputed) {
				rep.SkippedImputed++
				continue
			}
			rep.RowsChecked++
			if i == 0 {
				continue
			}
			v.checkRecurrence(rep, rs[i-1], cur)
		}
	}
}

func (v *Validator) tolerance(prevUsdBalance float64) float64 {
	return math.Max(v.opts.AbsTolerance, v.opts.RelTolerance*math.Abs(prevUsdBalance))
}

func (v *Validator) checkRecurrence(rep *Report, prev, cur *domain.ProfitRecord) {
	tol := v.tolerance(prev.UsdBalance)

	wantChange := prev.BalanceTokens * (cur.Price - prev.Price)
	if math.Abs(cur.ProfitsChange-wantChange) > tol {
		rep.Findings = append(rep.Findings, Finding{
			Check: CheckProfitsChange, Kind: domain.KindValuationAnomaly,
			AssetID: cur.AssetID, Wallet: cur.Wallet, Date: cur.Date,
			Expected: wantChange, Actual: cur.ProfitsChange,
		})
	}

	wantBalance := prev.UsdBalance + cur.UsdNetTransfers + cur.ProfitsChange
	if math.Abs(cur.UsdBalance-wantBalance) > tol {
		rep.Findings = append(rep.Findings, Finding{
			Check: CheckRecurrence, Kind: domain.KindValuationAnomaly,
			AssetID: cur.AssetID, Wallet: cur.Wallet, Date: cur.Date,
			Expected: wantBalance, Actual: cur.UsdBalance,
		})
	}
}

func (v *Validator) checkInflows(rep *Report, prev, cur *domain.ProfitRecord) {
	floor := prev.UsdInflowsCumulative - v.opts.InflowTolerance*math.Abs(prev.UsdInflowsCumulative)
	if cur.UsdInflowsCumulative < floor {
		rep.Findings = append(rep.Findings, Finding{
			Check: CheckInflowsMonotonic, Kind: domain.KindValuationAnomaly,
			AssetID: cur.AssetID, Wallet: cur.Wallet, Date: cur.Date,
			Expected: prev.UsdInflowsCumulative, Actual: cur.UsdInflowsCumulative,
		})
	}
}

func sortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
