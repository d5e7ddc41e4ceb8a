package eligibility

import (
	"coin-wallet-ledger/internal/chainaddr"
	"coin-wallet-ledger/internal/domain"
)

// Wallet exclusion reasons.
const (
	WalletReasonSentinel       = "sentinel"
	WalletReasonProgramDerived = "program_derived"
	WalletReasonInvalid        = "invalid_address"
	WalletReasonDenylist       = "denylist"
	WalletReasonTrackedAsset   = "tracked_asset_contract"
)

// WalletFilter removes addresses that are not investor wallets:
// mint/burn sentinels, program-owned Solana accounts, token contracts, and a configured denylist.
type WalletFilter struct {
	denied map[domain.AssetKey]struct{}
	assets map[domain.AssetKey]struct{}
}

// NewWalletFilter builds a filter. deniedWallets maps chain name to addresses.
// Contract addresses of tracked assets are always excluded on their own chain.
func NewWalletFilter(deniedWallets map[string][]string, tracked []*domain.Asset) *WalletFilter {
	f := &WalletFilter{
		denied: make(map[domain.AssetKey]struct{}),
		assets: make(map[domain.AssetKey]struct{}, len(tracked)),
	}
	for chain, addrs := range deniedWallets {
		c := domain.LookupChain(chain)
		for _, addr := range addrs {
			f.denied[domain.AssetKey{Chain: c.Name, Address: c.NormalizeAddress(addr)}] = struct{}{}
		}
	}
	for _, a := range tracked {
		f.assets[a.Key()] = struct{}{}
	}
	return f
}

// Reason returns why a wallet is excluded on chain, or "" if it is kept.
func (f *WalletFilter) Reason(chain, wallet string) string {
	switch chainaddr.Classify(chain, wallet) {
	case chainaddr.KindSentinel:
		return WalletReasonSentinel
	case chainaddr.KindProgramDerived:
		return WalletReasonProgramDerived
	case chainaddr.KindInvalid:
		return WalletReasonInvalid
	}

	c := domain.LookupChain(chain)
	key := domain.AssetKey{Chain: c.Name, Address: c.NormalizeAddress(wallet)}
	if _, ok := f.denied[key]; ok {
		return WalletReasonDenylist
	}
	if _, ok := f.assets[key]; ok {
		return WalletReasonTrackedAsset
	}
	return ""
}

// Keep reports whether wallet takes part in accounting.
func (f *WalletFilter) Keep(chain, wallet string) bool {
	return f.Reason(chain, wallet) == ""
}

// FilterRecords drops net transfer records of excluded wallets and counts drops per reason.
func (f *WalletFilter) FilterRecords(chain string, records []*domain.NetTransferRecord) ([]*domain.NetTransferRecord, map[string]int) {
	dropped := make(map[string]int)
	out := make([]*domain.NetTransferRecord, 0, len(records))
	for _, r := range records {
		if reason := f.Reason(chain, r.Wallet); reason != "" {
			dropped[reason]++
			continue
		}
		out = append(out, r)
	}
	return out, dropped
}
