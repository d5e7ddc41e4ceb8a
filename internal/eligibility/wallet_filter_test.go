package eligibility

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"coin-wallet-ledger/internal/domain"
)

func TestWalletFilter_Reason(t *testing.T) {
	tracked := []*domain.Asset{{AssetID: "pepe", Chain: "ethereum", Address: "0x6982508145454Ce325dDbE47a25d4ec3d2311933"}}
	denied := map[string][]string{"ethereum": {"0xDDDDDDDDDDDDDDDDDDDDDDDDDDDDDDDDDDDDDDDD"}}
	f := NewWalletFilter(denied, tracked)

	tests := []struct {
		wallet string
		want   string
	}{
		{"0x1111111111111111111111111111111111111111", ""},
		{"0x0000000000000000000000000000000000000000", WalletReasonSentinel},
		{"None", WalletReasonSentinel},
		{"0xdddddddddddddddddddddddddddddddddddddddd", WalletReasonDenylist},
		{"0x6982508145454ce325ddbe47a25d4ec3d2311933", WalletReasonTrackedAsset},
		{"0x12", WalletReasonInvalid},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, f.Reason("ethereum", tt.wallet), tt.wallet)
	}

	// The tracked contract is only excluded on its own chain.
	assert.True(t, f.Keep("base", "0x6982508145454ce325ddbe47a25d4ec3d2311933"))
}

func TestWalletFilter_FilterRecords(t *testing.T) {
	f := NewWalletFilter(nil, nil)
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	records := []*domain.NetTransferRecord{
		{AssetID: "pepe", Wallet: "0x1111111111111111111111111111111111111111", Date: day, Amount: decimal.NewFromInt(1)},
		{AssetID: "pepe", Wallet: "0x0000000000000000000000000000000000000000", Date: day, Amount: decimal.NewFromInt(-1)},
	}

	kept, dropped := f.FilterRecords("ethereum", records)
	assert.Len(t, kept, 1)
	assert.Equal(t, map[string]int{WalletReasonSentinel: 1}, dropped)
}
