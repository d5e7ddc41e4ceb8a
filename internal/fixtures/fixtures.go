// Package fixtures seeds stores with a small demo ledger.
package fixtures

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"coin-wallet-ledger/internal/domain"
	"coin-wallet-ledger/internal/storage"
)

// Demo wallets. None of them is a sentinel or a tracked contract.
const (
	MintAddress = "0x0000000000000000000000000000000000000000"
	WalletAlice = "0x71C7656EC7ab88b098defB751B7401B5f6d8976F"
	WalletBob   = "0x5a0b54d5dc17e0aadc383d2db43b0a0d3e029c4c"
	WalletCarol = "0x9bbfed6889322e016e0a02ee459d306fc19545d8"
)

// Demo asset IDs.
const (
	AssetDemo      = "demo-token"
	AssetBridged   = "bridged-demo"
	AssetStable    = "demo-usd"
	AssetNoDecimal = "unknown-precision"
)

// Start is the first day of the demo history.
var Start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// LoadFixtures populates stores with demo data.
func LoadFixtures(
	ctx context.Context,
	assetStore storage.AssetStore,
	classificationStore storage.ClassificationStore,
	eventStore storage.TransferEventStore,
	priceStore storage.PriceStore,
) error {
	if err := loadAssets(ctx, assetStore); err != nil {
		return fmt.Errorf("load assets: %w", err)
	}
	if err := classificationStore.InsertBulk(ctx, []domain.CategoryMembership{
		{AssetID: AssetDemo, Category: "Decentralized Finance (DeFi)"},
		{AssetID: AssetStable, Category: "Stablecoins"},
	}); err != nil {
		return fmt.Errorf("load classifications: %w", err)
	}
	if err := eventStore.InsertBulk(ctx, events()); err != nil {
		return fmt.Errorf("load events: %w", err)
	}
	if err := priceStore.InsertBulk(ctx, prices()); err != nil {
		return fmt.Errorf("load prices: %w", err)
	}
	return nil
}

func loadAssets(ctx context.Context, store storage.AssetStore) error {
	eighteen, six := 18, 6
	supply := 1_000_000.0
	rank1, rank2, rank3 := 42, 350, 3
	assets := []*domain.Asset{
		{
			AssetID:     AssetDemo,
			Chain:       "ethereum",
			Address:     "0x6B175474E89094C44Da98b954EedeAC495271d0F",
			Symbol:      "DEMO",
			Decimals:    &eighteen,
			TotalSupply: &supply,
			Rank:        &rank1,
		},
		{
			AssetID:  AssetBridged,
			Chain:    "base",
			Address:  "0x833589fcd6edb6e08f4c7c32d4f71b54bda02913",
			Symbol:   "BDEMO",
			Decimals: &six,
			Rank:     &rank2,
		},
		{
			AssetID:  AssetStable,
			Chain:    "ethereum",
			Address:  "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
			Symbol:   "DUSD",
			Decimals: &six,
			Rank:     &rank3,
		},
		{
			AssetID: AssetNoDecimal,
			Chain:   "ethereum",
			Address: "0xdAC17F958D2ee523a2206206994597C13D831ec7",
			Symbol:  "UNK",
		},
	}
	for _, a := range assets {
		if err := store.Insert(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

func at(day int, hour int) int64 {
	return Start.AddDate(0, 0, day).Add(time.Duration(hour) * time.Hour).UnixMilli()
}

func units(n int64, decimals int32) decimal.Decimal {
	return decimal.NewFromInt(n).Shift(decimals)
}

func events() []*domain.TransferEvent {
	return []*domain.TransferEvent{
		// demo-token, ethereum source
		{AssetID: AssetDemo, Source: "ethereum", TxHash: "0xd001", LogIndex: 0, TimestampMs: at(0, 9), Sender: MintAddress, Receiver: WalletAlice, Amount: units(1000, 18)},
		{AssetID: AssetDemo, Source: "ethereum", TxHash: "0xd002", LogIndex: 3, TimestampMs: at(1, 12), Sender: WalletAlice, Receiver: WalletBob, Amount: units(250, 18)},
		{AssetID: AssetDemo, Source: "ethereum", TxHash: "0xd003", LogIndex: 1, TimestampMs: at(1, 15), Sender: WalletBob, Receiver: WalletAlice, Amount: units(50, 18)},
		{AssetID: AssetDemo, Source: "ethereum", TxHash: "0xd004", LogIndex: 0, TimestampMs: at(3, 8), Sender: WalletAlice, Receiver: WalletCarol, Amount: units(100, 18)},
		{AssetID: AssetDemo, Source: "ethereum", TxHash: "0xd005", LogIndex: 7, TimestampMs: at(4, 20), Sender: WalletCarol, Receiver: MintAddress, Amount: units(40, 18)},
		// demo-token as also seen by the lower-priority source; shadowed
		{AssetID: AssetDemo, Source: "dune", TxHash: "0xd001", LogIndex: 0, TimestampMs: at(0, 9), Sender: MintAddress, Receiver: WalletAlice, Amount: units(1000, 18)},

		// bridged-demo, dune only
		{AssetID: AssetBridged, Source: "dune", TxHash: "0xb001", LogIndex: 0, TimestampMs: at(0, 11), Sender: MintAddress, Receiver: WalletBob, Amount: units(500, 6)},
		{AssetID: AssetBridged, Source: "dune", TxHash: "0xb002", LogIndex: 2, TimestampMs: at(2, 10), Sender: WalletBob, Receiver: WalletCarol, Amount: units(200, 6)},

		// excluded by category
		{AssetID: AssetStable, Source: "ethereum", TxHash: "0xs001", LogIndex: 0, TimestampMs: at(0, 10), Sender: MintAddress, Receiver: WalletAlice, Amount: units(10_000, 6)},

		// unknown decimals
		{AssetID: AssetNoDecimal, Source: "ethereum", TxHash: "0xu001", LogIndex: 0, TimestampMs: at(0, 10), Sender: MintAddress, Receiver: WalletCarol, Amount: units(5, 0)},
	}
}

func prices() []*domain.PricePoint {
	cap1 := 2_000_000.0
	var out []*domain.PricePoint
	// day 2 is missing and gets forward-filled
	for day, usd := range map[int]float64{0: 1.50, 1: 1.80, 3: 1.20, 4: 1.35, 5: 1.40} {
		out = append(out, &domain.PricePoint{AssetID: AssetDemo, Date: Start.AddDate(0, 0, day), Price: usd, MarketCap: &cap1})
	}
	for day, usd := range []float64{0.98, 1.01, 1.03} {
		out = append(out, &domain.PricePoint{AssetID: AssetBridged, Date: Start.AddDate(0, 0, day), Price: usd})
	}
	for day := 0; day < 3; day++ {
		out = append(out, &domain.PricePoint{AssetID: AssetStable, Date: Start.AddDate(0, 0, day), Price: 1.0})
	}
	return out
}
