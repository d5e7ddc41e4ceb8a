package idhash

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"coin-wallet-ledger/internal/domain"
)

func TestComputeClassificationFingerprint_OrderIndependent(t *testing.T) {
	a := []domain.CategoryMembership{
		{AssetID: "usdc", Category: "Stablecoins"},
		{AssetID: "weth", Category: "Wrapped-Tokens"},
		{AssetID: "pepe", Category: "Meme"},
	}
	b := []domain.CategoryMembership{a[2], a[0], a[1]}

	got1 := ComputeClassificationFingerprint(a, []string{"Stablecoins", "Wrapped-Tokens"}, []string{"x", "y"})
	got2 := ComputeClassificationFingerprint(b, []string{"wrapped-tokens", "STABLECOINS"}, []string{"y", "x"})

	if len(got1) != 64 {
		t.Fatalf("fingerprint length = %d, want 64", len(got1))
	}
	if got1 != got2 {
		t.Errorf("fingerprint depends on input order or case: %s != %s", got1, got2)
	}
}

func TestComputeClassificationFingerprint_ChangesWithInput(t *testing.T) {
	base := []domain.CategoryMembership{{AssetID: "usdc", Category: "Stablecoins"}}
	changed := []domain.CategoryMembership{{AssetID: "usdt", Category: "Stablecoins"}}

	f1 := ComputeClassificationFingerprint(base, []string{"Stablecoins"}, nil)
	f2 := ComputeClassificationFingerprint(changed, []string{"Stablecoins"}, nil)
	f3 := ComputeClassificationFingerprint(base, []string{"Stablecoins"}, []string{"usdc"})

	if f1 == f2 {
		t.Error("different memberships must produce different fingerprints")
	}
	if f1 == f3 {
		t.Error("different denylists must produce different fingerprints")
	}
}

func TestComputeEventID(t *testing.T) {
	id1 := ComputeEventID("dune", "pepe", "0xabc", 3)
	id2 := ComputeEventID("dune", "pepe", "0xabc", 3)
	id3 := ComputeEventID("dune", "pepe", "0xabc", 4)

	if len(id1) != 64 {
		t.Fatalf("ComputeEventID() length = %d, want 64", len(id1))
	}
	if id1 != id2 {
		t.Errorf("ComputeEventID() not deterministic: %s != %s", id1, id2)
	}
	if id1 == id3 {
		t.Error("different log index must produce different IDs")
	}
}

func TestComputePartitionFingerprint(t *testing.T) {
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	records := []*domain.NetTransferRecord{
		{AssetID: "pepe", Wallet: "0xa", Date: day, Amount: decimal.NewFromInt(5)},
	}
	prices := []*domain.PricePoint{{AssetID: "pepe", Date: day, Price: 1.5}}

	base := ComputePartitionFingerprint("ethereum", records, prices)
	if len(base) != 64 {
		t.Fatalf("fingerprint length = %d, want 64", len(base))
	}
	if got := ComputePartitionFingerprint("ethereum", records, prices); got != base {
		t.Error("fingerprint must be deterministic")
	}
	if ComputePartitionFingerprint("dune", records, prices) == base {
		t.Error("salt must change the fingerprint")
	}

	moved := []*domain.NetTransferRecord{{AssetID: "pepe", Wallet: "0xa", Date: day, Amount: decimal.NewFromInt(6)}}
	if ComputePartitionFingerprint("ethereum", moved, prices) == base {
		t.Error("amount change must change the fingerprint")
	}

	repriced := []*domain.PricePoint{{AssetID: "pepe", Date: day, Price: 1.6}}
	if ComputePartitionFingerprint("ethereum", records, repriced) == base {
		t.Error("price change must change the fingerprint")
	}
}
