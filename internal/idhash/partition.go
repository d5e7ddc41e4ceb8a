package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"coin-wallet-ledger/internal/domain"
)

// ComputePartitionFingerprint computes a fingerprint of the inputs an asset
// partition is built from: a caller salt (owner source, settings), the
// net transfer records and the raw price series.
// Formula: SHA256 over salt, then one line per record "wallet|date|amount",
// then one line per price "date|price|imputed".
// Records and prices are hashed in the given order; callers pass them sorted.
func ComputePartitionFingerprint(
	salt string,
	records []*domain.NetTransferRecord,
	prices []*domain.PricePoint,
) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\n#\n", salt)
	for _, r := range records {
		fmt.Fprintf(h, "%s|%s|%s\n", r.Wallet, r.Date.Format(time.DateOnly), r.Amount.String())
	}
	fmt.Fprint(h, "#\n")
	for _, p := range prices {
		fmt.Fprintf(h, "%s|%g|%t\n", p.Date.Format(time.DateOnly), p.Price, p.Imputed)
	}
	return hex.EncodeToString(h.Sum(nil))
}
