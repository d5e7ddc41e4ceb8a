package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeEventID computes a deterministic identity for a transfer event within a source.
// Formula: SHA256(source|asset_id|tx_hash|log_index)
// Returns hex-encoded hash (64 characters).
func ComputeEventID(
	source string,
	assetID string,
	txHash string,
	logIndex int,
) string {
	data := fmt.Sprintf("%s|%s|%s|%d",
		source,
		assetID,
		txHash,
		logIndex,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
