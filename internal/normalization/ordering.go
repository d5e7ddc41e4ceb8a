package normalization

import (
	"sort"

	"coin-wallet-ledger/internal/domain"
)

// SortTransferEvents orders events by (timestamp_ms ASC, tx_hash ASC, log_index ASC).
// This provides deterministic ordering based on chain order.
func SortTransferEvents(events []*domain.TransferEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		return compareEvents(events[i], events[j]) < 0
	})
}

// SortNetTransfers orders records by (wallet ASC, date ASC).
func SortNetTransfers(records []*domain.NetTransferRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Wallet != records[j].Wallet {
			return records[i].Wallet < records[j].Wallet
		}
		return records[i].Date.Before(records[j].Date)
	})
}

// compareEvents returns:
//   - negative if a < b
//   - zero if a == b
//   - positive if a > b
func compareEvents(a, b *domain.TransferEvent) int {
	if a.TimestampMs != b.TimestampMs {
		if a.TimestampMs < b.TimestampMs {
			return -1
		}
		return 1
	}
	if a.TxHash != b.TxHash {
		if a.TxHash < b.TxHash {
			return -1
		}
		return 1
	}
	if a.LogIndex != b.LogIndex {
		if a.LogIndex < b.LogIndex {
			return -1
		}
		return 1
	}
	return 0
}
