package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferEvent represents one raw token transfer reported by an upstream source.
// Corresponds to transfer_events table in PostgreSQL. Immutable.
type TransferEvent struct {
	AssetID     string          // FK to assets
	Source      string          // upstream source name
	TxHash      string          // transaction hash / signature
	LogIndex    int             // index within transaction
	TimestampMs int64           // block time, Unix ms
	Sender      string          // empty for mints
	Receiver    string          // empty for burns
	Amount      decimal.Decimal // raw integer amount (no decimals applied)
}

// NetTransferRecord is the signed daily net movement of one wallet.
// Corresponds to net_transfers table in ClickHouse.
type NetTransferRecord struct {
	AssetID string          // asset identifier
	Wallet  string          // normalized wallet address
	Date    time.Time       // UTC day
	Source  string          // owning upstream source
	Amount  decimal.Decimal // raw signed amount, never zero
}

// BalanceRecord is the cumulative raw balance of one wallet after a net transfer day.
// Corresponds to balances table in ClickHouse.
type BalanceRecord struct {
	AssetID          string          // asset identifier
	Wallet           string          // normalized wallet address
	Date             time.Time       // UTC day
	NetTransfers     decimal.Decimal // raw net transfer of the day
	Balance          decimal.Decimal // raw running balance
	TransferSequence int64           // 1-based, strictly increasing per (asset, wallet)
}

// Day truncates a Unix millisecond timestamp to its UTC day.
func Day(tsMs int64) time.Time {
	return TruncateDay(time.UnixMilli(tsMs))
}

// TruncateDay returns midnight UTC of t's UTC date.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
