package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrorKind classifies a partition-level failure or warning.
type ErrorKind string

const (
	KindSkippedAsset      ErrorKind = "SKIPPED_ASSET"
	KindOwnershipConflict ErrorKind = "OWNERSHIP_CONFLICT"
	KindSequenceViolation ErrorKind = "SEQUENCE_VIOLATION"
	KindValuationAnomaly  ErrorKind = "VALUATION_ANOMALY"
	KindFreshnessSkew     ErrorKind = "FRESHNESS_SKEW"
)

// Sentinel errors, matched with errors.Is.
var (
	ErrSkippedAsset      = errors.New("asset skipped")
	ErrOwnershipConflict = errors.New("asset claimed by more than one source")
	ErrSequenceViolation = errors.New("transfer sequence violation")
	ErrValuationAnomaly  = errors.New("valuation anomaly")
	ErrMissingPrice      = errors.New("missing price")
)

var kindSentinels = map[ErrorKind]error{
	KindSkippedAsset:      ErrSkippedAsset,
	KindOwnershipConflict: ErrOwnershipConflict,
	KindSequenceViolation: ErrSequenceViolation,
	KindValuationAnomaly:  ErrValuationAnomaly,
}

// Fatal reports whether the kind aborts its partition.
func (k ErrorKind) Fatal() bool {
	return k == KindOwnershipConflict || k == KindSequenceViolation
}

// PartitionError is an error scoped to an asset, optionally narrowed to one wallet and day.
type PartitionError struct {
	Kind    ErrorKind
	AssetID string
	Wallet  string    // empty for asset-wide errors
	Date    time.Time // zero when not tied to a day
	Err     error
}

func (e *PartitionError) Error() string {
	msg := fmt.Sprintf("%s asset=%s", e.Kind, e.AssetID)
	if e.Wallet != "" {
		msg += " wallet=" + e.Wallet
	}
	if !e.Date.IsZero() {
		msg += " date=" + e.Date.Format(time.DateOnly)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *PartitionError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's kind.
func (e *PartitionError) Is(target error) bool {
	s, ok := kindSentinels[e.Kind]
	return ok && s == target
}

// NewPartitionError builds a PartitionError with a formatted cause.
func NewPartitionError(kind ErrorKind, assetID, wallet string, format string, args ...any) *PartitionError {
	return &PartitionError{
		Kind:    kind,
		AssetID: assetID,
		Wallet:  wallet,
		Err:     fmt.Errorf(format, args...),
	}
}
