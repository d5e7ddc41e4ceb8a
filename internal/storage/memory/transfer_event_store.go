package memory

import (
	"context"
	"sort"
	"sync"

	"coin-wallet-ledger/internal/domain"
	"coin-wallet-ledger/internal/storage"
)

type eventKey struct {
	source   string
	assetID  string
	txHash   string
	logIndex int
}

// TransferEventStore is an in-memory implementation of storage.TransferEventStore.
type TransferEventStore struct {
	mu   sync.RWMutex
	data map[eventKey]*domain.TransferEvent
}

// NewTransferEventStore creates a new in-memory transfer event store.
func NewTransferEventStore() *TransferEventStore {
	return &TransferEventStore{
		data: make(map[eventKey]*domain.TransferEvent),
	}
}

func keyOf(e *domain.TransferEvent) eventKey {
	return eventKey{source: e.Source, assetID: e.AssetID, txHash: e.TxHash, logIndex: e.LogIndex}
}

// InsertBulk adds multiple events atomically. Fails entire batch on any duplicate.
func (s *TransferEventStore) InsertBulk(_ context.Context, events []*domain.TransferEvent) error {
	if len(events) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[eventKey]struct{}, len(events))
	for _, e := range events {
		if e == nil || e.AssetID == "" || e.Source == "" || e.TxHash == "" {
			return storage.ErrInvalidInput
		}
		key := keyOf(e)
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, e := range events {
		eventCopy := *e
		s.data[keyOf(e)] = &eventCopy
	}
	return nil
}

// GetByAsset retrieves events of one source for an asset, ordered by (timestamp_ms, tx_hash, log_index) ASC.
func (s *TransferEventStore) GetByAsset(_ context.Context, source, assetID string) ([]*domain.TransferEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.TransferEvent
	for k, e := range s.data {
		if k.source == source && k.assetID == assetID {
			eventCopy := *e
			result = append(result, &eventCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.TimestampMs != b.TimestampMs {
			return a.TimestampMs < b.TimestampMs
		}
		if a.TxHash != b.TxHash {
			return a.TxHash < b.TxHash
		}
		return a.LogIndex < b.LogIndex
	})
	return result, nil
}

// ListAssets returns the asset IDs a source has events for, ordered ASC.
func (s *TransferEventStore) ListAssets(_ context.Context, source string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	for k := range s.data {
		if k.source == source {
			seen[k.assetID] = struct{}{}
		}
	}

	result := make([]string, 0, len(seen))
	for id := range seen {
		result = append(result, id)
	}
	sort.Strings(result)
	return result, nil
}

var _ storage.TransferEventStore = (*TransferEventStore)(nil)
