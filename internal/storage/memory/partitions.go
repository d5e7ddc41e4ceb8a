package memory

import "sync"

// partitions holds derived records grouped by asset. A replace swaps a whole asset at once.
type partitions[T any] struct {
	mu   sync.RWMutex
	data map[string][]T // keyed by asset_id
}

func newPartitions[T any]() *partitions[T] {
	return &partitions[T]{data: make(map[string][]T)}
}

// replace stores copies of records under assetID. An empty slice clears the asset.
func (p *partitions[T]) replace(assetID string, records []*T) {
	copied := make([]T, 0, len(records))
	for _, r := range records {
		copied = append(copied, *r)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if len(copied) == 0 {
		delete(p.data, assetID)
		return
	}
	p.data[assetID] = copied
}

// get returns copies of the asset's records accepted by keep, in stored order.
func (p *partitions[T]) get(assetID string, keep func(*T) bool) []*T {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var result []*T
	for i := range p.data[assetID] {
		r := p.data[assetID][i]
		if keep != nil && !keep(&r) {
			continue
		}
		result = append(result, &r)
	}
	return result
}
