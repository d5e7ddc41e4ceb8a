package reconcile

import (
	"fmt"
	"sort"

	"coin-wallet-ledger/internal/domain"
)

// CheckDisjoint returns a Conflict for every asset claimed by more than one source.
// An empty result means the claimed sets are pairwise disjoint.
func CheckDisjoint(claimed Claims) []Conflict {
	bySource := make(map[string]map[string]struct{})
	for source, ids := range claimed {
		for _, id := range ids {
			if bySource[id] == nil {
				bySource[id] = make(map[string]struct{})
			}
			bySource[id][source] = struct{}{}
		}
	}

	var out []Conflict
	for id, sources := range bySource {
		if len(sources) < 2 {
			continue
		}
		names := make([]string, 0, len(sources))
		for s := range sources {
			names = append(names, s)
		}
		sort.Strings(names)
		out = append(out, Conflict{AssetID: id, Sources: names})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AssetID < out[j].AssetID })
	return out
}

// VerifyOwner checks that every record of an asset comes from its owning source.
// Records of any other source mean two feeds were interleaved.
func VerifyOwner(o *Ownership, assetID string, records []*domain.NetTransferRecord) error {
	owner, ok := o.Owner(assetID)
	if !ok {
		return &domain.PartitionError{
			Kind:    domain.KindOwnershipConflict,
			AssetID: assetID,
			Err:     fmt.Errorf("%w: asset has no owning source", domain.ErrOwnershipConflict),
		}
	}
	for _, r := range records {
		if r.AssetID != assetID || r.Source != owner {
			return &domain.PartitionError{
				Kind:    domain.KindOwnershipConflict,
				AssetID: assetID,
				Wallet:  r.Wallet,
				Err:     fmt.Errorf("%w: record from %s, owner is %s", domain.ErrOwnershipConflict, r.Source, owner),
			}
		}
	}
	return nil
}

// Merge folds per-source record sets into one set per owned asset.
// Only the owner's records are kept; records of shadowed sources are dropped
// rather than summed. Assets without an owner are absent from the result.
func Merge(o *Ownership, bySource map[string][]*domain.NetTransferRecord) map[string][]*domain.NetTransferRecord {
	out := make(map[string][]*domain.NetTransferRecord)
	for source, records := range bySource {
		for _, r := range records {
			owner, ok := o.Owner(r.AssetID)
			if !ok || owner != source {
				continue
			}
			out[r.AssetID] = append(out[r.AssetID], r)
		}
	}
	return out
}
