// Package reconcile assigns each asset to exactly one upstream transfer source.
package reconcile

import (
	"fmt"
	"sort"
	"strings"

	"coin-wallet-ledger/internal/domain"
)

// Claims maps a source name to the asset IDs it has transfer history for.
type Claims map[string][]string

// Conflict is an asset claimed by more than one source of equal precedence.
type Conflict struct {
	AssetID string
	Sources []string // sorted
}

// Err returns the conflict as a fatal partition error.
func (c Conflict) Err() *domain.PartitionError {
	return &domain.PartitionError{
		Kind:    domain.KindOwnershipConflict,
		AssetID: c.AssetID,
		Err:     fmt.Errorf("%w: %s", domain.ErrOwnershipConflict, strings.Join(c.Sources, ",")),
	}
}

// Ownership is the claimed-by mapping produced by AssignOwnership.
type Ownership struct {
	owner     map[string]string   // asset_id -> source
	shadowed  map[string][]string // asset_id -> lower-priority sources that also claimed it
	conflicts []Conflict
}

// Owner returns the source that owns assetID.
func (o *Ownership) Owner(assetID string) (string, bool) {
	s, ok := o.owner[assetID]
	return s, ok
}

// Shadowed returns the lower-priority sources whose claim on assetID was excluded.
func (o *Ownership) Shadowed(assetID string) []string {
	return o.shadowed[assetID]
}

// Conflicts returns unresolved claims, ordered by asset ID.
func (o *Ownership) Conflicts() []Conflict {
	return o.conflicts
}

// Assets returns owned asset IDs, ordered ASC.
func (o *Ownership) Assets() []string {
	ids := make([]string, 0, len(o.owner))
	for id := range o.owner {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ClaimedBy returns the owned assets per source, for the disjointness check.
func (o *Ownership) ClaimedBy() Claims {
	out := make(Claims)
	for _, id := range o.Assets() {
		s := o.owner[id]
		out[s] = append(out[s], id)
	}
	return out
}

// AssignOwnership partitions claimed assets by source precedence.
// An asset goes to the claiming source with the lowest Priority whose Chains cover the
// asset's chain. Sources not present in sources, or not covering the chain, cannot claim.
// Two eligible sources of equal priority claiming one asset produce a Conflict and the
// asset is left unowned. chainOf returns the chain of an asset, or false if unknown.
func AssignOwnership(claims Claims, sources []domain.SourceConfig, chainOf func(assetID string) (string, bool)) *Ownership {
	cfg := make(map[string]domain.SourceConfig, len(sources))
	for _, s := range sources {
		cfg[s.Name] = s
	}

	candidates := make(map[string][]domain.SourceConfig)
	for source, assetIDs := range claims {
		sc, ok := cfg[source]
		if !ok {
			continue
		}
		for _, id := range assetIDs {
			chain, known := chainOf(id)
			if !known || !sc.Covers(chain) {
				continue
			}
			candidates[id] = append(candidates[id], sc)
		}
	}

	o := &Ownership{
		owner:    make(map[string]string, len(candidates)),
		shadowed: make(map[string][]string),
	}
	for id, cs := range candidates {
		sort.Slice(cs, func(i, j int) bool {
			if cs[i].Priority != cs[j].Priority {
				return cs[i].Priority < cs[j].Priority
			}
			return cs[i].Name < cs[j].Name
		})

		top := []string{cs[0].Name}
		for _, c := range cs[1:] {
			if c.Priority == cs[0].Priority {
				top = append(top, c.Name)
			}
		}
		if len(top) > 1 {
			o.conflicts = append(o.conflicts, Conflict{AssetID: id, Sources: top})
			continue
		}

		o.owner[id] = cs[0].Name
		for _, c := range cs[1:] {
			o.shadowed[id] = append(o.shadowed[id], c.Name)
		}
	}
	sort.Slice(o.conflicts, func(i, j int) bool {
		return o.conflicts[i].AssetID < o.conflicts[j].AssetID
	})
	return o
}
