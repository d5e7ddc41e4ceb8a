// Package eligibility decides which assets and wallets take part in accounting.
package eligibility

import (
	"sort"
	"strings"

	"coin-wallet-ledger/internal/domain"
)

// Reason prefixes recorded in an ExclusionSet.
const (
	ReasonDenylist       = "denylist"
	ReasonCategoryPrefix = "category:"
)

// Policy is the asset exclusion policy.
type Policy struct {
	DeniedCategories []string `yaml:"denied_categories"`
	DeniedAssets     []string `yaml:"denied_assets"`
}

// AggregateCategories groups memberships per asset.
// Labels are trimmed, de-duplicated case-insensitively and sorted.
func AggregateCategories(memberships []domain.CategoryMembership) map[string][]string {
	seen := make(map[string]map[string]struct{})
	out := make(map[string][]string)
	for _, m := range memberships {
		label := strings.TrimSpace(m.Category)
		if m.AssetID == "" || label == "" {
			continue
		}
		key := strings.ToLower(label)
		if seen[m.AssetID] == nil {
			seen[m.AssetID] = make(map[string]struct{})
		}
		if _, dup := seen[m.AssetID][key]; dup {
			continue
		}
		seen[m.AssetID][key] = struct{}{}
		out[m.AssetID] = append(out[m.AssetID], label)
	}
	for id := range out {
		sort.Slice(out[id], func(i, j int) bool {
			return strings.ToLower(out[id][i]) < strings.ToLower(out[id][j])
		})
	}
	return out
}

// ComputeExclusionSet returns the assets excluded by policy.
// An asset is excluded if any of its categories is denied or its ID is denied.
// The result does not depend on the order of memberships.
func ComputeExclusionSet(memberships []domain.CategoryMembership, policy Policy) *domain.ExclusionSet {
	denied := make(map[string]struct{}, len(policy.DeniedCategories))
	for _, c := range policy.DeniedCategories {
		if c = strings.ToLower(strings.TrimSpace(c)); c != "" {
			denied[c] = struct{}{}
		}
	}

	reasons := make(map[string]string)
	for assetID, labels := range AggregateCategories(memberships) {
		for _, label := range labels {
			if _, ok := denied[strings.ToLower(label)]; ok {
				reasons[assetID] = ReasonCategoryPrefix + strings.ToLower(label)
				break
			}
		}
	}

	for _, id := range policy.DeniedAssets {
		if id = strings.TrimSpace(id); id != "" {
			reasons[id] = ReasonDenylist
		}
	}

	return domain.NewExclusionSet(reasons)
}

// FilterAssets splits assets into eligible and excluded, preserving input order.
func FilterAssets(assets []*domain.Asset, set *domain.ExclusionSet) (eligible, excluded []*domain.Asset) {
	for _, a := range assets {
		if set.Contains(a.AssetID) {
			excluded = append(excluded, a)
			continue
		}
		eligible = append(eligible, a)
	}
	return eligible, excluded
}
