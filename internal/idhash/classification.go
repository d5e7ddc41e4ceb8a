package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	"coin-wallet-ledger/internal/domain"
)

// ComputeClassificationFingerprint computes a deterministic fingerprint of a
// classification snapshot and the exclusion policy applied to it.
// Formula: SHA256 over sorted "asset|category" lines, then sorted denied categories
// and denied assets, each section separated by "#".
// Input order does not affect the result. Returns hex-encoded hash (64 characters).
func ComputeClassificationFingerprint(
	memberships []domain.CategoryMembership,
	deniedCategories []string,
	deniedAssets []string,
) string {
	lines := make([]string, 0, len(memberships))
	for _, m := range memberships {
		lines = append(lines, m.AssetID+"|"+strings.ToLower(strings.TrimSpace(m.Category)))
	}

	cats := make([]string, 0, len(deniedCategories))
	for _, c := range deniedCategories {
		cats = append(cats, strings.ToLower(strings.TrimSpace(c)))
	}

	assets := append([]string(nil), deniedAssets...)

	sort.Strings(lines)
	sort.Strings(cats)
	sort.Strings(assets)

	data := strings.Join(lines, "\n") + "#" + strings.Join(cats, "\n") + "#" + strings.Join(assets, "\n")

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
