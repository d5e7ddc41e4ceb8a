package domain

import "sort"

// ExclusionSet is an immutable snapshot of excluded asset IDs with the reason each was excluded.
type ExclusionSet struct {
	reasons map[string]string
}

// NewExclusionSet builds a set from asset ID -> reason.
func NewExclusionSet(reasons map[string]string) *ExclusionSet {
	cp := make(map[string]string, len(reasons))
	for k, v := range reasons {
		cp[k] = v
	}
	return &ExclusionSet{reasons: cp}
}

// Contains reports whether assetID is excluded. A nil set excludes nothing.
func (s *ExclusionSet) Contains(assetID string) bool {
	if s == nil {
		return false
	}
	_, ok := s.reasons[assetID]
	return ok
}

// Reason returns why assetID is excluded, or "".
func (s *ExclusionSet) Reason(assetID string) string {
	if s == nil {
		return ""
	}
	return s.reasons[assetID]
}

// Len returns the number of excluded assets.
func (s *ExclusionSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.reasons)
}

// IDs returns excluded asset IDs sorted ascending.
func (s *ExclusionSet) IDs() []string {
	if s == nil {
		return nil
	}
	ids := make([]string, 0, len(s.reasons))
	for id := range s.reasons {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Reasons returns a copy of the asset ID -> reason mapping.
func (s *ExclusionSet) Reasons() map[string]string {
	out := make(map[string]string, s.Len())
	if s == nil {
		return out
	}
	for k, v := range s.reasons {
		out[k] = v
	}
	return out
}
