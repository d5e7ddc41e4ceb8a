package domain

// SourceConfig describes an upstream transfer source and its precedence.
type SourceConfig struct {
	Name     string   `yaml:"name"`     // source identifier, matches TransferEvent.Source
	Priority int      `yaml:"priority"` // lower wins ownership of an asset
	Chains   []string `yaml:"chains"`   // chains the source may claim, empty for all
}

// Covers reports whether the source is allowed to claim assets on chain.
func (s SourceConfig) Covers(chain string) bool {
	if len(s.Chains) == 0 {
		return true
	}
	want := LookupChain(chain).Name
	for _, c := range s.Chains {
		if LookupChain(c).Name == want {
			return true
		}
	}
	return false
}
