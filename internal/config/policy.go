package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"coin-wallet-ledger/internal/cohort"
	"coin-wallet-ledger/internal/domain"
	"coin-wallet-ledger/internal/eligibility"
)

// Policy is the YAML policy file: who is excluded, which source owns what,
// and how the asset universe is staged.
type Policy struct {
	Exclusion     eligibility.Policy    `yaml:"exclusion"`
	DeniedWallets map[string][]string   `yaml:"denied_wallets"` // chain -> addresses
	Sources       []domain.SourceConfig `yaml:"sources"`
	Cohorts       []domain.Cohort       `yaml:"cohorts"`
}

// DefaultPolicy returns the built-in policy used when no file exists.
func DefaultPolicy() *Policy {
	return &Policy{
		Exclusion: eligibility.Policy{
			DeniedCategories: []string{
				"Stablecoins",
				"Wrapped-Tokens",
				"Liquid Staking Tokens",
				"Bridged-Tokens",
				"Centralized Exchange (CEX) Token",
			},
		},
		DeniedWallets: map[string][]string{},
		Sources: []domain.SourceConfig{
			{Name: "ethereum", Priority: 0, Chains: []string{"ethereum"}},
			{Name: "dune", Priority: 1},
		},
		Cohorts: cohort.Defaults(),
	}
}

// LoadPolicy reads a policy file. A missing file yields DefaultPolicy.
// Sections absent from the file keep their defaults.
func LoadPolicy(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultPolicy(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read policy %s: %w", path, err)
	}
	return ParsePolicy(data)
}

// ParsePolicy decodes YAML over DefaultPolicy and validates the result.
func ParsePolicy(data []byte) (*Policy, error) {
	p := DefaultPolicy()
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("parse policy: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks the policy for ambiguous source and cohort definitions.
func (p *Policy) Validate() error {
	if len(p.Sources) == 0 {
		return fmt.Errorf("policy: at least one source is required")
	}
	seen := make(map[string]struct{}, len(p.Sources))
	for _, s := range p.Sources {
		name := strings.TrimSpace(s.Name)
		if name == "" {
			return fmt.Errorf("policy: source with empty name")
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("policy: duplicate source %q", name)
		}
		seen[name] = struct{}{}
	}

	names := make(map[string]struct{}, len(p.Cohorts))
	for _, c := range p.Cohorts {
		if c.Name == "" {
			return fmt.Errorf("policy: cohort with empty name")
		}
		if _, dup := names[c.Name]; dup {
			return fmt.Errorf("policy: duplicate cohort %q", c.Name)
		}
		names[c.Name] = struct{}{}
		if c.MaxRank > 0 && c.MaxRank <= c.MinRank {
			return fmt.Errorf("policy: cohort %q has empty rank range", c.Name)
		}
	}
	return nil
}
