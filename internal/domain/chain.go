package domain

import "strings"

// ChainFamily groups chains that share an address format.
type ChainFamily string

const (
	FamilyEVM    ChainFamily = "evm"
	FamilySolana ChainFamily = "solana"
	FamilyOther  ChainFamily = "other"
)

// Chain describes how a chain's addresses are compared.
type Chain struct {
	Name          string      // canonical chain name, lower-case
	Family        ChainFamily // address format family
	CaseSensitive bool        // false: addresses are stored lower-cased
}

var knownChains = map[string]Chain{
	"ethereum":  {Name: "ethereum", Family: FamilyEVM},
	"base":      {Name: "base", Family: FamilyEVM},
	"arbitrum":  {Name: "arbitrum", Family: FamilyEVM},
	"optimism":  {Name: "optimism", Family: FamilyEVM},
	"polygon":   {Name: "polygon", Family: FamilyEVM},
	"bsc":       {Name: "bsc", Family: FamilyEVM},
	"avalanche": {Name: "avalanche", Family: FamilyEVM},
	"solana":    {Name: "solana", Family: FamilySolana, CaseSensitive: true},
}

// LookupChain returns the chain registered under name.
// Unknown chains are treated as case-sensitive so that distinct addresses are never merged.
func LookupChain(name string) Chain {
	key := strings.ToLower(strings.TrimSpace(name))
	if c, ok := knownChains[key]; ok {
		return c
	}
	return Chain{Name: key, Family: FamilyOther, CaseSensitive: true}
}

// NormalizeAddress applies the chain's case rule to addr.
func (c Chain) NormalizeAddress(addr string) string {
	addr = strings.TrimSpace(addr)
	if c.CaseSensitive {
		return addr
	}
	return strings.ToLower(addr)
}
