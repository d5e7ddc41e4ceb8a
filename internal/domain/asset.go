package domain

import "github.com/shopspring/decimal"

// Asset represents a tracked fungible token on one chain.
// Corresponds to assets table in PostgreSQL.
type Asset struct {
	AssetID     string   // PK, provider coin identifier
	Chain       string   // chain name, see LookupChain
	Address     string   // contract address, case-normalized per chain
	Symbol      string   // ticker (informational)
	Decimals    *int     // decimal precision (nullable)
	TotalSupply *float64 // total supply in tokens (nullable)
	Rank        *int     // market-cap rank (nullable)
}

// AssetKey identifies an asset by its on-chain identity.
// Address uniqueness is scoped per chain.
type AssetKey struct {
	Chain   string
	Address string
}

// Normalized returns a copy with chain and address normalized.
func (a Asset) Normalized() Asset {
	c := LookupChain(a.Chain)
	a.Chain = c.Name
	a.Address = c.NormalizeAddress(a.Address)
	return a
}

// Key returns the (chain, address) identity of the asset.
func (a Asset) Key() AssetKey {
	n := a.Normalized()
	return AssetKey{Chain: n.Chain, Address: n.Address}
}

// HasValidDecimals reports whether amounts of the asset can be scaled.
func (a Asset) HasValidDecimals() bool {
	return a.Decimals != nil && *a.Decimals > 0
}

// ToTokens scales a raw amount by the asset's decimals.
// Callers must check HasValidDecimals first.
func (a Asset) ToTokens(raw decimal.Decimal) decimal.Decimal {
	if a.Decimals == nil {
		return raw
	}
	return raw.Shift(-int32(*a.Decimals))
}
