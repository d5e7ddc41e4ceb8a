package domain

// CategoryMembership links an asset to one classification label.
// Corresponds to asset_categories table in PostgreSQL.
type CategoryMembership struct {
	AssetID  string // FK to assets
	Category string // provider label, e.g. "Stablecoins"
}
