package asset

import "strings"

// Asset identifies a fungible token. Address is empty for the chain's
// native asset. Immutable once constructed.
type Asset struct {
	Symbol   string
	Name     string
	Address  string
	Decimals int
}

// IsContractFungible reports whether the asset lives behind a token
// contract, as opposed to being the chain's native asset.
func (a Asset) IsContractFungible() bool {
	return strings.TrimSpace(a.Address) != ""
}

// Holding is a wallet-held asset as reported by the wallet's asset
// registry.
type Holding struct {
	Asset
	Balance string
}

func SameSymbol(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func SameAddress(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
