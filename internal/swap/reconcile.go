package swap

import (
	"go.uber.org/zap"

	"github.com/dmoreno/swap-cli/internal/asset"
	"github.com/dmoreno/swap-cli/internal/zeroex"
)

// Reconciler matches wallet holdings against the aggregator catalog.
// Verbose controls discrepancy diagnostics only; it never changes which
// assets are considered tradeable.
type Reconciler struct {
	log     *zap.Logger
	verbose bool
}

func NewReconciler(log *zap.Logger, verbose bool) *Reconciler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Reconciler{log: log, verbose: verbose}
}

// SwappableAssets returns the subset of wallet holdings eligible for
// trading: contract-based assets whose symbol and contract address both
// match a catalog token case-insensitively, and whose symbol has a price
// entry. Wallet order is preserved and no asset appears twice.
func (r *Reconciler) SwappableAssets(wallet []asset.Holding, catalog []zeroex.Token, prices []zeroex.Price) []asset.Asset {
	out := make([]asset.Asset, 0, len(wallet))
	seen := make(map[string]bool, len(wallet))

	for _, held := range wallet {
		if !held.IsContractFungible() {
			continue
		}
		matched, ok := r.matchCatalog(held, catalog)
		if !ok {
			continue
		}
		if !hasPrice(matched.Symbol, prices) {
			continue
		}
		key := held.Symbol + "/" + held.Address
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, held.Asset)
	}
	return out
}

// matchCatalog accepts a catalog token only when both symbol and address
// match. A partial match is a discrepancy: reported when verbose, never
// included.
func (r *Reconciler) matchCatalog(held asset.Holding, catalog []zeroex.Token) (zeroex.Token, bool) {
	for _, tok := range catalog {
		symbolMatch := asset.SameSymbol(held.Symbol, tok.Symbol)
		addressMatch := asset.SameAddress(held.Address, tok.Address)

		if symbolMatch && addressMatch {
			return tok, true
		}
		if symbolMatch && !addressMatch && r.verbose {
			r.log.Warn("asset discrepancy: symbol matches but contract address does not",
				zap.String("symbol", held.Symbol),
				zap.String("wallet_address", held.Address),
				zap.String("catalog_address", tok.Address))
		}
		if addressMatch && !symbolMatch && r.verbose {
			r.log.Warn("asset discrepancy: contract address matches but symbol does not",
				zap.String("address", held.Address),
				zap.String("wallet_symbol", held.Symbol),
				zap.String("catalog_symbol", tok.Symbol))
		}
	}
	return zeroex.Token{}, false
}

func hasPrice(symbol string, prices []zeroex.Price) bool {
	for _, p := range prices {
		if asset.SameSymbol(symbol, p.Symbol) {
			return true
		}
	}
	return false
}

// CurrentTradePrice looks up the price for the buy asset. It is a pure
// lookup with "0" as the defined default, never an error.
func CurrentTradePrice(buy *asset.Asset, prices []zeroex.Price) string {
	if buy == nil {
		return "0"
	}
	for _, p := range prices {
		if asset.SameSymbol(buy.Symbol, p.Symbol) {
			return p.Price
		}
	}
	return "0"
}
