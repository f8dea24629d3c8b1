package swap

import (
	"sync"

	"github.com/dmoreno/swap-cli/internal/asset"
	"github.com/dmoreno/swap-cli/internal/zeroex"
)

// State holds the current trade selection and the latest fetched
// snapshots. Amounts are human-readable decimal strings; they are never
// pre-scaled by token decimals until a quote request is built.
type State struct {
	SellAsset  *asset.Asset
	BuyAsset   *asset.Asset
	SellAmount string
	BuyAmount  string
	Tokens     []zeroex.Token
	Prices     []zeroex.Price
	Quote      *zeroex.Quote
}

// Selection is a partial asset selection passed to SetAssets.
type Selection struct {
	SellAsset *asset.Asset
	BuyAsset  *asset.Asset
}

// Machine owns the single trade-state value. Every transition replaces
// the affected fields atomically under one lock; no field is ever
// partially written.
//
// Fetches are not cancelled when the user moves on, so each fetch carries
// the generation observed at issue time and its completion is dropped if
// the generation has since advanced. Changing the sell asset advances the
// generation: a new sell asset invalidates any in-flight catalog, price
// or quote response.
type Machine struct {
	mu    sync.Mutex
	gen   uint64
	state State
}

func NewMachine() *Machine {
	return &Machine{}
}

// Snapshot returns a copy of the current state.
func (m *Machine) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Generation returns the token a fetch must carry for its completion to
// be applied.
func (m *Machine) Generation() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gen
}

// SetAmounts replaces both amount fields without touching the asset
// selection.
func (m *Machine) SetAmounts(sellAmount, buyAmount string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.SellAmount = sellAmount
	m.state.BuyAmount = buyAmount
}

// SetAssets merges a partial selection. A new sell asset unconditionally
// clears the buy asset and both amounts, even when the same call also
// supplies a buy asset: the old price and quote context is meaningless
// against a different sell asset.
func (m *Machine) SetAssets(sel Selection) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sel.SellAsset != nil {
		m.state.SellAsset = sel.SellAsset
		m.state.BuyAsset = nil
		m.state.SellAmount = ""
		m.state.BuyAmount = ""
		m.gen++
		return
	}
	if sel.BuyAsset != nil {
		m.state.BuyAsset = sel.BuyAsset
	}
}

// ClearQuote drops the current quote without touching the selection.
// Used when the user backs out of a confirmation step.
func (m *Machine) ClearQuote() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Quote = nil
}

// ApplyTokens overwrites the catalog snapshot wholesale. An empty result
// overwrites too: a failed validation is indistinguishable here from the
// aggregator truly having no data. Returns false when the completion was
// stale and dropped.
func (m *Machine) ApplyTokens(gen uint64, tokens []zeroex.Token) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen {
		return false
	}
	m.state.Tokens = tokens
	return true
}

// ApplyPrices overwrites the price snapshot wholesale.
func (m *Machine) ApplyPrices(gen uint64, prices []zeroex.Price) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen {
		return false
	}
	m.state.Prices = prices
	return true
}

// ApplyQuote overwrites the quote, nil included.
func (m *Machine) ApplyQuote(gen uint64, quote *zeroex.Quote) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen {
		return false
	}
	m.state.Quote = quote
	return true
}
