package swap

import (
	"testing"

	"github.com/dmoreno/swap-cli/internal/asset"
	"github.com/dmoreno/swap-cli/internal/zeroex"
)

var (
	usdc = asset.Asset{Symbol: "USDC", Address: "0xAAA", Decimals: 6}
	weth = asset.Asset{Symbol: "WETH", Address: "0xCCC", Decimals: 18}
	dai  = asset.Asset{Symbol: "DAI", Address: "0xDDD", Decimals: 18}
)

func TestSetAssetsSellInvalidatesSelection(t *testing.T) {
	m := NewMachine()
	m.SetAssets(Selection{SellAsset: &usdc})
	m.SetAssets(Selection{BuyAsset: &weth})
	m.SetAmounts("1.5", "0.0005")

	m.SetAssets(Selection{SellAsset: &dai})

	state := m.Snapshot()
	if state.SellAsset == nil || state.SellAsset.Symbol != "DAI" {
		t.Fatalf("sell asset not replaced: %+v", state.SellAsset)
	}
	if state.BuyAsset != nil {
		t.Fatalf("buy asset must be cleared, got %+v", state.BuyAsset)
	}
	if state.SellAmount != "" || state.BuyAmount != "" {
		t.Fatalf("amounts must be cleared, got %q/%q", state.SellAmount, state.BuyAmount)
	}
}

func TestSetAssetsSellClearsBuyEvenWhenSupplied(t *testing.T) {
	m := NewMachine()
	m.SetAssets(Selection{SellAsset: &usdc, BuyAsset: &weth})

	state := m.Snapshot()
	if state.BuyAsset != nil {
		t.Fatalf("buy asset supplied with a new sell asset must still be cleared, got %+v", state.BuyAsset)
	}
}

func TestSetAssetsBuyOnlyMerges(t *testing.T) {
	m := NewMachine()
	m.SetAssets(Selection{SellAsset: &usdc})
	m.SetAmounts("1.5", "")
	m.SetAssets(Selection{BuyAsset: &weth})

	state := m.Snapshot()
	if state.SellAsset == nil || state.SellAsset.Symbol != "USDC" {
		t.Fatalf("sell asset must be untouched: %+v", state.SellAsset)
	}
	if state.BuyAsset == nil || state.BuyAsset.Symbol != "WETH" {
		t.Fatalf("buy asset not merged: %+v", state.BuyAsset)
	}
	if state.SellAmount != "1.5" {
		t.Fatalf("sell amount must be untouched, got %q", state.SellAmount)
	}
}

func TestClearQuoteKeepsSelection(t *testing.T) {
	m := NewMachine()
	m.SetAssets(Selection{SellAsset: &usdc})
	m.SetAssets(Selection{BuyAsset: &weth})
	m.SetAmounts("1.5", "0.0005")
	m.ApplyQuote(m.Generation(), &zeroex.Quote{SellAmount: "1500000"})

	m.ClearQuote()

	state := m.Snapshot()
	if state.Quote != nil {
		t.Fatal("quote must be dropped")
	}
	if state.SellAsset == nil || state.BuyAsset == nil || state.SellAmount != "1.5" {
		t.Fatalf("selection must survive ClearQuote: %+v", state)
	}
}

func TestApplyOverwritesWholesale(t *testing.T) {
	m := NewMachine()
	gen := m.Generation()
	if !m.ApplyTokens(gen, []zeroex.Token{{Symbol: "USDC"}}) {
		t.Fatal("fresh apply must succeed")
	}
	// A failed validation yields an empty snapshot, which overwrites too.
	if !m.ApplyTokens(gen, []zeroex.Token{}) {
		t.Fatal("empty apply must succeed")
	}
	if got := m.Snapshot().Tokens; len(got) != 0 {
		t.Fatalf("empty result must overwrite, got %+v", got)
	}
	if !m.ApplyQuote(gen, nil) {
		t.Fatal("nil quote apply must succeed")
	}
}

func TestStaleFetchCompletionIsDropped(t *testing.T) {
	m := NewMachine()
	m.SetAssets(Selection{SellAsset: &usdc})
	gen := m.Generation()
	m.ApplyPrices(gen, []zeroex.Price{{Symbol: "WETH", Price: "1"}})

	// The user changes the sell asset while a fetch is in flight.
	m.SetAssets(Selection{SellAsset: &dai})

	if m.ApplyPrices(gen, []zeroex.Price{{Symbol: "OLD", Price: "9"}}) {
		t.Fatal("stale completion must be dropped")
	}
	state := m.Snapshot()
	if len(state.Prices) != 1 || state.Prices[0].Symbol != "WETH" {
		t.Fatalf("stale prices must not land, got %+v", state.Prices)
	}
	if m.ApplyQuote(gen, &zeroex.Quote{}) {
		t.Fatal("stale quote completion must be dropped")
	}
}
