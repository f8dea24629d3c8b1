package swap

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dmoreno/swap-cli/internal/asset"
	"github.com/dmoreno/swap-cli/internal/zeroex"
)

func holding(symbol, address string, decimals int) asset.Holding {
	return asset.Holding{Asset: asset.Asset{Symbol: symbol, Address: address, Decimals: decimals}}
}

func TestSwappableAssets(t *testing.T) {
	wallet := []asset.Holding{
		holding("ETH", "", 18),
		holding("USDC", "0xAAA", 6),
		holding("DAI", "0xDDD", 18),
		holding("WBTC", "0xEEE", 8),
	}
	catalog := []zeroex.Token{
		{Symbol: "usdc", Name: "USD Coin", Decimals: 6, Address: "0xaaa"},
		{Symbol: "DAI", Name: "Dai", Decimals: 18, Address: "0xDDD"},
		{Symbol: "WBTC", Name: "Wrapped BTC", Decimals: 8, Address: "0xFFF"},
	}
	prices := []zeroex.Price{
		{Symbol: "USDC", Price: "0.00031"},
		{Symbol: "wbtc", Price: "15.2"},
	}

	got := NewReconciler(zap.NewNop(), false).SwappableAssets(wallet, catalog, prices)

	// ETH is native, DAI has no price entry, WBTC only matches by symbol.
	if len(got) != 1 {
		t.Fatalf("expected exactly one swappable asset, got %d: %+v", len(got), got)
	}
	if got[0].Symbol != "USDC" || got[0].Address != "0xAAA" {
		t.Fatalf("unexpected swappable asset: %+v", got[0])
	}
}

func TestSwappableAssetsAddressMismatchExcluded(t *testing.T) {
	wallet := []asset.Holding{holding("USDC", "0xAAA", 6)}
	catalog := []zeroex.Token{{Symbol: "USDC", Name: "USD Coin", Decimals: 6, Address: "0xBBB"}}
	prices := []zeroex.Price{{Symbol: "USDC", Price: "0.00031"}}

	for _, verbose := range []bool{false, true} {
		got := NewReconciler(zap.NewNop(), verbose).SwappableAssets(wallet, catalog, prices)
		if len(got) != 0 {
			t.Fatalf("verbose=%v: partial match must never be swappable, got %+v", verbose, got)
		}
	}
}

func TestSwappableAssetsPreservesWalletOrderWithoutDuplicates(t *testing.T) {
	wallet := []asset.Holding{
		holding("DAI", "0xDDD", 18),
		holding("USDC", "0xAAA", 6),
		holding("USDC", "0xAAA", 6),
	}
	catalog := []zeroex.Token{
		{Symbol: "USDC", Name: "USD Coin", Decimals: 6, Address: "0xAAA"},
		{Symbol: "DAI", Name: "Dai", Decimals: 18, Address: "0xDDD"},
	}
	prices := []zeroex.Price{
		{Symbol: "USDC", Price: "0.00031"},
		{Symbol: "DAI", Price: "0.00030"},
	}

	got := NewReconciler(zap.NewNop(), false).SwappableAssets(wallet, catalog, prices)
	if len(got) != 2 {
		t.Fatalf("expected two swappable assets, got %+v", got)
	}
	if got[0].Symbol != "DAI" || got[1].Symbol != "USDC" {
		t.Fatalf("wallet order not preserved: %+v", got)
	}
}

func TestDiscrepancyDiagnostics(t *testing.T) {
	wallet := []asset.Holding{holding("USDC", "0xAAA", 6)}
	catalog := []zeroex.Token{{Symbol: "USDC", Name: "USD Coin", Decimals: 6, Address: "0xBBB"}}
	prices := []zeroex.Price{{Symbol: "USDC", Price: "0.00031"}}

	core, logs := observer.New(zapcore.WarnLevel)
	NewReconciler(zap.New(core), true).SwappableAssets(wallet, catalog, prices)
	if logs.Len() == 0 {
		t.Fatal("expected a discrepancy warning with verbose diagnostics")
	}

	core, logs = observer.New(zapcore.WarnLevel)
	NewReconciler(zap.New(core), false).SwappableAssets(wallet, catalog, prices)
	if logs.Len() != 0 {
		t.Fatalf("expected no diagnostics without verbose, got %d entries", logs.Len())
	}
}

func TestCurrentTradePrice(t *testing.T) {
	prices := []zeroex.Price{{Symbol: "USDC", Price: "0.00031"}}
	buy := &asset.Asset{Symbol: "usdc", Address: "0xAAA", Decimals: 6}
	if got := CurrentTradePrice(buy, prices); got != "0.00031" {
		t.Fatalf("expected stored price string, got %q", got)
	}

	missing := &asset.Asset{Symbol: "DAI", Address: "0xDDD", Decimals: 18}
	if got := CurrentTradePrice(missing, prices); got != "0" {
		t.Fatalf("expected zero-value price, got %q", got)
	}
	if got := CurrentTradePrice(nil, prices); got != "0" {
		t.Fatalf("expected zero-value price for nil asset, got %q", got)
	}
}
