package app

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dmoreno/swap-cli/internal/asset"
	clierr "github.com/dmoreno/swap-cli/internal/errors"
	"github.com/dmoreno/swap-cli/internal/swap"
	"github.com/dmoreno/swap-cli/internal/zeroex"
)

const (
	tokensCacheKey   = "tokens"
	tokensCacheTTL   = 24 * time.Hour
	pricesCacheTTL   = 5 * time.Minute
	defaultPriceBase = "ETH"
)

func (s *runtimeState) newTokensCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tokens",
		Short: "List the aggregator's tradeable asset catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			tokens, err := s.fetchTokens(cmd.Context())
			if err != nil {
				return err
			}
			return emit(tokens)
		},
	}
}

func (s *runtimeState) newPricesCommand() *cobra.Command {
	var sellSymbol string
	cmd := &cobra.Command{
		Use:   "prices",
		Short: "List prices quoted against a sell asset",
		RunE: func(cmd *cobra.Command, _ []string) error {
			prices, err := s.fetchPrices(cmd.Context(), sellSymbol)
			if err != nil {
				return err
			}
			return emit(prices)
		},
	}
	cmd.Flags().StringVar(&sellSymbol, "sell", defaultPriceBase, "Sell asset symbol used as the unit of account")
	return cmd
}

func (s *runtimeState) newSwappableCommand() *cobra.Command {
	var holdingsPath, sellSymbol string
	cmd := &cobra.Command{
		Use:   "swappable",
		Short: "List wallet holdings eligible for trading",
		RunE: func(cmd *cobra.Command, _ []string) error {
			holdings, err := asset.LoadHoldings(holdingsPath)
			if err != nil {
				return clierr.Wrap(clierr.CodeUsage, "load holdings", err)
			}
			tokens, err := s.fetchTokens(cmd.Context())
			if err != nil {
				return err
			}
			prices, err := s.fetchPrices(cmd.Context(), sellSymbol)
			if err != nil {
				return err
			}
			reconciler := swap.NewReconciler(s.log, s.settings.Verbose)
			return emit(reconciler.SwappableAssets(holdings, tokens, prices))
		},
	}
	cmd.Flags().StringVar(&holdingsPath, "holdings", "", "Path to the wallet holdings file")
	cmd.Flags().StringVar(&sellSymbol, "sell", defaultPriceBase, "Sell asset symbol used as the unit of account")
	_ = cmd.MarkFlagRequired("holdings")
	return cmd
}

// fetchTokens pulls the catalog and applies it to the trade state. On a
// transport failure the last cached snapshot is served instead; a
// validation failure is not a transport failure and overwrites with empty.
func (s *runtimeState) fetchTokens(ctx context.Context) ([]zeroex.Token, error) {
	gen := s.machine.Generation()
	tokens, err := s.client.FetchTokens(ctx)
	if err != nil {
		if cached, ok := s.cachedTokens(); ok {
			return cached, nil
		}
		return nil, err
	}
	s.machine.ApplyTokens(gen, tokens)
	if len(tokens) > 0 {
		s.cachePut(tokensCacheKey, tokens, tokensCacheTTL)
	}
	return tokens, nil
}

func (s *runtimeState) fetchPrices(ctx context.Context, sellSymbol string) ([]zeroex.Price, error) {
	key := "prices:" + strings.ToUpper(strings.TrimSpace(sellSymbol))
	gen := s.machine.Generation()
	prices, err := s.client.FetchPrices(ctx, asset.Asset{Symbol: sellSymbol})
	if err != nil {
		if cached, ok := s.cachedPrices(key); ok {
			return cached, nil
		}
		return nil, err
	}
	s.machine.ApplyPrices(gen, prices)
	if len(prices) > 0 {
		s.cachePut(key, prices, pricesCacheTTL)
	}
	return prices, nil
}

func (s *runtimeState) cachedTokens() ([]zeroex.Token, bool) {
	c := s.ensureCatalogCache()
	if c == nil {
		return nil, false
	}
	snap, err := c.Get(tokensCacheKey)
	if err != nil || !snap.Hit {
		return nil, false
	}
	var tokens []zeroex.Token
	if err := json.Unmarshal(snap.Value, &tokens); err != nil {
		return nil, false
	}
	s.log.Warn("aggregator unreachable, serving cached token catalog",
		zap.Duration("age", snap.Age), zap.Bool("stale", snap.Stale))
	return tokens, true
}

func (s *runtimeState) cachedPrices(key string) ([]zeroex.Price, bool) {
	c := s.ensureCatalogCache()
	if c == nil {
		return nil, false
	}
	snap, err := c.Get(key)
	if err != nil || !snap.Hit {
		return nil, false
	}
	var prices []zeroex.Price
	if err := json.Unmarshal(snap.Value, &prices); err != nil {
		return nil, false
	}
	s.log.Warn("aggregator unreachable, serving cached prices",
		zap.Duration("age", snap.Age), zap.Bool("stale", snap.Stale))
	return prices, true
}

func (s *runtimeState) cachePut(key string, v any, ttl time.Duration) {
	c := s.ensureCatalogCache()
	if c == nil {
		return
	}
	buf, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.Put(key, buf, ttl); err != nil {
		s.log.Warn("catalog cache write failed", zap.String("key", key), zap.Error(err))
	}
}
