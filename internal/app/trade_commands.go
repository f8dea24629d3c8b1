package app

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dmoreno/swap-cli/internal/asset"
	clierr "github.com/dmoreno/swap-cli/internal/errors"
	"github.com/dmoreno/swap-cli/internal/registry"
	"github.com/dmoreno/swap-cli/internal/settlement"
	"github.com/dmoreno/swap-cli/internal/signer"
	"github.com/dmoreno/swap-cli/internal/store"
	"github.com/dmoreno/swap-cli/internal/swap"
	"github.com/dmoreno/swap-cli/internal/zeroex"
)

type quoteView struct {
	SellSymbol      string        `json:"sell_symbol"`
	BuySymbol       string        `json:"buy_symbol"`
	SellAmount      string        `json:"sell_amount"`
	BuyAmount       string        `json:"buy_amount"`
	Price           string        `json:"price"`
	GuaranteedPrice string        `json:"guaranteed_price,omitempty"`
	Quote           *zeroex.Quote `json:"quote"`
}

func (s *runtimeState) newQuoteCommand() *cobra.Command {
	var sellSymbol, buySymbol, amount string
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Fetch an executable quote for a pair",
		RunE: func(cmd *cobra.Command, _ []string) error {
			view, _, err := s.fetchTradeQuote(cmd, sellSymbol, buySymbol, amount)
			if err != nil {
				return err
			}
			return emit(view)
		},
	}
	cmd.Flags().StringVar(&sellSymbol, "sell", "", "Sell asset symbol")
	cmd.Flags().StringVar(&buySymbol, "buy", "", "Buy asset symbol")
	cmd.Flags().StringVar(&amount, "amount", "", "Sell amount in human units (e.g. 1.5)")
	_ = cmd.MarkFlagRequired("sell")
	_ = cmd.MarkFlagRequired("buy")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func (s *runtimeState) newRunCommand() *cobra.Command {
	var sellSymbol, buySymbol, amount string
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Fetch a quote, approve if needed, and submit the swap",
		RunE: func(cmd *cobra.Command, _ []string) error {
			view, sellAsset, err := s.fetchTradeQuote(cmd, sellSymbol, buySymbol, amount)
			if err != nil {
				return err
			}
			quote := view.Quote

			rpcURL, err := registry.ResolveRPCURL(s.settings.RPCURL, quote.ChainID)
			if err != nil {
				return clierr.Wrap(clierr.CodeUsage, "resolve rpc url", err)
			}
			chain, err := settlement.DialChain(cmd.Context(), rpcURL)
			if err != nil {
				return err
			}
			defer chain.Close()

			txSigner, err := signer.NewLocalSignerFromEnv()
			if err != nil {
				return clierr.Wrap(clierr.CodeSigner, "load signing key", err)
			}

			history, err := s.ensureHistoryStore()
			if err != nil {
				return err
			}
			rec := store.Record{
				ID:         newRecordID(),
				ChainID:    quote.ChainID,
				SellSymbol: sellAsset.Symbol,
				BuySymbol:  view.BuySymbol,
				SellAmount: view.SellAmount,
				BuyAmount:  view.BuyAmount,
				Status:     store.StatusFailed,
				CreatedAt:  time.Now().UTC().Format(time.RFC3339),
			}

			orch := settlement.New(chain, txSigner, s.log)
			receipt, err := orch.Settle(cmd.Context(), quote)
			rec.ApprovalTxHash = receipt.ApprovalTxHash
			rec.SwapTxHash = receipt.SwapTxHash
			if err == nil {
				rec.Status = store.StatusSubmitted
			}
			if saveErr := history.Save(rec); saveErr != nil {
				s.log.Warn("settlement record not saved", zap.Error(saveErr))
			}
			if err != nil {
				return err
			}
			s.machine.ClearQuote()
			return emit(rec)
		},
	}
	runCmd.Flags().StringVar(&sellSymbol, "sell", "", "Sell asset symbol")
	runCmd.Flags().StringVar(&buySymbol, "buy", "", "Buy asset symbol")
	runCmd.Flags().StringVar(&amount, "amount", "", "Sell amount in human units (e.g. 1.5)")
	_ = runCmd.MarkFlagRequired("sell")
	_ = runCmd.MarkFlagRequired("buy")
	_ = runCmd.MarkFlagRequired("amount")
	return runCmd
}

func (s *runtimeState) newHistoryCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past settlement attempts",
		RunE: func(_ *cobra.Command, _ []string) error {
			history, err := s.ensureHistoryStore()
			if err != nil {
				return err
			}
			records, err := history.List(limit)
			if err != nil {
				return clierr.Wrap(clierr.CodeInternal, "list settlements", err)
			}
			return emit(records)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum records to list")
	return cmd
}

// fetchTradeQuote drives the trade state machine through asset selection,
// amount entry and quote fetch, then renders the resulting quote.
func (s *runtimeState) fetchTradeQuote(cmd *cobra.Command, sellSymbol, buySymbol, amount string) (quoteView, asset.Asset, error) {
	ctx := cmd.Context()
	tokens, err := s.fetchTokens(ctx)
	if err != nil {
		return quoteView{}, asset.Asset{}, err
	}
	sellAsset, err := findToken(tokens, sellSymbol)
	if err != nil {
		return quoteView{}, asset.Asset{}, err
	}
	buyAsset, err := findToken(tokens, buySymbol)
	if err != nil {
		return quoteView{}, asset.Asset{}, err
	}

	s.machine.SetAssets(swap.Selection{SellAsset: &sellAsset})
	s.machine.SetAssets(swap.Selection{BuyAsset: &buyAsset})
	s.machine.SetAmounts(amount, "")

	gen := s.machine.Generation()
	quote, err := s.client.FetchQuote(ctx, sellAsset, buyAsset, amount)
	if err != nil {
		return quoteView{}, asset.Asset{}, err
	}
	s.machine.ApplyQuote(gen, quote)
	if quote == nil {
		return quoteView{}, asset.Asset{}, clierr.New(clierr.CodeUnavailable, "aggregator returned no usable quote")
	}

	buyAmount, err := asset.FormatUnitsString(quote.BuyAmount, buyAsset.Decimals)
	if err != nil {
		return quoteView{}, asset.Asset{}, err
	}
	s.machine.SetAmounts(amount, buyAmount)

	return quoteView{
		SellSymbol:      sellAsset.Symbol,
		BuySymbol:       buyAsset.Symbol,
		SellAmount:      amount,
		BuyAmount:       buyAmount,
		Price:           quote.Price,
		GuaranteedPrice: quote.GuaranteedPrice,
		Quote:           quote,
	}, sellAsset, nil
}

func newRecordID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "swap-unknown"
	}
	return fmt.Sprintf("swap_%s", hex.EncodeToString(b))
}
