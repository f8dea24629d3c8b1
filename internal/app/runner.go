package app

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dmoreno/swap-cli/internal/asset"
	"github.com/dmoreno/swap-cli/internal/cache"
	"github.com/dmoreno/swap-cli/internal/config"
	clierr "github.com/dmoreno/swap-cli/internal/errors"
	"github.com/dmoreno/swap-cli/internal/httpx"
	"github.com/dmoreno/swap-cli/internal/store"
	"github.com/dmoreno/swap-cli/internal/swap"
	"github.com/dmoreno/swap-cli/internal/zeroex"
)

type Runner struct{}

func NewRunner() *Runner {
	return &Runner{}
}

func (r *Runner) Run(args []string) int {
	state := &runtimeState{}
	root := state.newRootCommand()
	root.SetArgs(args)
	err := root.Execute()
	state.close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
	return clierr.ExitCode(err)
}

type runtimeState struct {
	flags    config.GlobalFlags
	settings config.Settings
	log      *zap.Logger
	client   *zeroex.Client
	machine  *swap.Machine
	catalog  *cache.Store
	history  *store.Store
}

func (s *runtimeState) newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "swap",
		Short:         "Swap wallet assets through the 0x aggregator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return s.init()
		},
	}
	root.PersistentFlags().StringVar(&s.flags.ConfigPath, "config", "", "Path to config file")
	root.PersistentFlags().BoolVar(&s.flags.Verbose, "verbose", false, "Enable verbose diagnostics")
	root.PersistentFlags().StringVar(&s.flags.Timeout, "timeout", "", "HTTP timeout (e.g. 10s)")
	root.PersistentFlags().IntVar(&s.flags.Retries, "retries", -1, "HTTP retry attempts")
	root.PersistentFlags().StringVar(&s.flags.RPCURL, "rpc-url", "", "RPC URL override")
	root.PersistentFlags().BoolVar(&s.flags.NoCache, "no-cache", false, "Disable the catalog snapshot cache")

	root.AddCommand(s.newTokensCommand())
	root.AddCommand(s.newPricesCommand())
	root.AddCommand(s.newSwappableCommand())
	root.AddCommand(s.newQuoteCommand())
	root.AddCommand(s.newRunCommand())
	root.AddCommand(s.newHistoryCommand())
	return root
}

func (s *runtimeState) init() error {
	settings, err := config.Load(s.flags)
	if err != nil {
		return clierr.Wrap(clierr.CodeUsage, "load configuration", err)
	}
	s.settings = settings

	log, err := newLogger(settings.Verbose)
	if err != nil {
		return clierr.Wrap(clierr.CodeInternal, "build logger", err)
	}
	s.log = log
	s.client = zeroex.New(httpx.New(settings.Timeout, settings.Retries), settings.APIBaseURL, log)
	s.machine = swap.NewMachine()
	return nil
}

func (s *runtimeState) close() {
	if s.catalog != nil {
		_ = s.catalog.Close()
	}
	if s.history != nil {
		_ = s.history.Close()
	}
	if s.log != nil {
		_ = s.log.Sync()
	}
}

func (s *runtimeState) ensureCatalogCache() *cache.Store {
	if !s.settings.CacheEnabled {
		return nil
	}
	if s.catalog == nil {
		c, err := cache.Open(s.settings.CachePath, s.settings.CacheLockPath)
		if err != nil {
			s.log.Warn("catalog cache unavailable", zap.Error(err))
			return nil
		}
		s.catalog = c
	}
	return s.catalog
}

func (s *runtimeState) ensureHistoryStore() (*store.Store, error) {
	if s.history == nil {
		h, err := store.Open(s.settings.StorePath, s.settings.StoreLockPath)
		if err != nil {
			return nil, clierr.Wrap(clierr.CodeInternal, "open settlement store", err)
		}
		s.history = h
	}
	return s.history, nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build()
}

func emit(v any) error {
	buf, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return clierr.Wrap(clierr.CodeInternal, "encode output", err)
	}
	fmt.Println(string(buf))
	return nil
}

// findToken resolves a symbol against the aggregator catalog.
func findToken(tokens []zeroex.Token, symbol string) (asset.Asset, error) {
	for _, tok := range tokens {
		if asset.SameSymbol(tok.Symbol, symbol) {
			return asset.Asset{
				Symbol:   tok.Symbol,
				Name:     tok.Name,
				Address:  tok.Address,
				Decimals: tok.Decimals,
			}, nil
		}
	}
	return asset.Asset{}, clierr.New(clierr.CodeUsage, fmt.Sprintf("asset %s is not in the aggregator catalog", strings.ToUpper(symbol)))
}
