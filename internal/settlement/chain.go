package settlement

import (
	"context"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"

	clierr "github.com/dmoreno/swap-cli/internal/errors"
	"github.com/dmoreno/swap-cli/internal/registry"
)

// Chain is the read/broadcast surface the orchestrator needs from a node.
type Chain interface {
	Allowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
}

var erc20ABI = mustABI(registry.ERC20MinimalABI)

func mustABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(err)
	}
	return parsed
}

// EthChain implements Chain over an ethclient connection.
type EthChain struct {
	client *ethclient.Client
}

func DialChain(ctx context.Context, rpcURL string) (*EthChain, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, clierr.Wrap(clierr.CodeUnavailable, "connect rpc", err)
	}
	return &EthChain{client: client}, nil
}

func (c *EthChain) Close() {
	c.client.Close()
}

// Allowance reads the current amount spender may transfer from owner on
// the token contract.
func (c *EthChain) Allowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error) {
	data, err := erc20ABI.Pack("allowance", owner, spender)
	if err != nil {
		return nil, clierr.Wrap(clierr.CodeInternal, "pack allowance calldata", err)
	}
	out, err := c.client.CallContract(ctx, ethereum.CallMsg{To: &token, Data: data}, nil)
	if err != nil {
		return nil, clierr.Wrap(clierr.CodeUnavailable, "read allowance", err)
	}
	results, err := erc20ABI.Unpack("allowance", out)
	if err != nil || len(results) != 1 {
		return nil, clierr.Wrap(clierr.CodeUnavailable, "decode allowance result", err)
	}
	amount, ok := results[0].(*big.Int)
	if !ok {
		return nil, clierr.New(clierr.CodeUnavailable, "allowance result is not uint256")
	}
	return amount, nil
}

func (c *EthChain) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	return c.client.PendingNonceAt(ctx, account)
}

func (c *EthChain) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	return c.client.EstimateGas(ctx, msg)
}

func (c *EthChain) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	return c.client.SendTransaction(ctx, tx)
}
