package settlement

import (
	"context"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	clierr "github.com/dmoreno/swap-cli/internal/errors"
	"github.com/dmoreno/swap-cli/internal/signer"
	"github.com/dmoreno/swap-cli/internal/zeroex"
)

// One-time infinite approval, so future trades of the same asset skip the
// approval transaction. MaxUint256-1 matches what the settlement contract
// treats as unlimited.
var maxApproval = new(big.Int).Sub(
	new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1)),
	big.NewInt(1),
)

const approvalGasMargin = 1.2

// Orchestrator turns an accepted quote into on-chain transactions. The
// allowance is read immediately before signing, never taken from
// quote-fetch time; it can change between the two.
type Orchestrator struct {
	chain  Chain
	signer signer.Signer
	log    *zap.Logger
}

func New(chain Chain, txSigner signer.Signer, log *zap.Logger) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{chain: chain, signer: txSigner, log: log}
}

// Receipt reports what a settlement submitted.
type Receipt struct {
	ApprovalIssued bool
	ApprovalTxHash string
	SwapTxHash     string
}

// Settle reads the current allowance, signs an approval first when the
// allowance falls short of the quote's sell amount, always signs the swap,
// and broadcasts every signed transaction concurrently. Signing order
// plus the sequencer's monotonic nonces guarantee the approval is mined
// before the swap regardless of which broadcast lands first.
//
// Any failure aborts the settlement. A leg already broadcast is a real
// on-chain effect and is not rolled back; retrying is the caller's call.
func (o *Orchestrator) Settle(ctx context.Context, quote *zeroex.Quote) (Receipt, error) {
	if quote == nil {
		return Receipt{}, clierr.New(clierr.CodeUsage, "missing quote")
	}
	token, err := parseAddress("sellTokenAddress", quote.SellTokenAddress)
	if err != nil {
		return Receipt{}, err
	}
	spender, err := parseAddress("allowanceTarget", quote.AllowanceTarget)
	if err != nil {
		return Receipt{}, err
	}
	target, err := parseAddress("to", quote.To)
	if err != nil {
		return Receipt{}, err
	}
	sellAmount, err := parseBig("sellAmount", quote.SellAmount)
	if err != nil {
		return Receipt{}, err
	}
	gasPrice, err := parseBig("gasPrice", quote.GasPrice)
	if err != nil {
		return Receipt{}, err
	}
	value, err := parseBig("value", quote.Value)
	if err != nil {
		return Receipt{}, err
	}
	swapGas, err := parseGasLimit(quote.Gas)
	if err != nil {
		return Receipt{}, err
	}
	calldata, err := decodeHex(quote.Data)
	if err != nil {
		return Receipt{}, clierr.Wrap(clierr.CodeUsage, "decode swap calldata", err)
	}

	owner := o.signer.Address()
	chainID := big.NewInt(quote.ChainID)
	seq := signer.NewSequencer(o.chain, owner)

	allowance, err := o.chain.Allowance(ctx, token, owner, spender)
	if err != nil {
		return Receipt{}, err
	}
	o.log.Debug("allowance snapshot",
		zap.String("token", token.Hex()),
		zap.String("spender", spender.Hex()),
		zap.String("allowance", allowance.String()),
		zap.String("required", sellAmount.String()))

	var receipt Receipt
	signed := make([]*types.Transaction, 0, 2)

	if allowance.Cmp(sellAmount) < 0 {
		approveData, err := erc20ABI.Pack("approve", spender, maxApproval)
		if err != nil {
			return Receipt{}, clierr.Wrap(clierr.CodeInternal, "pack approval calldata", err)
		}
		gasLimit, err := o.chain.EstimateGas(ctx, ethereum.CallMsg{From: owner, To: &token, Data: approveData})
		if err != nil {
			return Receipt{}, clierr.Wrap(clierr.CodeUnavailable, "estimate approval gas", err)
		}
		gasLimit = uint64(float64(gasLimit) * approvalGasMargin)
		nonce, err := seq.Reserve(ctx)
		if err != nil {
			return Receipt{}, err
		}
		approveTx := types.NewTx(&types.LegacyTx{
			Nonce:    nonce,
			GasPrice: gasPrice,
			Gas:      gasLimit,
			To:       &token,
			Value:    big.NewInt(0),
			Data:     approveData,
		})
		signedApprove, err := o.signer.SignTx(chainID, approveTx)
		if err != nil {
			return Receipt{}, clierr.Wrap(clierr.CodeSigner, "sign approval transaction", err)
		}
		signed = append(signed, signedApprove)
		receipt.ApprovalIssued = true
		receipt.ApprovalTxHash = signedApprove.Hash().Hex()
	}

	nonce, err := seq.Reserve(ctx)
	if err != nil {
		return Receipt{}, err
	}
	swapTx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      swapGas,
		To:       &target,
		Value:    value,
		Data:     calldata,
	})
	signedSwap, err := o.signer.SignTx(chainID, swapTx)
	if err != nil {
		return Receipt{}, clierr.Wrap(clierr.CodeSigner, "sign swap transaction", err)
	}
	signed = append(signed, signedSwap)
	receipt.SwapTxHash = signedSwap.Hash().Hex()

	// Broadcast fan-out: all signatures are ready, submission order no
	// longer matters because the nonces already enforce mining order.
	errs := make([]error, len(signed))
	var wg sync.WaitGroup
	for i, tx := range signed {
		wg.Add(1)
		go func(i int, tx *types.Transaction) {
			defer wg.Done()
			errs[i] = o.chain.SendTransaction(ctx, tx)
		}(i, tx)
	}
	wg.Wait()
	for i, err := range errs {
		if err != nil {
			return receipt, clierr.Wrap(clierr.CodeBroadcast,
				fmt.Sprintf("broadcast transaction %s", signed[i].Hash().Hex()), err)
		}
	}
	return receipt, nil
}

func parseAddress(field, v string) (common.Address, error) {
	if !common.IsHexAddress(strings.TrimSpace(v)) {
		return common.Address{}, clierr.New(clierr.CodeUsage, fmt.Sprintf("quote field %s is not a valid address", field))
	}
	return common.HexToAddress(strings.TrimSpace(v)), nil
}

func parseBig(field, v string) (*big.Int, error) {
	n, ok := new(big.Int).SetString(strings.TrimSpace(v), 10)
	if !ok || n.Sign() < 0 {
		return nil, clierr.New(clierr.CodeUsage, fmt.Sprintf("quote field %s is not a non-negative integer", field))
	}
	return n, nil
}

func parseGasLimit(v string) (uint64, error) {
	n, err := parseBig("gas", v)
	if err != nil {
		return 0, err
	}
	if !n.IsUint64() {
		return 0, clierr.New(clierr.CodeUsage, "quote gas limit overflows uint64")
	}
	return n.Uint64(), nil
}

func decodeHex(v string) ([]byte, error) {
	clean := strings.TrimPrefix(strings.TrimSpace(v), "0x")
	if clean == "" {
		return []byte{}, nil
	}
	if len(clean)%2 != 0 {
		clean = "0" + clean
	}
	buf, err := hex.DecodeString(clean)
	if err != nil {
		return nil, fmt.Errorf("invalid hex: %w", err)
	}
	return buf, nil
}
