package signer

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	clierr "github.com/dmoreno/swap-cli/internal/errors"
)

// NonceSource supplies the next pending nonce for an address, typically
// an ethclient.
type NonceSource interface {
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
}

// Sequencer hands out strictly increasing nonces for one sender. When a
// settlement signs an approval and a swap back to back, the approval
// reserves the lower nonce, so the network cannot mine the swap first no
// matter which broadcast lands first.
type Sequencer struct {
	mu     sync.Mutex
	source NonceSource
	addr   common.Address
	next   uint64
	primed bool
}

func NewSequencer(source NonceSource, addr common.Address) *Sequencer {
	return &Sequencer{source: source, addr: addr}
}

// Reserve returns the next nonce. The first call reads the pending nonce
// from the source; later calls increment locally.
func (s *Sequencer) Reserve(ctx context.Context) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.primed {
		n, err := s.source.PendingNonceAt(ctx, s.addr)
		if err != nil {
			return 0, clierr.Wrap(clierr.CodeUnavailable, "fetch pending nonce", err)
		}
		s.next = n
		s.primed = true
	}
	n := s.next
	s.next++
	return n, nil
}
