package signer

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

type fakeNonceSource struct {
	nonce uint64
	calls int
}

func (f *fakeNonceSource) PendingNonceAt(_ context.Context, _ common.Address) (uint64, error) {
	f.calls++
	return f.nonce, nil
}

func TestSequencerReservesMonotonicNonces(t *testing.T) {
	source := &fakeNonceSource{nonce: 5}
	seq := NewSequencer(source, common.Address{})

	for want := uint64(5); want < 8; want++ {
		got, err := seq.Reserve(context.Background())
		if err != nil {
			t.Fatalf("Reserve failed: %v", err)
		}
		if got != want {
			t.Fatalf("Reserve = %d, want %d", got, want)
		}
	}
	if source.calls != 1 {
		t.Fatalf("pending nonce must be read once, got %d reads", source.calls)
	}
}
