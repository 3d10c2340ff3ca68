package confirm

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ipfs/go-cid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zera-audit/zera-pipeline/api"
)

type scriptedChain struct {
	calls    int64
	succeeds int64
	reverted bool
}

func (s *scriptedChain) HasSigner(ctx context.Context) (bool, error) { return true, nil }

func (s *scriptedChain) ActiveChainID(ctx context.Context) (uint64, error) { return 1, nil }

func (s *scriptedChain) SwitchChain(ctx context.Context, chainID uint64) error { return nil }

func (s *scriptedChain) SubmitMapping(ctx context.Context, registry string, auditTx api.TxHash, contentID cid.Cid) (api.TxHash, error) {
	return "", errors.New("not implemented")
}

func (s *scriptedChain) WaitReceipt(ctx context.Context, tx api.TxHash) (api.Receipt, error) {
	n := atomic.AddInt64(&s.calls, 1)
	if s.succeeds > 0 && n >= s.succeeds {
		return api.Receipt{TxHash: tx, Ok: !s.reverted}, nil
	}
	return api.Receipt{}, errors.New("receipt not found")
}

func TestWaitReceiptImmediate(t *testing.T) {
	chain := &scriptedChain{succeeds: 1}
	receipt, err := WaitReceipt(context.Background(), chain, "0xtx", 3, time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, api.TxHash("0xtx"), receipt.TxHash)
	assert.Equal(t, int64(1), atomic.LoadInt64(&chain.calls))
}

func TestWaitReceiptRetriesUntilObserved(t *testing.T) {
	chain := &scriptedChain{succeeds: 3}
	_, err := WaitReceipt(context.Background(), chain, "0xtx", 5, time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, int64(3), atomic.LoadInt64(&chain.calls))
}

func TestWaitReceiptExhaustsAttemptBudget(t *testing.T) {
	chain := &scriptedChain{}
	_, err := WaitReceipt(context.Background(), chain, "0xtx", 4, time.Millisecond)
	require.ErrorIs(t, err, ErrUnconfirmed)
	assert.Equal(t, int64(4), atomic.LoadInt64(&chain.calls))
}

func TestWaitReceiptReverted(t *testing.T) {
	chain := &scriptedChain{succeeds: 1, reverted: true}
	receipt, err := WaitReceipt(context.Background(), chain, "0xtx", 3, time.Millisecond)
	require.ErrorIs(t, err, ErrReverted)
	assert.False(t, receipt.Ok)
}

func TestWaitReceiptHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	chain := &scriptedChain{}
	_, err := WaitReceipt(ctx, chain, "0xtx", 100, 10*time.Second)
	require.ErrorIs(t, err, context.Canceled)
}
