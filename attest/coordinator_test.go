package attest

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ipfs/go-cid"
	mh "github.com/multiformats/go-multihash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zera-audit/zera-pipeline/api"
	"github.com/zera-audit/zera-pipeline/chain/netctx"
)

const (
	testStorageChain     = uint64(314159)
	testAttestationChain = uint64(84532)
	testRegistry         = "0xregistry"
)

func testCid(t *testing.T, data string) cid.Cid {
	h, err := mh.Sum([]byte(data), mh.SHA2_256, -1)
	require.NoError(t, err)
	return cid.NewCidV1(cid.Raw, h)
}

type mockChain struct {
	lk     sync.Mutex
	active uint64

	switchErr   error
	switchCalls int64

	mappingTx     api.TxHash
	submitErr     error
	submitErrOnce bool
	submitCalls   int64

	receiptOk  bool
	receiptErr error
}

func (m *mockChain) HasSigner(ctx context.Context) (bool, error) { return true, nil }

func (m *mockChain) ActiveChainID(ctx context.Context) (uint64, error) {
	m.lk.Lock()
	defer m.lk.Unlock()
	return m.active, nil
}

func (m *mockChain) SwitchChain(ctx context.Context, chainID uint64) error {
	atomic.AddInt64(&m.switchCalls, 1)
	m.lk.Lock()
	defer m.lk.Unlock()
	if m.switchErr != nil {
		return m.switchErr
	}
	m.active = chainID
	return nil
}

func (m *mockChain) SubmitMapping(ctx context.Context, registry string, auditTx api.TxHash, contentID cid.Cid) (api.TxHash, error) {
	atomic.AddInt64(&m.submitCalls, 1)
	m.lk.Lock()
	err := m.submitErr
	if m.submitErrOnce {
		m.submitErr = nil
	}
	m.lk.Unlock()
	if err != nil {
		return "", err
	}
	return m.mappingTx, nil
}

func (m *mockChain) WaitReceipt(ctx context.Context, tx api.TxHash) (api.Receipt, error) {
	if m.receiptErr != nil {
		return api.Receipt{}, m.receiptErr
	}
	return api.Receipt{TxHash: tx, Ok: m.receiptOk}, nil
}

func newTestCoordinator(t *testing.T, chain *mockChain, registries map[uint64]string) *Coordinator {
	net, err := netctx.New(context.Background(), chain)
	require.NoError(t, err)

	c := NewCoordinator(context.Background(), chain, net, Config{
		AttestationChainID: testAttestationChain,
		Registries:         registries,
		ConfirmAttempts:    2,
		ConfirmInterval:    10 * time.Millisecond,
	})
	t.Cleanup(c.Stop)
	return c
}

func waitStatus(t *testing.T, c *Coordinator, want api.AttestationStatus) api.AttestationState {
	var last api.AttestationState
	require.Eventually(t, func() bool {
		last = c.Snapshot()
		return last.Status == want
	}, 5*time.Second, 5*time.Millisecond, "status stuck at %s, want %s", last.Status, want)
	return last
}

func defaultRegistries() map[uint64]string {
	return map[uint64]string{testAttestationChain: testRegistry}
}

func TestMappingSubmitsWhenBothHalvesPresent(t *testing.T) {
	chain := &mockChain{active: testAttestationChain, mappingTx: "0xmapping", receiptOk: true}
	c := newTestCoordinator(t, chain, defaultRegistries())

	c.NoteContentID(testCid(t, "artifact"))
	assert.Equal(t, api.AttestAwaitingAuditTx, c.Snapshot().Status)

	require.NoError(t, c.NoteAuditTx("0xaudit"))

	state := waitStatus(t, c, api.AttestMappingConfirmed)
	assert.Equal(t, api.TxHash("0xmapping"), state.MappingTx)
	assert.True(t, state.MappingConfirmed)
	assert.Equal(t, int64(1), atomic.LoadInt64(&chain.submitCalls))
}

func TestMappingSubmitsRegardlessOfIntakeOrder(t *testing.T) {
	chain := &mockChain{active: testAttestationChain, mappingTx: "0xmapping", receiptOk: true}
	c := newTestCoordinator(t, chain, defaultRegistries())

	require.NoError(t, c.NoteAuditTx("0xaudit"))
	assert.Equal(t, api.AttestNoUpload, c.Snapshot().Status)

	c.NoteContentID(testCid(t, "artifact"))

	waitStatus(t, c, api.AttestMappingConfirmed)
	assert.Equal(t, int64(1), atomic.LoadInt64(&chain.submitCalls))
}

func TestConcurrentIntakeSubmitsExactlyOnce(t *testing.T) {
	chain := &mockChain{active: testAttestationChain, mappingTx: "0xmapping", receiptOk: true}
	c := newTestCoordinator(t, chain, defaultRegistries())

	contentID := testCid(t, "artifact")
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			c.NoteContentID(contentID)
		}()
		go func() {
			defer wg.Done()
			_ = c.NoteAuditTx("0xaudit")
		}()
	}
	wg.Wait()

	waitStatus(t, c, api.AttestMappingConfirmed)
	assert.Equal(t, int64(1), atomic.LoadInt64(&chain.submitCalls))
}

func TestSubmissionFailureResetsGuardAndRetries(t *testing.T) {
	chain := &mockChain{
		active:        testAttestationChain,
		mappingTx:     "0xmapping",
		receiptOk:     true,
		submitErr:     errors.New("nonce too low"),
		submitErrOnce: true,
	}
	c := newTestCoordinator(t, chain, defaultRegistries())

	c.NoteContentID(testCid(t, "artifact"))
	require.NoError(t, c.NoteAuditTx("0xaudit"))

	state := waitStatus(t, c, api.AttestMappingFailed)
	assert.False(t, state.AttemptedMapping)
	assert.NotEmpty(t, state.LastError)

	// Re-noting the audit tx retries the mapping.
	require.NoError(t, c.NoteAuditTx("0xaudit"))
	waitStatus(t, c, api.AttestMappingConfirmed)
	assert.Equal(t, int64(2), atomic.LoadInt64(&chain.submitCalls))
}

func TestConfirmationFailureIsDistinctFromSubmissionFailure(t *testing.T) {
	chain := &mockChain{
		active:     testAttestationChain,
		mappingTx:  "0xmapping",
		receiptErr: errors.New("receipt not found"),
	}
	c := newTestCoordinator(t, chain, defaultRegistries())

	c.NoteContentID(testCid(t, "artifact"))
	require.NoError(t, c.NoteAuditTx("0xaudit"))

	state := waitStatus(t, c, api.AttestMappingFailed)
	assert.Equal(t, api.TxHash("0xmapping"), state.MappingTx)
	assert.False(t, state.MappingConfirmed)
	assert.Contains(t, state.LastError, "confirming mapping")
}

func TestUploadOnStorageChainTriggersSingleSwitch(t *testing.T) {
	chain := &mockChain{active: testStorageChain, mappingTx: "0xmapping", receiptOk: true}
	c := newTestCoordinator(t, chain, defaultRegistries())

	contentID := testCid(t, "artifact")
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.NoteContentID(contentID)
		}()
	}
	wg.Wait()

	require.Eventually(t, func() bool {
		return atomic.LoadInt64(&chain.switchCalls) == 1
	}, 5*time.Second, 5*time.Millisecond)

	// Settle, then make sure no further switches were issued.
	require.NoError(t, c.NoteAuditTx("0xaudit"))
	waitStatus(t, c, api.AttestMappingConfirmed)
	assert.Equal(t, int64(1), atomic.LoadInt64(&chain.switchCalls))
}

func TestReevaluateResumesAfterUserChainSwitch(t *testing.T) {
	chain := &mockChain{
		active:    testStorageChain,
		mappingTx: "0xmapping",
		receiptOk: true,
		switchErr: errors.New("wallet rejected"),
	}
	net, err := netctx.New(context.Background(), chain)
	require.NoError(t, err)

	c := NewCoordinator(context.Background(), chain, net, Config{
		AttestationChainID: testAttestationChain,
		Registries:         defaultRegistries(),
		ConfirmAttempts:    2,
		ConfirmInterval:    10 * time.Millisecond,
	})
	t.Cleanup(c.Stop)

	// Both halves arrive while the auto switch fails, so the record stalls
	// with the trigger unsatisfied.
	c.NoteContentID(testCid(t, "artifact"))
	require.NoError(t, c.NoteAuditTx("0xaudit"))
	require.Eventually(t, func() bool {
		return c.Snapshot().LastError != ""
	}, 5*time.Second, 5*time.Millisecond)
	assert.Zero(t, atomic.LoadInt64(&chain.submitCalls))

	// The user resolves the failure by re-switching; the node re-evaluates
	// the trigger on its behalf.
	chain.lk.Lock()
	chain.switchErr = nil
	chain.lk.Unlock()
	require.NoError(t, net.SwitchTo(context.Background(), testAttestationChain))
	c.Reevaluate()

	waitStatus(t, c, api.AttestMappingConfirmed)
	assert.Equal(t, int64(1), atomic.LoadInt64(&chain.submitCalls))
}

func TestMissingRegistryAddressIsTransient(t *testing.T) {
	chain := &mockChain{active: testAttestationChain, mappingTx: "0xmapping", receiptOk: true}
	c := newTestCoordinator(t, chain, map[uint64]string{})

	c.NoteContentID(testCid(t, "artifact"))
	require.NoError(t, c.NoteAuditTx("0xaudit"))

	state := c.Snapshot()
	assert.NotEqual(t, api.AttestMappingFailed, state.Status)
	assert.False(t, state.AttemptedMapping)
	assert.NotEmpty(t, state.LastError)
	assert.Zero(t, atomic.LoadInt64(&chain.submitCalls))
}

func TestResetClearsRecordForNewCycle(t *testing.T) {
	chain := &mockChain{active: testAttestationChain, mappingTx: "0xmapping", receiptOk: true}
	c := newTestCoordinator(t, chain, defaultRegistries())

	c.NoteContentID(testCid(t, "artifact"))
	require.NoError(t, c.NoteAuditTx("0xaudit"))
	waitStatus(t, c, api.AttestMappingConfirmed)

	require.NoError(t, c.Reset())
	state := c.Snapshot()
	assert.Equal(t, api.AttestNoUpload, state.Status)
	assert.Empty(t, state.ContentID)
	assert.False(t, state.AttemptedMapping)
	assert.False(t, state.MappingConfirmed)

	// A second cycle runs through cleanly.
	c.NoteContentID(testCid(t, "artifact-two"))
	require.NoError(t, c.NoteAuditTx("0xaudit-two"))
	waitStatus(t, c, api.AttestMappingConfirmed)
	assert.Equal(t, int64(2), atomic.LoadInt64(&chain.submitCalls))
}

func TestSubscribersObserveRecordChanges(t *testing.T) {
	chain := &mockChain{active: testAttestationChain, mappingTx: "0xmapping", receiptOk: true}
	c := newTestCoordinator(t, chain, defaultRegistries())

	var lk sync.Mutex
	var seen []api.AttestationStatus
	unsub := c.SubscribeEvents(func(state api.AttestationState) {
		lk.Lock()
		seen = append(seen, state.Status)
		lk.Unlock()
	})
	defer unsub()

	c.NoteContentID(testCid(t, "artifact"))
	require.NoError(t, c.NoteAuditTx("0xaudit"))
	waitStatus(t, c, api.AttestMappingConfirmed)

	require.Eventually(t, func() bool {
		lk.Lock()
		defer lk.Unlock()
		return len(seen) > 0 && seen[len(seen)-1] == api.AttestMappingConfirmed
	}, 5*time.Second, 5*time.Millisecond)
}
