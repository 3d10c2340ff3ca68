// Package netctx tracks which chain the signer is operating against and
// serializes network switches. Every submission path consults it so writes
// never race a switch.
package netctx

import (
	"context"
	"strconv"
	"sync"

	logging "github.com/ipfs/go-log/v2"
	"go.opencensus.io/stats"
	"go.opencensus.io/tag"
	"golang.org/x/xerrors"

	"github.com/zera-audit/zera-pipeline/api"
	"github.com/zera-audit/zera-pipeline/metrics"
)

var log = logging.Logger("netctx")

// Manager owns the signer's network context. A switch is in flight from the
// moment SwitchTo commits to it until the chain confirms the new active ID or
// the switch fails; concurrent SwitchTo calls for the same target share the
// outcome of the in-flight switch instead of issuing their own.
type Manager struct {
	chain api.ChainAPI

	lk        sync.Mutex
	active    uint64
	target    uint64
	switching bool
	waiters   []chan error
}

// New probes the chain for the signer's current network and returns a manager
// tracking it.
func New(ctx context.Context, chain api.ChainAPI) (*Manager, error) {
	connected, err := chain.HasSigner(ctx)
	if err != nil {
		return nil, xerrors.Errorf("probing signer: %w", err)
	}
	if !connected {
		return nil, api.ErrNotConnected
	}

	active, err := chain.ActiveChainID(ctx)
	if err != nil {
		return nil, xerrors.Errorf("reading active chain: %w", err)
	}

	return &Manager{chain: chain, active: active, target: active}, nil
}

// Context returns a snapshot of the network context.
func (m *Manager) Context() api.ChainContext {
	m.lk.Lock()
	defer m.lk.Unlock()
	return api.ChainContext{
		ActiveChainID: m.active,
		TargetChainID: m.target,
		Switching:     m.switching,
	}
}

// OnChain reports whether the signer is settled on chainID with no switch in
// flight.
func (m *Manager) OnChain(chainID uint64) bool {
	m.lk.Lock()
	defer m.lk.Unlock()
	return m.active == chainID && !m.switching
}

// SwitchTo moves the signer onto chainID. Already being there is a no-op. A
// call racing an in-flight switch to the same target waits for that switch
// instead of issuing another; a call targeting a different chain than the one
// in flight is rejected.
func (m *Manager) SwitchTo(ctx context.Context, chainID uint64) error {
	m.lk.Lock()

	if m.switching {
		if m.target != chainID {
			inflight := m.target
			m.lk.Unlock()
			return xerrors.Errorf("switch to chain %d already in flight, refusing switch to %d: %w", inflight, chainID, api.ErrChainSwitchFailed)
		}
		wait := make(chan error, 1)
		m.waiters = append(m.waiters, wait)
		m.lk.Unlock()

		select {
		case err := <-wait:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if m.active == chainID {
		m.lk.Unlock()
		return nil
	}

	m.switching = true
	m.target = chainID
	m.lk.Unlock()

	err := m.doSwitch(ctx, chainID)
	m.settle(chainID, err)
	return err
}

func (m *Manager) doSwitch(ctx context.Context, chainID uint64) error {
	connected, err := m.chain.HasSigner(ctx)
	if err != nil {
		return xerrors.Errorf("probing signer: %w", err)
	}
	if !connected {
		return api.ErrNotConnected
	}

	log.Infow("switching chain", "target", chainID)
	if err := m.chain.SwitchChain(ctx, chainID); err != nil {
		return xerrors.Errorf("switching to chain %d: %s: %w", chainID, err, api.ErrChainSwitchFailed)
	}

	active, err := m.chain.ActiveChainID(ctx)
	if err != nil {
		return xerrors.Errorf("confirming chain switch: %s: %w", err, api.ErrChainSwitchFailed)
	}
	if active != chainID {
		return xerrors.Errorf("signer reports chain %d after switching to %d: %w", active, chainID, api.ErrChainSwitchFailed)
	}

	_ = stats.RecordWithTags(ctx,
		[]tag.Mutator{tag.Upsert(metrics.ChainID, strconv.FormatUint(chainID, 10))},
		metrics.ChainSwitches.M(1))
	return nil
}

// settle publishes the switch outcome: on success the target becomes active,
// on failure the target reverts to the still-active chain. Waiters observe the
// same outcome either way.
func (m *Manager) settle(chainID uint64, err error) {
	m.lk.Lock()
	if err == nil {
		m.active = chainID
	} else {
		log.Warnw("chain switch failed", "target", chainID, "err", err)
		m.target = m.active
	}
	m.switching = false
	waiters := m.waiters
	m.waiters = nil
	m.lk.Unlock()

	for _, w := range waiters {
		w <- err
	}
}
