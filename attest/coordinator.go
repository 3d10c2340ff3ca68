// Package attest binds a completed upload to its audit registration on the
// attestation chain. The coordinator waits for the two halves of the binding,
// the content identifier from the upload pipeline and the audit transaction
// hash from the operator, and submits the mapping exactly once per audit
// cycle.
package attest

import (
	"context"
	"sync"
	"time"

	"github.com/hannahhoward/go-pubsub"
	"github.com/ipfs/go-cid"
	logging "github.com/ipfs/go-log/v2"
	"go.opencensus.io/stats"
	"golang.org/x/xerrors"

	"github.com/zera-audit/zera-pipeline/api"
	"github.com/zera-audit/zera-pipeline/build"
	"github.com/zera-audit/zera-pipeline/chain/netctx"
	"github.com/zera-audit/zera-pipeline/lib/confirm"
	"github.com/zera-audit/zera-pipeline/metrics"
)

var log = logging.Logger("attest")

// Config carries the coordinator's chain-dependent settings.
type Config struct {
	// AttestationChainID is the chain hosting the audit registry.
	AttestationChainID uint64
	// Registries maps chain IDs to the audit registry contract address on that
	// chain. A chain without an entry cannot receive mappings.
	Registries map[uint64]string

	// ConfirmAttempts and ConfirmInterval override the default bounded
	// confirmation polling policy when non-zero.
	ConfirmAttempts int
	ConfirmInterval time.Duration
}

// Coordinator owns the attestation record for the current audit cycle. All
// state lives behind one mutex; the submission trigger is a test-and-set of
// the attempted flag under that mutex, so two racing intake paths can never
// both submit.
type Coordinator struct {
	chain api.ChainAPI
	net   *netctx.Manager
	cfg   Config

	ctx      context.Context
	shutdown context.CancelFunc

	lk              sync.Mutex
	status          api.AttestationStatus
	contentID       cid.Cid
	auditTx         api.TxHash
	mappingTx       api.TxHash
	confirmed       bool
	attempted       bool
	inflight        bool
	switchRequested bool
	lastError       string

	subscribers *pubsub.PubSub
}

// AttestationSubscriber is notified with a snapshot after every record change.
type AttestationSubscriber func(state api.AttestationState)

func dispatcher(evt pubsub.Event, subscriberFn pubsub.SubscriberFn) error {
	state, ok := evt.(api.AttestationState)
	if !ok {
		return xerrors.New("wrong type of event")
	}
	cb, ok := subscriberFn.(AttestationSubscriber)
	if !ok {
		return xerrors.New("wrong type of subscriber")
	}
	cb(state)
	return nil
}

// NewCoordinator creates a coordinator for one audit cycle.
func NewCoordinator(ctx context.Context, chain api.ChainAPI, net *netctx.Manager, cfg Config) *Coordinator {
	if cfg.AttestationChainID == 0 {
		cfg.AttestationChainID = build.DefaultAttestationChainID
	}
	ctx, shutdown := context.WithCancel(ctx)
	return &Coordinator{
		chain:       chain,
		net:         net,
		cfg:         cfg,
		ctx:         ctx,
		shutdown:    shutdown,
		status:      api.AttestNoUpload,
		subscribers: pubsub.New(dispatcher),
	}
}

// Stop cancels any in-flight confirmation wait.
func (c *Coordinator) Stop() {
	c.shutdown()
}

// SubscribeEvents registers a subscriber for record changes.
func (c *Coordinator) SubscribeEvents(subscriber AttestationSubscriber) pubsub.Unsubscribe {
	return c.subscribers.Subscribe(subscriber)
}

// Snapshot returns a read-only copy of the attestation record.
func (c *Coordinator) Snapshot() api.AttestationState {
	c.lk.Lock()
	defer c.lk.Unlock()
	return c.snapshotLocked()
}

func (c *Coordinator) snapshotLocked() api.AttestationState {
	contentID := ""
	if c.contentID.Defined() {
		contentID = c.contentID.String()
	}
	return api.AttestationState{
		Status:           c.status,
		ContentID:        contentID,
		AuditTx:          c.auditTx,
		MappingTx:        c.mappingTx,
		MappingConfirmed: c.confirmed,
		AttemptedMapping: c.attempted,
		LastError:        c.lastError,
	}
}

// NoteContentID records the content identifier of a completed upload. The
// first upload of a cycle also kicks off the move to the attestation chain;
// repeats reuse the switch already requested.
func (c *Coordinator) NoteContentID(contentID cid.Cid) {
	if !contentID.Defined() {
		return
	}

	c.lk.Lock()
	c.contentID = contentID
	if c.status == api.AttestNoUpload {
		c.status = api.AttestUploaded
	}
	if !c.auditTx.Defined() && c.status == api.AttestUploaded {
		c.status = api.AttestAwaitingAuditTx
	}

	needSwitch := !c.switchRequested && !c.net.OnChain(c.cfg.AttestationChainID)
	if needSwitch {
		c.switchRequested = true
	}
	c.maybeSubmitLocked()
	state := c.snapshotLocked()
	c.lk.Unlock()

	c.publish(state)

	if needSwitch {
		go c.switchAndRetry()
	}
}

// NoteAuditTx records the audit-registration transaction hash. Order relative
// to NoteContentID does not matter.
func (c *Coordinator) NoteAuditTx(tx api.TxHash) error {
	if !tx.Defined() {
		return xerrors.New("empty audit transaction hash")
	}

	c.lk.Lock()
	c.auditTx = tx
	c.maybeSubmitLocked()
	state := c.snapshotLocked()
	c.lk.Unlock()

	c.publish(state)
	return nil
}

// Reset clears the record for a new audit cycle. It refuses to interrupt an
// in-flight submission.
func (c *Coordinator) Reset() error {
	c.lk.Lock()
	defer c.lk.Unlock()

	if c.inflight {
		return xerrors.New("mapping submission in flight, retry after it settles")
	}

	c.status = api.AttestNoUpload
	c.contentID = cid.Undef
	c.auditTx = ""
	c.mappingTx = ""
	c.confirmed = false
	c.attempted = false
	c.switchRequested = false
	c.lastError = ""
	return nil
}

// Reevaluate re-checks the submission trigger outside the intake paths. The
// node calls it after a user-initiated chain switch lands, so a mapping
// blocked on a failed auto switch resumes as soon as the user re-switches.
func (c *Coordinator) Reevaluate() {
	c.lk.Lock()
	c.maybeSubmitLocked()
	state := c.snapshotLocked()
	c.lk.Unlock()

	c.publish(state)
}

// maybeSubmitLocked evaluates the trigger condition and, when it holds,
// claims the attempt and launches the submission. Callers hold c.lk.
func (c *Coordinator) maybeSubmitLocked() {
	if c.attempted || c.inflight {
		return
	}
	if !c.contentID.Defined() || !c.auditTx.Defined() {
		return
	}
	if !c.net.OnChain(c.cfg.AttestationChainID) {
		return
	}

	registry, ok := c.cfg.Registries[c.cfg.AttestationChainID]
	if !ok || registry == "" {
		// Transient: the registry table may be completed while running, and
		// every later intake re-evaluates.
		c.lastError = "no audit registry configured for the attestation chain"
		log.Warnw("mapping deferred", "chain", c.cfg.AttestationChainID, "reason", c.lastError)
		return
	}

	c.attempted = true
	c.inflight = true
	c.status = api.AttestMapping
	c.lastError = ""
	go c.submit(registry, c.auditTx, c.contentID)
}

// switchAndRetry moves the signer onto the attestation chain and re-evaluates
// the trigger once there.
func (c *Coordinator) switchAndRetry() {
	if err := c.net.SwitchTo(c.ctx, c.cfg.AttestationChainID); err != nil {
		log.Errorw("switching to attestation chain", "chain", c.cfg.AttestationChainID, "err", err)
		c.lk.Lock()
		c.switchRequested = false
		c.lastError = err.Error()
		state := c.snapshotLocked()
		c.lk.Unlock()
		c.publish(state)
		return
	}

	c.lk.Lock()
	c.maybeSubmitLocked()
	state := c.snapshotLocked()
	c.lk.Unlock()
	c.publish(state)
}

func (c *Coordinator) submit(registry string, auditTx api.TxHash, contentID cid.Cid) {
	log.Infow("submitting mapping", "auditTx", auditTx, "contentID", contentID, "registry", registry)

	mappingTx, err := c.chain.SubmitMapping(c.ctx, registry, auditTx, contentID)
	if err != nil {
		c.settleFailure(xerrors.Errorf("submitting mapping: %s: %w", err, api.ErrMappingSubmissionFailed))
		return
	}

	c.lk.Lock()
	c.mappingTx = mappingTx
	state := c.snapshotLocked()
	c.lk.Unlock()
	stats.Record(c.ctx, metrics.MappingSubmitted.M(1))
	c.publish(state)

	attempts := c.cfg.ConfirmAttempts
	if attempts == 0 {
		attempts = build.MappingConfirmAttempts
	}
	interval := c.cfg.ConfirmInterval
	if interval == 0 {
		interval = build.MappingConfirmInterval
	}
	if _, err := confirm.WaitReceipt(c.ctx, c.chain, mappingTx, attempts, interval); err != nil {
		c.settleFailure(xerrors.Errorf("confirming mapping %s: %s: %w", mappingTx, err, api.ErrMappingConfirmationFailed))
		return
	}

	c.lk.Lock()
	c.inflight = false
	c.confirmed = true
	c.status = api.AttestMappingConfirmed
	state = c.snapshotLocked()
	c.lk.Unlock()

	stats.Record(c.ctx, metrics.MappingConfirmed.M(1))
	log.Infow("mapping confirmed", "mappingTx", mappingTx)
	c.publish(state)
}

// settleFailure releases the attempt guard so a later intake can retry the
// mapping.
func (c *Coordinator) settleFailure(err error) {
	log.Errorw("mapping failed", "err", err)

	c.lk.Lock()
	c.inflight = false
	c.attempted = false
	c.status = api.AttestMappingFailed
	c.lastError = err.Error()
	state := c.snapshotLocked()
	c.lk.Unlock()

	stats.Record(c.ctx, metrics.MappingFailed.M(1))
	c.publish(state)
}

func (c *Coordinator) publish(state api.AttestationState) {
	if err := c.subscribers.Publish(state); err != nil {
		log.Warnf("publishing attestation event: %s", err)
	}
}
