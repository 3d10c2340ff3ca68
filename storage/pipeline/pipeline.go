package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hannahhoward/go-pubsub"
	"github.com/ipfs/go-cid"
	"github.com/ipfs/go-datastore"
	dss "github.com/ipfs/go-datastore/sync"
	"go.opencensus.io/stats"
	"golang.org/x/xerrors"

	"github.com/filecoin-project/go-address"
	"github.com/filecoin-project/go-padreader"
	"github.com/filecoin-project/go-statemachine/fsm"

	"github.com/zera-audit/zera-pipeline/api"
	"github.com/zera-audit/zera-pipeline/build"
	"github.com/zera-audit/zera-pipeline/lib/confirm"
	"github.com/zera-audit/zera-pipeline/metrics"
	"github.com/zera-audit/zera-pipeline/pricing"
	"github.com/zera-audit/zera-pipeline/storage/provider"
)

// Config carries the session defaults applied to every upload.
type Config struct {
	RetentionDays uint64
	WithCDN       bool

	// RootConfirmAttempts and RootConfirmInterval override the default
	// bounded root-confirmation polling policy when non-zero.
	RootConfirmAttempts int
	RootConfirmInterval time.Duration
}

// Pipeline drives upload sessions through their phases. It exclusively owns
// every UploadSession for the session's lifetime; callers only ever see
// snapshots.
type Pipeline struct {
	wallet   address.Address
	payments api.PaymentsAPI
	registry api.RegistryAPI
	resolver *provider.Resolver
	transfer api.TransferAPI
	chain    api.ChainAPI
	cfg      Config

	sessions    fsm.Group
	subscribers *pubsub.PubSub

	plk      sync.Mutex
	payloads map[string][]byte
	started  map[string]time.Time
}

// SessionSubscriber is notified on every session event with a snapshot of the
// session after the event applied.
type SessionSubscriber func(event UploadEvent, session UploadSession)

type internalEvent struct {
	evt     UploadEvent
	session UploadSession
}

func dispatcher(evt pubsub.Event, subscriberFn pubsub.SubscriberFn) error {
	ie, ok := evt.(internalEvent)
	if !ok {
		return xerrors.New("wrong type of event")
	}
	cb, ok := subscriberFn.(SessionSubscriber)
	if !ok {
		return xerrors.New("wrong type of subscriber")
	}
	cb(ie.evt, ie.session)
	return nil
}

// New creates an upload pipeline for the given wallet. Session state is held
// in a process-local store only: sessions are deliberately not durable, a
// retry is always a fresh session.
func New(wallet address.Address, payments api.PaymentsAPI, registry api.RegistryAPI, transfer api.TransferAPI, chain api.ChainAPI, cfg Config) (*Pipeline, error) {
	if cfg.RetentionDays == 0 {
		cfg.RetentionDays = build.DefaultRetentionDays
	}
	if cfg.RootConfirmAttempts == 0 {
		cfg.RootConfirmAttempts = build.RootConfirmAttempts
	}
	if cfg.RootConfirmInterval == 0 {
		cfg.RootConfirmInterval = build.RootConfirmInterval
	}

	p := &Pipeline{
		wallet:      wallet,
		payments:    payments,
		registry:    registry,
		resolver:    provider.NewResolver(registry, transfer),
		transfer:    transfer,
		chain:       chain,
		cfg:         cfg,
		subscribers: pubsub.New(dispatcher),
		payloads:    make(map[string][]byte),
		started:     make(map[string]time.Time),
	}

	var err error
	p.sessions, err = fsm.New(dss.MutexWrap(datastore.NewMapDatastore()), fsm.Parameters{
		Environment:     &uploadEnv{p},
		StateType:       UploadSession{},
		StateKeyField:   "Phase",
		Events:          UploadFSMEvents,
		StateEntryFuncs: UploadStateEntryFuncs,
		FinalityStates:  UploadFinalityStates,
		Notifier:        p.notifySubscribers,
	})
	if err != nil {
		return nil, xerrors.Errorf("creating session state machine group: %w", err)
	}

	return p, nil
}

// StartUpload pads the artifact, registers a fresh session and kicks it off.
func (p *Pipeline) StartUpload(ctx context.Context, artifact api.Artifact) (string, error) {
	if len(artifact.Data) == 0 {
		return "", xerrors.New("artifact has no data")
	}

	id := uuid.New().String()
	padded := padPayload(artifact.Data)

	p.plk.Lock()
	p.payloads[id] = padded
	p.started[id] = time.Now()
	p.plk.Unlock()

	session := &UploadSession{
		ID:            id,
		ArtifactName:  artifact.Name,
		ArtifactSize:  uint64(len(artifact.Data)),
		ContentType:   artifact.ContentType,
		PaddedSize:    uint64(len(padded)),
		WithCDN:       p.cfg.WithCDN,
		RetentionDays: p.cfg.RetentionDays,
		Phase:         api.UploadIdle,
		StatusMessage: "queued",
	}

	if err := p.sessions.Begin(id, session); err != nil {
		p.release(id)
		return "", xerrors.Errorf("registering session %s: %w", id, err)
	}
	if err := p.sessions.Send(id, UploadEventStart); err != nil {
		p.release(id)
		return "", xerrors.Errorf("starting session %s: %w", id, err)
	}

	stats.Record(ctx, metrics.UploadStarted.M(1))
	log.Infow("upload session started", "session", id, "artifact", artifact.Name, "size", artifact.Size, "paddedSize", len(padded))
	return id, nil
}

// Get returns a snapshot of the identified session.
func (p *Pipeline) Get(id string) (UploadSession, error) {
	var out UploadSession
	if err := p.sessions.Get(id).Get(&out); err != nil {
		return UploadSession{}, xerrors.Errorf("fetching session %s: %w", id, err)
	}
	return out, nil
}

// Quote recomputes a storage quote for the pipeline's wallet.
func (p *Pipeline) Quote(ctx context.Context, capacityBytes uint64, retentionDays uint64, withCDN bool) (api.StorageQuote, error) {
	usage, err := p.payments.AccountUsage(ctx, p.wallet)
	if err != nil {
		return api.StorageQuote{}, xerrors.Errorf("reading payments ledger for %s: %w", p.wallet, err)
	}
	return pricing.ComputeQuote(capacityBytes, retentionDays, withCDN, usage), nil
}

// SubscribeEvents registers a subscriber for session events.
func (p *Pipeline) SubscribeEvents(subscriber SessionSubscriber) pubsub.Unsubscribe {
	return p.subscribers.Subscribe(subscriber)
}

// Stop shuts down session processing.
func (p *Pipeline) Stop(ctx context.Context) error {
	return p.sessions.Stop(ctx)
}

func (p *Pipeline) notifySubscribers(eventName fsm.EventName, state fsm.StateType) {
	evt, ok := eventName.(UploadEvent)
	if !ok {
		return
	}
	session, ok := state.(UploadSession)
	if !ok {
		return
	}

	switch session.Phase {
	case api.UploadCompleted:
		p.plk.Lock()
		startedAt, tracked := p.started[session.ID]
		p.plk.Unlock()
		if tracked {
			stats.Record(context.Background(), metrics.UploadCompleted.M(1),
				metrics.UploadDurationMs.M(metrics.SinceInMilliseconds(startedAt)))
		}
		p.release(session.ID)
	case api.UploadFailed:
		metrics.RecordUploadFailed(context.Background(), session.FailureReason)
		p.release(session.ID)
	}

	if err := p.subscribers.Publish(internalEvent{evt: evt, session: session}); err != nil {
		log.Warnf("publishing session event: %s", err)
	}
}

func (p *Pipeline) release(id string) {
	p.plk.Lock()
	delete(p.payloads, id)
	delete(p.started, id)
	p.plk.Unlock()
}

// padPayload zero-pads the payload up to the nearest valid piece size so the
// provider can pack it into a sector without repadding.
func padPayload(data []byte) []byte {
	target := uint64(padreader.PaddedSize(uint64(len(data))))
	out := make([]byte, target)
	copy(out, data)
	return out
}

// uploadEnv adapts the pipeline's collaborators to the state entry functions.
type uploadEnv struct {
	p *Pipeline
}

var _ UploadEnvironment = (*uploadEnv)(nil)

func (e *uploadEnv) ComputeQuote(ctx context.Context, capacityBytes uint64, retentionDays uint64, withCDN bool) (api.StorageQuote, error) {
	return e.p.Quote(ctx, capacityBytes, retentionDays, withCDN)
}

func (e *uploadEnv) SelectProofSet(ctx context.Context, withCDN bool) (*api.ProofSetInfo, error) {
	return e.p.resolver.SelectProofSet(ctx, e.p.wallet, withCDN)
}

func (e *uploadEnv) CreateProofSet(ctx context.Context, withCDN bool, progress func(msg string)) (api.ProofSetInfo, error) {
	return e.p.registry.CreateProofSet(ctx, e.p.wallet, withCDN, progress)
}

func (e *uploadEnv) ResolveProvider(ctx context.Context, ps api.ProofSetInfo) (api.ProviderDescriptor, error) {
	return e.p.resolver.ResolveProvider(ctx, ps)
}

func (e *uploadEnv) Transfer(ctx context.Context, desc api.ProviderDescriptor, proofSetID uint64, payload []byte, progress func(pct uint64, msg string)) (cid.Cid, error) {
	return e.p.transfer.Upload(ctx, desc, proofSetID, payload, progress)
}

func (e *uploadEnv) SubmitRoots(ctx context.Context, desc api.ProviderDescriptor, proofSetID uint64, root cid.Cid) (api.TxHash, error) {
	return e.p.transfer.AddRoots(ctx, desc, proofSetID, root)
}

func (e *uploadEnv) WaitRootConfirmed(ctx context.Context, tx api.TxHash) error {
	_, err := confirm.WaitReceipt(ctx, e.p.chain, tx, e.p.cfg.RootConfirmAttempts, e.p.cfg.RootConfirmInterval)
	return err
}

func (e *uploadEnv) Payload(id string) ([]byte, bool) {
	e.p.plk.Lock()
	defer e.p.plk.Unlock()
	payload, ok := e.p.payloads[id]
	return payload, ok
}
