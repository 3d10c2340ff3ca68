package pipeline

import (
	"context"

	"github.com/ipfs/go-cid"
	logging "github.com/ipfs/go-log/v2"
	"golang.org/x/xerrors"

	"github.com/filecoin-project/go-statemachine/fsm"

	"github.com/zera-audit/zera-pipeline/api"
)

var log = logging.Logger("pipeline")

// UploadEnvironment are the dependencies needed by the upload state entry
// functions. The production implementation delegates to the payments ledger,
// the provider registry and the storage transfer service; tests supply fakes.
type UploadEnvironment interface {
	ComputeQuote(ctx context.Context, capacityBytes uint64, retentionDays uint64, withCDN bool) (api.StorageQuote, error)
	SelectProofSet(ctx context.Context, withCDN bool) (*api.ProofSetInfo, error)
	CreateProofSet(ctx context.Context, withCDN bool, progress func(msg string)) (api.ProofSetInfo, error)
	ResolveProvider(ctx context.Context, ps api.ProofSetInfo) (api.ProviderDescriptor, error)
	Transfer(ctx context.Context, desc api.ProviderDescriptor, proofSetID uint64, payload []byte, progress func(pct uint64, msg string)) (cid.Cid, error)
	SubmitRoots(ctx context.Context, desc api.ProviderDescriptor, proofSetID uint64, root cid.Cid) (api.TxHash, error)
	WaitRootConfirmed(ctx context.Context, tx api.TxHash) error
	Payload(id string) ([]byte, bool)
}

// UploadStateEntryFunc is the signature of an upload phase handler.
type UploadStateEntryFunc func(ctx fsm.Context, env UploadEnvironment, session UploadSession) error

// CheckAllowance re-derives a storage quote for the padded payload and gates
// the session on it. Insufficiency is terminal here: it is user-actionable and
// never retried automatically.
func CheckAllowance(ctx fsm.Context, env UploadEnvironment, session UploadSession) error {
	quote, err := env.ComputeQuote(ctx.Context(), session.PaddedSize, session.RetentionDays, session.WithCDN)
	if err != nil {
		return ctx.Trigger(UploadEventFailed, api.ReasonProviderUnreachable, xerrors.Errorf("reading payments ledger: %w", err))
	}

	if !quote.Sufficient() {
		log.Warnw("allowance insufficient",
			"session", session.ID,
			"rateNeeded", quote.RateNeeded, "lockupNeeded", quote.LockupNeeded,
			"rateSufficient", quote.RateSufficient, "lockupSufficient", quote.LockupSufficient)
		return ctx.Trigger(UploadEventAllowanceRejected, quote)
	}

	return ctx.Trigger(UploadEventAllowanceVerified, quote)
}

// ResolveProofSet queries the client's commitments and either selects the best
// match or flags that one must be created.
func ResolveProofSet(ctx fsm.Context, env UploadEnvironment, session UploadSession) error {
	ps, err := env.SelectProofSet(ctx.Context(), session.WithCDN)
	if err != nil {
		return ctx.Trigger(UploadEventFailed, failureReason(err), xerrors.Errorf("selecting proof set: %w", err))
	}

	if ps == nil {
		return ctx.Trigger(UploadEventProofSetMissing)
	}

	return ctx.Trigger(UploadEventProofSetSelected, *ps)
}

// ResolveProvider turns the selected commitment's payee into a healthy
// provider descriptor.
func ResolveProvider(ctx fsm.Context, env UploadEnvironment, session UploadSession) error {
	ps, err := session.ProofSet()
	if err != nil {
		return ctx.Trigger(UploadEventFailed, api.ReasonProviderMisconfigured, xerrors.Errorf("reading proof set from session: %w", err))
	}

	desc, err := env.ResolveProvider(ctx.Context(), ps)
	if err != nil {
		return ctx.Trigger(UploadEventFailed, failureReason(err), err)
	}

	return ctx.Trigger(UploadEventProviderReady, session.ProofSetID, desc)
}

// CreateProofSet initiates a new commitment and resolves its provider. The
// creation can emit sub-events (broadcast, chain confirmation, server
// confirmation) which are recorded as status messages.
func CreateProofSet(ctx fsm.Context, env UploadEnvironment, session UploadSession) error {
	ps, err := env.CreateProofSet(ctx.Context(), session.WithCDN, func(msg string) {
		if err := ctx.Trigger(UploadEventProofSetCreateProgress, msg); err != nil {
			log.Warnf("recording proof set creation progress: %s", err)
		}
	})
	if err != nil {
		return ctx.Trigger(UploadEventFailed, failureReason(err), xerrors.Errorf("creating proof set: %w", err))
	}

	desc, err := env.ResolveProvider(ctx.Context(), ps)
	if err != nil {
		return ctx.Trigger(UploadEventFailed, failureReason(err), err)
	}

	return ctx.Trigger(UploadEventProviderReady, ps.ID, desc)
}

// TransferArtifact hands the padded payload to the provider and captures the
// resulting content identifier.
func TransferArtifact(ctx fsm.Context, env UploadEnvironment, session UploadSession) error {
	payload, ok := env.Payload(session.ID)
	if !ok {
		return ctx.Trigger(UploadEventFailed, api.ReasonTransferFailed, xerrors.Errorf("session %s payload is gone", session.ID))
	}

	desc, err := session.Provider()
	if err != nil {
		return ctx.Trigger(UploadEventFailed, api.ReasonTransferFailed, xerrors.Errorf("reading provider from session: %w", err))
	}

	contentID, err := env.Transfer(ctx.Context(), desc, session.ProofSetID, payload, func(pct uint64, msg string) {
		if err := ctx.Trigger(UploadEventTransferProgress, pct, msg); err != nil {
			log.Warnf("recording transfer progress: %s", err)
		}
	})
	if err != nil {
		return ctx.Trigger(UploadEventFailed, api.ReasonTransferFailed, xerrors.Errorf("transferring artifact: %w", err))
	}

	return ctx.Trigger(UploadEventTransferCompleted, contentID)
}

// SubmitRoots broadcasts the transaction binding the uploaded content into the
// proof set.
func SubmitRoots(ctx fsm.Context, env UploadEnvironment, session UploadSession) error {
	root, err := cid.Decode(session.ContentID)
	if err != nil {
		return ctx.Trigger(UploadEventRootSubmitFailed, xerrors.Errorf("parsing content identifier %q: %w", session.ContentID, err))
	}

	desc, err := session.Provider()
	if err != nil {
		return ctx.Trigger(UploadEventRootSubmitFailed, xerrors.Errorf("reading provider from session: %w", err))
	}

	tx, err := env.SubmitRoots(ctx.Context(), desc, session.ProofSetID, root)
	if err != nil {
		return ctx.Trigger(UploadEventRootSubmitFailed, xerrors.Errorf("submitting root addition: %w", err))
	}

	return ctx.Trigger(UploadEventRootSubmitted, tx)
}

// ConfirmRoots waits, boundedly, for the root addition to land on chain. An
// unobserved confirmation is a warning, not a failure.
func ConfirmRoots(ctx fsm.Context, env UploadEnvironment, session UploadSession) error {
	if err := env.WaitRootConfirmed(ctx.Context(), api.TxHash(session.RootAdditionTx)); err != nil {
		return ctx.Trigger(UploadEventRootConfirmTimeout, err)
	}

	return ctx.Trigger(UploadEventRootConfirmed)
}

func failureReason(err error) string {
	switch {
	case api.ErrorIsIn(err, []error{api.ErrProviderMisconfigured}):
		return api.ReasonProviderMisconfigured
	case api.ErrorIsIn(err, []error{api.ErrInsufficientAllowance}):
		return api.ReasonInsufficientAllowance
	default:
		return api.ReasonProviderUnreachable
	}
}
