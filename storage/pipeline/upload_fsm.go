package pipeline

import (
	"fmt"

	"github.com/ipfs/go-cid"

	"github.com/filecoin-project/go-statemachine/fsm"

	"github.com/zera-audit/zera-pipeline/api"
)

// UploadEvent is an event moving an upload session between phases.
type UploadEvent uint64

const (
	UploadEventStart UploadEvent = iota
	UploadEventAllowanceVerified
	UploadEventAllowanceRejected
	UploadEventProofSetSelected
	UploadEventProofSetMissing
	UploadEventProofSetCreateProgress
	UploadEventProviderReady
	UploadEventTransferProgress
	UploadEventTransferCompleted
	UploadEventRootSubmitted
	UploadEventRootSubmitFailed
	UploadEventRootConfirmed
	UploadEventRootConfirmTimeout
	UploadEventFailed
)

// UploadEventNames maps events to human-readable names.
var UploadEventNames = map[UploadEvent]string{
	UploadEventStart:                  "UploadEventStart",
	UploadEventAllowanceVerified:      "UploadEventAllowanceVerified",
	UploadEventAllowanceRejected:      "UploadEventAllowanceRejected",
	UploadEventProofSetSelected:       "UploadEventProofSetSelected",
	UploadEventProofSetMissing:        "UploadEventProofSetMissing",
	UploadEventProofSetCreateProgress: "UploadEventProofSetCreateProgress",
	UploadEventProviderReady:          "UploadEventProviderReady",
	UploadEventTransferProgress:       "UploadEventTransferProgress",
	UploadEventTransferCompleted:      "UploadEventTransferCompleted",
	UploadEventRootSubmitted:          "UploadEventRootSubmitted",
	UploadEventRootSubmitFailed:       "UploadEventRootSubmitFailed",
	UploadEventRootConfirmed:          "UploadEventRootConfirmed",
	UploadEventRootConfirmTimeout:     "UploadEventRootConfirmTimeout",
	UploadEventFailed:                 "UploadEventFailed",
}

// UploadFSMEvents describes every legal phase transition. Sessions move
// strictly forward; there are no retry edges because a retry is a fresh
// session.
var UploadFSMEvents = fsm.Events{
	fsm.Event(UploadEventStart).
		From(api.UploadIdle).To(api.UploadPreflightChecking).
		Action(func(s *UploadSession) error {
			s.StatusMessage = "checking storage allowance"
			return nil
		}),

	fsm.Event(UploadEventAllowanceVerified).
		From(api.UploadPreflightChecking).To(api.UploadProviderResolving).
		Action(func(s *UploadSession, quote api.StorageQuote) error {
			s.StatusMessage = "storage allowance verified, resolving provider"
			s.ProgressPercent = bump(s.ProgressPercent, 5)
			return nil
		}),

	fsm.Event(UploadEventAllowanceRejected).
		From(api.UploadPreflightChecking).To(api.UploadFailed).
		Action(func(s *UploadSession, quote api.StorageQuote) error {
			s.FailureReason = api.ReasonInsufficientAllowance
			s.ErrorMessage = fmt.Sprintf("allowance insufficient for %d bytes over %d days (rate needed %s, lockup needed %s)",
				quote.CapacityBytes, quote.RetentionDays, quote.RateNeeded, quote.LockupNeeded)
			s.StatusMessage = api.ErrInsufficientAllowance.Error()
			return nil
		}),

	fsm.Event(UploadEventProofSetSelected).
		From(api.UploadProviderResolving).To(api.UploadProofSetResolving).
		Action(func(s *UploadSession, ps api.ProofSetInfo) error {
			s.ProofSetID = ps.ID
			s.ProofSetPayee = ps.Payee.String()
			s.MustCreateProofSet = false
			s.StatusMessage = fmt.Sprintf("using existing proof set %d", ps.ID)
			s.ProgressPercent = bump(s.ProgressPercent, 10)
			return nil
		}),

	fsm.Event(UploadEventProofSetMissing).
		From(api.UploadProviderResolving).To(api.UploadProofSetCreating).
		Action(func(s *UploadSession) error {
			s.MustCreateProofSet = true
			s.StatusMessage = "no matching proof set, creating a new one"
			s.ProgressPercent = bump(s.ProgressPercent, 10)
			return nil
		}),

	fsm.Event(UploadEventProofSetCreateProgress).
		From(api.UploadProofSetCreating).ToJustRecord().
		Action(func(s *UploadSession, msg string) error {
			s.StatusMessage = msg
			return nil
		}),

	fsm.Event(UploadEventProviderReady).
		FromMany(api.UploadProofSetResolving, api.UploadProofSetCreating).To(api.UploadTransferring).
		Action(func(s *UploadSession, proofSetID uint64, desc api.ProviderDescriptor) error {
			s.ProofSetID = proofSetID
			s.ProviderID = desc.ID
			s.ProviderOwner = desc.Owner.String()
			s.ProviderEndpoint = desc.Endpoint
			s.ProviderRetrievalEndpoint = desc.RetrievalEndpoint
			s.ProviderName = desc.Name
			s.StatusMessage = fmt.Sprintf("provider %d selected, transferring artifact", desc.ID)
			s.ProgressPercent = bump(s.ProgressPercent, 20)
			return nil
		}),

	fsm.Event(UploadEventTransferProgress).
		From(api.UploadTransferring).ToJustRecord().
		Action(func(s *UploadSession, pct uint64, msg string) error {
			// Progress never moves backwards even if the transport replays a
			// stale callback.
			s.ProgressPercent = bump(s.ProgressPercent, pct)
			if msg != "" {
				s.StatusMessage = msg
			}
			return nil
		}),

	fsm.Event(UploadEventTransferCompleted).
		From(api.UploadTransferring).To(api.UploadRootSubmitting).
		Action(func(s *UploadSession, contentID cid.Cid) error {
			s.ContentID = contentID.String()
			s.ProgressPercent = bump(s.ProgressPercent, 90)
			s.StatusMessage = "transfer complete, submitting root addition"
			return nil
		}),

	fsm.Event(UploadEventRootSubmitted).
		From(api.UploadRootSubmitting).To(api.UploadRootConfirming).
		Action(func(s *UploadSession, tx api.TxHash) error {
			s.RootAdditionTx = string(tx)
			s.StatusMessage = "root addition submitted, awaiting confirmation"
			return nil
		}),

	// The content identifier is already known by the root phases, so a failed
	// or unconfirmed root addition completes the session with a warning
	// instead of failing it: the identifier is independently verifiable.
	fsm.Event(UploadEventRootSubmitFailed).
		From(api.UploadRootSubmitting).To(api.UploadCompleted).
		Action(func(s *UploadSession, err error) error {
			s.Warning = fmt.Sprintf("%s: %s", api.ReasonRootTransactionFailed, err)
			s.StatusMessage = "upload complete (root addition failed)"
			s.ProgressPercent = 100
			return nil
		}),

	fsm.Event(UploadEventRootConfirmed).
		From(api.UploadRootConfirming).To(api.UploadCompleted).
		Action(func(s *UploadSession) error {
			s.StatusMessage = "upload complete"
			s.ProgressPercent = 100
			return nil
		}),

	fsm.Event(UploadEventRootConfirmTimeout).
		From(api.UploadRootConfirming).To(api.UploadCompleted).
		Action(func(s *UploadSession, err error) error {
			s.Warning = fmt.Sprintf("%s: %s", api.ReasonRootTransactionFailed, err)
			s.StatusMessage = "upload complete (root addition unconfirmed)"
			s.ProgressPercent = 100
			return nil
		}),

	fsm.Event(UploadEventFailed).
		FromMany(
			api.UploadIdle,
			api.UploadPreflightChecking,
			api.UploadProviderResolving,
			api.UploadProofSetResolving,
			api.UploadProofSetCreating,
			api.UploadTransferring,
		).To(api.UploadFailed).
		Action(func(s *UploadSession, reason string, err error) error {
			s.FailureReason = reason
			s.ErrorMessage = err.Error()
			s.StatusMessage = remediationFor(reason)
			return nil
		}),
}

// UploadStateEntryFuncs are the handlers run on entering each phase.
var UploadStateEntryFuncs = fsm.StateEntryFuncs{
	api.UploadPreflightChecking: CheckAllowance,
	api.UploadProviderResolving: ResolveProofSet,
	api.UploadProofSetResolving: ResolveProvider,
	api.UploadProofSetCreating:  CreateProofSet,
	api.UploadTransferring:      TransferArtifact,
	api.UploadRootSubmitting:    SubmitRoots,
	api.UploadRootConfirming:    ConfirmRoots,
}

// UploadFinalityStates terminate session processing.
var UploadFinalityStates = []fsm.StateKey{
	api.UploadCompleted,
	api.UploadFailed,
}

func bump(cur, next uint64) uint64 {
	if next > cur {
		return next
	}
	return cur
}

func remediationFor(reason string) string {
	switch reason {
	case api.ReasonInsufficientAllowance:
		return api.ErrInsufficientAllowance.Error()
	case api.ReasonProviderUnreachable:
		return api.ErrProviderUnreachable.Error()
	case api.ReasonProviderMisconfigured:
		return api.ErrProviderMisconfigured.Error()
	case api.ReasonRootTransactionFailed:
		return api.ErrRootTransactionFailed.Error()
	default:
		return api.ErrTransferFailed.Error()
	}
}
