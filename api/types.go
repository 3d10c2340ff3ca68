package api

import (
	"github.com/ipfs/go-cid"

	"github.com/filecoin-project/go-address"
	"github.com/filecoin-project/go-state-types/abi"
)

// TxHash is a transaction hash on whichever chain the signer is operating
// against. The pipeline never interprets it beyond equality and presence.
type TxHash string

func (h TxHash) Defined() bool {
	return h != ""
}

// Receipt is the confirmation status of a submitted transaction.
type Receipt struct {
	TxHash TxHash
	Ok     bool
}

// Artifact is an opaque payload handed to the upload pipeline. Immutable once
// submitted; the pipeline owns the session derived from it, not the artifact.
type Artifact struct {
	Name        string
	Size        uint64
	ContentType string
	Data        []byte
}

// UsageSnapshot is the payments ledger view of an address: how much payment
// rate and lockup it is currently consuming, and how much it has approved.
type UsageSnapshot struct {
	RateUsed        abi.TokenAmount
	RateAllowance   abi.TokenAmount
	LockupUsed      abi.TokenAmount
	LockupAllowance abi.TokenAmount
}

// StorageQuote is the result of comparing a requested capacity and retention
// period against a UsageSnapshot. Derived on demand, never persisted.
// Insufficiency is data here, not an error.
type StorageQuote struct {
	CapacityBytes uint64
	RetentionDays uint64
	WithCDN       bool

	// RatePerEpoch is the payment rate the requested capacity burns.
	RatePerEpoch abi.TokenAmount
	// RateAllowanceNeeded is the total rate allowance required: current usage
	// plus the requested capacity's rate.
	RateAllowanceNeeded abi.TokenAmount
	// RateNeeded is the allowance top-up required beyond current usage.
	RateNeeded abi.TokenAmount
	// LockupNeeded is the total lockup allowance required to cover the
	// requested retention period, zero when the remaining lockup already does.
	LockupNeeded abi.TokenAmount

	RateUsed        abi.TokenAmount
	RateAllowance   abi.TokenAmount
	LockupUsed      abi.TokenAmount
	LockupAllowance abi.TokenAmount

	RateSufficient   bool
	LockupSufficient bool

	// DaysRemaining is how long the remaining lockup lasts at the requested
	// capacity's burn rate. +Inf when the burn rate is zero and lockup remains.
	DaysRemaining float64
	// DaysRemainingAtCurrentRate uses the already-used rate instead.
	DaysRemainingAtCurrentRate float64
}

// Sufficient reports whether both the rate and lockup allowances cover the
// requested storage.
func (q StorageQuote) Sufficient() bool {
	return q.RateSufficient && q.LockupSufficient
}

// ProofSetInfo describes one provider-bound storage commitment recorded for a
// client address.
type ProofSetInfo struct {
	ID        uint64
	Payee     address.Address
	RootCount uint64
	WithCDN   bool
}

// RawProviderInfo is the external registry's provider record before
// normalization. Field pairs are alternates observed across registry versions;
// NormalizeDescriptor maps them onto a ProviderDescriptor exactly once, at the
// boundary.
type RawProviderInfo struct {
	ID         uint64 `json:"id,omitempty"`
	ProviderID uint64 `json:"providerId,omitempty"`

	Owner   string `json:"owner,omitempty"`
	Address string `json:"address,omitempty"`

	Endpoint string `json:"endpoint,omitempty"`
	URL      string `json:"url,omitempty"`
	PDPURL   string `json:"pdpUrl,omitempty"`

	RetrievalURL      string `json:"retrievalUrl,omitempty"`
	PieceRetrievalURL string `json:"pieceRetrievalUrl,omitempty"`

	Name string `json:"name,omitempty"`
}

// ProviderDescriptor is the canonical provider shape used everywhere past the
// registry boundary.
type ProviderDescriptor struct {
	ID                uint64
	Owner             address.Address
	Endpoint          string
	RetrievalEndpoint string
	Name              string
}

// UploadPhase is the phase of an upload session. Sessions move strictly
// forward; UploadFailed is terminal and reachable from every non-terminal
// phase.
type UploadPhase uint64

const (
	UploadIdle UploadPhase = iota
	UploadPreflightChecking
	UploadProviderResolving
	UploadProofSetResolving
	UploadProofSetCreating
	UploadTransferring
	UploadRootSubmitting
	UploadRootConfirming
	UploadCompleted
	UploadFailed
)

// UploadPhases maps phases to human-readable names.
var UploadPhases = map[UploadPhase]string{
	UploadIdle:              "Idle",
	UploadPreflightChecking: "PreflightChecking",
	UploadProviderResolving: "ProviderResolving",
	UploadProofSetResolving: "ProofSetResolving",
	UploadProofSetCreating:  "ProofSetCreating",
	UploadTransferring:      "Transferring",
	UploadRootSubmitting:    "RootSubmitting",
	UploadRootConfirming:    "RootConfirming",
	UploadCompleted:         "Completed",
	UploadFailed:            "Failed",
}

func (p UploadPhase) String() string {
	if s, ok := UploadPhases[p]; ok {
		return s
	}
	return "Unknown"
}

// Failure reasons recorded on sessions that reach UploadFailed.
const (
	ReasonInsufficientAllowance = "InsufficientAllowance"
	ReasonProviderUnreachable   = "ProviderUnreachable"
	ReasonProviderMisconfigured = "ProviderMisconfigured"
	ReasonTransferFailed        = "TransferFailed"
	ReasonRootTransactionFailed = "RootTransactionFailed"
)

// AttestationStatus is the phase of an attestation record.
type AttestationStatus uint64

const (
	AttestNoUpload AttestationStatus = iota
	AttestUploaded
	AttestAwaitingAuditTx
	AttestMapping
	AttestMappingConfirmed
	AttestMappingFailed
)

var AttestationStatuses = map[AttestationStatus]string{
	AttestNoUpload:         "NoUpload",
	AttestUploaded:         "Uploaded",
	AttestAwaitingAuditTx:  "AwaitingAuditTx",
	AttestMapping:          "Mapping",
	AttestMappingConfirmed: "MappingConfirmed",
	AttestMappingFailed:    "MappingFailed",
}

func (s AttestationStatus) String() string {
	if n, ok := AttestationStatuses[s]; ok {
		return n
	}
	return "Unknown"
}

// AttestationState is a read-only snapshot of the attestation record.
type AttestationState struct {
	Status           AttestationStatus
	ContentID        string
	AuditTx          TxHash
	MappingTx        TxHash
	MappingConfirmed bool
	AttemptedMapping bool
	LastError        string
}

// ContentCid parses the recorded content identifier.
func (s AttestationState) ContentCid() (cid.Cid, error) {
	return cid.Decode(s.ContentID)
}

// ChainContext is a snapshot of the signer's network context. Switching is
// true strictly between a switch request and its confirmation or failure.
type ChainContext struct {
	ActiveChainID uint64
	TargetChainID uint64
	Switching     bool
}
