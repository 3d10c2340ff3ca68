package api

import (
	"context"

	"github.com/ipfs/go-cid"

	"github.com/filecoin-project/go-address"
)

// PaymentsAPI reads the payments ledger backing storage commitments.
type PaymentsAPI interface {
	// AccountUsage returns current rate/lockup usage and allowance for addr.
	AccountUsage(ctx context.Context, addr address.Address) (UsageSnapshot, error)
	// TokenDecimals returns the settlement token's decimal precision.
	TokenDecimals(ctx context.Context) (uint64, error)
}

// RegistryAPI reads and writes the storage provider registry.
type RegistryAPI interface {
	// ListProofSets returns every storage commitment recorded for client.
	ListProofSets(ctx context.Context, client address.Address) ([]ProofSetInfo, error)
	// ResolveProviderID resolves a provider's registry identifier from its
	// on-chain address.
	ResolveProviderID(ctx context.Context, owner address.Address) (uint64, error)
	// ProviderInfo returns the raw registry record for a provider.
	ProviderInfo(ctx context.Context, id uint64) (RawProviderInfo, error)
	// CreateProofSet creates a new storage commitment for client. Progress
	// sub-events (broadcast, chain confirmation, server confirmation) are
	// reported through the callback when non-nil.
	CreateProofSet(ctx context.Context, client address.Address, withCDN bool, progress func(msg string)) (ProofSetInfo, error)
}

// TransferAPI drives artifact transfer against a selected storage provider.
type TransferAPI interface {
	// CheckHealth probes the provider's endpoint.
	CheckHealth(ctx context.Context, desc ProviderDescriptor) error
	// Upload transfers the payload into the given proof set and returns its
	// content identifier. Progress is reported as a percentage plus a
	// human-readable message.
	Upload(ctx context.Context, desc ProviderDescriptor, proofSetID uint64, payload []byte, progress func(pct uint64, msg string)) (cid.Cid, error)
	// AddRoots broadcasts the transaction binding the uploaded content's root
	// into the proof set and returns its hash.
	AddRoots(ctx context.Context, desc ProviderDescriptor, proofSetID uint64, root cid.Cid) (TxHash, error)
}

// ChainAPI is the signer-facing blockchain surface. Every method operates
// against whichever chain the signer is currently on.
type ChainAPI interface {
	// HasSigner reports whether a signing account is attached.
	HasSigner(ctx context.Context) (bool, error)
	// ActiveChainID returns the chain the signer currently operates against.
	ActiveChainID(ctx context.Context) (uint64, error)
	// SwitchChain requests a network switch.
	SwitchChain(ctx context.Context, chainID uint64) error
	// SubmitMapping submits the registry write binding auditTx to contentID
	// and returns the mapping transaction hash.
	SubmitMapping(ctx context.Context, registry string, auditTx TxHash, contentID cid.Cid) (TxHash, error)
	// WaitReceipt waits for the receipt of tx on the active chain.
	WaitReceipt(ctx context.Context, tx TxHash) (Receipt, error)
}

// PipelineAPI is the surface exposed to the operator dashboard.
type PipelineAPI interface {
	// Quote recomputes a storage quote for the configured wallet.
	Quote(ctx context.Context, capacityBytes uint64, retentionDays uint64, withCDN bool) (StorageQuote, error)
	// StartUpload begins a fresh upload session for the artifact and returns
	// the session ID.
	StartUpload(ctx context.Context, artifact Artifact) (string, error)
	// UploadStatus returns a snapshot of the identified session.
	UploadStatus(ctx context.Context, id string) (UploadStatus, error)
	// NoteAuditTx records the audit-registration transaction hash for the
	// current audit cycle.
	NoteAuditTx(ctx context.Context, tx TxHash) error
	// AttestationStatus returns a snapshot of the attestation record.
	AttestationStatus(ctx context.Context) (AttestationState, error)
	// ChainContext returns the signer's network context.
	ChainContext(ctx context.Context) (ChainContext, error)
	// SwitchChain requests a network switch on behalf of the operator.
	SwitchChain(ctx context.Context, chainID uint64) error
}

// UploadStatus is the session snapshot served to callers.
type UploadStatus struct {
	ID              string
	Phase           UploadPhase
	ProgressPercent uint64
	StatusMessage   string
	ContentID       string
	RootAdditionTx  TxHash
	FailureReason   string
	ErrorMessage    string
	Warning         string
}
