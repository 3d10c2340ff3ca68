// Package apistruct provides proxy structs for the RPC interfaces. Each
// struct's Internal fields are populated by the jsonrpc client; servers wrap
// concrete implementations the same way.
package apistruct

import (
	"context"

	"github.com/ipfs/go-cid"

	"github.com/filecoin-project/go-address"

	"github.com/zera-audit/zera-pipeline/api"
)

type PaymentsStruct struct {
	Internal struct {
		AccountUsage  func(ctx context.Context, addr address.Address) (api.UsageSnapshot, error)
		TokenDecimals func(ctx context.Context) (uint64, error)
	}
}

func (s *PaymentsStruct) AccountUsage(ctx context.Context, addr address.Address) (api.UsageSnapshot, error) {
	return s.Internal.AccountUsage(ctx, addr)
}

func (s *PaymentsStruct) TokenDecimals(ctx context.Context) (uint64, error) {
	return s.Internal.TokenDecimals(ctx)
}

type RegistryStruct struct {
	Internal struct {
		ListProofSets     func(ctx context.Context, client address.Address) ([]api.ProofSetInfo, error)
		ResolveProviderID func(ctx context.Context, owner address.Address) (uint64, error)
		ProviderInfo      func(ctx context.Context, id uint64) (api.RawProviderInfo, error)
		CreateProofSet    func(ctx context.Context, client address.Address, withCDN bool) (api.ProofSetInfo, error)
	}
}

func (s *RegistryStruct) ListProofSets(ctx context.Context, client address.Address) ([]api.ProofSetInfo, error) {
	return s.Internal.ListProofSets(ctx, client)
}

func (s *RegistryStruct) ResolveProviderID(ctx context.Context, owner address.Address) (uint64, error) {
	return s.Internal.ResolveProviderID(ctx, owner)
}

func (s *RegistryStruct) ProviderInfo(ctx context.Context, id uint64) (api.RawProviderInfo, error) {
	return s.Internal.ProviderInfo(ctx, id)
}

// CreateProofSet drops the progress callback at the RPC boundary; closures do
// not cross jsonrpc.
func (s *RegistryStruct) CreateProofSet(ctx context.Context, client address.Address, withCDN bool, progress func(msg string)) (api.ProofSetInfo, error) {
	return s.Internal.CreateProofSet(ctx, client, withCDN)
}

type TransferStruct struct {
	Internal struct {
		CheckHealth func(ctx context.Context, desc api.ProviderDescriptor) error
		Upload      func(ctx context.Context, desc api.ProviderDescriptor, proofSetID uint64, payload []byte) (cid.Cid, error)
		AddRoots    func(ctx context.Context, desc api.ProviderDescriptor, proofSetID uint64, root cid.Cid) (api.TxHash, error)
	}
}

func (s *TransferStruct) CheckHealth(ctx context.Context, desc api.ProviderDescriptor) error {
	return s.Internal.CheckHealth(ctx, desc)
}

// Upload drops the progress callback at the RPC boundary.
func (s *TransferStruct) Upload(ctx context.Context, desc api.ProviderDescriptor, proofSetID uint64, payload []byte, progress func(pct uint64, msg string)) (cid.Cid, error) {
	return s.Internal.Upload(ctx, desc, proofSetID, payload)
}

func (s *TransferStruct) AddRoots(ctx context.Context, desc api.ProviderDescriptor, proofSetID uint64, root cid.Cid) (api.TxHash, error) {
	return s.Internal.AddRoots(ctx, desc, proofSetID, root)
}

type ChainStruct struct {
	Internal struct {
		HasSigner     func(ctx context.Context) (bool, error)
		ActiveChainID func(ctx context.Context) (uint64, error)
		SwitchChain   func(ctx context.Context, chainID uint64) error
		SubmitMapping func(ctx context.Context, registry string, auditTx api.TxHash, contentID cid.Cid) (api.TxHash, error)
		WaitReceipt   func(ctx context.Context, tx api.TxHash) (api.Receipt, error)
	}
}

func (s *ChainStruct) HasSigner(ctx context.Context) (bool, error) {
	return s.Internal.HasSigner(ctx)
}

func (s *ChainStruct) ActiveChainID(ctx context.Context) (uint64, error) {
	return s.Internal.ActiveChainID(ctx)
}

func (s *ChainStruct) SwitchChain(ctx context.Context, chainID uint64) error {
	return s.Internal.SwitchChain(ctx, chainID)
}

func (s *ChainStruct) SubmitMapping(ctx context.Context, registry string, auditTx api.TxHash, contentID cid.Cid) (api.TxHash, error) {
	return s.Internal.SubmitMapping(ctx, registry, auditTx, contentID)
}

func (s *ChainStruct) WaitReceipt(ctx context.Context, tx api.TxHash) (api.Receipt, error) {
	return s.Internal.WaitReceipt(ctx, tx)
}

type PipelineStruct struct {
	Internal struct {
		Quote             func(ctx context.Context, capacityBytes uint64, retentionDays uint64, withCDN bool) (api.StorageQuote, error)
		StartUpload       func(ctx context.Context, artifact api.Artifact) (string, error)
		UploadStatus      func(ctx context.Context, id string) (api.UploadStatus, error)
		NoteAuditTx       func(ctx context.Context, tx api.TxHash) error
		AttestationStatus func(ctx context.Context) (api.AttestationState, error)
		ChainContext      func(ctx context.Context) (api.ChainContext, error)
		SwitchChain       func(ctx context.Context, chainID uint64) error
	}
}

func (s *PipelineStruct) Quote(ctx context.Context, capacityBytes uint64, retentionDays uint64, withCDN bool) (api.StorageQuote, error) {
	return s.Internal.Quote(ctx, capacityBytes, retentionDays, withCDN)
}

func (s *PipelineStruct) StartUpload(ctx context.Context, artifact api.Artifact) (string, error) {
	return s.Internal.StartUpload(ctx, artifact)
}

func (s *PipelineStruct) UploadStatus(ctx context.Context, id string) (api.UploadStatus, error) {
	return s.Internal.UploadStatus(ctx, id)
}

func (s *PipelineStruct) NoteAuditTx(ctx context.Context, tx api.TxHash) error {
	return s.Internal.NoteAuditTx(ctx, tx)
}

func (s *PipelineStruct) AttestationStatus(ctx context.Context) (api.AttestationState, error) {
	return s.Internal.AttestationStatus(ctx)
}

func (s *PipelineStruct) ChainContext(ctx context.Context) (api.ChainContext, error) {
	return s.Internal.ChainContext(ctx)
}

func (s *PipelineStruct) SwitchChain(ctx context.Context, chainID uint64) error {
	return s.Internal.SwitchChain(ctx, chainID)
}

var _ api.PaymentsAPI = (*PaymentsStruct)(nil)
var _ api.RegistryAPI = (*RegistryStruct)(nil)
var _ api.TransferAPI = (*TransferStruct)(nil)
var _ api.ChainAPI = (*ChainStruct)(nil)
var _ api.PipelineAPI = (*PipelineStruct)(nil)
