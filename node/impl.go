// Package node assembles the pipeline components behind the daemon's RPC
// surface.
package node

import (
	"context"

	"github.com/ipfs/go-cid"
	logging "github.com/ipfs/go-log/v2"
	"golang.org/x/xerrors"

	"github.com/zera-audit/zera-pipeline/api"
	"github.com/zera-audit/zera-pipeline/attest"
	"github.com/zera-audit/zera-pipeline/chain/netctx"
	"github.com/zera-audit/zera-pipeline/storage/pipeline"
)

var log = logging.Logger("node")

// PipelineNode implements api.PipelineAPI over the assembled components. It
// also carries the one cross-component wire: completed uploads feed their
// content identifier to the attestation coordinator.
type PipelineNode struct {
	pipe        *pipeline.Pipeline
	coordinator *attest.Coordinator
	net         *netctx.Manager

	unsub func()
}

var _ api.PipelineAPI = (*PipelineNode)(nil)

// New wires the components together.
func New(pipe *pipeline.Pipeline, coordinator *attest.Coordinator, net *netctx.Manager) *PipelineNode {
	n := &PipelineNode{
		pipe:        pipe,
		coordinator: coordinator,
		net:         net,
	}

	n.unsub = pipe.SubscribeEvents(func(event pipeline.UploadEvent, session pipeline.UploadSession) {
		if session.Phase != api.UploadCompleted || session.ContentID == "" {
			return
		}
		contentID, err := cid.Decode(session.ContentID)
		if err != nil {
			log.Errorw("completed session carries unparseable content identifier", "session", session.ID, "contentID", session.ContentID, "err", err)
			return
		}
		coordinator.NoteContentID(contentID)
	})

	return n
}

// Stop detaches the cross-component wiring and shuts the components down.
func (n *PipelineNode) Stop(ctx context.Context) error {
	n.unsub()
	n.coordinator.Stop()
	return n.pipe.Stop(ctx)
}

func (n *PipelineNode) Quote(ctx context.Context, capacityBytes uint64, retentionDays uint64, withCDN bool) (api.StorageQuote, error) {
	return n.pipe.Quote(ctx, capacityBytes, retentionDays, withCDN)
}

func (n *PipelineNode) StartUpload(ctx context.Context, artifact api.Artifact) (string, error) {
	return n.pipe.StartUpload(ctx, artifact)
}

func (n *PipelineNode) UploadStatus(ctx context.Context, id string) (api.UploadStatus, error) {
	session, err := n.pipe.Get(id)
	if err != nil {
		return api.UploadStatus{}, xerrors.Errorf("unknown session %s: %w", id, err)
	}
	return session.Status(), nil
}

func (n *PipelineNode) NoteAuditTx(ctx context.Context, tx api.TxHash) error {
	return n.coordinator.NoteAuditTx(tx)
}

func (n *PipelineNode) AttestationStatus(ctx context.Context) (api.AttestationState, error) {
	return n.coordinator.Snapshot(), nil
}

func (n *PipelineNode) ChainContext(ctx context.Context) (api.ChainContext, error) {
	return n.net.Context(), nil
}

func (n *PipelineNode) SwitchChain(ctx context.Context, chainID uint64) error {
	if err := n.net.SwitchTo(ctx, chainID); err != nil {
		return err
	}
	// A blocked mapping may only be waiting for the signer to land on the
	// attestation chain.
	n.coordinator.Reevaluate()
	return nil
}
