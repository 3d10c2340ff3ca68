package provider

import (
	"context"

	logging "github.com/ipfs/go-log/v2"
	"golang.org/x/xerrors"

	"github.com/filecoin-project/go-address"
	"github.com/hashicorp/go-multierror"

	"github.com/zera-audit/zera-pipeline/api"
	"github.com/zera-audit/zera-pipeline/build"
)

var log = logging.Logger("provider")

// Resolver finds the storage commitment and provider an upload should target.
type Resolver struct {
	registry api.RegistryAPI
	transfer api.TransferAPI
}

func NewResolver(registry api.RegistryAPI, transfer api.TransferAPI) *Resolver {
	return &Resolver{
		registry: registry,
		transfer: transfer,
	}
}

// BestProofSet picks the commitment with the most accumulated data among those
// matching the requested CDN flag. The second return is false when no
// commitment matches and a new one must be created.
func BestProofSet(sets []api.ProofSetInfo, withCDN bool) (api.ProofSetInfo, bool) {
	var best api.ProofSetInfo
	found := false
	for _, ps := range sets {
		if ps.WithCDN != withCDN {
			continue
		}
		if !found || ps.RootCount > best.RootCount {
			best = ps
			found = true
		}
	}
	return best, found
}

// SelectProofSet queries the client's existing commitments and selects the
// best match. A nil result with nil error means no commitment matches.
func (r *Resolver) SelectProofSet(ctx context.Context, client address.Address, withCDN bool) (*api.ProofSetInfo, error) {
	sets, err := r.registry.ListProofSets(ctx, client)
	if err != nil {
		return nil, xerrors.Errorf("listing proof sets for %s: %w", client, err)
	}

	best, found := BestProofSet(sets, withCDN)
	if !found {
		log.Infow("no matching proof set, must create", "client", client, "withCDN", withCDN)
		return nil, nil
	}

	log.Debugw("selected proof set", "client", client, "proofSet", best.ID, "rootCount", best.RootCount)
	return &best, nil
}

// NormalizeDescriptor maps a raw registry record onto the canonical provider
// shape. Registry versions disagree on field names, so every alternate is
// resolved here, once, instead of at each use site.
func NormalizeDescriptor(raw api.RawProviderInfo) (api.ProviderDescriptor, error) {
	id := raw.ProviderID
	if id == 0 {
		id = raw.ID
	}

	ownerStr := firstOf(raw.Owner, raw.Address)
	endpoint := firstOf(raw.Endpoint, raw.URL, raw.PDPURL)
	retrieval := firstOf(raw.RetrievalURL, raw.PieceRetrievalURL, endpoint)

	var merr *multierror.Error
	if ownerStr == "" {
		merr = multierror.Append(merr, xerrors.New("provider record has no owner address"))
	}
	if endpoint == "" {
		merr = multierror.Append(merr, xerrors.New("provider record has no service endpoint"))
	}
	if err := merr.ErrorOrNil(); err != nil {
		return api.ProviderDescriptor{}, xerrors.Errorf("normalizing provider %d: %s: %w", id, err, api.ErrProviderMisconfigured)
	}

	owner, err := address.NewFromString(ownerStr)
	if err != nil {
		return api.ProviderDescriptor{}, xerrors.Errorf("parsing provider %d owner %q: %s: %w", id, ownerStr, err, api.ErrProviderMisconfigured)
	}

	return api.ProviderDescriptor{
		ID:                id,
		Owner:             owner,
		Endpoint:          endpoint,
		RetrievalEndpoint: retrieval,
		Name:              raw.Name,
	}, nil
}

// ResolveProvider resolves the proof set's payee into a healthy, normalized
// provider descriptor.
func (r *Resolver) ResolveProvider(ctx context.Context, ps api.ProofSetInfo) (api.ProviderDescriptor, error) {
	id, err := r.registry.ResolveProviderID(ctx, ps.Payee)
	if err != nil {
		return api.ProviderDescriptor{}, xerrors.Errorf("resolving provider id for payee %s: %w", ps.Payee, err)
	}

	raw, err := r.registry.ProviderInfo(ctx, id)
	if err != nil {
		return api.ProviderDescriptor{}, xerrors.Errorf("fetching provider %d record: %w", id, err)
	}

	desc, err := NormalizeDescriptor(raw)
	if err != nil {
		return api.ProviderDescriptor{}, err
	}
	if desc.ID == 0 {
		desc.ID = id
	}

	hctx, cancel := context.WithTimeout(ctx, build.ProviderDialTimeout)
	defer cancel()
	if err := r.transfer.CheckHealth(hctx, desc); err != nil {
		log.Warnw("provider health check failed", "provider", desc.ID, "endpoint", desc.Endpoint, "err", err)
		return api.ProviderDescriptor{}, xerrors.Errorf("provider %d health check against %s: %s: %w", desc.ID, desc.Endpoint, err, api.ErrProviderUnreachable)
	}

	return desc, nil
}

func firstOf(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
