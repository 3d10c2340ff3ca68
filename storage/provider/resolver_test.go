package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/ipfs/go-cid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filecoin-project/go-address"

	"github.com/zera-audit/zera-pipeline/api"
)

func mustAddr(t *testing.T, id uint64) address.Address {
	addr, err := address.NewIDAddress(id)
	require.NoError(t, err)
	return addr
}

type mockRegistry struct {
	sets        []api.ProofSetInfo
	listErr     error
	providerIDs map[string]uint64
	infos       map[uint64]api.RawProviderInfo
}

func (m *mockRegistry) ListProofSets(ctx context.Context, client address.Address) ([]api.ProofSetInfo, error) {
	return m.sets, m.listErr
}

func (m *mockRegistry) ResolveProviderID(ctx context.Context, owner address.Address) (uint64, error) {
	id, ok := m.providerIDs[owner.String()]
	if !ok {
		return 0, errors.New("unknown provider")
	}
	return id, nil
}

func (m *mockRegistry) ProviderInfo(ctx context.Context, id uint64) (api.RawProviderInfo, error) {
	info, ok := m.infos[id]
	if !ok {
		return api.RawProviderInfo{}, errors.New("no such provider")
	}
	return info, nil
}

func (m *mockRegistry) CreateProofSet(ctx context.Context, client address.Address, withCDN bool, progress func(string)) (api.ProofSetInfo, error) {
	return api.ProofSetInfo{}, errors.New("not implemented")
}

type mockTransfer struct {
	healthErr error
}

func (m *mockTransfer) CheckHealth(ctx context.Context, desc api.ProviderDescriptor) error {
	return m.healthErr
}

func (m *mockTransfer) Upload(ctx context.Context, desc api.ProviderDescriptor, proofSetID uint64, payload []byte, progress func(uint64, string)) (cid.Cid, error) {
	return cid.Undef, errors.New("not implemented")
}

func (m *mockTransfer) AddRoots(ctx context.Context, desc api.ProviderDescriptor, proofSetID uint64, root cid.Cid) (api.TxHash, error) {
	return "", errors.New("not implemented")
}

func TestBestProofSet(t *testing.T) {
	payee := address.Address{}
	sets := []api.ProofSetInfo{
		{ID: 1, Payee: payee, RootCount: 3, WithCDN: false},
		{ID: 2, Payee: payee, RootCount: 9, WithCDN: true},
		{ID: 3, Payee: payee, RootCount: 7, WithCDN: false},
	}

	best, found := BestProofSet(sets, false)
	require.True(t, found)
	assert.Equal(t, uint64(3), best.ID)

	best, found = BestProofSet(sets, true)
	require.True(t, found)
	assert.Equal(t, uint64(2), best.ID)

	_, found = BestProofSet(nil, false)
	assert.False(t, found)

	// A CDN mismatch alone signals "must create".
	_, found = BestProofSet(sets[:1], true)
	assert.False(t, found)
}

func TestSelectProofSet(t *testing.T) {
	client := mustAddr(t, 100)
	reg := &mockRegistry{
		sets: []api.ProofSetInfo{
			{ID: 5, RootCount: 2, WithCDN: false},
			{ID: 6, RootCount: 4, WithCDN: false},
		},
	}
	r := NewResolver(reg, &mockTransfer{})

	ps, err := r.SelectProofSet(context.Background(), client, false)
	require.NoError(t, err)
	require.NotNil(t, ps)
	assert.Equal(t, uint64(6), ps.ID)

	ps, err = r.SelectProofSet(context.Background(), client, true)
	require.NoError(t, err)
	assert.Nil(t, ps)

	reg.listErr = errors.New("registry down")
	_, err = r.SelectProofSet(context.Background(), client, false)
	assert.Error(t, err)
}

func TestNormalizeDescriptor(t *testing.T) {
	owner := mustAddr(t, 1000).String()

	cases := []struct {
		name    string
		raw     api.RawProviderInfo
		wantID  uint64
		wantEP  string
		wantRet string
		wantErr bool
	}{
		{
			name:    "canonical fields",
			raw:     api.RawProviderInfo{ID: 1, Owner: owner, Endpoint: "https://sp.example", RetrievalURL: "https://get.example"},
			wantID:  1,
			wantEP:  "https://sp.example",
			wantRet: "https://get.example",
		},
		{
			name:    "alternate fields",
			raw:     api.RawProviderInfo{ProviderID: 2, Address: owner, PDPURL: "https://pdp.example"},
			wantID:  2,
			wantEP:  "https://pdp.example",
			wantRet: "https://pdp.example",
		},
		{
			name:    "url preferred over pdpUrl",
			raw:     api.RawProviderInfo{ID: 3, Owner: owner, URL: "https://url.example", PDPURL: "https://pdp.example"},
			wantID:  3,
			wantEP:  "https://url.example",
			wantRet: "https://url.example",
		},
		{
			name:    "missing owner",
			raw:     api.RawProviderInfo{ID: 4, Endpoint: "https://sp.example"},
			wantErr: true,
		},
		{
			name:    "missing endpoint",
			raw:     api.RawProviderInfo{ID: 5, Owner: owner},
			wantErr: true,
		},
		{
			name:    "garbage owner",
			raw:     api.RawProviderInfo{ID: 6, Owner: "not-an-address", Endpoint: "https://sp.example"},
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			desc, err := NormalizeDescriptor(tc.raw)
			if tc.wantErr {
				require.Error(t, err)
				assert.True(t, api.ErrorIsIn(err, []error{api.ErrProviderMisconfigured}))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantID, desc.ID)
			assert.Equal(t, tc.wantEP, desc.Endpoint)
			assert.Equal(t, tc.wantRet, desc.RetrievalEndpoint)
		})
	}
}

func TestResolveProvider(t *testing.T) {
	payee := mustAddr(t, 1000)
	reg := &mockRegistry{
		providerIDs: map[string]uint64{payee.String(): 7},
		infos: map[uint64]api.RawProviderInfo{
			7: {Owner: payee.String(), Endpoint: "https://sp.example"},
		},
	}
	tr := &mockTransfer{}
	r := NewResolver(reg, tr)

	desc, err := r.ResolveProvider(context.Background(), api.ProofSetInfo{ID: 1, Payee: payee})
	require.NoError(t, err)
	// Registry id backfills a record that carries none.
	assert.Equal(t, uint64(7), desc.ID)

	tr.healthErr = errors.New("connection refused")
	_, err = r.ResolveProvider(context.Background(), api.ProofSetInfo{ID: 1, Payee: payee})
	require.Error(t, err)
	assert.True(t, api.ErrorIsIn(err, []error{api.ErrProviderUnreachable}))
}
