package pipeline

import (
	"github.com/filecoin-project/go-address"

	"github.com/zera-audit/zera-pipeline/api"
)

//go:generate go run ../../gen

// UploadSession is the state record of one in-flight upload. Sessions are not
// pooled or reused: every upload attempt starts a fresh session, and the
// record lives only in the in-memory session store for the pipeline's
// lifetime.
type UploadSession struct {
	ID string

	ArtifactName string
	ArtifactSize uint64
	ContentType  string
	// PaddedSize is the payload size after padding to the nearest valid piece
	// size.
	PaddedSize uint64

	WithCDN       bool
	RetentionDays uint64

	Phase           api.UploadPhase
	ProgressPercent uint64
	StatusMessage   string

	ProofSetID         uint64
	ProofSetPayee      string
	MustCreateProofSet bool

	ProviderID                uint64
	ProviderOwner             string
	ProviderEndpoint          string
	ProviderRetrievalEndpoint string
	ProviderName              string

	ContentID      string
	RootAdditionTx string

	FailureReason string
	ErrorMessage  string
	Warning       string
}

// ProofSet reconstructs the selected commitment from the session record.
func (s *UploadSession) ProofSet() (api.ProofSetInfo, error) {
	payee, err := address.NewFromString(s.ProofSetPayee)
	if err != nil {
		return api.ProofSetInfo{}, err
	}
	return api.ProofSetInfo{
		ID:        s.ProofSetID,
		Payee:     payee,
		WithCDN:   s.WithCDN,
		RootCount: 0,
	}, nil
}

// Provider reconstructs the resolved provider descriptor from the session
// record.
func (s *UploadSession) Provider() (api.ProviderDescriptor, error) {
	owner, err := address.NewFromString(s.ProviderOwner)
	if err != nil {
		return api.ProviderDescriptor{}, err
	}
	return api.ProviderDescriptor{
		ID:                s.ProviderID,
		Owner:             owner,
		Endpoint:          s.ProviderEndpoint,
		RetrievalEndpoint: s.ProviderRetrievalEndpoint,
		Name:              s.ProviderName,
	}, nil
}

// Status produces the read-only snapshot served to callers.
func (s *UploadSession) Status() api.UploadStatus {
	return api.UploadStatus{
		ID:              s.ID,
		Phase:           s.Phase,
		ProgressPercent: s.ProgressPercent,
		StatusMessage:   s.StatusMessage,
		ContentID:       s.ContentID,
		RootAdditionTx:  api.TxHash(s.RootAdditionTx),
		FailureReason:   s.FailureReason,
		ErrorMessage:    s.ErrorMessage,
		Warning:         s.Warning,
	}
}
