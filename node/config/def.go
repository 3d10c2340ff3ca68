package config

import (
	"encoding"
	"time"

	"github.com/zera-audit/zera-pipeline/build"
)

// Pipeline is the daemon config.
type Pipeline struct {
	API      API
	Wallet   Wallet
	Services Services
	Chains   Chains
	Storage  Storage
}

// API configures the daemon's own RPC endpoint.
type API struct {
	ListenAddress string
	Timeout       Duration
}

// Wallet identifies the client account the pipeline operates for.
type Wallet struct {
	Address string
}

// Services are the RPC endpoints of the collaborator services.
type Services struct {
	Payments string
	Registry string
	Transfer string
	Chain    string
}

// Chains configures the two networks the pipeline spans and the confirmation
// polling policy on each.
type Chains struct {
	StorageChainID     uint64
	AttestationChainID uint64

	// Registries maps a chain ID (as a decimal string, TOML table keys are
	// strings) to the audit registry contract address deployed on that chain.
	Registries map[string]string

	RootConfirmAttempts int
	RootConfirmInterval Duration

	MappingConfirmAttempts int
	MappingConfirmInterval Duration
}

// Storage carries the session defaults applied to every upload.
type Storage struct {
	WithCDN       bool
	RetentionDays uint64
}

// DefaultPipeline returns the default config.
func DefaultPipeline() *Pipeline {
	return &Pipeline{
		API: API{
			ListenAddress: "127.0.0.1:7777",
			Timeout:       Duration(30 * time.Second),
		},
		Chains: Chains{
			StorageChainID:     build.DefaultStorageChainID,
			AttestationChainID: build.DefaultAttestationChainID,
			Registries:         map[string]string{},

			RootConfirmAttempts: build.RootConfirmAttempts,
			RootConfirmInterval: Duration(build.RootConfirmInterval),

			MappingConfirmAttempts: build.MappingConfirmAttempts,
			MappingConfirmInterval: Duration(build.MappingConfirmInterval),
		},
		Storage: Storage{
			RetentionDays: build.DefaultRetentionDays,
		},
	}
}

var _ encoding.TextMarshaler = (*Duration)(nil)
var _ encoding.TextUnmarshaler = (*Duration)(nil)

// Duration is a wrapper type for time.Duration
// for decoding and encoding from/to TOML
type Duration time.Duration

// UnmarshalText implements interface for TOML decoding
func (dur *Duration) UnmarshalText(text []byte) error {
	d, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*dur = Duration(d)
	return err
}

// MarshalText implements interface for TOML encoding
func (dur Duration) MarshalText() ([]byte, error) {
	d := time.Duration(dur)
	return []byte(d.String()), nil
}
