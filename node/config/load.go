package config

import (
	"bytes"
	"io"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/xerrors"

	"github.com/filecoin-project/go-address"
)

// FromFile loads config from a specified file. A missing file yields the
// default config.
func FromFile(path string) (*Pipeline, error) {
	file, err := os.Open(path)
	switch {
	case os.IsNotExist(err):
		return DefaultPipeline(), nil
	case err != nil:
		return nil, xerrors.Errorf("opening config file %s: %w", path, err)
	}
	defer file.Close() //nolint:errcheck // The file is RO

	return FromReader(file)
}

// FromReader loads config from a reader instance, applied on top of the
// defaults.
func FromReader(reader io.Reader) (*Pipeline, error) {
	cfg := DefaultPipeline()
	if _, err := toml.NewDecoder(reader).Decode(cfg); err != nil {
		return nil, xerrors.Errorf("decoding config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ConfigComment renders cfg as TOML suitable for writing back to disk.
func ConfigComment(cfg *Pipeline) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("# Default config:\n")
	e := toml.NewEncoder(&buf)
	if err := e.Encode(cfg); err != nil {
		return nil, xerrors.Errorf("encoding config: %w", err)
	}
	return buf.Bytes(), nil
}

// Validate checks the config for internal consistency. All failures are
// reported together.
func (cfg *Pipeline) Validate() error {
	var result *multierror.Error

	if cfg.API.ListenAddress == "" {
		result = multierror.Append(result, xerrors.New("API.ListenAddress must be set"))
	}

	if cfg.Wallet.Address == "" {
		result = multierror.Append(result, xerrors.New("Wallet.Address must be set"))
	} else if _, err := address.NewFromString(cfg.Wallet.Address); err != nil {
		result = multierror.Append(result, xerrors.Errorf("Wallet.Address: %w", err))
	}

	for _, ep := range []struct {
		name string
		url  string
	}{
		{"Services.Payments", cfg.Services.Payments},
		{"Services.Registry", cfg.Services.Registry},
		{"Services.Transfer", cfg.Services.Transfer},
		{"Services.Chain", cfg.Services.Chain},
	} {
		if ep.url == "" {
			result = multierror.Append(result, xerrors.Errorf("%s endpoint must be set", ep.name))
		}
	}

	if cfg.Chains.StorageChainID == 0 {
		result = multierror.Append(result, xerrors.New("Chains.StorageChainID must be set"))
	}
	if cfg.Chains.AttestationChainID == 0 {
		result = multierror.Append(result, xerrors.New("Chains.AttestationChainID must be set"))
	}
	for key := range cfg.Chains.Registries {
		if _, err := strconv.ParseUint(key, 10, 64); err != nil {
			result = multierror.Append(result, xerrors.Errorf("Chains.Registries key %q is not a chain ID", key))
		}
	}

	if cfg.Chains.RootConfirmAttempts <= 0 {
		result = multierror.Append(result, xerrors.New("Chains.RootConfirmAttempts must be positive"))
	}
	if cfg.Chains.MappingConfirmAttempts <= 0 {
		result = multierror.Append(result, xerrors.New("Chains.MappingConfirmAttempts must be positive"))
	}

	if cfg.Storage.RetentionDays == 0 {
		result = multierror.Append(result, xerrors.New("Storage.RetentionDays must be positive"))
	}

	return result.ErrorOrNil()
}

// WalletAddress parses the configured client address.
func (cfg *Pipeline) WalletAddress() (address.Address, error) {
	return address.NewFromString(cfg.Wallet.Address)
}

// RegistryTable converts the string-keyed registries table into its runtime
// shape.
func (cfg *Pipeline) RegistryTable() (map[uint64]string, error) {
	out := make(map[uint64]string, len(cfg.Chains.Registries))
	for key, addr := range cfg.Chains.Registries {
		id, err := strconv.ParseUint(key, 10, 64)
		if err != nil {
			return nil, xerrors.Errorf("registries key %q is not a chain ID: %w", key, err)
		}
		out[id] = addr
	}
	return out, nil
}
