package build

import (
	"time"

	"github.com/filecoin-project/go-state-types/abi"
	"github.com/filecoin-project/go-state-types/big"
	"github.com/filecoin-project/go-state-types/builtin"
)

// Chain timing. Payment rates and lockups are denominated per epoch, so every
// capacity/retention figure has to be converted through these before it can be
// compared against the on-chain ledger.
const (
	BlockDelaySecs = uint64(builtin.EpochDurationSeconds)

	EpochsInDay = abi.ChainEpoch(builtin.EpochsInDay)
)

// EpochsInMonth uses the 30-day month the payments contract prices against.
var EpochsInMonth = EpochsInDay * 30

const BytesInTiB = uint64(1) << 40

// TokenPrecision is the settlement token's fixed-point base (18 decimals).
var TokenPrecision = big.NewInt(1_000_000_000_000_000_000)

// Storage pricing tiers, denominated in the settlement token's smallest unit
// per TiB-month. CDN-accelerated storage carries a 50% premium.
var (
	PricePerTiBMonth    = big.Mul(big.NewInt(2), TokenPrecision)
	PricePerTiBMonthCDN = big.Mul(big.NewInt(3), TokenPrecision)
)

// Default chain IDs. The storage chain carries the payments ledger and proof
// sets; the attestation chain hosts the audit registry. Both are overridable
// through node config.
const (
	DefaultStorageChainID     = uint64(314159)
	DefaultAttestationChainID = uint64(84532)
)

// Confirmation polling policy. Bounded attempt counts guarantee forward
// progress when a confirmation never arrives.
const (
	RootConfirmAttempts = 10
	RootConfirmInterval = 6 * time.Second

	MappingConfirmAttempts = 30
	MappingConfirmInterval = 5 * time.Second

	ProviderDialTimeout = 10 * time.Second
)

// DefaultRetentionDays is the retention period quoted when the caller does not
// specify one.
const DefaultRetentionDays = uint64(30)
