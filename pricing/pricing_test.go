package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filecoin-project/go-state-types/big"

	"github.com/zera-audit/zera-pipeline/api"
	"github.com/zera-audit/zera-pipeline/build"
)

const gib = uint64(1) << 30

func usage(rateUsed, rateAllowance, lockupUsed, lockupAllowance big.Int) api.UsageSnapshot {
	return api.UsageSnapshot{
		RateUsed:        rateUsed,
		RateAllowance:   rateAllowance,
		LockupUsed:      lockupUsed,
		LockupAllowance: lockupAllowance,
	}
}

func TestQuoteZeroUsageZeroAllowance(t *testing.T) {
	q := ComputeQuote(5*gib, 30, false, usage(big.Zero(), big.Zero(), big.Zero(), big.Zero()))

	// No partial credit: the top-up equals the full rate for the capacity.
	require.True(t, q.RateNeeded.Equals(q.RatePerEpoch))
	require.True(t, q.RateAllowanceNeeded.Equals(q.RatePerEpoch))
	assert.False(t, q.RateSufficient)
	assert.False(t, q.LockupSufficient)
	assert.False(t, q.Sufficient())
	assert.Equal(t, float64(0), q.DaysRemaining)
	assert.Equal(t, float64(0), q.DaysRemainingAtCurrentRate)
}

func TestQuoteSufficiencyInvariant(t *testing.T) {
	perEpoch := PricePerEpoch(5*gib, false)
	perDay := big.Mul(big.NewInt(int64(build.EpochsInDay)), perEpoch)

	cases := []struct {
		name  string
		usage api.UsageSnapshot
	}{
		{"empty", usage(big.Zero(), big.Zero(), big.Zero(), big.Zero())},
		{"rate covered", usage(big.Zero(), perEpoch, big.Zero(), big.Zero())},
		{"lockup covered", usage(big.Zero(), big.Zero(), big.Zero(), big.Mul(big.NewInt(30), perDay))},
		{"both covered", usage(big.Zero(), perEpoch, big.Zero(), big.Mul(big.NewInt(30), perDay))},
		{"partially locked", usage(perEpoch, big.Mul(big.NewInt(2), perEpoch), perDay, big.Mul(big.NewInt(10), perDay))},
		{"nil amounts", api.UsageSnapshot{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := ComputeQuote(5*gib, 30, false, tc.usage)
			assert.Equal(t, q.RateSufficient && q.LockupSufficient, q.Sufficient())
			assert.True(t, q.DaysRemaining >= 0)
			if q.DaysRemaining >= float64(q.RetentionDays) {
				assert.True(t, q.LockupNeeded.Equals(big.Zero()))
			}
		})
	}
}

func TestQuoteLockupCoverage(t *testing.T) {
	perEpoch := PricePerEpoch(gib, false)
	perDay := big.Mul(big.NewInt(int64(build.EpochsInDay)), perEpoch)

	// 45 days of lockup already approved covers a 30 day request.
	q := ComputeQuote(gib, 30, false, usage(big.Zero(), big.Zero(), big.Zero(), big.Mul(big.NewInt(45), perDay)))
	assert.True(t, q.LockupSufficient)
	assert.True(t, q.LockupNeeded.Equals(big.Zero()))
	assert.InDelta(t, 45.0, q.DaysRemaining, 0.001)

	// 10 days approved leaves a 20 day shortfall.
	q = ComputeQuote(gib, 30, false, usage(big.Zero(), big.Zero(), big.Zero(), big.Mul(big.NewInt(10), perDay)))
	assert.False(t, q.LockupSufficient)
	assert.True(t, q.LockupNeeded.Equals(big.Mul(big.NewInt(20), perDay)))
}

func TestQuoteDaysRemainingAtCurrentRate(t *testing.T) {
	perEpoch := PricePerEpoch(gib, false)
	perDay := big.Mul(big.NewInt(int64(build.EpochsInDay)), perEpoch)

	// Zero burn rate with remaining lockup persists forever.
	q := ComputeQuote(gib, 30, false, usage(big.Zero(), big.Zero(), big.Zero(), perDay))
	assert.True(t, math.IsInf(q.DaysRemainingAtCurrentRate, 1))

	// Zero burn rate with nothing remaining does not.
	q = ComputeQuote(gib, 30, false, usage(big.Zero(), big.Zero(), big.Zero(), big.Zero()))
	assert.Equal(t, float64(0), q.DaysRemainingAtCurrentRate)

	// A live burn rate divides down the remainder.
	q = ComputeQuote(gib, 30, false, usage(perEpoch, perEpoch, big.Zero(), big.Mul(big.NewInt(12), perDay)))
	assert.InDelta(t, 12.0, q.DaysRemainingAtCurrentRate, 0.001)
}

func TestQuoteTopUpScenario(t *testing.T) {
	q := ComputeQuote(5*gib, 30, false, usage(big.Zero(), big.Zero(), big.Zero(), big.Zero()))
	require.False(t, q.Sufficient())

	// Simulate approving exactly the reported top-ups and recompute.
	topped := usage(big.Zero(), q.RateNeeded, big.Zero(), q.LockupNeeded)
	q2 := ComputeQuote(5*gib, 30, false, topped)
	assert.True(t, q2.RateSufficient)
	assert.True(t, q2.LockupSufficient)
	assert.True(t, q2.Sufficient())
}

func TestQuoteCDNPremium(t *testing.T) {
	plain := PricePerEpoch(gib, false)
	cdn := PricePerEpoch(gib, true)
	assert.True(t, cdn.GreaterThan(plain))
}
