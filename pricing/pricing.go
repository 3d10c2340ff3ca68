package pricing

import (
	"math"
	gobig "math/big"

	"github.com/filecoin-project/go-state-types/big"

	"github.com/zera-audit/zera-pipeline/api"
	"github.com/zera-audit/zera-pipeline/build"
)

// PricePerEpoch converts a capacity into the per-epoch payment rate for the
// given tier. Fractional units truncate toward zero, matching the fixed-point
// arithmetic the payments contract uses.
func PricePerEpoch(capacityBytes uint64, withCDN bool) big.Int {
	price := build.PricePerTiBMonth
	if withCDN {
		price = build.PricePerTiBMonthCDN
	}
	num := big.Mul(price, big.NewIntUnsigned(capacityBytes))
	den := big.Mul(big.NewIntUnsigned(build.BytesInTiB), big.NewInt(int64(build.EpochsInMonth)))
	return big.Div(num, den)
}

// ComputeQuote compares a requested capacity and retention period against the
// wallet's current ledger state. It never fails: an insufficient allowance is
// reported through the quote, and the caller decides whether to block or warn.
func ComputeQuote(capacityBytes uint64, retentionDays uint64, withCDN bool, usage api.UsageSnapshot) api.StorageQuote {
	rateUsed := orZero(usage.RateUsed)
	rateAllowance := orZero(usage.RateAllowance)
	lockupUsed := orZero(usage.LockupUsed)
	lockupAllowance := orZero(usage.LockupAllowance)

	ratePerEpoch := PricePerEpoch(capacityBytes, withCDN)
	rateAllowanceNeeded := big.Add(rateUsed, ratePerEpoch)
	rateNeeded := big.Sub(rateAllowanceNeeded, rateUsed)

	lockupPerDay := big.Mul(big.NewInt(int64(build.EpochsInDay)), ratePerEpoch)
	lockupRemaining := big.Sub(lockupAllowance, lockupUsed)
	if lockupRemaining.LessThan(big.Zero()) {
		lockupRemaining = big.Zero()
	}
	lockupRequired := big.Mul(big.NewIntUnsigned(retentionDays), lockupPerDay)

	lockupNeeded := big.Zero()
	lockupSufficient := true
	if lockupRemaining.LessThan(lockupRequired) {
		// Shortfall in days, scaled back to lockup units and offset by the
		// lockup already in use.
		lockupNeeded = big.Add(lockupUsed, big.Sub(lockupRequired, lockupRemaining))
		lockupSufficient = false
	}

	return api.StorageQuote{
		CapacityBytes: capacityBytes,
		RetentionDays: retentionDays,
		WithCDN:       withCDN,

		RatePerEpoch:        ratePerEpoch,
		RateAllowanceNeeded: rateAllowanceNeeded,
		RateNeeded:          rateNeeded,
		LockupNeeded:        lockupNeeded,

		RateUsed:        rateUsed,
		RateAllowance:   rateAllowance,
		LockupUsed:      lockupUsed,
		LockupAllowance: lockupAllowance,

		RateSufficient:   rateAllowance.GreaterThanEqual(rateAllowanceNeeded),
		LockupSufficient: lockupSufficient,

		DaysRemaining:              daysOfLockup(lockupRemaining, lockupPerDay),
		DaysRemainingAtCurrentRate: daysOfLockup(lockupRemaining, big.Mul(big.NewInt(int64(build.EpochsInDay)), rateUsed)),
	}
}

// daysOfLockup returns how many days the remaining lockup lasts at the given
// daily burn rate. Zero burn with a positive remainder lasts forever.
func daysOfLockup(remaining, perDay big.Int) float64 {
	if perDay.Equals(big.Zero()) {
		if remaining.GreaterThan(big.Zero()) {
			return math.Inf(1)
		}
		return 0
	}
	rem, _ := new(gobig.Float).SetInt(remaining.Int).Float64()
	day, _ := new(gobig.Float).SetInt(perDay.Int).Float64()
	return rem / day
}

func orZero(v big.Int) big.Int {
	if v.Nil() {
		return big.Zero()
	}
	return v
}
