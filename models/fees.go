package models

import "math"

// Basis point scale: 10000 = 100%.
const FeeRateScale = 10000

// MaxDeposit bounds a per-player stake so the two-player pool always fits
// in int64. Enforced when a game opens.
const MaxDeposit = math.MaxInt64 / 2

// ValidFeeRate reports whether a platform fee rate is within 0-10000 basis
// points. Enforced at the setter; payout paths trust the stored value.
func ValidFeeRate(bps int32) bool {
	return bps >= 0 && bps <= FeeRateScale
}

// SplitPool computes the platform fee and winner payout for a game with the
// given per-player deposit and snapshotted fee rate. The fee truncates on
// integer division; the payout is the remainder of the pool, so
// fee + payout == deposit*2 always holds exactly.
func SplitPool(deposit int64, feeRateBps int32) (fee, payout int64) {
	pool := deposit * 2
	rate := int64(feeRateBps)
	// Split the pool before multiplying: pool*rate would overflow int64
	// for large stakes, and the quotient/remainder form is exact.
	fee = pool/FeeRateScale*rate + pool%FeeRateScale*rate/FeeRateScale
	payout = pool - fee
	return fee, payout
}
