package loyalty

import (
	"math"
	"time"

	"github.com/dineup/dineup/internal/model"
)

// streakMultiplier adds 5% per consecutive-order day, capped at +30%.
func streakMultiplier(streakCount int) float64 {
	return 1.0 + math.Min(float64(streakCount)*0.05, 0.30)
}

// basePoints is half a point per dollar spent, floored.
func basePoints(spendCents int64) int {
	if spendCents < 0 {
		return 0
	}
	return int(spendCents / 200)
}

// PooledOrderPoints computes points earned on a pooled group order.
// The pool bonus (2 points per member beyond the organizer) is multiplied
// into the multiplier chain and the chain is added to the base. A pool of
// one therefore zeroes the whole chain; the formula is kept exactly as the
// billing team shipped it.
func PooledOrderPoints(spendCents int64, poolSize int, restaurantMultiplier float64, streakCount int, tier model.Tier) int {
	base := basePoints(spendCents)

	bonus := 0
	if poolSize > 1 {
		bonus = (poolSize - 1) * 2
	}

	chain := restaurantMultiplier * float64(bonus) * streakMultiplier(streakCount) * tier.Multiplier()
	earned := int(math.Floor(float64(base) + chain))
	if earned < 0 {
		return 0
	}
	return earned
}

// ImmediateOrderPoints computes points for a solo "order now" placement.
// There is no pool bonus and the multiplier chain scales the base directly.
func ImmediateOrderPoints(spendCents int64, restaurantMultiplier float64, streakCount int, tier model.Tier) int {
	base := basePoints(spendCents)

	chain := restaurantMultiplier * streakMultiplier(streakCount) * tier.Multiplier()
	earned := int(math.Floor(float64(base) * chain))
	if earned < 0 {
		return 0
	}
	return earned
}

// NextStreak advances the consecutive-day order streak: an order on the day
// after the previous one extends it, a same-day order keeps it, a gap resets
// it to one.
func NextStreak(streakCount int, lastOrderDate *time.Time, now time.Time) int {
	if lastOrderDate == nil || streakCount == 0 {
		return 1
	}

	last := lastOrderDate.UTC()
	cur := now.UTC()
	days := daysBetween(last, cur)

	switch {
	case days == 0:
		return streakCount
	case days == 1:
		return streakCount + 1
	default:
		return 1
	}
}

func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}
