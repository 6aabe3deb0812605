package loyalty

import (
	"strings"
	"time"

	"github.com/dineup/dineup/internal/errs"
	"github.com/dineup/dineup/internal/model"
	"github.com/google/uuid"
)

// Offer is one purchasable coupon kind from the rewards catalog.
type Offer struct {
	CostPoints int
	Value      float64
	ValidDays  int
	CodePrefix string
}

var catalog = map[model.CouponType]Offer{
	model.PercentOff: {CostPoints: 500, Value: 20, ValidDays: 7, CodePrefix: "DISC"},
	model.FlatAmount: {CostPoints: 400, Value: 4, ValidDays: 7, CodePrefix: "VCHR"},
}

// CatalogOffer looks up a purchasable coupon type.
func CatalogOffer(t model.CouponType) (Offer, error) {
	offer, ok := catalog[t]
	if !ok {
		return Offer{}, errs.ErrInvalidCouponType
	}
	return offer, nil
}

// NewCouponCode builds a catalog coupon code like DISC-3FA09C.
func NewCouponCode(prefix string) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return prefix + "-" + suffix
}

// Group goal thresholds and rewards. The higher threshold wins and a group
// crosses at most one of them, ever.
const (
	GoalCouponCents = 10000
	GoalPointsCents = 5000

	GoalCouponValue = 10
	GoalCouponDays  = 7
	GoalBonusPoints = 100
)

// GoalCouponCode builds the goal-reward coupon code for a member. The login
// tag is cosmetic; the random suffix keeps codes unique across members with
// a shared prefix and across groups, since coupon codes are unique in storage.
func GoalCouponCode(login string) string {
	tag := strings.ToUpper(login)
	if len(tag) > 3 {
		tag = tag[:3]
	}
	return NewCouponCode("GROUP10-" + tag)
}

// GoalCouponExpiry is the expiry for goal-reward coupons.
func GoalCouponExpiry(now time.Time) time.Time {
	return now.Add(GoalCouponDays * 24 * time.Hour)
}
