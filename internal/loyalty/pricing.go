package loyalty

import (
	"math"

	"github.com/dineup/dineup/internal/errs"
	"github.com/dineup/dineup/internal/model"
)

const (
	// PointsPerDollar is the fixed redemption rate: 100 points = $1.
	PointsPerDollar = 100
	// MinRedeemPoints is the smallest redemption a settlement accepts.
	MinRedeemPoints = 200
)

// PriceLookup resolves a menu item to its unit price in cents.
// Returns errs.ErrItemNotFound for an unknown id.
type PriceLookup func(menuItemID int) (int64, error)

// Subtotal prices an item list. Any unresolvable item aborts the whole
// calculation; there is no partial charge.
func Subtotal(items []model.OrderItem, lookup PriceLookup) (int64, error) {
	var subtotal int64
	for _, item := range items {
		unit, err := lookup(item.MenuItemID)
		if err != nil {
			return 0, err
		}
		qty := item.Quantity
		if qty < 1 {
			qty = 1
		}
		subtotal += unit * int64(qty)
	}
	return subtotal, nil
}

// RedemptionCredit validates a points redemption against the floor and the
// user's balance and returns the credit in cents. Whole dollars only: the
// user is debited every requested point but credited floor(points/100)*100.
func RedemptionCredit(redeemPoints, balance int) (int64, error) {
	if redeemPoints < MinRedeemPoints {
		return 0, errs.ErrMinRedeemNotMet
	}
	if redeemPoints > balance {
		return 0, errs.ErrInsufficientPoints
	}
	return int64(redeemPoints/PointsPerDollar) * 100, nil
}

// CouponDiscount computes the discount a coupon takes off the given amount.
// An unrecognized coupon type yields zero discount; the second return lets
// the caller surface it.
func CouponDiscount(coupon model.Coupon, amountCents int64) (int64, bool) {
	switch coupon.Type {
	case model.PercentOff:
		return int64(math.Floor(float64(amountCents) * coupon.Value / 100)), true
	case model.FlatAmount:
		return int64(coupon.Value * 100), true
	default:
		return 0, false
	}
}

// ApplyCredit subtracts a credit from an amount, flooring at zero.
func ApplyCredit(amountCents, creditCents int64) int64 {
	if creditCents >= amountCents {
		return 0
	}
	return amountCents - creditCents
}
