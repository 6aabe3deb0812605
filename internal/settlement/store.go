package settlement

import (
	"context"
	"time"

	"github.com/dineup/dineup/internal/model"
)

// Tx is the transaction-scoped storage surface a settlement runs against.
// Every mutation made through a Tx commits or rolls back as one unit.
type Tx interface {
	// UserForUpdate and GroupForUpdate take row-level locks. Settlements
	// always lock the user first, then the group, so concurrent calls
	// touching the same rows serialize in a fixed order.
	UserForUpdate(ctx context.Context, userID int) (model.User, error)
	GroupForUpdate(ctx context.Context, groupID int) (model.Group, error)
	GroupMembers(ctx context.Context, groupID int) ([]model.User, error)

	MenuItemPrice(ctx context.Context, menuItemID int) (int64, error)
	Restaurant(ctx context.Context, restaurantID int) (model.Restaurant, error)

	UpsertOrder(ctx context.Context, groupID, userID int) (model.Order, error)
	ReplaceOrderItems(ctx context.Context, orderID int, items []model.OrderItem) error
	DeleteOrder(ctx context.Context, groupID, userID int) error

	// ConsumeCoupon flips used=false to true in a single compare-and-set;
	// a coupon already used, expired, or owned by someone else yields
	// errs.ErrInvalidOrExpiredCoupon.
	ConsumeCoupon(ctx context.Context, code string, userID int, now time.Time) (model.Coupon, error)
	CreateCoupon(ctx context.Context, coupon model.Coupon) (model.Coupon, error)

	AppendLedger(ctx context.Context, entry model.LedgerEntry) (model.LedgerEntry, error)
	AddUserPoints(ctx context.Context, userID, delta int) (int, error)
	UpdateUserStreak(ctx context.Context, userID, streakCount int, lastOrderDate time.Time) error
	AddGroupTotal(ctx context.Context, groupID int, deltaCents int64) error
	// SetGoalReached flips goal_reached false->true; reports whether this
	// call won the flip.
	SetGoalReached(ctx context.Context, groupID int) (bool, error)
}

// Store provides transactions plus the plain reads the settlement API needs.
type Store interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error

	User(ctx context.Context, userID int) (model.User, error)
	IsGroupMember(ctx context.Context, groupID, userID int) (bool, error)
	GroupOrders(ctx context.Context, groupID int) ([]model.Order, error)
	OpenCoupons(ctx context.Context, userID int) ([]model.Coupon, error)
	RecentLedger(ctx context.Context, userID, limit int) ([]model.LedgerEntry, error)
}

// OrderInput is a decoded order placement: items plus optional discounts and
// an optional override of the group's order deadline.
type OrderInput struct {
	Items         []model.OrderItem
	CouponCode    string
	RedeemPoints  int
	NextOrderTime *time.Time
}
