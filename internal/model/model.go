package model

import "time"

type Tier string

const (
	Bronze Tier = "Bronze"
	Silver Tier = "Silver"
	Gold   Tier = "Gold"
)

func (t Tier) Multiplier() float64 {
	switch t {
	case Silver:
		return 1.10
	case Gold:
		return 1.20
	default:
		return 1.00
	}
}

type User struct {
	ID            int        `json:"id"`
	Login         string     `json:"login"`
	LoyaltyPoints int        `json:"loyalty_points"`
	Tier          Tier       `json:"tier"`
	StreakCount   int        `json:"streak_count"`
	LastOrderDate *time.Time `json:"last_order_date,omitempty"`
}

type Group struct {
	ID            int       `json:"id"`
	Name          string    `json:"name"`
	RestaurantID  int       `json:"restaurant_id"`
	NextOrderTime time.Time `json:"next_order_time"`
	TotalCents    int64     `json:"total_cents"`
	GoalReached   bool      `json:"goal_reached"`
}

type Restaurant struct {
	ID               int
	Name             string
	RewardMultiplier float64
}

type OrderItem struct {
	MenuItemID int    `json:"menuItemId"`
	Quantity   int    `json:"quantity"`
	Note       string `json:"specialInstructions,omitempty"`
}

type Order struct {
	ID        int         `json:"id"`
	GroupID   int         `json:"groupId"`
	UserID    int         `json:"userId"`
	Items     []OrderItem `json:"items"`
	CreatedAt time.Time   `json:"createdAt"`
}

type CouponType string

const (
	PercentOff CouponType = "percent_off"
	FlatAmount CouponType = "flat"
)

type Coupon struct {
	ID           int        `json:"-"`
	Code         string     `json:"code"`
	UserID       int        `json:"-"`
	RestaurantID *int       `json:"restaurant_id,omitempty"`
	Type         CouponType `json:"type"`
	Value        float64    `json:"value"`
	ExpiresAt    time.Time  `json:"expires_at"`
	Used         bool       `json:"used"`
	CreatedAt    time.Time  `json:"-"`
}

// Valid reports whether the coupon can still be applied: unused and not expired.
func (c Coupon) Valid(now time.Time) bool {
	return !c.Used && now.Before(c.ExpiresAt)
}

type LedgerType string

const (
	LedgerEarn   LedgerType = "earn"
	LedgerRedeem LedgerType = "redeem"
	LedgerBonus  LedgerType = "bonus"
)

// LedgerEntry is one immutable record of a balance-affecting event.
// Points is negative for redemptions, positive for earns and bonuses;
// the sum of Points over a user's entries always equals User.LoyaltyPoints.
type LedgerEntry struct {
	ID          int64          `json:"id"`
	UserID      int            `json:"user_id"`
	OrderID     *int           `json:"order_id,omitempty"`
	Type        LedgerType     `json:"type"`
	Points      int            `json:"points"`
	AmountCents int64          `json:"amount_cents"`
	Metadata    map[string]any `json:"meta,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

type SettlementResult struct {
	Order          Order `json:"order"`
	EarnedPoints   int   `json:"earned_points"`
	RedeemedPoints int   `json:"redeemed_points"`
	NewBalance     int   `json:"new_balance"`
	PoolSize       int   `json:"pool_size"`
}

type Quote struct {
	Accepted          bool   `json:"accepted"`
	RequestedPoints   int    `json:"requested_points"`
	CreditValueCents  int64  `json:"credit_value_cents"`
	FinalPayableCents int64  `json:"final_payable_cents"`
	UserBalanceAfter  int    `json:"user_balance_after"`
	MinPoints         int    `json:"min_points"`
	ConversionRate    string `json:"conversion_rate"`
}

type RewardsSummary struct {
	Points  int           `json:"points"`
	Tier    Tier          `json:"tier"`
	Streak  int           `json:"streak"`
	Coupons []Coupon      `json:"coupons"`
	Ledger  []LedgerEntry `json:"ledger"`
}
