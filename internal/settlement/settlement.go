package settlement

import (
	"context"
	"fmt"
	"time"

	"github.com/dineup/dineup/internal/errs"
	"github.com/dineup/dineup/internal/loyalty"
	"github.com/dineup/dineup/internal/model"
	"go.uber.org/zap"
)

// Settler finalizes orders: pricing, discounts, loyalty accrual, the group
// spend counter and the one-shot group goal, all inside one transaction per
// settlement.
type Settler struct {
	store  Store
	logger *zap.SugaredLogger
	now    func() time.Time
}

func NewSettler(store Store, logger *zap.SugaredLogger) *Settler {
	return &Settler{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// SettleGroupOrder replaces the caller's order in the group and settles it:
// redemption first, coupon second, points earned on the amount actually paid.
func (s *Settler) SettleGroupOrder(ctx context.Context, groupID, userID int, in OrderInput) (model.SettlementResult, error) {
	var result model.SettlementResult

	err := s.store.InTx(ctx, func(tx Tx) error {
		user, err := tx.UserForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		group, err := tx.GroupForUpdate(ctx, groupID)
		if err != nil {
			return err
		}

		members, err := tx.GroupMembers(ctx, groupID)
		if err != nil {
			return err
		}
		if !containsUser(members, userID) {
			return errs.ErrNotAMember
		}

		deadline := group.NextOrderTime
		if in.NextOrderTime != nil {
			deadline = *in.NextOrderTime
		}
		if s.now().After(deadline) {
			return errs.ErrOrderWindowExpired
		}

		settled, err := s.settle(ctx, tx, user, group, in, len(members), pooledFormula)
		if err != nil {
			return err
		}

		result = settled
		return nil
	})
	if err != nil {
		return model.SettlementResult{}, err
	}
	return result, nil
}

// SettleImmediateOrder settles a solo order: no order-window guard, pool
// size forced to one, the immediate points formula.
func (s *Settler) SettleImmediateOrder(ctx context.Context, groupID, userID int, in OrderInput) (model.SettlementResult, error) {
	var result model.SettlementResult

	err := s.store.InTx(ctx, func(tx Tx) error {
		user, err := tx.UserForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		group, err := tx.GroupForUpdate(ctx, groupID)
		if err != nil {
			return err
		}

		members, err := tx.GroupMembers(ctx, groupID)
		if err != nil {
			return err
		}
		if !containsUser(members, userID) {
			return errs.ErrNotAMember
		}

		settled, err := s.settle(ctx, tx, user, group, in, 1, immediateFormula)
		if err != nil {
			return err
		}

		result = settled
		return nil
	})
	if err != nil {
		return model.SettlementResult{}, err
	}
	return result, nil
}

type pointsFormula int

const (
	pooledFormula pointsFormula = iota
	immediateFormula
)

// settle is the shared settlement body. The caller has already locked the
// user and group rows and verified membership and the order window.
func (s *Settler) settle(ctx context.Context, tx Tx, user model.User, group model.Group, in OrderInput, poolSize int, formula pointsFormula) (model.SettlementResult, error) {
	now := s.now()

	order, err := tx.UpsertOrder(ctx, group.ID, user.ID)
	if err != nil {
		return model.SettlementResult{}, err
	}
	if err := tx.ReplaceOrderItems(ctx, order.ID, in.Items); err != nil {
		return model.SettlementResult{}, err
	}

	payable, err := loyalty.Subtotal(in.Items, func(menuItemID int) (int64, error) {
		return tx.MenuItemPrice(ctx, menuItemID)
	})
	if err != nil {
		return model.SettlementResult{}, err
	}

	redeemed := 0
	if in.RedeemPoints > 0 {
		credit, err := loyalty.RedemptionCredit(in.RedeemPoints, user.LoyaltyPoints)
		if err != nil {
			return model.SettlementResult{}, err
		}
		payable = loyalty.ApplyCredit(payable, credit)

		if _, err := tx.AddUserPoints(ctx, user.ID, -in.RedeemPoints); err != nil {
			return model.SettlementResult{}, err
		}
		_, err = tx.AppendLedger(ctx, model.LedgerEntry{
			UserID:      user.ID,
			OrderID:     &order.ID,
			Type:        model.LedgerRedeem,
			Points:      -in.RedeemPoints,
			AmountCents: credit,
			Metadata:    map[string]any{"reason": "group_order_credit"},
		})
		if err != nil {
			return model.SettlementResult{}, err
		}
		redeemed = in.RedeemPoints
	}

	if in.CouponCode != "" {
		coupon, err := tx.ConsumeCoupon(ctx, in.CouponCode, user.ID, now)
		if err != nil {
			return model.SettlementResult{}, err
		}
		discount, known := loyalty.CouponDiscount(coupon, payable)
		if !known {
			s.logger.Errorw("coupon has unknown type, no discount applied",
				"code", coupon.Code, "type", coupon.Type, "user_id", user.ID)
		}
		payable = loyalty.ApplyCredit(payable, discount)

		_, err = tx.AppendLedger(ctx, model.LedgerEntry{
			UserID:      user.ID,
			Type:        model.LedgerRedeem,
			Points:      0,
			AmountCents: discount,
			Metadata:    map[string]any{"reason": "coupon_used", "coupon_code": coupon.Code},
		})
		if err != nil {
			return model.SettlementResult{}, err
		}
	}

	restaurant, err := tx.Restaurant(ctx, group.RestaurantID)
	if err != nil {
		return model.SettlementResult{}, err
	}

	var earned int
	var earnMeta map[string]any
	if formula == pooledFormula {
		earned = loyalty.PooledOrderPoints(payable, poolSize, restaurant.RewardMultiplier, user.StreakCount, user.Tier)
		earnMeta = map[string]any{"restaurant": restaurant.Name, "group_size": poolSize}
	} else {
		earned = loyalty.ImmediateOrderPoints(payable, restaurant.RewardMultiplier, user.StreakCount, user.Tier)
		earnMeta = map[string]any{"restaurant": restaurant.Name}
	}

	newBalance, err := tx.AddUserPoints(ctx, user.ID, earned)
	if err != nil {
		return model.SettlementResult{}, err
	}
	_, err = tx.AppendLedger(ctx, model.LedgerEntry{
		UserID:      user.ID,
		OrderID:     &order.ID,
		Type:        model.LedgerEarn,
		Points:      earned,
		AmountCents: payable,
		Metadata:    earnMeta,
	})
	if err != nil {
		return model.SettlementResult{}, err
	}

	streak := loyalty.NextStreak(user.StreakCount, user.LastOrderDate, now)
	if err := tx.UpdateUserStreak(ctx, user.ID, streak, now); err != nil {
		return model.SettlementResult{}, err
	}

	if err := tx.AddGroupTotal(ctx, group.ID, payable); err != nil {
		return model.SettlementResult{}, err
	}
	group.TotalCents += payable
	bonus, err := s.evaluateGroupGoal(ctx, tx, group, user.ID, now)
	if err != nil {
		return model.SettlementResult{}, err
	}
	newBalance += bonus

	order.Items = in.Items
	return model.SettlementResult{
		Order:          order,
		EarnedPoints:   earned,
		RedeemedPoints: redeemed,
		NewBalance:     newBalance,
		PoolSize:       poolSize,
	}, nil
}

// evaluateGroupGoal distributes the one-time group reward when cumulative
// spend crosses a threshold. The flag flip is a compare-and-set, so even a
// settlement racing past the already-locked group row grants at most once.
// Returns the bonus points credited to the settling user, if any, so the
// caller can report the post-goal balance.
func (s *Settler) evaluateGroupGoal(ctx context.Context, tx Tx, group model.Group, settlingUserID int, now time.Time) (int, error) {
	if group.GoalReached || group.TotalCents < loyalty.GoalPointsCents {
		return 0, nil
	}

	flipped, err := tx.SetGoalReached(ctx, group.ID)
	if err != nil {
		return 0, fmt.Errorf("flip group goal: %w", err)
	}
	if !flipped {
		return 0, nil
	}

	members, err := tx.GroupMembers(ctx, group.ID)
	if err != nil {
		return 0, err
	}

	if group.TotalCents >= loyalty.GoalCouponCents {
		for _, member := range members {
			coupon, err := tx.CreateCoupon(ctx, model.Coupon{
				Code:      loyalty.GoalCouponCode(member.Login),
				UserID:    member.ID,
				Type:      model.PercentOff,
				Value:     loyalty.GoalCouponValue,
				ExpiresAt: loyalty.GoalCouponExpiry(now),
			})
			if err != nil {
				return 0, fmt.Errorf("grant goal coupon: %w", err)
			}
			_, err = tx.AppendLedger(ctx, model.LedgerEntry{
				UserID:   member.ID,
				Type:     model.LedgerBonus,
				Points:   0,
				Metadata: map[string]any{"reason": "group_goal", "coupon_code": coupon.Code},
			})
			if err != nil {
				return 0, err
			}
		}
		return 0, nil
	}

	granted := 0
	for _, member := range members {
		if _, err := tx.AddUserPoints(ctx, member.ID, loyalty.GoalBonusPoints); err != nil {
			return 0, fmt.Errorf("grant goal points: %w", err)
		}
		_, err = tx.AppendLedger(ctx, model.LedgerEntry{
			UserID:   member.ID,
			Type:     model.LedgerBonus,
			Points:   loyalty.GoalBonusPoints,
			Metadata: map[string]any{"reason": "group_goal_points"},
		})
		if err != nil {
			return 0, err
		}
		if member.ID == settlingUserID {
			granted = loyalty.GoalBonusPoints
		}
	}
	return granted, nil
}

// QuoteRedemption previews a points redemption without mutating anything.
func (s *Settler) QuoteRedemption(ctx context.Context, userID, pointsToUse int, orderSubtotalCents int64) (model.Quote, error) {
	user, err := s.store.User(ctx, userID)
	if err != nil {
		return model.Quote{}, err
	}

	credit, err := loyalty.RedemptionCredit(pointsToUse, user.LoyaltyPoints)
	if err != nil {
		return model.Quote{}, err
	}

	return model.Quote{
		Accepted:          true,
		RequestedPoints:   pointsToUse,
		CreditValueCents:  credit,
		FinalPayableCents: loyalty.ApplyCredit(orderSubtotalCents, credit),
		UserBalanceAfter:  user.LoyaltyPoints - pointsToUse,
		MinPoints:         loyalty.MinRedeemPoints,
		ConversionRate:    "100 points = $1",
	}, nil
}

// RedeemPointsDirect debits points outside any order and records the
// matching ledger row, as one transaction.
func (s *Settler) RedeemPointsDirect(ctx context.Context, userID, pointsToUse int, orderID *int, reason string) (model.LedgerEntry, error) {
	if reason == "" {
		reason = "manual"
	}

	var entry model.LedgerEntry
	err := s.store.InTx(ctx, func(tx Tx) error {
		user, err := tx.UserForUpdate(ctx, userID)
		if err != nil {
			return err
		}

		credit, err := loyalty.RedemptionCredit(pointsToUse, user.LoyaltyPoints)
		if err != nil {
			return err
		}

		if _, err := tx.AddUserPoints(ctx, userID, -pointsToUse); err != nil {
			return err
		}
		entry, err = tx.AppendLedger(ctx, model.LedgerEntry{
			UserID:      userID,
			OrderID:     orderID,
			Type:        model.LedgerRedeem,
			Points:      -pointsToUse,
			AmountCents: credit,
			Metadata:    map[string]any{"reason": reason},
		})
		return err
	})
	if err != nil {
		return model.LedgerEntry{}, err
	}
	return entry, nil
}

// RedeemCoupon buys a coupon from the catalog with points. Returns the new
// coupon and the remaining balance.
func (s *Settler) RedeemCoupon(ctx context.Context, userID int, couponType model.CouponType, restaurantID *int) (model.Coupon, int, error) {
	offer, err := loyalty.CatalogOffer(couponType)
	if err != nil {
		return model.Coupon{}, 0, err
	}

	var coupon model.Coupon
	var balance int
	err = s.store.InTx(ctx, func(tx Tx) error {
		user, err := tx.UserForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		if user.LoyaltyPoints < offer.CostPoints {
			return errs.ErrInsufficientPoints
		}

		balance, err = tx.AddUserPoints(ctx, userID, -offer.CostPoints)
		if err != nil {
			return err
		}

		coupon, err = tx.CreateCoupon(ctx, model.Coupon{
			Code:         loyalty.NewCouponCode(offer.CodePrefix),
			UserID:       userID,
			RestaurantID: restaurantID,
			Type:         couponType,
			Value:        offer.Value,
			ExpiresAt:    s.now().Add(time.Duration(offer.ValidDays) * 24 * time.Hour),
		})
		if err != nil {
			return err
		}

		_, err = tx.AppendLedger(ctx, model.LedgerEntry{
			UserID:   userID,
			Type:     model.LedgerRedeem,
			Points:   -offer.CostPoints,
			Metadata: map[string]any{"reason": "coupon_redemption", "coupon_code": coupon.Code},
		})
		return err
	})
	if err != nil {
		return model.Coupon{}, 0, err
	}
	return coupon, balance, nil
}

// RewardsSummary returns the user's points, tier, streak, open coupons and
// the most recent ledger entries.
func (s *Settler) RewardsSummary(ctx context.Context, userID int) (model.RewardsSummary, error) {
	user, err := s.store.User(ctx, userID)
	if err != nil {
		return model.RewardsSummary{}, err
	}

	coupons, err := s.store.OpenCoupons(ctx, userID)
	if err != nil {
		return model.RewardsSummary{}, err
	}

	ledger, err := s.store.RecentLedger(ctx, userID, 20)
	if err != nil {
		return model.RewardsSummary{}, err
	}

	tier := user.Tier
	if tier == "" {
		tier = model.Bronze
	}

	return model.RewardsSummary{
		Points:  user.LoyaltyPoints,
		Tier:    tier,
		Streak:  user.StreakCount,
		Coupons: coupons,
		Ledger:  ledger,
	}, nil
}

// GroupOrders lists every order in the group; the caller must be a member.
func (s *Settler) GroupOrders(ctx context.Context, groupID, userID int) ([]model.Order, error) {
	member, err := s.store.IsGroupMember(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, errs.ErrNotAMember
	}
	return s.store.GroupOrders(ctx, groupID)
}

// DeleteOrder removes the caller's order from the group.
func (s *Settler) DeleteOrder(ctx context.Context, groupID, userID int) error {
	return s.store.InTx(ctx, func(tx Tx) error {
		return tx.DeleteOrder(ctx, groupID, userID)
	})
}

func containsUser(users []model.User, userID int) bool {
	for _, u := range users {
		if u.ID == userID {
			return true
		}
	}
	return false
}
