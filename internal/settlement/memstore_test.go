package settlement

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dineup/dineup/internal/errs"
	"github.com/dineup/dineup/internal/model"
)

// memStore is an in-memory Store/Tx used by the settlement tests. InTx
// snapshots the whole store up front and restores it when fn fails, matching
// the all-or-nothing semantics of the real transaction.
type memStore struct {
	users       map[int]*model.User
	groups      map[int]*model.Group
	members     map[int][]int
	menu        map[int]int64
	restaurants map[int]model.Restaurant
	orders      map[int]*model.Order
	nextOrder   int
	coupons     map[string]*model.Coupon
	ledger      []model.LedgerEntry
	nextLedger  int64
}

func newMemStore() *memStore {
	return &memStore{
		users:       make(map[int]*model.User),
		groups:      make(map[int]*model.Group),
		members:     make(map[int][]int),
		menu:        make(map[int]int64),
		restaurants: make(map[int]model.Restaurant),
		orders:      make(map[int]*model.Order),
		nextOrder:   1,
		coupons:     make(map[string]*model.Coupon),
		nextLedger:  1,
	}
}

func (m *memStore) clone() *memStore {
	c := newMemStore()
	for id, u := range m.users {
		cp := *u
		c.users[id] = &cp
	}
	for id, g := range m.groups {
		cp := *g
		c.groups[id] = &cp
	}
	for id, ms := range m.members {
		c.members[id] = append([]int(nil), ms...)
	}
	for id, p := range m.menu {
		c.menu[id] = p
	}
	for id, r := range m.restaurants {
		c.restaurants[id] = r
	}
	for id, o := range m.orders {
		cp := *o
		cp.Items = append([]model.OrderItem(nil), o.Items...)
		c.orders[id] = &cp
	}
	c.nextOrder = m.nextOrder
	for code, cp := range m.coupons {
		dup := *cp
		c.coupons[code] = &dup
	}
	c.ledger = append([]model.LedgerEntry(nil), m.ledger...)
	c.nextLedger = m.nextLedger
	return c
}

func (m *memStore) InTx(ctx context.Context, fn func(tx Tx) error) error {
	snapshot := m.clone()
	if err := fn(m); err != nil {
		*m = *snapshot
		return err
	}
	return nil
}

func (m *memStore) User(ctx context.Context, userID int) (model.User, error) {
	u, ok := m.users[userID]
	if !ok {
		return model.User{}, errs.ErrUserNotFound
	}
	return *u, nil
}

func (m *memStore) IsGroupMember(ctx context.Context, groupID, userID int) (bool, error) {
	for _, id := range m.members[groupID] {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) GroupOrders(ctx context.Context, groupID int) ([]model.Order, error) {
	var orders []model.Order
	for _, o := range m.orders {
		if o.GroupID == groupID {
			orders = append(orders, *o)
		}
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID < orders[j].ID })
	return orders, nil
}

func (m *memStore) OpenCoupons(ctx context.Context, userID int) ([]model.Coupon, error) {
	var coupons []model.Coupon
	for _, c := range m.coupons {
		if c.UserID == userID && !c.Used {
			coupons = append(coupons, *c)
		}
	}
	sort.Slice(coupons, func(i, j int) bool { return coupons[i].Code < coupons[j].Code })
	return coupons, nil
}

func (m *memStore) RecentLedger(ctx context.Context, userID, limit int) ([]model.LedgerEntry, error) {
	var entries []model.LedgerEntry
	for i := len(m.ledger) - 1; i >= 0 && len(entries) < limit; i-- {
		if m.ledger[i].UserID == userID {
			entries = append(entries, m.ledger[i])
		}
	}
	return entries, nil
}

func (m *memStore) UserForUpdate(ctx context.Context, userID int) (model.User, error) {
	return m.User(ctx, userID)
}

func (m *memStore) GroupForUpdate(ctx context.Context, groupID int) (model.Group, error) {
	g, ok := m.groups[groupID]
	if !ok {
		return model.Group{}, errs.ErrGroupNotFound
	}
	return *g, nil
}

func (m *memStore) GroupMembers(ctx context.Context, groupID int) ([]model.User, error) {
	var users []model.User
	for _, id := range m.members[groupID] {
		if u, ok := m.users[id]; ok {
			users = append(users, *u)
		}
	}
	return users, nil
}

func (m *memStore) MenuItemPrice(ctx context.Context, menuItemID int) (int64, error) {
	price, ok := m.menu[menuItemID]
	if !ok {
		return 0, errs.ErrItemNotFound
	}
	return price, nil
}

func (m *memStore) Restaurant(ctx context.Context, restaurantID int) (model.Restaurant, error) {
	r, ok := m.restaurants[restaurantID]
	if !ok {
		return model.Restaurant{RewardMultiplier: 1.0}, nil
	}
	return r, nil
}

func (m *memStore) UpsertOrder(ctx context.Context, groupID, userID int) (model.Order, error) {
	for _, o := range m.orders {
		if o.GroupID == groupID && o.UserID == userID {
			return *o, nil
		}
	}
	o := &model.Order{ID: m.nextOrder, GroupID: groupID, UserID: userID}
	m.nextOrder++
	m.orders[o.ID] = o
	return *o, nil
}

func (m *memStore) ReplaceOrderItems(ctx context.Context, orderID int, items []model.OrderItem) error {
	o, ok := m.orders[orderID]
	if !ok {
		return errs.ErrOrderNotFound
	}
	o.Items = append([]model.OrderItem(nil), items...)
	return nil
}

func (m *memStore) DeleteOrder(ctx context.Context, groupID, userID int) error {
	for id, o := range m.orders {
		if o.GroupID == groupID && o.UserID == userID {
			delete(m.orders, id)
			return nil
		}
	}
	return errs.ErrOrderNotFound
}

func (m *memStore) ConsumeCoupon(ctx context.Context, code string, userID int, now time.Time) (model.Coupon, error) {
	c, ok := m.coupons[code]
	if !ok || c.UserID != userID || c.Used || !now.Before(c.ExpiresAt) {
		return model.Coupon{}, errs.ErrInvalidOrExpiredCoupon
	}
	c.Used = true
	return *c, nil
}

func (m *memStore) CreateCoupon(ctx context.Context, coupon model.Coupon) (model.Coupon, error) {
	if _, exists := m.coupons[coupon.Code]; exists {
		return model.Coupon{}, fmt.Errorf("coupon code %q already exists", coupon.Code)
	}
	coupon.ID = len(m.coupons) + 1
	cp := coupon
	m.coupons[coupon.Code] = &cp
	return coupon, nil
}

func (m *memStore) AppendLedger(ctx context.Context, entry model.LedgerEntry) (model.LedgerEntry, error) {
	entry.ID = m.nextLedger
	m.nextLedger++
	m.ledger = append(m.ledger, entry)
	return entry, nil
}

func (m *memStore) AddUserPoints(ctx context.Context, userID, delta int) (int, error) {
	u, ok := m.users[userID]
	if !ok {
		return 0, errs.ErrUserNotFound
	}
	u.LoyaltyPoints += delta
	return u.LoyaltyPoints, nil
}

func (m *memStore) UpdateUserStreak(ctx context.Context, userID, streakCount int, lastOrderDate time.Time) error {
	u, ok := m.users[userID]
	if !ok {
		return errs.ErrUserNotFound
	}
	u.StreakCount = streakCount
	u.LastOrderDate = &lastOrderDate
	return nil
}

func (m *memStore) AddGroupTotal(ctx context.Context, groupID int, deltaCents int64) error {
	g, ok := m.groups[groupID]
	if !ok {
		return errs.ErrGroupNotFound
	}
	g.TotalCents += deltaCents
	return nil
}

func (m *memStore) SetGoalReached(ctx context.Context, groupID int) (bool, error) {
	g, ok := m.groups[groupID]
	if !ok {
		return false, errs.ErrGroupNotFound
	}
	if g.GoalReached {
		return false, nil
	}
	g.GoalReached = true
	return true, nil
}
