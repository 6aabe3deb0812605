package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dineup/dineup/internal/errs"
	"github.com/dineup/dineup/internal/model"
	"github.com/dineup/dineup/internal/settlement"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresStorage struct {
	db *pgxpool.Pool
}

func (store *PostgresStorage) initSchema(ctx context.Context) error {
	const initSchemaQuery = `
	CREATE TABLE IF NOT EXISTS users (
		id SERIAL PRIMARY KEY,
		login TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		loyalty_points INT NOT NULL DEFAULT 0 CHECK (loyalty_points >= 0),
		tier TEXT NOT NULL DEFAULT 'Bronze',
		streak_count INT NOT NULL DEFAULT 0,
		last_order_date TIMESTAMP,
		created_at TIMESTAMP DEFAULT NOW()
	);
	CREATE TABLE IF NOT EXISTS restaurants (
		id SERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		reward_multiplier DOUBLE PRECISION NOT NULL DEFAULT 1.0
	);
	CREATE TABLE IF NOT EXISTS menu_items (
		id SERIAL PRIMARY KEY,
		restaurant_id INT NOT NULL REFERENCES restaurants(id),
		name TEXT NOT NULL,
		price_cents BIGINT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS groups (
		id SERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		restaurant_id INT REFERENCES restaurants(id),
		next_order_time TIMESTAMP NOT NULL,
		total_cents BIGINT NOT NULL DEFAULT 0,
		goal_reached BOOLEAN NOT NULL DEFAULT FALSE
	);
	CREATE TABLE IF NOT EXISTS group_members (
		group_id INT NOT NULL REFERENCES groups(id),
		user_id INT NOT NULL REFERENCES users(id),
		PRIMARY KEY (group_id, user_id)
	);
	CREATE TABLE IF NOT EXISTS group_orders (
		id SERIAL PRIMARY KEY,
		group_id INT NOT NULL REFERENCES groups(id),
		user_id INT NOT NULL REFERENCES users(id),
		created_at TIMESTAMP DEFAULT NOW(),
		UNIQUE (group_id, user_id)
	);
	CREATE TABLE IF NOT EXISTS group_order_items (
		id SERIAL PRIMARY KEY,
		order_id INT NOT NULL REFERENCES group_orders(id) ON DELETE CASCADE,
		menu_item_id INT NOT NULL,
		quantity INT NOT NULL DEFAULT 1,
		special_instructions TEXT
	);
	CREATE TABLE IF NOT EXISTS coupons (
		id SERIAL PRIMARY KEY,
		code TEXT UNIQUE NOT NULL,
		user_id INT NOT NULL REFERENCES users(id),
		restaurant_id INT REFERENCES restaurants(id),
		type TEXT NOT NULL,
		value DOUBLE PRECISION NOT NULL,
		expires_at TIMESTAMP NOT NULL,
		used BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP DEFAULT NOW()
	);
	CREATE TABLE IF NOT EXISTS loyalty_ledger (
		id BIGSERIAL PRIMARY KEY,
		user_id INT NOT NULL,
		order_id INT,
		type TEXT NOT NULL,
		points INT NOT NULL,
		amount_cents BIGINT NOT NULL DEFAULT 0,
		metadata JSONB NOT NULL DEFAULT '{}',
		created_at TIMESTAMP DEFAULT NOW()
	);`

	_, err := store.db.Exec(ctx, initSchemaQuery)
	return err
}

func NewPostgresStorage(ctx context.Context, databaseURI string) (*PostgresStorage, error) {
	db, err := pgxpool.New(ctx, databaseURI)
	if err != nil {
		return nil, err
	}

	storage := &PostgresStorage{db: db}

	if err := storage.Ping(ctx); err != nil {
		return nil, err
	}

	if err := storage.initSchema(ctx); err != nil {
		return nil, err
	}

	return storage, nil
}

func (store *PostgresStorage) Ping(ctx context.Context) error {
	return store.db.Ping(ctx)
}

// InTx runs fn inside a single database transaction. All settlement
// mutations go through the settlement.Tx it hands to fn, so a failed
// settlement leaves no partial ledger rows or balance changes behind.
func (store *PostgresStorage) InTx(ctx context.Context, fn func(tx settlement.Tx) error) error {
	dbtx, err := store.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer dbtx.Rollback(ctx)

	if err := fn(&pgTx{tx: dbtx}); err != nil {
		return err
	}

	if err := dbtx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *PostgresStorage) CreateUser(ctx context.Context, login string, passwordHash string) error {
	const insertUserQuery = `INSERT INTO users (login, password_hash) VALUES ($1, $2)`

	_, err := s.db.Exec(ctx, insertUserQuery, login, passwordHash)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return errs.ErrLoginAlreadyExists
		}
		return err
	}

	return nil
}

func (s *PostgresStorage) GetUserByLogin(ctx context.Context, login string) (model.User, string, error) {
	const query = `
		SELECT id, login, loyalty_points, tier, streak_count, last_order_date, password_hash
		FROM users WHERE login = $1`

	var user model.User
	var hash string

	err := s.db.QueryRow(ctx, query, login).Scan(
		&user.ID, &user.Login, &user.LoyaltyPoints, &user.Tier, &user.StreakCount, &user.LastOrderDate, &hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, "", errs.ErrUserNotFound
		}
		return model.User{}, "", fmt.Errorf("get user by login: %w", err)
	}

	return user, hash, nil
}

func (s *PostgresStorage) GetUserByID(ctx context.Context, id int) (model.User, error) {
	return s.User(ctx, id)
}

func (s *PostgresStorage) User(ctx context.Context, id int) (model.User, error) {
	const query = `
		SELECT id, login, loyalty_points, tier, streak_count, last_order_date
		FROM users WHERE id = $1`

	var user model.User

	err := s.db.QueryRow(ctx, query, id).Scan(
		&user.ID, &user.Login, &user.LoyaltyPoints, &user.Tier, &user.StreakCount, &user.LastOrderDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, errs.ErrUserNotFound
		}
		return model.User{}, fmt.Errorf("get user by id: %w", err)
	}

	return user, nil
}

func (s *PostgresStorage) IsGroupMember(ctx context.Context, groupID, userID int) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM group_members WHERE group_id = $1 AND user_id = $2)`

	var member bool
	if err := s.db.QueryRow(ctx, query, groupID, userID).Scan(&member); err != nil {
		return false, fmt.Errorf("check membership: %w", err)
	}
	return member, nil
}

func (s *PostgresStorage) GroupOrders(ctx context.Context, groupID int) ([]model.Order, error) {
	const ordersQuery = `
		SELECT id, group_id, user_id, created_at
		FROM group_orders
		WHERE group_id = $1
		ORDER BY created_at ASC`

	rows, err := s.db.Query(ctx, ordersQuery, groupID)
	if err != nil {
		return nil, fmt.Errorf("get group orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(&o.ID, &o.GroupID, &o.UserID, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration: %w", err)
	}

	const itemsQuery = `
		SELECT i.order_id, i.menu_item_id, i.quantity, COALESCE(i.special_instructions, '')
		FROM group_order_items i
		JOIN group_orders o ON o.id = i.order_id
		WHERE o.group_id = $1
		ORDER BY i.id ASC`

	itemRows, err := s.db.Query(ctx, itemsQuery, groupID)
	if err != nil {
		return nil, fmt.Errorf("get order items: %w", err)
	}
	defer itemRows.Close()

	itemsByOrder := make(map[int][]model.OrderItem)
	for itemRows.Next() {
		var orderID int
		var item model.OrderItem
		if err := itemRows.Scan(&orderID, &item.MenuItemID, &item.Quantity, &item.Note); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		itemsByOrder[orderID] = append(itemsByOrder[orderID], item)
	}
	if err := itemRows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration: %w", err)
	}

	for i := range orders {
		orders[i].Items = itemsByOrder[orders[i].ID]
	}

	return orders, nil
}

func (s *PostgresStorage) OpenCoupons(ctx context.Context, userID int) ([]model.Coupon, error) {
	const query = `
		SELECT id, code, user_id, restaurant_id, type, value, expires_at, used, created_at
		FROM coupons
		WHERE user_id = $1 AND used = FALSE
		ORDER BY created_at DESC`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("get open coupons: %w", err)
	}
	defer rows.Close()

	var coupons []model.Coupon
	for rows.Next() {
		var c model.Coupon
		err := rows.Scan(&c.ID, &c.Code, &c.UserID, &c.RestaurantID, &c.Type, &c.Value, &c.ExpiresAt, &c.Used, &c.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan coupon: %w", err)
		}
		coupons = append(coupons, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration: %w", err)
	}

	return coupons, nil
}

func (s *PostgresStorage) RecentLedger(ctx context.Context, userID, limit int) ([]model.LedgerEntry, error) {
	const query = `
		SELECT id, user_id, order_id, type, points, amount_cents, metadata, created_at
		FROM loyalty_ledger
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`

	rows, err := s.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("get ledger: %w", err)
	}
	defer rows.Close()

	var entries []model.LedgerEntry
	for rows.Next() {
		var e model.LedgerEntry
		err := rows.Scan(&e.ID, &e.UserID, &e.OrderID, &e.Type, &e.Points, &e.AmountCents, &e.Metadata, &e.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration: %w", err)
	}

	return entries, nil
}

// pgTx implements settlement.Tx on one open pgx transaction.
type pgTx struct {
	tx pgx.Tx
}

func (t *pgTx) UserForUpdate(ctx context.Context, userID int) (model.User, error) {
	const query = `
		SELECT id, login, loyalty_points, tier, streak_count, last_order_date
		FROM users WHERE id = $1
		FOR UPDATE`

	var user model.User
	err := t.tx.QueryRow(ctx, query, userID).Scan(
		&user.ID, &user.Login, &user.LoyaltyPoints, &user.Tier, &user.StreakCount, &user.LastOrderDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, errs.ErrUserNotFound
		}
		return model.User{}, fmt.Errorf("lock user: %w", err)
	}
	return user, nil
}

func (t *pgTx) GroupForUpdate(ctx context.Context, groupID int) (model.Group, error) {
	const query = `
		SELECT id, name, COALESCE(restaurant_id, 0), next_order_time, total_cents, goal_reached
		FROM groups WHERE id = $1
		FOR UPDATE`

	var group model.Group
	err := t.tx.QueryRow(ctx, query, groupID).Scan(
		&group.ID, &group.Name, &group.RestaurantID, &group.NextOrderTime, &group.TotalCents, &group.GoalReached)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Group{}, errs.ErrGroupNotFound
		}
		return model.Group{}, fmt.Errorf("lock group: %w", err)
	}
	return group, nil
}

func (t *pgTx) GroupMembers(ctx context.Context, groupID int) ([]model.User, error) {
	const query = `
		SELECT u.id, u.login, u.loyalty_points, u.tier, u.streak_count, u.last_order_date
		FROM users u
		JOIN group_members gm ON gm.user_id = u.id
		WHERE gm.group_id = $1
		ORDER BY u.id ASC`

	rows, err := t.tx.Query(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("get group members: %w", err)
	}
	defer rows.Close()

	var members []model.User
	for rows.Next() {
		var u model.User
		err := rows.Scan(&u.ID, &u.Login, &u.LoyaltyPoints, &u.Tier, &u.StreakCount, &u.LastOrderDate)
		if err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration: %w", err)
	}

	return members, nil
}

func (t *pgTx) MenuItemPrice(ctx context.Context, menuItemID int) (int64, error) {
	const query = `SELECT price_cents FROM menu_items WHERE id = $1`

	var priceCents int64
	err := t.tx.QueryRow(ctx, query, menuItemID).Scan(&priceCents)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, errs.ErrItemNotFound
		}
		return 0, fmt.Errorf("get menu item price: %w", err)
	}
	return priceCents, nil
}

func (t *pgTx) Restaurant(ctx context.Context, restaurantID int) (model.Restaurant, error) {
	const query = `SELECT id, name, reward_multiplier FROM restaurants WHERE id = $1`

	var r model.Restaurant
	err := t.tx.QueryRow(ctx, query, restaurantID).Scan(&r.ID, &r.Name, &r.RewardMultiplier)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// groups without a partner restaurant settle at the default rate
			return model.Restaurant{RewardMultiplier: 1.0}, nil
		}
		return model.Restaurant{}, fmt.Errorf("get restaurant: %w", err)
	}
	return r, nil
}

func (t *pgTx) UpsertOrder(ctx context.Context, groupID, userID int) (model.Order, error) {
	const query = `
		INSERT INTO group_orders (group_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (group_id, user_id) DO UPDATE SET group_id = EXCLUDED.group_id
		RETURNING id, created_at`

	order := model.Order{GroupID: groupID, UserID: userID}
	err := t.tx.QueryRow(ctx, query, groupID, userID).Scan(&order.ID, &order.CreatedAt)
	if err != nil {
		return model.Order{}, fmt.Errorf("upsert order: %w", err)
	}
	return order, nil
}

func (t *pgTx) ReplaceOrderItems(ctx context.Context, orderID int, items []model.OrderItem) error {
	const deleteQuery = `DELETE FROM group_order_items WHERE order_id = $1`
	const insertQuery = `
		INSERT INTO group_order_items (order_id, menu_item_id, quantity, special_instructions)
		VALUES ($1, $2, $3, $4)`

	if _, err := t.tx.Exec(ctx, deleteQuery, orderID); err != nil {
		return fmt.Errorf("clear order items: %w", err)
	}

	for _, item := range items {
		qty := item.Quantity
		if qty < 1 {
			qty = 1
		}
		if _, err := t.tx.Exec(ctx, insertQuery, orderID, item.MenuItemID, qty, item.Note); err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}
	return nil
}

func (t *pgTx) DeleteOrder(ctx context.Context, groupID, userID int) error {
	const query = `DELETE FROM group_orders WHERE group_id = $1 AND user_id = $2`

	cmdTag, err := t.tx.Exec(ctx, query, groupID, userID)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return errs.ErrOrderNotFound
	}
	return nil
}

func (t *pgTx) ConsumeCoupon(ctx context.Context, code string, userID int, now time.Time) (model.Coupon, error) {
	const query = `
		UPDATE coupons
		SET used = TRUE
		WHERE code = $1 AND user_id = $2 AND used = FALSE AND expires_at > $3
		RETURNING id, code, user_id, restaurant_id, type, value, expires_at, used, created_at`

	var c model.Coupon
	err := t.tx.QueryRow(ctx, query, code, userID, now).Scan(
		&c.ID, &c.Code, &c.UserID, &c.RestaurantID, &c.Type, &c.Value, &c.ExpiresAt, &c.Used, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Coupon{}, errs.ErrInvalidOrExpiredCoupon
		}
		return model.Coupon{}, fmt.Errorf("consume coupon: %w", err)
	}
	return c, nil
}

func (t *pgTx) CreateCoupon(ctx context.Context, coupon model.Coupon) (model.Coupon, error) {
	const query = `
		INSERT INTO coupons (code, user_id, restaurant_id, type, value, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := t.tx.QueryRow(ctx, query,
		coupon.Code, coupon.UserID, coupon.RestaurantID, coupon.Type, coupon.Value, coupon.ExpiresAt).
		Scan(&coupon.ID, &coupon.CreatedAt)
	if err != nil {
		return model.Coupon{}, fmt.Errorf("create coupon: %w", err)
	}
	return coupon, nil
}

func (t *pgTx) AppendLedger(ctx context.Context, entry model.LedgerEntry) (model.LedgerEntry, error) {
	const query = `
		INSERT INTO loyalty_ledger (user_id, order_id, type, points, amount_cents, metadata)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	metadata := entry.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}

	err := t.tx.QueryRow(ctx, query,
		entry.UserID, entry.OrderID, entry.Type, entry.Points, entry.AmountCents, metadata).
		Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return model.LedgerEntry{}, fmt.Errorf("append ledger entry: %w", err)
	}
	return entry, nil
}

func (t *pgTx) AddUserPoints(ctx context.Context, userID, delta int) (int, error) {
	const query = `
		UPDATE users
		SET loyalty_points = loyalty_points + $2
		WHERE id = $1
		RETURNING loyalty_points`

	var balance int
	err := t.tx.QueryRow(ctx, query, userID, delta).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, errs.ErrUserNotFound
		}
		return 0, fmt.Errorf("update user points: %w", err)
	}
	return balance, nil
}

func (t *pgTx) UpdateUserStreak(ctx context.Context, userID, streakCount int, lastOrderDate time.Time) error {
	const query = `UPDATE users SET streak_count = $2, last_order_date = $3 WHERE id = $1`

	if _, err := t.tx.Exec(ctx, query, userID, streakCount, lastOrderDate); err != nil {
		return fmt.Errorf("update user streak: %w", err)
	}
	return nil
}

func (t *pgTx) AddGroupTotal(ctx context.Context, groupID int, deltaCents int64) error {
	const query = `UPDATE groups SET total_cents = total_cents + $2 WHERE id = $1`

	if _, err := t.tx.Exec(ctx, query, groupID, deltaCents); err != nil {
		return fmt.Errorf("update group total: %w", err)
	}
	return nil
}

func (t *pgTx) SetGoalReached(ctx context.Context, groupID int) (bool, error) {
	const query = `UPDATE groups SET goal_reached = TRUE WHERE id = $1 AND goal_reached = FALSE`

	cmdTag, err := t.tx.Exec(ctx, query, groupID)
	if err != nil {
		return false, fmt.Errorf("set goal reached: %w", err)
	}
	return cmdTag.RowsAffected() == 1, nil
}
