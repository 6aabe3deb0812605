package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dineup/dineup/internal/auth"
	"github.com/dineup/dineup/internal/config"
	"github.com/dineup/dineup/internal/deps"
	"github.com/dineup/dineup/internal/errs"
	"github.com/dineup/dineup/internal/mocks"
	"github.com/dineup/dineup/internal/model"
	"github.com/dineup/dineup/internal/settlement"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"
)

func newTestServer(t *testing.T) (*Server, *mocks.MockStorage, *mocks.MockSettler) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	storage := mocks.NewMockStorage(ctrl)
	settler := mocks.NewMockSettler(ctrl)
	cfg := &config.Config{RunAddress: "localhost:8080"}
	d := &deps.Deps{
		Logger:       zaptest.NewLogger(t).Sugar(),
		TokenManager: auth.NewTokenManager("testsecret"),
	}
	return NewServer(storage, settler, cfg, d), storage, settler
}

func bearerFor(t *testing.T, srv *Server, userID int) string {
	t.Helper()
	token, err := srv.deps.TokenManager.GenerateToken(userID)
	require.NoError(t, err)
	return "Bearer " + token
}

// authorize wires the middleware lookup for one authenticated request.
func authorize(storage *mocks.MockStorage, user model.User) {
	storage.EXPECT().GetUserByID(gomock.Any(), user.ID).Return(user, nil)
}

func doJSON(t *testing.T, router http.Handler, method, target, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", bearer)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRegisterHandler(t *testing.T) {
	srv, storage, _ := newTestServer(t)
	router := srv.buildRouter()

	storage.EXPECT().CreateUser(gomock.Any(), "alice", gomock.Any()).Return(nil)
	storage.EXPECT().GetUserByLogin(gomock.Any(), "alice").
		Return(model.User{ID: 1, Login: "alice"}, "", nil)

	rec := doJSON(t, router, http.MethodPost, "/api/user/register", "",
		model.Credentials{Login: "alice", Password: "hunter2"})

	assert.Equal(t, http.StatusOK, rec.Code)
	header := rec.Header().Get("Authorization")
	require.True(t, strings.HasPrefix(header, "Bearer "))

	userID, err := srv.deps.TokenManager.ParseToken(strings.TrimPrefix(header, "Bearer "))
	require.NoError(t, err)
	assert.Equal(t, 1, userID)
}

func TestRegisterHandlerLoginTaken(t *testing.T) {
	srv, storage, _ := newTestServer(t)
	router := srv.buildRouter()

	storage.EXPECT().CreateUser(gomock.Any(), "alice", gomock.Any()).
		Return(errs.ErrLoginAlreadyExists)

	rec := doJSON(t, router, http.MethodPost, "/api/user/register", "",
		model.Credentials{Login: "alice", Password: "hunter2"})

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRegisterHandlerMissingFields(t *testing.T) {
	srv, _, _ := newTestServer(t)
	router := srv.buildRouter()

	rec := doJSON(t, router, http.MethodPost, "/api/user/register", "",
		model.Credentials{Login: "alice"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginHandler(t *testing.T) {
	srv, storage, _ := newTestServer(t)
	router := srv.buildRouter()

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)
	storage.EXPECT().GetUserByLogin(gomock.Any(), "alice").
		Return(model.User{ID: 7, Login: "alice"}, string(hash), nil)

	rec := doJSON(t, router, http.MethodPost, "/api/user/login", "",
		model.Credentials{Login: "alice", Password: "hunter2"})

	assert.Equal(t, http.StatusOK, rec.Code)

	header := rec.Header().Get("Authorization")
	userID, err := srv.deps.TokenManager.ParseToken(strings.TrimPrefix(header, "Bearer "))
	require.NoError(t, err)
	assert.Equal(t, 7, userID)
}

func TestLoginHandlerWrongPassword(t *testing.T) {
	srv, storage, _ := newTestServer(t)
	router := srv.buildRouter()

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)
	storage.EXPECT().GetUserByLogin(gomock.Any(), "alice").
		Return(model.User{ID: 7, Login: "alice"}, string(hash), nil)

	rec := doJSON(t, router, http.MethodPost, "/api/user/login", "",
		model.Credentials{Login: "alice", Password: "wrong"})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginHandlerUnknownUser(t *testing.T) {
	srv, storage, _ := newTestServer(t)
	router := srv.buildRouter()

	storage.EXPECT().GetUserByLogin(gomock.Any(), "ghost").
		Return(model.User{}, "", errs.ErrUserNotFound)

	rec := doJSON(t, router, http.MethodPost, "/api/user/login", "",
		model.Credentials{Login: "ghost", Password: "hunter2"})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthorizedRoutesRejectMissingToken(t *testing.T) {
	srv, _, _ := newTestServer(t)
	router := srv.buildRouter()

	rec := doJSON(t, router, http.MethodGet, "/api/rewards/summary", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/rewards/summary", "Bearer not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPlaceGroupOrderHandler(t *testing.T) {
	srv, storage, settler := newTestServer(t)
	router := srv.buildRouter()
	user := model.User{ID: 7, Login: "alice"}
	authorize(storage, user)

	items := []model.OrderItem{{MenuItemID: 3, Quantity: 1}}
	settler.EXPECT().
		SettleGroupOrder(gomock.Any(), 42, 7, gomock.Any()).
		DoAndReturn(func(_ interface{}, _, _ int, in settlement.OrderInput) (model.SettlementResult, error) {
			assert.Equal(t, items, in.Items)
			assert.Equal(t, "SAVE20", in.CouponCode)
			assert.Equal(t, 200, in.RedeemPoints)
			require.NotNil(t, in.NextOrderTime)
			assert.Equal(t, time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC), *in.NextOrderTime)
			return model.SettlementResult{
				Order:          model.Order{ID: 1, GroupID: 42, UserID: 7, Items: items},
				EarnedPoints:   44,
				RedeemedPoints: 200,
				NewBalance:     144,
				PoolSize:       3,
			}, nil
		})

	rec := doJSON(t, router, http.MethodPost, "/api/groups/42/orders", bearerFor(t, srv, 7),
		model.OrderRequest{
			Items:         items,
			CouponCode:    "SAVE20",
			RedeemPoints:  200,
			NextOrderTime: "2025-06-10T15:00:00Z",
		})

	require.Equal(t, http.StatusCreated, rec.Code)

	var result model.SettlementResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))
	assert.Equal(t, 44, result.EarnedPoints)
	assert.Equal(t, 200, result.RedeemedPoints)
	assert.Equal(t, 3, result.PoolSize)
}

func TestPlaceGroupOrderHandlerInvalidBody(t *testing.T) {
	srv, storage, _ := newTestServer(t)
	router := srv.buildRouter()
	authorize(storage, model.User{ID: 7})

	rec := doJSON(t, router, http.MethodPost, "/api/groups/42/orders", bearerFor(t, srv, 7),
		model.OrderRequest{})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlaceGroupOrderHandlerBadNextOrderTime(t *testing.T) {
	srv, storage, _ := newTestServer(t)
	router := srv.buildRouter()
	authorize(storage, model.User{ID: 7})

	rec := doJSON(t, router, http.MethodPost, "/api/groups/42/orders", bearerFor(t, srv, 7),
		model.OrderRequest{
			Items:         []model.OrderItem{{MenuItemID: 1, Quantity: 1}},
			NextOrderTime: "tomorrow-ish",
		})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlaceGroupOrderHandlerErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not a member", errs.ErrNotAMember, http.StatusForbidden},
		{"window expired", errs.ErrOrderWindowExpired, http.StatusBadRequest},
		{"bad coupon", errs.ErrInvalidOrExpiredCoupon, http.StatusBadRequest},
		{"redeem below minimum", errs.ErrMinRedeemNotMet, http.StatusBadRequest},
		{"insufficient points", errs.ErrInsufficientPoints, http.StatusPaymentRequired},
		{"unknown item", errs.ErrItemNotFound, http.StatusNotFound},
		{"unknown group", errs.ErrGroupNotFound, http.StatusNotFound},
		{"storage failure", errors.New("pg down"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, storage, settler := newTestServer(t)
			router := srv.buildRouter()
			authorize(storage, model.User{ID: 7})

			settler.EXPECT().
				SettleGroupOrder(gomock.Any(), 42, 7, gomock.Any()).
				Return(model.SettlementResult{}, tt.err)

			rec := doJSON(t, router, http.MethodPost, "/api/groups/42/orders", bearerFor(t, srv, 7),
				model.OrderRequest{Items: []model.OrderItem{{MenuItemID: 1, Quantity: 1}}})

			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestPlaceImmediateOrderHandler(t *testing.T) {
	srv, storage, settler := newTestServer(t)
	router := srv.buildRouter()
	authorize(storage, model.User{ID: 7})

	settler.EXPECT().
		SettleImmediateOrder(gomock.Any(), 42, 7, gomock.Any()).
		Return(model.SettlementResult{EarnedPoints: 50, NewBalance: 50, PoolSize: 1}, nil)

	rec := doJSON(t, router, http.MethodPost, "/api/groups/42/orders/immediate", bearerFor(t, srv, 7),
		model.OrderRequest{Items: []model.OrderItem{{MenuItemID: 3, Quantity: 1}}})

	require.Equal(t, http.StatusCreated, rec.Code)

	var result model.SettlementResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))
	assert.Equal(t, 1, result.PoolSize)
	assert.Equal(t, 50, result.EarnedPoints)
}

func TestGetGroupOrdersHandler(t *testing.T) {
	srv, storage, settler := newTestServer(t)
	router := srv.buildRouter()
	authorize(storage, model.User{ID: 7})

	settler.EXPECT().
		GroupOrders(gomock.Any(), 42, 7).
		Return([]model.Order{
			{ID: 1, GroupID: 42, UserID: 7, Items: []model.OrderItem{{MenuItemID: 1, Quantity: 2}}},
			{ID: 2, GroupID: 42, UserID: 8, Items: []model.OrderItem{{MenuItemID: 2, Quantity: 1}}},
		}, nil)

	rec := doJSON(t, router, http.MethodGet, "/api/groups/42/orders", bearerFor(t, srv, 7), nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var orders []model.Order
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&orders))
	require.Len(t, orders, 2)
	assert.Equal(t, 7, orders[0].UserID)
}

func TestGetGroupOrdersHandlerBadGroupID(t *testing.T) {
	srv, storage, _ := newTestServer(t)
	router := srv.buildRouter()
	authorize(storage, model.User{ID: 7})

	rec := doJSON(t, router, http.MethodGet, "/api/groups/nope/orders", bearerFor(t, srv, 7), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteOrderHandler(t *testing.T) {
	srv, storage, settler := newTestServer(t)
	router := srv.buildRouter()
	authorize(storage, model.User{ID: 7})

	settler.EXPECT().DeleteOrder(gomock.Any(), 42, 7).Return(nil)

	rec := doJSON(t, router, http.MethodDelete, "/api/groups/42/orders", bearerFor(t, srv, 7), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDeleteOrderHandlerNotFound(t *testing.T) {
	srv, storage, settler := newTestServer(t)
	router := srv.buildRouter()
	authorize(storage, model.User{ID: 7})

	settler.EXPECT().DeleteOrder(gomock.Any(), 42, 7).Return(errs.ErrOrderNotFound)

	rec := doJSON(t, router, http.MethodDelete, "/api/groups/42/orders", bearerFor(t, srv, 7), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestQuoteRedemptionHandler(t *testing.T) {
	srv, storage, settler := newTestServer(t)
	router := srv.buildRouter()
	authorize(storage, model.User{ID: 7})

	settler.EXPECT().
		QuoteRedemption(gomock.Any(), 7, 200, int64(10000)).
		Return(model.Quote{
			Accepted:          true,
			RequestedPoints:   200,
			CreditValueCents:  200,
			FinalPayableCents: 9800,
			UserBalanceAfter:  300,
			MinPoints:         200,
			ConversionRate:    "100 points = $1",
		}, nil)

	rec := doJSON(t, router, http.MethodPost, "/api/rewards/quote", bearerFor(t, srv, 7),
		model.QuoteRequest{PointsToUse: 200, OrderSubtotalCents: 10000})

	require.Equal(t, http.StatusOK, rec.Code)

	var quote model.Quote
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&quote))
	assert.True(t, quote.Accepted)
	assert.Equal(t, int64(9800), quote.FinalPayableCents)
}

func TestRedeemPointsHandler(t *testing.T) {
	srv, storage, settler := newTestServer(t)
	router := srv.buildRouter()
	authorize(storage, model.User{ID: 7})

	settler.EXPECT().
		RedeemPointsDirect(gomock.Any(), 7, 300, nil, "").
		Return(model.LedgerEntry{
			UserID: 7, Type: model.LedgerRedeem, Points: -300, AmountCents: 300,
			Metadata: map[string]any{"reason": "manual"},
		}, nil)

	rec := doJSON(t, router, http.MethodPost, "/api/rewards/redeem", bearerFor(t, srv, 7),
		model.RedeemRequest{PointsToUse: 300})

	require.Equal(t, http.StatusOK, rec.Code)

	var entry model.LedgerEntry
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&entry))
	assert.Equal(t, -300, entry.Points)
	assert.Equal(t, model.LedgerRedeem, entry.Type)
}

func TestRedeemPointsHandlerBelowMinimum(t *testing.T) {
	srv, storage, settler := newTestServer(t)
	router := srv.buildRouter()
	authorize(storage, model.User{ID: 7})

	settler.EXPECT().
		RedeemPointsDirect(gomock.Any(), 7, 199, nil, "").
		Return(model.LedgerEntry{}, errs.ErrMinRedeemNotMet)

	rec := doJSON(t, router, http.MethodPost, "/api/rewards/redeem", bearerFor(t, srv, 7),
		model.RedeemRequest{PointsToUse: 199})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRedeemCouponHandler(t *testing.T) {
	srv, storage, settler := newTestServer(t)
	router := srv.buildRouter()
	authorize(storage, model.User{ID: 7})

	settler.EXPECT().
		RedeemCoupon(gomock.Any(), 7, model.PercentOff, nil).
		Return(model.Coupon{Code: "DISC-3FA09C", Type: model.PercentOff, Value: 20}, 100, nil)

	rec := doJSON(t, router, http.MethodPost, "/api/rewards/redeem-coupon", bearerFor(t, srv, 7),
		model.RedeemCouponRequest{Type: "percent_off"})

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Coupon          model.Coupon `json:"coupon"`
		RemainingPoints int          `json:"remaining_points"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "DISC-3FA09C", resp.Coupon.Code)
	assert.Equal(t, 100, resp.RemainingPoints)
}

func TestRedeemCouponHandlerMissingType(t *testing.T) {
	srv, storage, _ := newTestServer(t)
	router := srv.buildRouter()
	authorize(storage, model.User{ID: 7})

	rec := doJSON(t, router, http.MethodPost, "/api/rewards/redeem-coupon", bearerFor(t, srv, 7),
		model.RedeemCouponRequest{})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRedeemCouponHandlerUnknownType(t *testing.T) {
	srv, storage, settler := newTestServer(t)
	router := srv.buildRouter()
	authorize(storage, model.User{ID: 7})

	settler.EXPECT().
		RedeemCoupon(gomock.Any(), 7, model.CouponType("mystery"), nil).
		Return(model.Coupon{}, 0, errs.ErrInvalidCouponType)

	rec := doJSON(t, router, http.MethodPost, "/api/rewards/redeem-coupon", bearerFor(t, srv, 7),
		model.RedeemCouponRequest{Type: "mystery"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRewardsSummaryHandler(t *testing.T) {
	srv, storage, settler := newTestServer(t)
	router := srv.buildRouter()
	authorize(storage, model.User{ID: 7})

	settler.EXPECT().
		RewardsSummary(gomock.Any(), 7).
		Return(model.RewardsSummary{
			Points: 500,
			Tier:   model.Silver,
			Streak: 4,
			Coupons: []model.Coupon{
				{Code: "SAVE20", Type: model.PercentOff, Value: 20},
			},
		}, nil)

	rec := doJSON(t, router, http.MethodGet, "/api/rewards/summary", bearerFor(t, srv, 7), nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var summary model.RewardsSummary
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&summary))
	assert.Equal(t, 500, summary.Points)
	assert.Equal(t, model.Silver, summary.Tier)
	require.Len(t, summary.Coupons, 1)
}
