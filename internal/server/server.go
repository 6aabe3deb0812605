package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dineup/dineup/internal/config"
	"github.com/dineup/dineup/internal/deps"
	"github.com/dineup/dineup/internal/errs"
	"github.com/dineup/dineup/internal/middleware"
	"github.com/dineup/dineup/internal/model"
	"github.com/dineup/dineup/internal/settlement"
	chiMiddleware "github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"
)

type Storage interface {
	CreateUser(ctx context.Context, login, passwordHash string) error
	GetUserByLogin(ctx context.Context, login string) (model.User, string, error)
	GetUserByID(ctx context.Context, id int) (model.User, error)
}

type Settler interface {
	SettleGroupOrder(ctx context.Context, groupID, userID int, in settlement.OrderInput) (model.SettlementResult, error)
	SettleImmediateOrder(ctx context.Context, groupID, userID int, in settlement.OrderInput) (model.SettlementResult, error)
	GroupOrders(ctx context.Context, groupID, userID int) ([]model.Order, error)
	DeleteOrder(ctx context.Context, groupID, userID int) error
	QuoteRedemption(ctx context.Context, userID, pointsToUse int, orderSubtotalCents int64) (model.Quote, error)
	RedeemPointsDirect(ctx context.Context, userID, pointsToUse int, orderID *int, reason string) (model.LedgerEntry, error)
	RedeemCoupon(ctx context.Context, userID int, couponType model.CouponType, restaurantID *int) (model.Coupon, int, error)
	RewardsSummary(ctx context.Context, userID int) (model.RewardsSummary, error)
}

type Server struct {
	storage Storage
	settler Settler
	config  *config.Config
	deps    *deps.Deps
}

func NewServer(storage Storage, settler Settler, config *config.Config, deps *deps.Deps) *Server {
	return &Server{
		storage: storage,
		settler: settler,
		config:  config,
		deps:    deps,
	}
}

func (srv *Server) buildRouter() http.Handler {
	router := chi.NewRouter()
	router.Use(chiMiddleware.StripSlashes)
	router.Use(middleware.LogMiddleware(srv.deps.Logger))
	router.Use(middleware.DecompressMiddleware)
	router.Use(middleware.CompressMiddleware(srv.deps.Logger))

	router.Post("/api/user/register", srv.RegisterHandler)
	router.Post("/api/user/login", srv.LoginHandler)

	router.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(srv.storage, srv.deps.TokenManager))

		r.Get("/api/groups/{groupID}/orders", srv.GetGroupOrdersHandler)
		r.Post("/api/groups/{groupID}/orders", srv.PlaceGroupOrderHandler)
		r.Delete("/api/groups/{groupID}/orders", srv.DeleteOrderHandler)
		r.Post("/api/groups/{groupID}/orders/immediate", srv.PlaceImmediateOrderHandler)

		r.Post("/api/rewards/quote", srv.QuoteRedemptionHandler)
		r.Post("/api/rewards/redeem", srv.RedeemPointsHandler)
		r.Post("/api/rewards/redeem-coupon", srv.RedeemCouponHandler)
		r.Get("/api/rewards/summary", srv.RewardsSummaryHandler)
	})

	return router
}

func (srv *Server) Run(ctx context.Context) error {
	router := srv.buildRouter()

	server := &http.Server{
		Addr:    srv.config.RunAddress,
		Handler: router,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			srv.deps.Logger.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func (s *Server) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var creds model.Credentials

	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if creds.Login == "" || creds.Password == "" {
		http.Error(w, "login and password required", http.StatusBadRequest)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "hash error", http.StatusInternalServerError)
		return
	}

	err = s.storage.CreateUser(r.Context(), creds.Login, string(hash))
	if err != nil {
		if errors.Is(err, errs.ErrLoginAlreadyExists) {
			http.Error(w, "login taken", http.StatusConflict)
			return
		}
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}

	user, _, err := s.storage.GetUserByLogin(r.Context(), creds.Login)
	if err != nil {
		http.Error(w, "failed to fetch user", http.StatusInternalServerError)
		return
	}

	token, err := s.deps.TokenManager.GenerateToken(user.ID)
	if err != nil {
		http.Error(w, "token error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Authorization", "Bearer "+token)
	w.WriteHeader(http.StatusOK)
}

func (s *Server) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var creds model.Credentials

	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if creds.Login == "" || creds.Password == "" {
		http.Error(w, "login and password required", http.StatusBadRequest)
		return
	}

	user, hash, err := s.storage.GetUserByLogin(r.Context(), creds.Login)
	if err != nil {
		if errors.Is(err, errs.ErrUserNotFound) {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(creds.Password)); err != nil {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := s.deps.TokenManager.GenerateToken(user.ID)
	if err != nil {
		http.Error(w, "token error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Authorization", "Bearer "+token)
	w.WriteHeader(http.StatusOK)
}

func (s *Server) GetGroupOrdersHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(middleware.UserContextKey).(model.User)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	groupID, err := strconv.Atoi(chi.URLParam(r, "groupID"))
	if err != nil {
		http.Error(w, "invalid group id", http.StatusBadRequest)
		return
	}

	orders, err := s.settler.GroupOrders(r.Context(), groupID, user.ID)
	if err != nil {
		s.writeSettlementError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(orders); err != nil {
		http.Error(w, "encode error", http.StatusInternalServerError)
	}
}

func (s *Server) PlaceGroupOrderHandler(w http.ResponseWriter, r *http.Request) {
	s.placeOrder(w, r, s.settler.SettleGroupOrder)
}

func (s *Server) PlaceImmediateOrderHandler(w http.ResponseWriter, r *http.Request) {
	s.placeOrder(w, r, s.settler.SettleImmediateOrder)
}

type settleFunc func(ctx context.Context, groupID, userID int, in settlement.OrderInput) (model.SettlementResult, error)

func (s *Server) placeOrder(w http.ResponseWriter, r *http.Request, settle settleFunc) {
	user, ok := r.Context().Value(middleware.UserContextKey).(model.User)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	groupID, err := strconv.Atoi(chi.URLParam(r, "groupID"))
	if err != nil {
		http.Error(w, "invalid group id", http.StatusBadRequest)
		return
	}

	var req model.OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if len(req.Items) == 0 {
		http.Error(w, "items required", http.StatusBadRequest)
		return
	}

	in := settlement.OrderInput{
		Items:        req.Items,
		CouponCode:   req.CouponCode,
		RedeemPoints: req.RedeemPoints,
	}
	if req.NextOrderTime != "" {
		parsed, err := time.Parse(time.RFC3339, req.NextOrderTime)
		if err != nil {
			http.Error(w, "invalid nextOrderTime", http.StatusBadRequest)
			return
		}
		utc := parsed.UTC()
		in.NextOrderTime = &utc
	}

	result, err := settle(r.Context(), groupID, user.ID, in)
	if err != nil {
		s.writeSettlementError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(result); err != nil {
		s.deps.Logger.Errorf("encode settlement result: %v", err)
	}
}

func (s *Server) DeleteOrderHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(middleware.UserContextKey).(model.User)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	groupID, err := strconv.Atoi(chi.URLParam(r, "groupID"))
	if err != nil {
		http.Error(w, "invalid group id", http.StatusBadRequest)
		return
	}

	if err := s.settler.DeleteOrder(r.Context(), groupID, user.ID); err != nil {
		s.writeSettlementError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (s *Server) QuoteRedemptionHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(middleware.UserContextKey).(model.User)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req model.QuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	quote, err := s.settler.QuoteRedemption(r.Context(), user.ID, req.PointsToUse, req.OrderSubtotalCents)
	if err != nil {
		s.writeSettlementError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(quote); err != nil {
		http.Error(w, "encode error", http.StatusInternalServerError)
	}
}

func (s *Server) RedeemPointsHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(middleware.UserContextKey).(model.User)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req model.RedeemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	entry, err := s.settler.RedeemPointsDirect(r.Context(), user.ID, req.PointsToUse, req.OrderID, req.Reason)
	if err != nil {
		s.writeSettlementError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(entry); err != nil {
		http.Error(w, "encode error", http.StatusInternalServerError)
	}
}

func (s *Server) RedeemCouponHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(middleware.UserContextKey).(model.User)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req model.RedeemCouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if req.Type == "" {
		http.Error(w, "missing coupon type", http.StatusBadRequest)
		return
	}

	coupon, balance, err := s.settler.RedeemCoupon(r.Context(), user.ID, model.CouponType(req.Type), req.RestaurantID)
	if err != nil {
		s.writeSettlementError(w, err)
		return
	}

	resp := struct {
		Coupon          model.Coupon `json:"coupon"`
		RemainingPoints int          `json:"remaining_points"`
	}{Coupon: coupon, RemainingPoints: balance}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.deps.Logger.Errorf("encode coupon response: %v", err)
	}
}

func (s *Server) RewardsSummaryHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(middleware.UserContextKey).(model.User)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	summary, err := s.settler.RewardsSummary(r.Context(), user.ID)
	if err != nil {
		s.writeSettlementError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(summary); err != nil {
		http.Error(w, "encode error", http.StatusInternalServerError)
	}
}

func (s *Server) writeSettlementError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errs.ErrNotAMember):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, errs.ErrOrderWindowExpired),
		errors.Is(err, errs.ErrInvalidOrExpiredCoupon),
		errors.Is(err, errs.ErrInvalidCouponType),
		errors.Is(err, errs.ErrMinRedeemNotMet):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, errs.ErrInsufficientPoints):
		http.Error(w, err.Error(), http.StatusPaymentRequired)
	case errors.Is(err, errs.ErrItemNotFound),
		errors.Is(err, errs.ErrGroupNotFound),
		errors.Is(err, errs.ErrOrderNotFound),
		errors.Is(err, errs.ErrUserNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		s.deps.Logger.Errorf("settlement failed: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
