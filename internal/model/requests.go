package model

type Credentials struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type OrderRequest struct {
	Items         []OrderItem `json:"items"`
	CouponCode    string      `json:"coupon_code,omitempty"`
	RedeemPoints  int         `json:"redeemPoints,omitempty"`
	NextOrderTime string      `json:"nextOrderTime,omitempty"`
}

type QuoteRequest struct {
	PointsToUse        int   `json:"points_to_use"`
	OrderSubtotalCents int64 `json:"order_subtotal_cents"`
}

type RedeemRequest struct {
	PointsToUse int    `json:"points_to_use"`
	OrderID     *int   `json:"order_id,omitempty"`
	Reason      string `json:"reason,omitempty"`
}

type RedeemCouponRequest struct {
	Type         string `json:"type"`
	RestaurantID *int   `json:"restaurant_id,omitempty"`
}
