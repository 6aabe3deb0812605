package errs

import "errors"

var ErrUserNotFound = errors.New("user not found")
var ErrGroupNotFound = errors.New("group not found")
var ErrOrderNotFound = errors.New("order not found")
var ErrItemNotFound = errors.New("menu item not found")
var ErrNotAMember = errors.New("not a member of this group")
var ErrOrderWindowExpired = errors.New("group order time has expired")
var ErrInvalidOrExpiredCoupon = errors.New("invalid or expired coupon code")
var ErrInvalidCouponType = errors.New("invalid coupon type")
var ErrInsufficientPoints = errors.New("not enough loyalty points")
var ErrMinRedeemNotMet = errors.New("points below redemption minimum")
var ErrLoginAlreadyExists = errors.New("login already exists")
var ErrInvalidToken = errors.New("invalid token")
