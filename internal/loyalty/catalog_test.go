package loyalty

import (
	"strings"
	"testing"
	"time"

	"github.com/dineup/dineup/internal/errs"
	"github.com/dineup/dineup/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogOffer(t *testing.T) {
	offer, err := CatalogOffer(model.PercentOff)
	require.NoError(t, err)
	assert.Equal(t, 500, offer.CostPoints)
	assert.Equal(t, 20.0, offer.Value)

	offer, err = CatalogOffer(model.FlatAmount)
	require.NoError(t, err)
	assert.Equal(t, 400, offer.CostPoints)
	assert.Equal(t, 4.0, offer.Value)

	_, err = CatalogOffer("mystery")
	assert.ErrorIs(t, err, errs.ErrInvalidCouponType)
}

func TestNewCouponCode(t *testing.T) {
	code := NewCouponCode("DISC")
	assert.True(t, strings.HasPrefix(code, "DISC-"))
	assert.Len(t, code, len("DISC-")+6)
	assert.Equal(t, code, strings.ToUpper(code))

	// codes must not collide trivially
	assert.NotEqual(t, code, NewCouponCode("DISC"))
}

func TestGoalCouponCode(t *testing.T) {
	code := GoalCouponCode("bobby")
	assert.True(t, strings.HasPrefix(code, "GROUP10-BOB-"))
	assert.Len(t, code, len("GROUP10-BOB-")+6)

	assert.True(t, strings.HasPrefix(GoalCouponCode("al"), "GROUP10-AL-"))

	// logins sharing a three-letter prefix must still get distinct codes
	assert.NotEqual(t, GoalCouponCode("alice"), GoalCouponCode("alicia"))
}

func TestGoalCouponExpiry(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, now.AddDate(0, 0, 7), GoalCouponExpiry(now))
}
