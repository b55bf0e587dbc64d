package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/travora/booking-api/internal/model"
)

func percentVoucher(code string, percent int64) *model.Voucher {
	return &model.Voucher{
		Code:          code,
		DiscountType:  model.DiscountPercentage,
		DiscountValue: percent,
		ValidFrom:     time.Now().UTC().Add(-time.Hour),
		ValidTo:       time.Now().UTC().Add(time.Hour),
		IsActive:      true,
	}
}

func TestGrandTotalClampsAtZero(t *testing.T) {
	assert.Equal(t, int64(27000), GrandTotal(30000, 3000))
	assert.Equal(t, int64(0), GrandTotal(1000, 1000))
	assert.Equal(t, int64(0), GrandTotal(1000, 5000))
	assert.Equal(t, int64(0), GrandTotal(0, 0))
}

func TestSubtotalDerivesFromFrozenPrices(t *testing.T) {
	items := []model.CartItem{
		{UnitPriceCents: 15000, Qty: 1},
		{UnitPriceCents: 1500, Qty: 2},
	}
	assert.Equal(t, int64(18000), Subtotal(items))
	assert.Equal(t, int64(0), Subtotal(nil))
}

func TestTenPercentVoucherOnThreeHundred(t *testing.T) {
	v := percentVoucher("SAVE10", 10)
	res := ValidateVoucher(v, 30000, model.CategoryEvent, time.Now().UTC())
	assert.True(t, res.Valid)
	assert.Equal(t, int64(3000), res.DiscountCents)
	assert.Equal(t, int64(27000), GrandTotal(30000, res.DiscountCents))

	// Re-validating the same code against the same total yields the
	// same discount: no stacking.
	again := ValidateVoucher(v, 30000, model.CategoryEvent, time.Now().UTC())
	assert.Equal(t, res.DiscountCents, again.DiscountCents)
}

func TestFixedVoucherCappedAtSubtotal(t *testing.T) {
	v := percentVoucher("FLAT50", 0)
	v.DiscountType = model.DiscountFixed
	v.DiscountValue = 5000

	res := ValidateVoucher(v, 2000, model.CategoryActivity, time.Now().UTC())
	assert.True(t, res.Valid)
	assert.Equal(t, int64(2000), res.DiscountCents, "discount must not exceed subtotal")
}

func TestValidateVoucherRejections(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	hotel := model.CategoryHotel

	cases := []struct {
		name   string
		v      *model.Voucher
		total  int64
		stype  model.Category
		reason string
	}{
		{name: "unknown code", v: nil, total: 10000, stype: hotel, reason: ReasonUnknownCode},
		{
			name: "inactive",
			v: &model.Voucher{
				Code: "OFF", DiscountType: model.DiscountFixed, DiscountValue: 500,
				ValidFrom: now.Add(-time.Hour), ValidTo: now.Add(time.Hour), IsActive: false,
			},
			total: 10000, stype: hotel, reason: ReasonInactive,
		},
		{
			name: "not yet valid",
			v: &model.Voucher{
				Code: "SOON", DiscountType: model.DiscountFixed, DiscountValue: 500,
				ValidFrom: now.Add(time.Hour), ValidTo: now.Add(2 * time.Hour), IsActive: true,
			},
			total: 10000, stype: hotel, reason: ReasonNotYetValid,
		},
		{
			name: "expired window",
			v: &model.Voucher{
				Code: "LATE", DiscountType: model.DiscountFixed, DiscountValue: 500,
				ValidFrom: now.Add(-2 * time.Hour), ValidTo: now.Add(-time.Hour), IsActive: true,
			},
			total: 10000, stype: hotel, reason: ReasonExpired,
		},
		{
			name: "wrong service type",
			v: func() *model.Voucher {
				wellness := model.CategoryWellness
				return &model.Voucher{
					Code: "SPA", DiscountType: model.DiscountFixed, DiscountValue: 500,
					ServiceType: &wellness,
					ValidFrom:   now.Add(-time.Hour), ValidTo: now.Add(time.Hour), IsActive: true,
				}
			}(),
			total: 10000, stype: hotel, reason: ReasonWrongService,
		},
		{
			name: "below minimum",
			v: &model.Voucher{
				Code: "BIG", DiscountType: model.DiscountFixed, DiscountValue: 500,
				MinCartTotalCents: 20000,
				ValidFrom:         now.Add(-time.Hour), ValidTo: now.Add(time.Hour), IsActive: true,
			},
			total: 10000, stype: hotel, reason: ReasonBelowMinimum,
		},
		{
			name: "usage exhausted",
			v: &model.Voucher{
				Code: "GONE", DiscountType: model.DiscountFixed, DiscountValue: 500,
				MaxUses: 3, UsedCount: 3,
				ValidFrom: now.Add(-time.Hour), ValidTo: now.Add(time.Hour), IsActive: true,
			},
			total: 10000, stype: hotel, reason: ReasonUsageExhausted,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := ValidateVoucher(tc.v, tc.total, tc.stype, now)
			assert.False(t, res.Valid)
			assert.Equal(t, tc.reason, res.Reason)
			assert.Zero(t, res.DiscountCents)
		})
	}
}

func TestUniversalVoucherAppliesToAnyService(t *testing.T) {
	v := percentVoucher("ANY10", 10)
	for _, cat := range []model.Category{
		model.CategoryHotel, model.CategoryTransport, model.CategoryActivity,
		model.CategoryEvent, model.CategoryEntertainment, model.CategoryWellness,
	} {
		res := ValidateVoucher(v, 10000, cat, time.Now().UTC())
		assert.True(t, res.Valid, "category %s", cat)
		assert.Equal(t, int64(1000), res.DiscountCents)
	}
}

func TestDiscountReevaluationAfterItemRemoval(t *testing.T) {
	// Cart with $150 x1 and $15 x2, 10% coupon with a $50 minimum.
	v := percentVoucher("SAVE10", 10)
	v.MinCartTotalCents = 5000

	items := []model.CartItem{
		{UnitPriceCents: 15000, Qty: 1},
		{UnitPriceCents: 1500, Qty: 2},
	}
	sub := Subtotal(items)
	assert.Equal(t, int64(18000), sub)

	res := ValidateVoucher(v, sub, model.CategoryEvent, time.Now().UTC())
	assert.True(t, res.Valid)
	assert.Equal(t, int64(1800), res.DiscountCents)
	assert.Equal(t, int64(16200), GrandTotal(sub, res.DiscountCents))

	// Remove the $150 line: the new $30 subtotal is below the coupon
	// minimum, so the discount drops to zero on re-validation.
	items = items[1:]
	sub = Subtotal(items)
	assert.Equal(t, int64(3000), sub)

	res = ValidateVoucher(v, sub, model.CategoryEvent, time.Now().UTC())
	assert.False(t, res.Valid)
	assert.Equal(t, ReasonBelowMinimum, res.Reason)
	assert.Equal(t, int64(3000), GrandTotal(sub, 0))
}

func TestRecomputeCartReevaluatesCoupon(t *testing.T) {
	// 10% coupon with a $50 minimum cart total.
	v := percentVoucher("SAVE10", 10)
	v.MinCartTotalCents = 5000
	now := time.Now().UTC()

	// $150 x1 + $15 x2 with the coupon applied.
	full := []model.CartItem{
		{Category: model.CategoryEvent, UnitPriceCents: 15000, Qty: 1},
		{Category: model.CategoryEvent, UnitPriceCents: 1500, Qty: 2},
	}

	cases := []struct {
		name     string
		items    []model.CartItem
		voucher  *model.Voucher
		subtotal int64
		discount int64
		grand    int64
		kept     bool
	}{
		{
			name:     "coupon applies to full cart",
			items:    full,
			voucher:  v,
			subtotal: 18000, discount: 1800, grand: 16200, kept: true,
		},
		{
			// Removing the $150 line drops the subtotal to $30, below
			// the coupon minimum: the discount must vanish and the
			// code must be cleared, not carried stale.
			name:     "coupon dropped after removal below minimum",
			items:    full[1:],
			voucher:  v,
			subtotal: 3000, discount: 0, grand: 3000, kept: false,
		},
		{
			// Dropping one $15 ticket keeps the subtotal above the
			// minimum, so the coupon survives at the new amount.
			name: "coupon survives removal above minimum",
			items: []model.CartItem{
				{Category: model.CategoryEvent, UnitPriceCents: 15000, Qty: 1},
				{Category: model.CategoryEvent, UnitPriceCents: 1500, Qty: 1},
			},
			voucher:  v,
			subtotal: 16500, discount: 1650, grand: 14850, kept: true,
		},
		{
			name:     "no coupon applied",
			items:    full,
			voucher:  nil,
			subtotal: 18000, discount: 0, grand: 18000, kept: false,
		},
		{
			// The stored code no longer resolves to a voucher row.
			name:     "coupon row missing",
			items:    full[1:],
			voucher:  nil,
			subtotal: 3000, discount: 0, grand: 3000, kept: false,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tot := RecomputeCart(&model.Cart{Items: tc.items}, tc.voucher, now)
			assert.Equal(t, tc.subtotal, tot.SubtotalCents)
			assert.Equal(t, tc.discount, tot.DiscountCents)
			assert.Equal(t, tc.grand, tot.GrandTotalCents)
			assert.Equal(t, tc.kept, tot.CouponKept)
		})
	}
}

func TestRecomputeCartScopedCouponOnMixedCart(t *testing.T) {
	hotel := model.CategoryHotel
	v := percentVoucher("STAY10", 10)
	v.ServiceType = &hotel

	items := []model.CartItem{
		{Category: model.CategoryHotel, UnitPriceCents: 20000, Qty: 1},
		{Category: model.CategoryActivity, UnitPriceCents: 5000, Qty: 1},
	}
	// A mixed cart has no uniform service type, so a scoped coupon
	// cannot qualify and the grand total equals the subtotal.
	tot := RecomputeCart(&model.Cart{Items: items}, v, time.Now().UTC())
	assert.False(t, tot.CouponKept)
	assert.Equal(t, int64(25000), tot.SubtotalCents)
	assert.Equal(t, int64(25000), tot.GrandTotalCents)

	// Uniform hotel carts keep it.
	tot = RecomputeCart(&model.Cart{Items: items[:1]}, v, time.Now().UTC())
	assert.True(t, tot.CouponKept)
	assert.Equal(t, int64(2000), tot.DiscountCents)
	assert.Equal(t, int64(18000), tot.GrandTotalCents)
}

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "SAVE10", NormalizeCode("  save10 "))
}
