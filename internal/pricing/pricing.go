// Package pricing implements the money arithmetic shared by carts,
// checkout and bookings: subtotal/discount/grand-total computation and
// voucher validation.  Everything here is a pure function of its
// inputs so the same rules apply no matter which component calls them.
// All amounts are integer cents.
package pricing

import (
    "strings"
    "time"

    "github.com/travora/booking-api/internal/model"
)

// Voucher rejection reasons returned in VoucherResult.Reason.  They
// are stable strings intended for API error payloads.
const (
    ReasonUnknownCode    = "unknown code"
    ReasonInactive       = "code is not active"
    ReasonNotYetValid    = "code is not valid yet"
    ReasonExpired        = "code has expired"
    ReasonWrongService   = "code does not apply to this service type"
    ReasonBelowMinimum   = "cart total is below the code minimum"
    ReasonUsageExhausted = "code usage limit reached"
)

// VoucherResult is the outcome of validating a voucher against a cart
// total.  When Valid is true DiscountCents holds the capped discount;
// otherwise Reason explains the rejection.
type VoucherResult struct {
    Valid         bool   `json:"valid"`
    DiscountCents int64  `json:"discount_cents,omitempty"`
    Reason        string `json:"reason,omitempty"`
}

// Subtotal sums the line totals of the given cart items.  Line totals
// are derived from the frozen unit price and quantity rather than
// trusted from storage.
func Subtotal(items []model.CartItem) int64 {
    var sum int64
    for _, it := range items {
        sum += it.UnitPriceCents * int64(it.Qty)
    }
    return sum
}

// GrandTotal applies a discount to a subtotal and clamps the result at
// zero.  This is the single definition of the cart/booking total
// invariant: grand total = max(0, subtotal − discount).
func GrandTotal(subtotalCents, discountCents int64) int64 {
    total := subtotalCents - discountCents
    if total < 0 {
        return 0
    }
    return total
}

// Discount computes the cents a voucher takes off the given subtotal,
// capped so the discount can never exceed the subtotal itself.  It
// assumes the voucher has already passed eligibility checks.
func Discount(v *model.Voucher, subtotalCents int64) int64 {
    var d int64
    switch v.DiscountType {
    case model.DiscountPercentage:
        d = subtotalCents * v.DiscountValue / 100
    case model.DiscountFixed:
        d = v.DiscountValue
    }
    if d > subtotalCents {
        d = subtotalCents
    }
    if d < 0 {
        d = 0
    }
    return d
}

// ValidateVoucher checks a voucher against a cart total and service
// type at the given instant.  A nil voucher means the code was not
// found.  Eligibility requires: the code exists and is active, now is
// inside the validity window, the voucher's service scope matches (or
// is universal), the cart total meets any stated minimum, and the
// usage limit is not exhausted.  On success the capped discount is
// returned; validation never mutates the voucher, so re-validating the
// same code against the same total is idempotent.
func ValidateVoucher(v *model.Voucher, cartTotalCents int64, serviceType model.Category, now time.Time) VoucherResult {
    if v == nil {
        return VoucherResult{Valid: false, Reason: ReasonUnknownCode}
    }
    if !v.IsActive {
        return VoucherResult{Valid: false, Reason: ReasonInactive}
    }
    if now.Before(v.ValidFrom) {
        return VoucherResult{Valid: false, Reason: ReasonNotYetValid}
    }
    if now.After(v.ValidTo) {
        return VoucherResult{Valid: false, Reason: ReasonExpired}
    }
    if v.ServiceType != nil && *v.ServiceType != serviceType {
        return VoucherResult{Valid: false, Reason: ReasonWrongService}
    }
    if cartTotalCents < v.MinCartTotalCents {
        return VoucherResult{Valid: false, Reason: ReasonBelowMinimum}
    }
    if v.MaxUses > 0 && v.UsedCount >= v.MaxUses {
        return VoucherResult{Valid: false, Reason: ReasonUsageExhausted}
    }
    return VoucherResult{Valid: true, DiscountCents: Discount(v, cartTotalCents)}
}

// Totals is a cart's recomputed money snapshot.  CouponKept reports
// whether the applied voucher still qualifies after a mutation.
type Totals struct {
    SubtotalCents   int64
    DiscountCents   int64
    GrandTotalCents int64
    CouponKept      bool
}

// RecomputeCart derives a cart's totals from its frozen line prices
// and re-evaluates the applied voucher, if any, against the new
// subtotal.  Pass the voucher row matching the cart's coupon code, or
// nil when no coupon is applied or its row no longer exists.  A
// voucher that no longer qualifies (for example the subtotal fell
// below its minimum after a line removal) contributes no discount and
// CouponKept is false, so the caller clears the stored code instead
// of carrying a stale discount.
func RecomputeCart(c *model.Cart, v *model.Voucher, now time.Time) Totals {
    subtotal := Subtotal(c.Items)
    t := Totals{SubtotalCents: subtotal}
    if v != nil {
        if res := ValidateVoucher(v, subtotal, c.ServiceType(), now); res.Valid {
            t.DiscountCents = res.DiscountCents
            t.CouponKept = true
        }
    }
    t.GrandTotalCents = GrandTotal(subtotal, t.DiscountCents)
    return t
}

// NormalizeCode canonicalizes a voucher code the way it is stored:
// trimmed and upper-cased.
func NormalizeCode(code string) string {
    return strings.ToUpper(strings.TrimSpace(code))
}
