package model

import "time"

// Voucher discount types.  Percentage vouchers take a percent of the
// cart subtotal; fixed vouchers take a flat amount.  Either way the
// discount is capped so it can never exceed the subtotal.
const (
    DiscountPercentage = "percentage"
    DiscountFixed      = "fixed"
)

// Voucher is a discount code with eligibility rules.  ServiceType
// scopes the voucher to one inventory category; a nil ServiceType
// means the voucher is universal.  Validation against a concrete cart
// total is a pure function in the pricing package.
//
// Fields:
//  ID                – primary key identifier.
//  Code              – the code customers type, stored upper-case.
//  DiscountType      – "percentage" or "fixed".
//  DiscountValue     – percent (0–100) or fixed amount in cents.
//  MinCartTotalCents – minimum eligible cart total, 0 for none.
//  ServiceType       – category scope, nil for universal.
//  ValidFrom         – start of the validity window.
//  ValidTo           – end of the validity window.
//  MaxUses           – usage cap, 0 for unlimited.
//  UsedCount         – redemptions so far.
//  IsActive          – manual kill switch.
type Voucher struct {
    ID                uint64    `json:"id"`                   // vouchers.id
    Code              string    `json:"code"`                 // vouchers.code
    DiscountType      string    `json:"discount_type"`        // vouchers.discount_type
    DiscountValue     int64     `json:"discount_value"`       // vouchers.discount_value
    MinCartTotalCents int64     `json:"min_cart_total_cents"` // vouchers.min_cart_total_cents
    ServiceType       *Category `json:"service_type"`         // vouchers.service_type (nullable)
    ValidFrom         time.Time `json:"valid_from"`           // vouchers.valid_from
    ValidTo           time.Time `json:"valid_to"`             // vouchers.valid_to
    MaxUses           int64     `json:"max_uses"`             // vouchers.max_uses
    UsedCount         int64     `json:"used_count"`           // vouchers.used_count
    IsActive          bool      `json:"is_active"`            // vouchers.is_active
}
