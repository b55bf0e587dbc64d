package model

import "time"

// Cart aggregates a customer's pending selections before checkout.
// Exactly one cart exists per owner; it is created lazily on the first
// item add and survives emptying (removing the last item leaves an
// empty cart, not a deleted one).  All totals are recomputed on the
// server after every mutation – client supplied totals are never
// trusted.  The Version column implements optimistic locking: every
// mutation must present the version it read, and a stale version is
// rejected so concurrent edits cannot silently overwrite each other.
//
// Invariant: GrandTotalCents == max(0, SubtotalCents − DiscountCents).
//
// Fields:
//  ID             – primary key identifier.
//  OwnerID        – user who owns the cart.
//  Currency       – ISO currency code shared by all lines.
//  CouponCode     – applied voucher code, if any.
//  Version        – optimistic locking counter.
//  Items          – current line items.
//  SubtotalCents  – sum of line totals in cents.
//  DiscountCents  – voucher discount in cents, capped at subtotal.
//  GrandTotalCents– payable total in cents, never negative.
//  ItemCount      – number of line items.
//  CreatedAt      – creation timestamp.
//  UpdatedAt      – last update timestamp.
type Cart struct {
    ID              uint64     `json:"id"`             // carts.id
    OwnerID         uint64     `json:"owner_id"`       // carts.owner_id
    Currency        string     `json:"currency"`       // carts.currency
    CouponCode      *string    `json:"coupon_code"`    // carts.coupon_code (nullable)
    Version         uint64     `json:"version"`        // carts.version
    Items           []CartItem `json:"items"`          // carts -> cart_items
    SubtotalCents   int64      `json:"subtotal_cents"` // carts.subtotal_cents
    DiscountCents   int64      `json:"discount_cents"` // carts.discount_cents
    GrandTotalCents int64      `json:"grand_total_cents"` // carts.grand_total_cents
    ItemCount       int        `json:"item_count"`     // derived from Items
    CreatedAt       time.Time  `json:"created_at"`     // carts.created_at
    UpdatedAt       time.Time  `json:"updated_at"`     // carts.updated_at
}

// CartItem is a single priced line within a cart.  The title, variant
// and unit price are snapshots taken from the catalog when the line
// was created; they are deliberately never refreshed so that the price
// a customer saw is the price they pay.
//
// Fields:
//  ID             – primary key identifier.
//  CartID         – owning cart.
//  OfferID        – catalog offer this line references.
//  Title          – title snapshot at add time.
//  Variant        – variant snapshot at add time.
//  UnitPriceCents – frozen unit price in cents.
//  Qty            – quantity, always >= 1.
//  LineTotalCents – UnitPriceCents * Qty.
//  CreatedAt      – creation timestamp.
type CartItem struct {
    ID             uint64    `json:"id"`               // cart_items.id
    CartID         uint64    `json:"cart_id"`          // cart_items.cart_id
    OfferID        uint64    `json:"offer_id"`         // cart_items.offer_id
    Category       Category  `json:"category"`         // cart_items.category
    Title          string    `json:"title"`            // cart_items.title
    Variant        string    `json:"variant"`          // cart_items.variant
    UnitPriceCents int64     `json:"unit_price_cents"` // cart_items.unit_price_cents
    Qty            int       `json:"qty"`              // cart_items.qty
    LineTotalCents int64     `json:"line_total_cents"` // derived
    CreatedAt      time.Time `json:"created_at"`       // cart_items.created_at
}

// ServiceType returns the category shared by every line in the cart,
// or empty when the cart is empty or mixes categories.  Vouchers
// scoped to one service type only match a uniform cart; universal
// vouchers match regardless.
func (c *Cart) ServiceType() Category {
    var cat Category
    for i, it := range c.Items {
        if i == 0 {
            cat = it.Category
            continue
        }
        if it.Category != cat {
            return ""
        }
    }
    return cat
}

// EmptyCart returns the canonical shape for an owner with no stored
// cart yet: zero totals and an empty (non-nil) item slice so JSON
// renders [] rather than null.
func EmptyCart(ownerID uint64, currency string) *Cart {
    return &Cart{
        OwnerID:  ownerID,
        Currency: currency,
        Items:    []CartItem{},
    }
}
