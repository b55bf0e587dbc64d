package model

import "time"

// Booking status values.  A hold moves forward only: held bookings can
// become confirmed, cancelled or payment_failed, and confirmed
// bookings become completed after the service date.  There are no
// reverse transitions.
const (
    BookingHeld          = "held"           // tentative reservation, inventory reserved, awaiting payment
    BookingConfirmed     = "confirmed"      // payment succeeded
    BookingCompleted     = "completed"      // service date passed after confirmation
    BookingCancelled     = "cancelled"      // expired or cancelled by the customer
    BookingPaymentFailed = "payment_failed" // payment collaborator reported failure
)

// Booking is a time-boxed tentative reservation (a "hold") and its
// later lifecycle.  TotalAmountCents and ExpiresAt are frozen when the
// hold is created; catalog price changes never retroactively affect an
// open hold.  ExpiresAt is only meaningful while the status is held.
//
// A held booking whose ExpiresAt has passed is functionally expired
// even if the stored status string still reads "held": reads must
// classify it as cancelled and charge attempts must be rejected,
// regardless of whether a sweep has rewritten the row yet.
//
// Fields:
//  ID               – primary key identifier.
//  Reference        – public booking reference (UUID).
//  OwnerID          – customer who created the hold.
//  Category         – inventory category of the booked offers.
//  Status           – stored lifecycle status.
//  TotalAmountCents – total price frozen at hold creation.
//  Currency         – ISO currency code.
//  ExpiresAt        – hold deadline; meaningful only while held.
//  GuestName        – contact name captured at checkout.
//  GuestEmail       – contact email captured at checkout.
//  SpecialRequests  – free-form request text, optional.
//  VoucherCode      – voucher applied at checkout, if any.
//  DetailsJSON      – category-specific selection echoed as JSON.
//  Items            – reserved offer lines with frozen prices.
//  CreatedAt        – creation timestamp.
//  UpdatedAt        – last update timestamp.
type Booking struct {
    ID               uint64        `json:"id"`                 // bookings.id
    Reference        string        `json:"reference"`          // bookings.reference
    OwnerID          uint64        `json:"owner_id"`           // bookings.owner_id
    Category         Category      `json:"category"`           // bookings.category
    Status           string        `json:"status"`             // bookings.status
    TotalAmountCents int64         `json:"total_amount_cents"` // bookings.total_amount_cents
    Currency         string        `json:"currency"`           // bookings.currency
    ExpiresAt        time.Time     `json:"expires_at"`         // bookings.expires_at
    GuestName        string        `json:"guest_name"`         // bookings.guest_name
    GuestEmail       string        `json:"guest_email"`        // bookings.guest_email
    SpecialRequests  string        `json:"special_requests,omitempty"` // bookings.special_requests
    VoucherCode      *string       `json:"voucher_code,omitempty"`     // bookings.voucher_code (nullable)
    DetailsJSON      string        `json:"-"`                  // bookings.details_json
    Items            []BookingItem `json:"items,omitempty"`    // bookings -> booking_items
    CreatedAt        time.Time     `json:"created_at"`         // bookings.created_at
    UpdatedAt        time.Time     `json:"updated_at"`         // bookings.updated_at
}

// BookingItem records one reserved offer line under a booking.  The
// quantity is what was decremented from offers.available when the hold
// was created and what must be released if the hold dies.
type BookingItem struct {
    ID             uint64 `json:"id"`               // booking_items.id
    BookingID      uint64 `json:"booking_id"`       // booking_items.booking_id
    OfferID        uint64 `json:"offer_id"`         // booking_items.offer_id
    Title          string `json:"title"`            // booking_items.title
    Variant        string `json:"variant"`          // booking_items.variant
    UnitPriceCents int64  `json:"unit_price_cents"` // booking_items.unit_price_cents
    Qty            int    `json:"qty"`              // booking_items.qty
}

// Expired reports whether the booking is a lapsed hold at the given
// instant.  Only held bookings expire; every other status is governed
// by explicit transitions.
func (b *Booking) Expired(now time.Time) bool {
    return b.Status == BookingHeld && now.After(b.ExpiresAt)
}

// EffectiveStatus returns the status a reader should observe at the
// given instant: a held booking past its deadline reads as cancelled
// even before a sweep rewrites the stored row.
func (b *Booking) EffectiveStatus(now time.Time) string {
    if b.Expired(now) {
        return BookingCancelled
    }
    return b.Status
}

// Payable reports whether a charge may be attempted against the
// booking at the given instant.
func (b *Booking) Payable(now time.Time) bool {
    return b.Status == BookingHeld && !now.After(b.ExpiresAt)
}
