package model

import "time"

// Order is the partner-facing fulfillment projection of a confirmed
// booking.  It is created exactly once, when the booking reaches
// confirmed, and then advances through one of two parallel status
// tracks (commerce or hospitality) until a terminal state.  The
// transition rules themselves live in the fulfillment package; this
// type only carries state.
//
// Fields:
//  ID               – primary key identifier.
//  BookingID        – booking this order fulfils.
//  Reference        – public order reference (UUID).
//  CustomerID       – customer who owns the underlying booking.
//  Category         – inventory category, determines the track.
//  Track            – "commerce" or "hospitality".
//  Status           – current fulfillment status.
//  TotalAmountCents – amount carried over from the booking.
//  Currency         – ISO currency code.
//  CreatedAt        – creation timestamp.
//  UpdatedAt        – last update timestamp.
type Order struct {
    ID               uint64    `json:"id"`                 // orders.id
    BookingID        uint64    `json:"booking_id"`         // orders.booking_id
    Reference        string    `json:"reference"`          // orders.reference
    CustomerID       uint64    `json:"customer_id"`        // orders.customer_id
    Category         Category  `json:"category"`           // orders.category
    Track            string    `json:"track"`              // orders.track
    Status           string    `json:"status"`             // orders.status
    TotalAmountCents int64     `json:"total_amount_cents"` // orders.total_amount_cents
    Currency         string    `json:"currency"`           // orders.currency
    CreatedAt        time.Time `json:"created_at"`         // orders.created_at
    UpdatedAt        time.Time `json:"updated_at"`         // orders.updated_at
}
