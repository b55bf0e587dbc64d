// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingConfirmedEvent is published when payment succeeds and a held
// booking is confirmed. It contains enough information for downstream
// consumers to log, notify, or trigger analytics without querying the
// primary database.
type BookingConfirmedEvent struct {
    BookingID        uint64 `json:"booking_id"`
    Reference        string `json:"reference"`
    OrderReference   string `json:"order_reference"`
    Category         string `json:"category"`
    GuestName        string `json:"guest_name"`
    GuestEmail       string `json:"guest_email"`
    TotalAmountCents int64  `json:"total_amount_cents"`
    Currency         string `json:"currency"`
    ConfirmedAt      string `json:"confirmed_at"`
}
