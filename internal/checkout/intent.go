// Package checkout maps category-specific selections into one
// canonical intent consumed by the booking hold flow.  Each inventory
// category has its own request shape; normalization resolves catalog
// offers, recomputes all money on the server from frozen catalog
// prices and validates any voucher.  Client supplied totals are
// display-only and ignored.
package checkout

import (
    "encoding/json"
    "time"

    "github.com/travora/booking-api/internal/model"
)

// ContactDetails identifies the guest a booking is for.  Name and
// email are required; they feed the post-confirmation notification.
type ContactDetails struct {
    Name  string `json:"name"`
    Email string `json:"email"`
    Phone string `json:"phone,omitempty"`
}

// HotelSelection books one room offer for a date range.  The line
// quantity is the number of nights between check-in and check-out.
type HotelSelection struct {
    HotelRef    string `json:"hotel_ref"`
    RoomOfferID uint64 `json:"room_offer_id"`
    CheckIn     string `json:"check_in"`  // YYYY-MM-DD
    CheckOut    string `json:"check_out"` // YYYY-MM-DD
    Adults      int    `json:"adults"`
    Children    int    `json:"children"`
    RatePlan    string `json:"rate_plan,omitempty"`
}

// TransportSelection books seats on one transport leg offer.
type TransportSelection struct {
    RouteOfferID uint64 `json:"route_offer_id"`
    PickupAt     string `json:"pickup_at,omitempty"` // RFC3339, informational
    Pickup       string `json:"pickup"`
    Dropoff      string `json:"dropoff"`
    Passengers   int    `json:"passengers"`
}

// TicketedSelection covers activity, event and entertainment
// checkouts.  Either TicketCounts maps offer IDs (as decimal strings,
// the JSON object key form) to counts, or TicketOfferID selects a
// single tier with Qty tickets (Qty defaults to 1).
type TicketedSelection struct {
    ItemRef       string         `json:"item_ref"`
    SessionID     string         `json:"session_id,omitempty"`
    TicketOfferID uint64         `json:"ticket_offer_id,omitempty"`
    Qty           int            `json:"qty,omitempty"`
    TicketCounts  map[string]int `json:"ticket_counts,omitempty"`
}

// WellnessSelection books one wellness experience slot for a number
// of guests on a given date.
type WellnessSelection struct {
    ExperienceOfferID uint64 `json:"experience_offer_id"`
    Date              string `json:"date"` // YYYY-MM-DD
    Guests            int    `json:"guests"`
}

// Request is the wire shape accepted by POST /v1/checkout/:category.
// Exactly one selection field must be populated and it must match the
// category in the path.  ClientTotalCents is what the client displayed
// and is never trusted; the server recomputes every amount.
type Request struct {
    Hotel           *HotelSelection     `json:"hotel,omitempty"`
    Transport       *TransportSelection `json:"transport,omitempty"`
    Tickets         *TicketedSelection  `json:"tickets,omitempty"`
    Wellness        *WellnessSelection  `json:"wellness,omitempty"`
    Contact         ContactDetails      `json:"contact"`
    SpecialRequests string              `json:"special_requests,omitempty"`
    VoucherCode     string              `json:"voucher_code,omitempty"`
    ClientTotalCents int64              `json:"client_total_cents,omitempty"`
}

// LineItem is one priced unit inside a canonical intent.  Unit prices
// are the catalog prices at normalization time; the hold freezes them.
type LineItem struct {
    OfferID        uint64 `json:"offer_id"`
    Title          string `json:"title"`
    Variant        string `json:"variant"`
    UnitPriceCents int64  `json:"unit_price_cents"`
    Qty            int    `json:"qty"`
    LineTotalCents int64  `json:"line_total_cents"`

    currency string // offer currency, surfaced on the intent
}

// Intent is the canonical checkout payload: one structure regardless
// of which category shape it was normalized from.  TotalCents is
// clamped at zero and is the only amount the payment collaborator
// ever sees.
type Intent struct {
    Category        model.Category `json:"category"`
    LineItems       []LineItem     `json:"line_items"`
    SubtotalCents   int64          `json:"subtotal_cents"`
    DiscountCents   int64          `json:"discount_cents"`
    TotalCents      int64          `json:"total_cents"`
    Currency        string         `json:"currency"`
    Contact         ContactDetails `json:"contact"`
    SpecialRequests string         `json:"special_requests,omitempty"`
    VoucherCode     string         `json:"voucher_code,omitempty"`
    DetailsJSON     string         `json:"-"`
}

// detailsJSON serializes the original selection so the booking keeps
// an auditable echo of what was requested.
func detailsJSON(v interface{}) string {
    b, err := json.Marshal(v)
    if err != nil {
        return "{}"
    }
    return string(b)
}

// parseDate parses a YYYY-MM-DD calendar date in UTC.
func parseDate(s string) (time.Time, error) {
    return time.Parse("2006-01-02", s)
}
