package model

import "time"

// Category identifies the kind of bookable inventory an offer belongs
// to.  The set is closed: every offer, cart line and booking carries
// exactly one of these values and checkout payloads are dispatched on
// them.
type Category string

const (
    CategoryHotel         Category = "hotel"         // hotel room nights
    CategoryTransport     Category = "transport"     // transfer / transport legs
    CategoryActivity      Category = "activity"      // guided activities and tours
    CategoryEvent         Category = "event"         // event tickets
    CategoryEntertainment Category = "entertainment" // entertainment venue tickets
    CategoryWellness      Category = "wellness"      // spa and wellness slots
)

// ValidCategory reports whether s names a known inventory category.
func ValidCategory(s string) bool {
    switch Category(s) {
    case CategoryHotel, CategoryTransport, CategoryActivity,
        CategoryEvent, CategoryEntertainment, CategoryWellness:
        return true
    }
    return false
}

// Offer is a single bookable variant from the catalog: one room type
// of one hotel, one ticket tier of one event, one transport leg and so
// on.  Prices are stored in cents and frozen into carts and bookings
// at selection time – later catalog edits never touch open carts or
// holds.
//
// Fields:
//  ID         – primary key identifier.
//  Category   – inventory category the offer belongs to.
//  ParentRef  – identifier of the parent entity (hotel, event, route).
//  Title      – display title of the parent entity.
//  Variant    – variant label (room type, ticket tier, seat class).
//  PriceCents – current unit price in cents.
//  Currency   – ISO currency code.
//  Available  – units still available for reservation, counted in the
//               offer's natural quantum: room-nights for hotel offers,
//               seats for transport, tickets for ticketed categories,
//               guest slots for wellness.
//  IsActive   – whether the offer can currently be sold.
//  CreatedAt  – creation timestamp.
//  UpdatedAt  – last update timestamp.
type Offer struct {
    ID         uint64    `json:"id"`          // offers.id
    Category   Category  `json:"category"`    // offers.category
    ParentRef  string    `json:"parent_ref"`  // offers.parent_ref
    Title      string    `json:"title"`       // offers.title
    Variant    string    `json:"variant"`     // offers.variant
    PriceCents int64     `json:"price_cents"` // offers.price_cents
    Currency   string    `json:"currency"`    // offers.currency
    Available  int64     `json:"available"`   // offers.available
    IsActive   bool      `json:"is_active"`   // offers.is_active
    CreatedAt  time.Time `json:"created_at"`  // offers.created_at
    UpdatedAt  time.Time `json:"updated_at"`  // offers.updated_at
}
