// Package fulfillment governs the partner-side post-confirmation
// order lifecycle.  Two structurally parallel tracks exist: commerce
// orders ship and deliver, hospitality orders check in and check out.
// The transition table is closed – anything not listed is rejected –
// and every transition is authorized against the actor's role before
// it is applied.
package fulfillment

import (
    "errors"

    "github.com/travora/booking-api/internal/model"
)

// Track names the two parallel fulfillment state machines.
type Track string

const (
    TrackCommerce    Track = "commerce"
    TrackHospitality Track = "hospitality"
)

// Order fulfillment statuses across both tracks.
const (
    StatusPending    = "pending"
    StatusConfirmed  = "confirmed"
    StatusProcessing = "processing" // commerce only
    StatusShipped    = "shipped"    // commerce only
    StatusDelivered  = "delivered"  // commerce only, terminal
    StatusCheckedIn  = "checked_in" // hospitality only
    StatusCheckedOut = "checked_out" // hospitality only, terminal
    StatusCancelled  = "cancelled"  // terminal on both tracks
    StatusNoShow     = "no_show"    // hospitality only, terminal
)

// Actor roles recognized by the guard.  Partners operate the full
// table on their own orders; customers may only cancel while the
// order has not started servicing.
const (
    RoleCustomer = "CUSTOMER"
    RolePartner  = "PARTNER"
)

// ErrIllegalTransition is returned when the requested status is not
// reachable from the order's current status.  Handlers translate it
// into a 409 response.
var ErrIllegalTransition = errors.New("illegal status transition")

// ErrUnknownStatus is returned when the requested status does not
// belong to the order's track at all.
var ErrUnknownStatus = errors.New("unknown status for track")

// ErrActorNotAllowed is returned when the actor's role does not
// permit the requested transition.  Handlers translate it into 403.
var ErrActorNotAllowed = errors.New("actor not allowed to perform transition")

// transitions lists, per track, every status a given status may move
// to.  Terminal states have no entry.
var transitions = map[Track]map[string][]string{
    TrackCommerce: {
        StatusPending:    {StatusConfirmed, StatusCancelled},
        StatusConfirmed:  {StatusProcessing, StatusCancelled},
        StatusProcessing: {StatusShipped},
        StatusShipped:    {StatusDelivered},
    },
    TrackHospitality: {
        StatusPending:   {StatusConfirmed, StatusCancelled},
        StatusConfirmed: {StatusCheckedIn, StatusCancelled, StatusNoShow},
        StatusCheckedIn: {StatusCheckedOut},
    },
}

// statuses enumerates every valid status per track, including
// terminal ones.
var statuses = map[Track]map[string]bool{
    TrackCommerce: {
        StatusPending: true, StatusConfirmed: true, StatusProcessing: true,
        StatusShipped: true, StatusDelivered: true, StatusCancelled: true,
    },
    TrackHospitality: {
        StatusPending: true, StatusConfirmed: true, StatusCheckedIn: true,
        StatusCheckedOut: true, StatusCancelled: true, StatusNoShow: true,
    },
}

// TrackFor maps an inventory category to its fulfillment track.
// Stays (hotel, wellness) follow the hospitality machine; everything
// else is fulfilled as commerce.
func TrackFor(cat model.Category) Track {
    switch cat {
    case model.CategoryHotel, model.CategoryWellness:
        return TrackHospitality
    default:
        return TrackCommerce
    }
}

// Terminal reports whether the status admits no further transitions
// on the given track.
func Terminal(track Track, status string) bool {
    next, ok := transitions[track][status]
    return !ok || len(next) == 0
}

// CanTransition reports whether from → to is listed in the track's
// transition table.
func CanTransition(track Track, from, to string) bool {
    for _, s := range transitions[track][from] {
        if s == to {
            return true
        }
    }
    return false
}

// Authorize validates a requested transition for an order and actor
// role.  It checks, in order: the target status belongs to the track,
// the transition is present in the table, and the role may perform
// it.  Customers may only cancel an order that has not started
// servicing; partners may perform any listed transition.
func Authorize(track Track, from, to, role string) error {
    if !statuses[track][to] {
        return ErrUnknownStatus
    }
    if !CanTransition(track, from, to) {
        return ErrIllegalTransition
    }
    switch role {
    case RolePartner:
        return nil
    case RoleCustomer:
        if to == StatusCancelled {
            return nil
        }
        return ErrActorNotAllowed
    default:
        return ErrActorNotAllowed
    }
}
