// Package repository defines error types that are reused across
// multiple repositories. These sentinel values allow higher layers
// such as handlers to distinguish between different failure
// scenarios and map them onto the HTTP error taxonomy: not-found
// lookups become 404, stale versions and oversold inventory 409,
// and lapsed holds get their own response distinct from generic
// validation failures.
package repository

import "errors"

// ErrNotFound is returned when a lookup matches no row. Handlers
// should translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when an update cannot be performed
// because of conflicting state, such as confirming a booking that
// is no longer held. Handlers should translate this into an HTTP
// 409 response.
var ErrConflict = errors.New("conflict")

// ErrVersionConflict is returned when a cart mutation presents a
// stale optimistic version. The caller lost a concurrent race and
// must re-read the cart before retrying. Handlers translate this
// into an HTTP 409 response.
var ErrVersionConflict = errors.New("stale cart version")

// ErrInsufficientInventory is returned when a reserve would take an
// offer's availability below zero. The hold transaction must roll
// back so no partial reservation is ever visible.
var ErrInsufficientInventory = errors.New("insufficient inventory")

// ErrHoldExpired is returned when a charge or confirmation is
// attempted against a hold whose deadline has passed, whether or
// not a sweep has rewritten its stored status yet.
var ErrHoldExpired = errors.New("hold expired")
