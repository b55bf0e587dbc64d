package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHeldBookingPastDeadlineReadsAsCancelled(t *testing.T) {
	created := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	b := &Booking{Status: BookingHeld, ExpiresAt: created.Add(15 * time.Minute)}

	// One minute before the deadline the hold is live and payable.
	at := created.Add(14 * time.Minute)
	assert.False(t, b.Expired(at))
	assert.Equal(t, BookingHeld, b.EffectiveStatus(at))
	assert.True(t, b.Payable(at))

	// Sixteen minutes in, the stored status still reads "held" but the
	// booking must classify as cancelled and reject charges.
	at = created.Add(16 * time.Minute)
	assert.True(t, b.Expired(at))
	assert.Equal(t, BookingCancelled, b.EffectiveStatus(at))
	assert.False(t, b.Payable(at))
}

func TestOnlyHeldBookingsExpire(t *testing.T) {
	past := time.Now().UTC().Add(-time.Hour)
	for _, status := range []string{BookingConfirmed, BookingCompleted, BookingCancelled, BookingPaymentFailed} {
		b := &Booking{Status: status, ExpiresAt: past}
		assert.False(t, b.Expired(time.Now().UTC()), status)
		assert.Equal(t, status, b.EffectiveStatus(time.Now().UTC()))
		assert.False(t, b.Payable(time.Now().UTC()))
	}
}

func TestValidCategory(t *testing.T) {
	for _, c := range []string{"hotel", "transport", "activity", "event", "entertainment", "wellness"} {
		assert.True(t, ValidCategory(c), c)
	}
	assert.False(t, ValidCategory("cruise"))
	assert.False(t, ValidCategory(""))
}
