package fulfillment

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/travora/booking-api/internal/model"
)

func TestCommerceHappyPath(t *testing.T) {
	path := []string{StatusPending, StatusConfirmed, StatusProcessing, StatusShipped, StatusDelivered}
	for i := 0; i < len(path)-1; i++ {
		assert.NoError(t, Authorize(TrackCommerce, path[i], path[i+1], RolePartner),
			"%s -> %s", path[i], path[i+1])
	}
	assert.True(t, Terminal(TrackCommerce, StatusDelivered))
}

func TestHospitalityHappyPath(t *testing.T) {
	path := []string{StatusPending, StatusConfirmed, StatusCheckedIn, StatusCheckedOut}
	for i := 0; i < len(path)-1; i++ {
		assert.NoError(t, Authorize(TrackHospitality, path[i], path[i+1], RolePartner))
	}
	assert.True(t, Terminal(TrackHospitality, StatusCheckedOut),
		"hospitality is terminal at checked_out; there is no delivered")
}

func TestSkippingStatesIsRejected(t *testing.T) {
	err := Authorize(TrackCommerce, StatusPending, StatusShipped, RolePartner)
	assert.ErrorIs(t, err, ErrIllegalTransition)

	err = Authorize(TrackHospitality, StatusPending, StatusCheckedOut, RolePartner)
	assert.ErrorIs(t, err, ErrIllegalTransition)
}

func TestNoReverseTransitions(t *testing.T) {
	cases := [][2]string{
		{StatusConfirmed, StatusPending},
		{StatusShipped, StatusProcessing},
		{StatusDelivered, StatusShipped},
	}
	for _, c := range cases {
		assert.ErrorIs(t, Authorize(TrackCommerce, c[0], c[1], RolePartner), ErrIllegalTransition,
			"%s -> %s must be rejected", c[0], c[1])
	}
}

func TestTerminalStatesAdmitNothing(t *testing.T) {
	for _, s := range []string{StatusDelivered, StatusCancelled} {
		assert.False(t, CanTransition(TrackCommerce, s, StatusConfirmed))
		assert.True(t, Terminal(TrackCommerce, s))
	}
	for _, s := range []string{StatusCheckedOut, StatusCancelled, StatusNoShow} {
		assert.True(t, Terminal(TrackHospitality, s))
	}
}

func TestCrossTrackStatusesRejected(t *testing.T) {
	// Commerce orders cannot check in; hospitality orders cannot ship.
	assert.ErrorIs(t, Authorize(TrackCommerce, StatusConfirmed, StatusCheckedIn, RolePartner), ErrUnknownStatus)
	assert.ErrorIs(t, Authorize(TrackHospitality, StatusConfirmed, StatusShipped, RolePartner), ErrUnknownStatus)
}

func TestCustomerMayOnlyCancel(t *testing.T) {
	assert.NoError(t, Authorize(TrackCommerce, StatusPending, StatusCancelled, RoleCustomer))
	assert.NoError(t, Authorize(TrackCommerce, StatusConfirmed, StatusCancelled, RoleCustomer))

	assert.ErrorIs(t, Authorize(TrackCommerce, StatusPending, StatusConfirmed, RoleCustomer), ErrActorNotAllowed)
	assert.ErrorIs(t, Authorize(TrackCommerce, StatusProcessing, StatusShipped, RoleCustomer), ErrActorNotAllowed)

	// Once servicing has begun cancellation is no longer in the table
	// for anyone.
	assert.ErrorIs(t, Authorize(TrackCommerce, StatusProcessing, StatusCancelled, RoleCustomer), ErrIllegalTransition)
}

func TestUnknownRoleRejected(t *testing.T) {
	assert.ErrorIs(t, Authorize(TrackCommerce, StatusPending, StatusConfirmed, "AUDITOR"), ErrActorNotAllowed)
}

func TestTrackForCategory(t *testing.T) {
	assert.Equal(t, TrackHospitality, TrackFor(model.CategoryHotel))
	assert.Equal(t, TrackHospitality, TrackFor(model.CategoryWellness))
	assert.Equal(t, TrackCommerce, TrackFor(model.CategoryTransport))
	assert.Equal(t, TrackCommerce, TrackFor(model.CategoryEvent))
	assert.Equal(t, TrackCommerce, TrackFor(model.CategoryActivity))
	assert.Equal(t, TrackCommerce, TrackFor(model.CategoryEntertainment))
}
