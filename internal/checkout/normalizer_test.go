package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/travora/booking-api/internal/model"
)

type fakeOffers map[uint64]*model.Offer

func (f fakeOffers) OfferByID(_ context.Context, id uint64) (*model.Offer, error) {
	if off, ok := f[id]; ok {
		return off, nil
	}
	return nil, ErrOfferNotFound
}

type fakeVouchers map[string]*model.Voucher

func (f fakeVouchers) VoucherByCode(_ context.Context, code string) (*model.Voucher, error) {
	return f[code], nil
}

func testOffer(id uint64, cat model.Category, price int64) *model.Offer {
	return &model.Offer{
		ID:         id,
		Category:   cat,
		Title:      "Offer " + string(cat),
		Variant:    "standard",
		PriceCents: price,
		Currency:   "USD",
		Available:  100,
		IsActive:   true,
	}
}

func testNormalizer(offers fakeOffers, vouchers fakeVouchers) *Normalizer {
	if vouchers == nil {
		vouchers = fakeVouchers{}
	}
	return NewNormalizer(offers, vouchers)
}

var testContact = ContactDetails{Name: "Ada Guest", Email: "ada@example.com"}

func TestNormalizeHotelComputesNights(t *testing.T) {
	n := testNormalizer(fakeOffers{7: testOffer(7, model.CategoryHotel, 12000)}, nil)

	intent, err := n.Normalize(context.Background(), model.CategoryHotel, &Request{
		Hotel: &HotelSelection{
			HotelRef:    "grand-plaza",
			RoomOfferID: 7,
			CheckIn:     "2026-09-10",
			CheckOut:    "2026-09-13",
			Adults:      2,
		},
		Contact: testContact,
	}, time.Now().UTC())
	require.NoError(t, err)

	require.Len(t, intent.LineItems, 1)
	assert.Equal(t, 3, intent.LineItems[0].Qty, "three nights")
	assert.Equal(t, int64(36000), intent.SubtotalCents)
	assert.Equal(t, int64(36000), intent.TotalCents)
	assert.Equal(t, "USD", intent.Currency)
	assert.Equal(t, model.CategoryHotel, intent.Category)
	assert.NotEmpty(t, intent.DetailsJSON)
}

func TestNormalizeHotelRejectsBadRange(t *testing.T) {
	n := testNormalizer(fakeOffers{7: testOffer(7, model.CategoryHotel, 12000)}, nil)

	_, err := n.Normalize(context.Background(), model.CategoryHotel, &Request{
		Hotel: &HotelSelection{
			RoomOfferID: 7,
			CheckIn:     "2026-09-13",
			CheckOut:    "2026-09-10",
			Adults:      1,
		},
		Contact: testContact,
	}, time.Now().UTC())
	assert.ErrorIs(t, err, ErrInvalidSelection)
}

func TestNormalizeTransport(t *testing.T) {
	n := testNormalizer(fakeOffers{3: testOffer(3, model.CategoryTransport, 4500)}, nil)

	intent, err := n.Normalize(context.Background(), model.CategoryTransport, &Request{
		Transport: &TransportSelection{
			RouteOfferID: 3,
			Pickup:       "Airport",
			Dropoff:      "Old Town",
			Passengers:   4,
		},
		Contact: testContact,
	}, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, int64(18000), intent.SubtotalCents)
	assert.Equal(t, 4, intent.LineItems[0].Qty)
}

func TestNormalizeTicketCountMapAggregation(t *testing.T) {
	offers := fakeOffers{
		11: testOffer(11, model.CategoryEvent, 5000), // adult
		12: testOffer(12, model.CategoryEvent, 2500), // child
	}
	n := testNormalizer(offers, nil)

	intent, err := n.Normalize(context.Background(), model.CategoryEvent, &Request{
		Tickets: &TicketedSelection{
			ItemRef:      "summer-festival",
			TicketCounts: map[string]int{"11": 2, "12": 3},
		},
		Contact: testContact,
	}, time.Now().UTC())
	require.NoError(t, err)

	require.Len(t, intent.LineItems, 2)
	var totalQty int
	for _, li := range intent.LineItems {
		totalQty += li.Qty
	}
	assert.Equal(t, 5, totalQty, "total quantity is the sum of ticket counts")
	assert.Equal(t, int64(2*5000+3*2500), intent.SubtotalCents)
}

func TestNormalizeTicketSingleTierDefaultsToOne(t *testing.T) {
	n := testNormalizer(fakeOffers{21: testOffer(21, model.CategoryActivity, 8000)}, nil)

	intent, err := n.Normalize(context.Background(), model.CategoryActivity, &Request{
		Tickets: &TicketedSelection{ItemRef: "kayak-tour", TicketOfferID: 21},
		Contact: testContact,
	}, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, 1, intent.LineItems[0].Qty)
	assert.Equal(t, int64(8000), intent.TotalCents)
}

func TestNormalizeWellness(t *testing.T) {
	n := testNormalizer(fakeOffers{31: testOffer(31, model.CategoryWellness, 9000)}, nil)

	intent, err := n.Normalize(context.Background(), model.CategoryWellness, &Request{
		Wellness: &WellnessSelection{ExperienceOfferID: 31, Date: "2026-10-01", Guests: 2},
		Contact:  testContact,
	}, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, int64(18000), intent.SubtotalCents)
}

func TestNormalizeRejectsCategoryMismatch(t *testing.T) {
	// A wellness offer referenced through the event checkout shape
	// must not resolve.
	n := testNormalizer(fakeOffers{31: testOffer(31, model.CategoryWellness, 9000)}, nil)

	_, err := n.Normalize(context.Background(), model.CategoryEvent, &Request{
		Tickets: &TicketedSelection{TicketOfferID: 31},
		Contact: testContact,
	}, time.Now().UTC())
	assert.ErrorIs(t, err, ErrOfferNotFound)
}

func TestNormalizeRejectsMissingSelectionAndContact(t *testing.T) {
	n := testNormalizer(fakeOffers{}, nil)

	_, err := n.Normalize(context.Background(), model.CategoryHotel, &Request{Contact: testContact}, time.Now().UTC())
	assert.ErrorIs(t, err, ErrInvalidSelection)

	_, err = n.Normalize(context.Background(), model.CategoryHotel, &Request{
		Hotel: &HotelSelection{RoomOfferID: 1, CheckIn: "2026-09-10", CheckOut: "2026-09-11", Adults: 1},
	}, time.Now().UTC())
	assert.ErrorIs(t, err, ErrInvalidSelection)
}

func TestNormalizeVoucherAppliedAndClamped(t *testing.T) {
	offers := fakeOffers{11: testOffer(11, model.CategoryEvent, 1000)}
	vouchers := fakeVouchers{
		"FLAT50": {
			Code:          "FLAT50",
			DiscountType:  model.DiscountFixed,
			DiscountValue: 5000,
			ValidFrom:     time.Now().UTC().Add(-time.Hour),
			ValidTo:       time.Now().UTC().Add(time.Hour),
			IsActive:      true,
		},
	}
	n := testNormalizer(offers, vouchers)

	intent, err := n.Normalize(context.Background(), model.CategoryEvent, &Request{
		Tickets:     &TicketedSelection{TicketOfferID: 11, Qty: 2},
		Contact:     testContact,
		VoucherCode: "flat50",
	}, time.Now().UTC())
	require.NoError(t, err)

	assert.Equal(t, int64(2000), intent.SubtotalCents)
	assert.Equal(t, int64(2000), intent.DiscountCents, "discount capped at subtotal")
	assert.Equal(t, int64(0), intent.TotalCents, "total clamped at zero")
	assert.Equal(t, "FLAT50", intent.VoucherCode)
}

func TestNormalizeUnknownVoucherFails(t *testing.T) {
	n := testNormalizer(fakeOffers{11: testOffer(11, model.CategoryEvent, 1000)}, fakeVouchers{})

	_, err := n.Normalize(context.Background(), model.CategoryEvent, &Request{
		Tickets:     &TicketedSelection{TicketOfferID: 11},
		Contact:     testContact,
		VoucherCode: "NOPE",
	}, time.Now().UTC())

	var ve *VoucherError
	require.True(t, errors.As(err, &ve))
	assert.NotEmpty(t, ve.Reason)
}

func TestClientTotalIsIgnored(t *testing.T) {
	n := testNormalizer(fakeOffers{11: testOffer(11, model.CategoryEvent, 5000)}, nil)

	intent, err := n.Normalize(context.Background(), model.CategoryEvent, &Request{
		Tickets:          &TicketedSelection{TicketOfferID: 11, Qty: 2},
		Contact:          testContact,
		ClientTotalCents: 1, // display-only, must not leak into the intent
	}, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, int64(10000), intent.TotalCents)
}
