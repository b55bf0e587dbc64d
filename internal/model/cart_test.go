package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmptyCartShape(t *testing.T) {
	c := EmptyCart(42, "USD")

	assert.Equal(t, uint64(42), c.OwnerID)
	assert.Equal(t, "USD", c.Currency)
	assert.NotNil(t, c.Items, "items must serialize as [] rather than null")
	assert.Len(t, c.Items, 0)
	assert.Zero(t, c.SubtotalCents)
	assert.Zero(t, c.DiscountCents)
	assert.Zero(t, c.GrandTotalCents)
	assert.Nil(t, c.CouponCode)
}

func TestServiceTypeUniformCart(t *testing.T) {
	c := &Cart{Items: []CartItem{
		{Category: CategoryHotel, Qty: 1},
		{Category: CategoryHotel, Qty: 2},
	}}
	assert.Equal(t, CategoryHotel, c.ServiceType())
}

func TestServiceTypeMixedCartIsUnscoped(t *testing.T) {
	c := &Cart{Items: []CartItem{
		{Category: CategoryHotel, Qty: 1},
		{Category: CategoryActivity, Qty: 1},
	}}
	assert.Equal(t, Category(""), c.ServiceType())
}

func TestServiceTypeEmptyCart(t *testing.T) {
	c := &Cart{Items: []CartItem{}}
	assert.Equal(t, Category(""), c.ServiceType())
}
