package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransitionOrder(t *testing.T) {
	assert.True(t, CanTransitionOrder(OrderPending, OrderConfirmed))
	assert.True(t, CanTransitionOrder(OrderConfirmed, OrderShipped))
	assert.True(t, CanTransitionOrder(OrderShipped, OrderDelivered))
	assert.True(t, CanTransitionOrder(OrderShipped, OrderCancelled))

	// Idempotent same-status update.
	assert.True(t, CanTransitionOrder(OrderShipped, OrderShipped))

	// No skipping stages or leaving terminal states.
	assert.False(t, CanTransitionOrder(OrderPending, OrderShipped))
	assert.False(t, CanTransitionOrder(OrderPending, OrderDelivered))
	assert.False(t, CanTransitionOrder(OrderDelivered, OrderCancelled))
	assert.False(t, CanTransitionOrder(OrderCancelled, OrderPending))
}

func TestOrderSellerItems(t *testing.T) {
	o := &Order{Items: []OrderItem{
		{ListingID: 1, Title: "Cement 50kg", SellerID: 10, Quantity: 5},
		{ListingID: 2, Title: "Steel Rods", SellerID: 20, Quantity: 2},
		{ListingID: 3, Title: "Sand (ton)", SellerID: 10, Quantity: 1},
	}}

	mine := o.SellerItems(10)
	assert.Len(t, mine, 2)
	assert.Equal(t, "Cement 50kg", mine[0].Title)
	assert.Equal(t, "Sand (ton)", mine[1].Title)

	// A seller with no lines in this order sees an empty slice, never
	// another seller's lines.
	assert.Empty(t, o.SellerItems(30))
}

func TestOrderOwnsLine(t *testing.T) {
	o := &Order{Items: []OrderItem{{SellerID: 10}, {SellerID: 20}}}
	assert.True(t, o.OwnsLine(10))
	assert.True(t, o.OwnsLine(20))
	assert.False(t, o.OwnsLine(30))
	assert.False(t, (&Order{}).OwnsLine(10))
}
