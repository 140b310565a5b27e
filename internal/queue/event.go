// Package queue defines message payloads exchanged over the message broker
// and the background consumer that records them.
package queue

// BookingCreatedEvent is published when a customer books a service or
// machine listing. It carries enough for downstream consumers to notify
// the seller or feed analytics without querying the primary database.
type BookingCreatedEvent struct {
	BookingID    uint64  `json:"booking_id"`
	UserID       uint64  `json:"user_id"`
	SellerID     uint64  `json:"seller_id"`
	ListingID    uint64  `json:"listing_id"`
	ListingTitle string  `json:"listing_title"`
	Kind         string  `json:"kind"`
	Date         string  `json:"date"`
	Duration     int     `json:"duration"`
	TotalPrice   float64 `json:"total_price"`
	CreatedAt    string  `json:"created_at"`
}

// OrderCreatedEvent is published when a checkout succeeds.
type OrderCreatedEvent struct {
	OrderID     uint64  `json:"order_id"`
	Reference   string  `json:"reference"`
	UserID      uint64  `json:"user_id"`
	ItemCount   int     `json:"item_count"`
	TotalAmount float64 `json:"total_amount"`
	CreatedAt   string  `json:"created_at"`
}

// Queue names. Durable queues, persistent messages.
const (
	BookingQueue = "booking.created"
	OrderQueue   = "order.created"
)
