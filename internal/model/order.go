package model

import "time"

// Order statuses. delivered and cancelled are terminal.
const (
	OrderPending   = "pending"
	OrderConfirmed = "confirmed"
	OrderShipped   = "shipped"
	OrderDelivered = "delivered"
	OrderCancelled = "cancelled"
)

var orderTransitions = map[string][]string{
	OrderPending:   {OrderConfirmed, OrderCancelled},
	OrderConfirmed: {OrderShipped, OrderCancelled},
	OrderShipped:   {OrderDelivered, OrderCancelled},
}

// ValidOrderStatus reports whether s names a known order status.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderPending, OrderConfirmed, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// CanTransitionOrder reports whether an order may move from one status to
// another. Re-setting the current status is allowed for idempotency.
func CanTransitionOrder(from, to string) bool {
	if from == to {
		return true
	}
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// OrderItem is one line of an order. Title, price and seller are
// denormalized from the listing at checkout time so the line survives
// later listing edits or deletion, and so a multi-seller order can be
// split per seller on the fulfilment dashboard.
type OrderItem struct {
	ID        uint64  `json:"id"`
	OrderID   uint64  `json:"-"`
	ListingID uint64  `json:"listing_id"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	SellerID  uint64  `json:"seller_id"`
}

// Order is a multi-item purchase request against product listings,
// potentially aggregating items from several sellers. TotalAmount is the
// checkout-time sum supplied by the client. Status is a single shared
// field for the whole order.
type Order struct {
	ID          uint64      `json:"id"`
	Reference   string      `json:"reference"`
	UserID      uint64      `json:"user_id"`
	Items       []OrderItem `json:"items"`
	TotalAmount float64     `json:"total_amount"`
	Status      string      `json:"status"`
	AddressLine string      `json:"address_line"`
	ShipLat     *float64    `json:"ship_lat,omitempty"`
	ShipLng     *float64    `json:"ship_lng,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`

	// Denormalized customer contact for the seller dashboard.
	CustomerName  string `json:"customer_name,omitempty"`
	CustomerPhone string `json:"customer_phone,omitempty"`
}

// SellerItems returns the order's lines belonging to the given seller.
// Seller-facing views must never expose other sellers' lines from the
// same order.
func (o *Order) SellerItems(sellerID uint64) []OrderItem {
	out := make([]OrderItem, 0, len(o.Items))
	for _, it := range o.Items {
		if it.SellerID == sellerID {
			out = append(out, it)
		}
	}
	return out
}

// OwnsLine reports whether the given user owns at least one line item.
func (o *Order) OwnsLine(userID uint64) bool {
	for _, it := range o.Items {
		if it.SellerID == userID {
			return true
		}
	}
	return false
}
