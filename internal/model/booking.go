package model

import "time"

// Booking statuses. pending and confirmed are live states; completed and
// cancelled are terminal.
const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingCompleted = "completed"
	BookingCancelled = "cancelled"
)

// bookingTransitions encodes the allowed status moves:
// pending -> confirmed|cancelled, confirmed -> completed|cancelled.
// No transition leaves a terminal state.
var bookingTransitions = map[string][]string{
	BookingPending:   {BookingConfirmed, BookingCancelled},
	BookingConfirmed: {BookingCompleted, BookingCancelled},
}

// ValidBookingStatus reports whether s names a known booking status.
func ValidBookingStatus(s string) bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCompleted, BookingCancelled:
		return true
	}
	return false
}

// CanTransitionBooking reports whether a booking may move from one status
// to another. Setting the same status again is allowed so repeated updates
// stay idempotent.
func CanTransitionBooking(from, to string) bool {
	if from == to {
		return true
	}
	for _, next := range bookingTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Booking is a time-scoped request by a customer against a service or
// machine listing. SellerID denormalizes the listing owner at creation
// time, and TotalPrice is computed once at creation from the listing's
// then-current rates; neither changes if the listing is later edited or
// deleted.
type Booking struct {
	ID         uint64    `json:"id"`
	UserID     uint64    `json:"user_id"`
	ListingID  uint64    `json:"listing_id"`
	SellerID   uint64    `json:"seller_id"`
	Status     string    `json:"status"`
	Date       time.Time `json:"date"`
	Duration   int       `json:"duration"` // days for services, hours for machines
	TotalPrice float64   `json:"total_price"`
	Notes      string    `json:"notes,omitempty"`
	Lat        *float64  `json:"customer_lat,omitempty"`
	Lng        *float64  `json:"customer_lng,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// BookingPrice computes the total for a booking created against the given
// listing: services charge the daily rate per duration unit plus the fixed
// visit charge, machines charge the rate value per duration unit. Duration
// values below 1 count as 1. Product listings are not bookable and price
// to zero.
func BookingPrice(l *Listing, duration int) float64 {
	if duration < 1 {
		duration = 1
	}
	switch l.Kind {
	case KindService:
		if l.Service == nil {
			return 0
		}
		return l.Service.DailyRate*float64(duration) + l.Service.VisitCharge
	case KindMachine:
		if l.Machine == nil {
			return 0
		}
		return l.Machine.HourlyRate * float64(duration)
	}
	return 0
}
