package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/etukas/marketplace/internal/model"
)

// BookingRepo persists bookings. Rows denormalize the listing owner as
// seller_id at creation time and are never deleted; status is the only
// mutable field.
type BookingRepo struct{ db *sql.DB }

func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// Create inserts a booking and populates the generated id and timestamps
// on the record.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	var lat, lng interface{}
	if b.Lat != nil && b.Lng != nil {
		lat, lng = *b.Lat, *b.Lng
	}
	var notes interface{}
	if b.Notes != "" {
		notes = b.Notes
	}
	res, err := r.db.ExecContext(ctx, `INSERT INTO bookings
		(user_id, listing_id, seller_id, status, date, duration, total_price, notes, customer_lat, customer_lng)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
		b.UserID, b.ListingID, b.SellerID, b.Status, b.Date, b.Duration, b.TotalPrice, notes, lat, lng)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return r.db.QueryRowContext(ctx,
		"SELECT created_at, updated_at FROM bookings WHERE id=?", b.ID).
		Scan(&b.CreatedAt, &b.UpdatedAt)
}

// GetByID returns a bare booking row.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (model.Booking, error) {
	var b model.Booking
	var notes sql.NullString
	var lat, lng sql.NullFloat64
	err := r.db.QueryRowContext(ctx, `SELECT id, user_id, listing_id, seller_id, status, date,
		duration, total_price, notes, customer_lat, customer_lng, created_at, updated_at
		FROM bookings WHERE id=? LIMIT 1`, id).
		Scan(&b.ID, &b.UserID, &b.ListingID, &b.SellerID, &b.Status, &b.Date,
			&b.Duration, &b.TotalPrice, &notes, &lat, &lng, &b.CreatedAt, &b.UpdatedAt)
	if err == sql.ErrNoRows {
		return b, ErrNotFound
	}
	if err != nil {
		return b, err
	}
	b.Notes = notes.String
	if lat.Valid && lng.Valid {
		b.Lat, b.Lng = &lat.Float64, &lng.Float64
	}
	return b, nil
}

// BookingDetail enriches a booking with listing and counterparty display
// fields for the dashboards. The listing join is LEFT so bookings survive
// later deletion of their listing; ListingTitle is nil in that case.
type BookingDetail struct {
	model.Booking
	ListingTitle  *string  `json:"listing_title"`
	ListingKind   *string  `json:"listing_kind"`
	ListingImages []string `json:"listing_images,omitempty"`
	ListingLat    *float64 `json:"-"`
	ListingLng    *float64 `json:"-"`
	PartyName     string   `json:"party_name"`
	PartyPhone    string   `json:"party_phone"`

	// DistanceKm annotates the seller dashboard with the ad-hoc
	// great-circle distance between customer and listing, when both
	// carried coordinates. Non-authoritative, display only.
	DistanceKm *float64 `json:"distance_km,omitempty"`
}

// listDetailed backs both dashboard views; filterCol selects which party
// the rows belong to and partyCol which counterparty to display.
func (r *BookingRepo) listDetailed(ctx context.Context, filterCol, partyCol string, partyID uint64) ([]BookingDetail, error) {
	q := `SELECT b.id, b.user_id, b.listing_id, b.seller_id, b.status, b.date,
			b.duration, b.total_price, b.notes, b.customer_lat, b.customer_lng,
			b.created_at, b.updated_at,
			l.title, l.kind, l.images, l.lat, l.lng, p.name, p.phone
		FROM bookings b
		LEFT JOIN listings l ON l.id = b.listing_id
		JOIN users p ON p.id = b.` + partyCol + `
		WHERE b.` + filterCol + ` = ?
		ORDER BY b.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, partyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []BookingDetail{}
	for rows.Next() {
		var d BookingDetail
		var notes, title, kind sql.NullString
		var images []byte
		var custLat, custLng, lstLat, lstLng sql.NullFloat64
		if err := rows.Scan(&d.ID, &d.UserID, &d.ListingID, &d.SellerID, &d.Status, &d.Date,
			&d.Duration, &d.TotalPrice, &notes, &custLat, &custLng,
			&d.CreatedAt, &d.UpdatedAt,
			&title, &kind, &images, &lstLat, &lstLng, &d.PartyName, &d.PartyPhone); err != nil {
			return nil, err
		}
		d.Notes = notes.String
		if custLat.Valid && custLng.Valid {
			d.Lat, d.Lng = &custLat.Float64, &custLng.Float64
		}
		if title.Valid {
			d.ListingTitle = &title.String
		}
		if kind.Valid {
			d.ListingKind = &kind.String
		}
		if len(images) > 0 {
			_ = json.Unmarshal(images, &d.ListingImages)
		}
		if lstLat.Valid && lstLng.Valid {
			d.ListingLat, d.ListingLng = &lstLat.Float64, &lstLng.Float64
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ListByCustomer returns a customer's bookings, newest first, with the
// seller as counterparty.
func (r *BookingRepo) ListByCustomer(ctx context.Context, userID uint64) ([]BookingDetail, error) {
	return r.listDetailed(ctx, "user_id", "seller_id", userID)
}

// ListBySeller returns the bookings against a seller's listings, newest
// first, with the customer as counterparty.
func (r *BookingRepo) ListBySeller(ctx context.Context, sellerID uint64) ([]BookingDetail, error) {
	return r.listDetailed(ctx, "seller_id", "user_id", sellerID)
}

// UpdateStatus moves a booking to a new status after checking ownership
// and the transition table. Both the booking's customer and its seller
// may update, admins always may; anyone else gets ErrForbidden.
func (r *BookingRepo) UpdateStatus(ctx context.Context, bookingID, actorID uint64, isAdmin bool, status string) (model.Booking, error) {
	b, err := r.GetByID(ctx, bookingID)
	if err != nil {
		return b, err
	}
	if !isAdmin && actorID != b.SellerID && actorID != b.UserID {
		return b, ErrForbidden
	}
	if !model.CanTransitionBooking(b.Status, status) {
		return b, ErrInvalidTransition
	}
	if _, err := r.db.ExecContext(ctx,
		"UPDATE bookings SET status=? WHERE id=?", status, bookingID); err != nil {
		return b, err
	}
	b.Status = status
	return b, nil
}
