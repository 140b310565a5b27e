package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/etukas/marketplace/internal/model"
	"github.com/etukas/marketplace/internal/queue"
	"github.com/etukas/marketplace/internal/repository"
	"github.com/etukas/marketplace/internal/service"
	"github.com/etukas/marketplace/internal/utils"
)

// BookingHandler serves booking creation, the two dashboard views and
// status updates.
type BookingHandler struct {
	Bookings *repository.BookingRepo
	Listings *repository.ListingRepo
	Events   *service.Publisher
}

func NewBookingHandler(b *repository.BookingRepo, l *repository.ListingRepo, ev *service.Publisher) *BookingHandler {
	return &BookingHandler{Bookings: b, Listings: l, Events: ev}
}

type geoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type createBookingReq struct {
	ListingID        uint64    `json:"listingId"`
	Date             time.Time `json:"date"`
	Duration         int       `json:"duration"`
	Notes            string    `json:"notes"`
	CustomerLocation *geoPoint `json:"customerLocation"`
}

// Create answers POST /bookings. The price is computed once here from the
// listing's current rates (service: dailyRate*duration + visitCharge;
// machine: rate*duration) and never recomputed afterwards. The listing's
// owner is denormalized as the booking's seller.
func (h *BookingHandler) Create(c echo.Context) error {
	uid, _ := currentUser(c)
	var req createBookingReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, kindValidation, "invalid body")
	}
	if req.ListingID == 0 {
		return fail(c, http.StatusBadRequest, kindValidation, "listingId is required")
	}
	if req.Date.IsZero() {
		return fail(c, http.StatusBadRequest, kindValidation, "date is required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	l, err := h.Listings.GetByID(ctx, req.ListingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, kindNotFound, "listing not found")
		}
		return fail(c, http.StatusInternalServerError, kindServerError, "query failed")
	}
	if l.Kind == model.KindProduct {
		return fail(c, http.StatusBadRequest, kindValidation,
			"product listings are ordered, not booked")
	}

	duration := req.Duration
	if duration < 1 {
		duration = 1
	}
	b := model.Booking{
		UserID:     uid,
		ListingID:  l.ID,
		SellerID:   l.UserID,
		Status:     model.BookingPending,
		Date:       req.Date,
		Duration:   duration,
		TotalPrice: model.BookingPrice(&l, duration),
		Notes:      req.Notes,
	}
	if req.CustomerLocation != nil {
		b.Lat, b.Lng = &req.CustomerLocation.Lat, &req.CustomerLocation.Lng
	}
	if err := h.Bookings.Create(ctx, &b); err != nil {
		return fail(c, http.StatusInternalServerError, kindServerError, "create booking failed")
	}

	h.Events.BookingCreated(queue.BookingCreatedEvent{
		BookingID:    b.ID,
		UserID:       b.UserID,
		SellerID:     b.SellerID,
		ListingID:    b.ListingID,
		ListingTitle: l.Title,
		Kind:         l.Kind,
		Date:         b.Date.UTC().Format(time.RFC3339),
		Duration:     b.Duration,
		TotalPrice:   b.TotalPrice,
		CreatedAt:    b.CreatedAt.UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": b})
}

// My answers GET /bookings/my: the customer's bookings, newest first,
// with listing and seller display fields.
func (h *BookingHandler) My(c echo.Context) error {
	uid, _ := currentUser(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rows, err := h.Bookings.ListByCustomer(ctx, uid)
	if err != nil {
		return fail(c, http.StatusInternalServerError, kindServerError, "query failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "count": len(rows), "data": rows})
}

// Seller answers GET /bookings/seller: requests against the caller's
// listings, annotated with the customer-to-listing distance when both
// sides carried coordinates.
func (h *BookingHandler) Seller(c echo.Context) error {
	uid, _ := currentUser(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rows, err := h.Bookings.ListBySeller(ctx, uid)
	if err != nil {
		return fail(c, http.StatusInternalServerError, kindServerError, "query failed")
	}
	for i := range rows {
		r := &rows[i]
		if r.Lat != nil && r.Lng != nil && r.ListingLat != nil && r.ListingLng != nil {
			km := utils.HaversineKm(*r.Lat, *r.Lng, *r.ListingLat, *r.ListingLng)
			r.DistanceKm = &km
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "count": len(rows), "data": rows})
}

type statusReq struct {
	Status string `json:"status"`
}

// UpdateStatus answers PUT /bookings/:id. Either party of the booking may
// move it, but only along the state diagram; terminal states are frozen.
func (h *BookingHandler) UpdateStatus(c echo.Context) error {
	uid, role := currentUser(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusNotFound, kindNotFound, "booking not found")
	}
	var req statusReq
	if err := c.Bind(&req); err != nil || req.Status == "" {
		return fail(c, http.StatusBadRequest, kindValidation, "status is required")
	}
	if !model.ValidBookingStatus(req.Status) {
		return fail(c, http.StatusBadRequest, kindInvalidStatus, "unknown booking status")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	b, err := h.Bookings.UpdateStatus(ctx, id, uid, role == model.RoleAdmin, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return fail(c, http.StatusNotFound, kindNotFound, "booking not found")
		case errors.Is(err, repository.ErrForbidden):
			return fail(c, http.StatusForbidden, kindForbidden, "not a party to this booking")
		case errors.Is(err, repository.ErrInvalidTransition):
			return fail(c, http.StatusBadRequest, kindInvalidStatus,
				"cannot move booking from "+b.Status+" to "+req.Status)
		}
		return fail(c, http.StatusInternalServerError, kindServerError, "update booking failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": b})
}
