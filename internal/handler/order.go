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
)

// OrderHandler serves checkout, the two order lists and status updates.
type OrderHandler struct {
	Orders *repository.OrderRepo
	Events *service.Publisher
}

func NewOrderHandler(o *repository.OrderRepo, ev *service.Publisher) *OrderHandler {
	return &OrderHandler{Orders: o, Events: ev}
}

type orderItemReq struct {
	Listing  uint64  `json:"listing"`
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Seller   uint64  `json:"seller"`
}

type shippingAddressReq struct {
	AddressLine string    `json:"addressLine"`
	Location    *geoPoint `json:"location"`
}

type createOrderReq struct {
	Items           []orderItemReq     `json:"items"`
	TotalAmount     float64            `json:"totalAmount"`
	ShippingAddress shippingAddressReq `json:"shippingAddress"`
}

// Create answers POST /orders, persisting the cart's items as supplied.
// The line items carry their own seller references so one order can
// aggregate several sellers; the checkout total is the client-computed
// sum recorded as-is.
func (h *OrderHandler) Create(c echo.Context) error {
	uid, _ := currentUser(c)
	var req createOrderReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, kindValidation, "invalid body")
	}
	if len(req.Items) == 0 {
		return fail(c, http.StatusBadRequest, kindEmptyOrder, "no items in order")
	}

	var msgs []string
	items := make([]model.OrderItem, 0, len(req.Items))
	for i, it := range req.Items {
		if it.Listing == 0 {
			msgs = append(msgs, "items["+strconv.Itoa(i)+"]: listing is required")
		}
		if it.Seller == 0 {
			msgs = append(msgs, "items["+strconv.Itoa(i)+"]: seller is required")
		}
		qty := it.Quantity
		if qty < 1 {
			qty = 1
		}
		items = append(items, model.OrderItem{
			ListingID: it.Listing, Title: it.Title, Price: it.Price,
			Quantity: qty, SellerID: it.Seller,
		})
	}
	if req.ShippingAddress.AddressLine == "" {
		msgs = append(msgs, "shipping address is required")
	}
	if len(msgs) > 0 {
		return failFields(c, msgs)
	}

	o := model.Order{
		UserID:      uid,
		Items:       items,
		TotalAmount: req.TotalAmount,
		Status:      model.OrderPending,
		AddressLine: req.ShippingAddress.AddressLine,
	}
	if loc := req.ShippingAddress.Location; loc != nil {
		o.ShipLat, o.ShipLng = &loc.Lat, &loc.Lng
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Orders.Create(ctx, &o); err != nil {
		return fail(c, http.StatusInternalServerError, kindServerError, "create order failed")
	}

	h.Events.OrderCreated(queue.OrderCreatedEvent{
		OrderID:     o.ID,
		Reference:   o.Reference,
		UserID:      o.UserID,
		ItemCount:   len(o.Items),
		TotalAmount: o.TotalAmount,
		CreatedAt:   o.CreatedAt.UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": o})
}

// My answers GET /orders/my: the customer's orders, newest first.
func (h *OrderHandler) My(c echo.Context) error {
	uid, _ := currentUser(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	orders, err := h.Orders.ListByCustomer(ctx, uid)
	if err != nil {
		return fail(c, http.StatusInternalServerError, kindServerError, "query failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "count": len(orders), "data": orders})
}

// Seller answers GET /orders/seller: orders holding at least one of the
// caller's line items, with the items projected down to the caller's own
// lines.
func (h *OrderHandler) Seller(c echo.Context) error {
	uid, _ := currentUser(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	orders, err := h.Orders.ListBySeller(ctx, uid)
	if err != nil {
		return fail(c, http.StatusInternalServerError, kindServerError, "query failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "count": len(orders), "data": orders})
}

// UpdateStatus answers PUT /orders/:id. Any seller owning a line item (or
// an admin) may move the whole order's shared status along the diagram;
// re-setting the current status succeeds without effect.
func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	uid, role := currentUser(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusNotFound, kindNotFound, "order not found")
	}
	var req statusReq
	if err := c.Bind(&req); err != nil || req.Status == "" {
		return fail(c, http.StatusBadRequest, kindValidation, "status is required")
	}
	if !model.ValidOrderStatus(req.Status) {
		return fail(c, http.StatusBadRequest, kindInvalidStatus, "unknown order status")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	o, err := h.Orders.UpdateStatus(ctx, id, uid, role == model.RoleAdmin, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return fail(c, http.StatusNotFound, kindNotFound, "order not found")
		case errors.Is(err, repository.ErrForbidden):
			return fail(c, http.StatusForbidden, kindForbidden, "no line items in this order")
		case errors.Is(err, repository.ErrInvalidTransition):
			return fail(c, http.StatusBadRequest, kindInvalidStatus,
				"cannot move order from "+o.Status+" to "+req.Status)
		}
		return fail(c, http.StatusInternalServerError, kindServerError, "update order failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": o})
}
