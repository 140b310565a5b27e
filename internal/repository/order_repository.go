package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/etukas/marketplace/internal/model"
)

// OrderRepo persists orders and their line items. An order's lines carry
// denormalized title/price/seller snapshots taken at checkout, so the
// order remains readable after listing edits or deletion.
type OrderRepo struct{ db *sql.DB }

func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{db: db} }

// Create inserts the order and all its items in one transaction and
// populates the generated id, reference and timestamps on the record.
func (r *OrderRepo) Create(ctx context.Context, o *model.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	o.Reference = uuid.NewString()
	var lat, lng interface{}
	if o.ShipLat != nil && o.ShipLng != nil {
		lat, lng = *o.ShipLat, *o.ShipLng
	}
	res, err := tx.ExecContext(ctx, `INSERT INTO orders
		(reference, user_id, total_amount, status, address_line, ship_lat, ship_lng)
		VALUES (?,?,?,?,?,?,?)`,
		o.Reference, o.UserID, o.TotalAmount, o.Status, o.AddressLine, lat, lng)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	o.ID = uint64(id)

	// Single multi-row insert for the lines.
	q := "INSERT INTO order_items (order_id, listing_id, title, price, quantity, seller_id) VALUES "
	args := make([]any, 0, len(o.Items)*6)
	for i := range o.Items {
		if i > 0 {
			q += ","
		}
		q += "(?,?,?,?,?,?)"
		it := &o.Items[i]
		it.OrderID = o.ID
		args = append(args, o.ID, it.ListingID, it.Title, it.Price, it.Quantity, it.SellerID)
	}
	if _, err := tx.ExecContext(ctx, q, args...); err != nil {
		return err
	}
	if err := tx.QueryRowContext(ctx,
		"SELECT created_at, updated_at FROM orders WHERE id=?", o.ID).
		Scan(&o.CreatedAt, &o.UpdatedAt); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *OrderRepo) itemsFor(ctx context.Context, orderIDs []uint64) (map[uint64][]model.OrderItem, error) {
	if len(orderIDs) == 0 {
		return map[uint64][]model.OrderItem{}, nil
	}
	q := "SELECT id, order_id, listing_id, title, price, quantity, seller_id FROM order_items WHERE order_id IN ("
	args := make([]any, 0, len(orderIDs))
	for i, id := range orderIDs {
		if i > 0 {
			q += ","
		}
		q += "?"
		args = append(args, id)
	}
	q += ") ORDER BY id"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[uint64][]model.OrderItem{}
	for rows.Next() {
		var it model.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ListingID, &it.Title, &it.Price, &it.Quantity, &it.SellerID); err != nil {
			return nil, err
		}
		out[it.OrderID] = append(out[it.OrderID], it)
	}
	return out, rows.Err()
}

func scanOrder(s rowScanner, withCustomer bool) (model.Order, error) {
	var o model.Order
	var lat, lng sql.NullFloat64
	dest := []any{&o.ID, &o.Reference, &o.UserID, &o.TotalAmount, &o.Status,
		&o.AddressLine, &lat, &lng, &o.CreatedAt, &o.UpdatedAt}
	if withCustomer {
		dest = append(dest, &o.CustomerName, &o.CustomerPhone)
	}
	if err := s.Scan(dest...); err != nil {
		return o, err
	}
	if lat.Valid && lng.Valid {
		o.ShipLat, o.ShipLng = &lat.Float64, &lng.Float64
	}
	return o, nil
}

const orderCols = "o.id, o.reference, o.user_id, o.total_amount, o.status, o.address_line, o.ship_lat, o.ship_lng, o.created_at, o.updated_at"

// GetByID returns one order with all of its line items.
func (r *OrderRepo) GetByID(ctx context.Context, id uint64) (model.Order, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+orderCols+" FROM orders o WHERE o.id=? LIMIT 1", id)
	o, err := scanOrder(row, false)
	if err == sql.ErrNoRows {
		return o, ErrNotFound
	}
	if err != nil {
		return o, err
	}
	items, err := r.itemsFor(ctx, []uint64{o.ID})
	if err != nil {
		return o, err
	}
	o.Items = items[o.ID]
	return o, nil
}

// ListByCustomer returns a customer's orders, newest first, each with its
// full item list.
func (r *OrderRepo) ListByCustomer(ctx context.Context, userID uint64) ([]model.Order, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+orderCols+" FROM orders o WHERE o.user_id=? ORDER BY o.created_at DESC", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []model.Order{}
	ids := []uint64{}
	for rows.Next() {
		o, err := scanOrder(rows, false)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	items, err := r.itemsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
	}
	return orders, nil
}

// ListBySeller returns every order containing at least one of the seller's
// line items, newest first, with each order's items projected down to that
// seller's own lines and the customer's contact attached.
func (r *OrderRepo) ListBySeller(ctx context.Context, sellerID uint64) ([]model.Order, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT `+orderCols+`, u.name, u.phone
		FROM orders o
		JOIN order_items i ON i.order_id = o.id
		JOIN users u ON u.id = o.user_id
		WHERE i.seller_id = ?
		ORDER BY o.created_at DESC`, sellerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []model.Order{}
	ids := []uint64{}
	for rows.Next() {
		o, err := scanOrder(rows, true)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	items, err := r.itemsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
		// The seller sees only their own lines of a shared order.
		orders[i].Items = orders[i].SellerItems(sellerID)
	}
	return orders, nil
}

// UpdateStatus moves an order to a new status. The actor must own at
// least one line item unless isAdmin; the transition table applies, and
// re-setting the current status is a no-op success. The status is one
// shared field for the whole order, so one seller's update affects every
// seller's view of it.
func (r *OrderRepo) UpdateStatus(ctx context.Context, orderID, actorID uint64, isAdmin bool, status string) (model.Order, error) {
	o, err := r.GetByID(ctx, orderID)
	if err != nil {
		return o, err
	}
	if !isAdmin && !o.OwnsLine(actorID) {
		return o, ErrForbidden
	}
	if !model.CanTransitionOrder(o.Status, status) {
		return o, ErrInvalidTransition
	}
	if _, err := r.db.ExecContext(ctx,
		"UPDATE orders SET status=? WHERE id=?", status, orderID); err != nil {
		return o, err
	}
	o.Status = status
	return o, nil
}
