package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/etukas/marketplace/internal/model"
)

// ListingRepo provides CRUD and search over the listings table. All three
// variants live in one table discriminated by `kind`, so category and geo
// filters apply uniformly.
type ListingRepo struct{ db *sql.DB }

func NewListingRepo(db *sql.DB) *ListingRepo { return &ListingRepo{db: db} }

// ListingQuery defines filters and pagination for searching listings.
// When Lat/Lng are set the query is geo-filtered: only listings within
// DistanceKm (great-circle) are returned, ordered nearest-first, and Sort
// is ignored. Without a geo filter the default order is newest first.
type ListingQuery struct {
	Category   string
	Kind       string
	ActiveOnly bool
	Lat, Lng   *float64
	DistanceKm float64 // default 10 when a geo center is given
	Sort       string  // comma-separated keys, "-" prefix for descending
	Page       int
	Limit      int
}

// sortColumns whitelists client-supplied sort keys against real columns.
var sortColumns = map[string]string{
	"created_at": "l.created_at",
	"title":      "l.title",
	"price":      "l.price",
	"rating":     "l.rating",
}

// buildListingFilter translates a ListingQuery into a WHERE condition,
// its arguments and the ORDER BY clause. Split out from Search so the SQL
// shaping is testable without a database.
func buildListingFilter(q ListingQuery) (cond string, args []any, orderBy string) {
	where := []string{}

	if q.Category != "" {
		where = append(where, "l.category = ?")
		args = append(args, q.Category)
	}
	if q.Kind != "" {
		where = append(where, "l.kind = ?")
		args = append(args, q.Kind)
	}
	if q.ActiveOnly {
		where = append(where, "l.is_active = TRUE")
	}

	geo := q.Lat != nil && q.Lng != nil
	if geo {
		dist := q.DistanceKm
		if dist <= 0 {
			dist = 10 // default radius in km
		}
		// ST_Distance_Sphere returns meters; POINT takes (lng, lat).
		where = append(where, "ST_Distance_Sphere(POINT(l.lng, l.lat), POINT(?, ?)) <= ?")
		args = append(args, *q.Lng, *q.Lat, dist*1000)
	}

	cond = "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}

	// Geo queries are inherently nearest-first and must not be re-sorted.
	if geo {
		return cond, args, "distance_m ASC"
	}
	if q.Sort != "" {
		keys := []string{}
		for _, k := range strings.Split(q.Sort, ",") {
			k = strings.TrimSpace(k)
			dir := " ASC"
			if strings.HasPrefix(k, "-") {
				k = k[1:]
				dir = " DESC"
			}
			if col, ok := sortColumns[k]; ok {
				keys = append(keys, col+dir)
			}
		}
		if len(keys) > 0 {
			return cond, args, strings.Join(keys, ", ")
		}
	}
	return cond, args, "l.created_at DESC"
}

const listingCols = `l.id, l.user_id, l.kind, l.title, l.description, l.category, l.images,
	l.lat, l.lng, l.address, l.rating, l.num_reviews, l.is_active,
	l.price, l.unit, l.stock, l.brand, l.specifications,
	l.hourly_rate, l.daily_rate, l.visit_charge, l.experience_years, l.skills, l.availability, l.is_verified,
	l.rate_unit, l.per_feet_rate, l.model_name, l.capacity, l.owner_operator,
	l.created_at, l.updated_at, u.name, u.phone`

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface{ Scan(dest ...any) error }

// scanListing reads one joined listings/users row and folds the nullable
// variant columns into the payload selected by kind.
func scanListing(s rowScanner, withDistance bool) (model.Listing, error) {
	var l model.Listing
	var images, specs, skills []byte
	var address sql.NullString
	var price, hourly, daily, visit, perFeet sql.NullFloat64
	var stock, expYears sql.NullInt64
	var unit, brand, availability, rateUnit, modelName, capacity sql.NullString
	var verified, ownerOp sql.NullBool
	var distanceM sql.NullFloat64

	dest := []any{
		&l.ID, &l.UserID, &l.Kind, &l.Title, &l.Description, &l.Category, &images,
		&l.Lat, &l.Lng, &address, &l.Rating, &l.NumReviews, &l.IsActive,
		&price, &unit, &stock, &brand, &specs,
		&hourly, &daily, &visit, &expYears, &skills, &availability, &verified,
		&rateUnit, &perFeet, &modelName, &capacity, &ownerOp,
		&l.CreatedAt, &l.UpdatedAt, &l.OwnerName, &l.OwnerPhone,
	}
	if withDistance {
		dest = append(dest, &distanceM)
	}
	if err := s.Scan(dest...); err != nil {
		return l, err
	}

	l.Address = address.String
	if len(images) > 0 {
		_ = json.Unmarshal(images, &l.Images)
	}
	switch l.Kind {
	case model.KindProduct:
		p := &model.ProductDetails{
			Price: price.Float64,
			Unit:  unit.String,
			Stock: int(stock.Int64),
			Brand: brand.String,
		}
		if len(specs) > 0 {
			_ = json.Unmarshal(specs, &p.Specifications)
		}
		l.Product = p
	case model.KindService:
		sv := &model.ServiceDetails{
			HourlyRate:      hourly.Float64,
			DailyRate:       daily.Float64,
			VisitCharge:     visit.Float64,
			ExperienceYears: int(expYears.Int64),
			Availability:    availability.String,
			IsVerified:      verified.Bool,
		}
		if len(skills) > 0 {
			_ = json.Unmarshal(skills, &sv.Skills)
		}
		l.Service = sv
	case model.KindMachine:
		l.Machine = &model.MachineDetails{
			HourlyRate:    hourly.Float64,
			RateUnit:      rateUnit.String,
			PerFeetRate:   perFeet.Float64,
			ModelName:     modelName.String,
			Capacity:      capacity.String,
			OwnerOperator: ownerOp.Bool,
		}
	}
	if withDistance && distanceM.Valid {
		km := distanceM.Float64 / 1000
		l.DistanceKm = &km
	}
	return l, nil
}

// Create inserts a listing with its variant columns and returns the
// stored row. The caller is responsible for validation.
func (r *ListingRepo) Create(ctx context.Context, l *model.Listing) (model.Listing, error) {
	images, err := json.Marshal(l.Images)
	if err != nil {
		return model.Listing{}, err
	}

	var price, hourly, daily, visit, perFeet sql.NullFloat64
	var stock, expYears sql.NullInt64
	var unit, brand, availability, rateUnit, modelName, capacity sql.NullString
	var verified, ownerOp sql.NullBool
	var specs, skills []byte

	switch l.Kind {
	case model.KindProduct:
		p := l.Product
		price = sql.NullFloat64{Float64: p.Price, Valid: true}
		unit = sql.NullString{String: p.Unit, Valid: true}
		stock = sql.NullInt64{Int64: int64(p.Stock), Valid: true}
		if p.Brand != "" {
			brand = sql.NullString{String: p.Brand, Valid: true}
		}
		if len(p.Specifications) > 0 {
			if specs, err = json.Marshal(p.Specifications); err != nil {
				return model.Listing{}, err
			}
		}
	case model.KindService:
		s := l.Service
		hourly = sql.NullFloat64{Float64: s.HourlyRate, Valid: true}
		daily = sql.NullFloat64{Float64: s.DailyRate, Valid: true}
		visit = sql.NullFloat64{Float64: s.VisitCharge, Valid: true}
		expYears = sql.NullInt64{Int64: int64(s.ExperienceYears), Valid: true}
		availability = sql.NullString{String: s.Availability, Valid: true}
		verified = sql.NullBool{Bool: s.IsVerified, Valid: true}
		if len(s.Skills) > 0 {
			if skills, err = json.Marshal(s.Skills); err != nil {
				return model.Listing{}, err
			}
		}
	case model.KindMachine:
		m := l.Machine
		hourly = sql.NullFloat64{Float64: m.HourlyRate, Valid: true}
		rateUnit = sql.NullString{String: m.RateUnit, Valid: true}
		if m.PerFeetRate > 0 {
			perFeet = sql.NullFloat64{Float64: m.PerFeetRate, Valid: true}
		}
		if m.ModelName != "" {
			modelName = sql.NullString{String: m.ModelName, Valid: true}
		}
		if m.Capacity != "" {
			capacity = sql.NullString{String: m.Capacity, Valid: true}
		}
		ownerOp = sql.NullBool{Bool: m.OwnerOperator, Valid: true}
	}

	var addr interface{}
	if l.Address != "" {
		addr = l.Address
	}

	res, err := r.db.ExecContext(ctx, `INSERT INTO listings
		(user_id, kind, title, description, category, images, lat, lng, address, is_active,
		 price, unit, stock, brand, specifications,
		 hourly_rate, daily_rate, visit_charge, experience_years, skills, availability, is_verified,
		 rate_unit, per_feet_rate, model_name, capacity, owner_operator)
		VALUES (?,?,?,?,?,?,?,?,?,TRUE,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		l.UserID, l.Kind, l.Title, l.Description, l.Category, images, l.Lat, l.Lng, addr,
		price, unit, stock, brand, specs,
		hourly, daily, visit, expYears, skills, availability, verified,
		rateUnit, perFeet, modelName, capacity, ownerOp)
	if err != nil {
		return model.Listing{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Listing{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID returns one listing joined with its owner's public contact.
func (r *ListingRepo) GetByID(ctx context.Context, id uint64) (model.Listing, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+listingCols+" FROM listings l JOIN users u ON u.id = l.user_id WHERE l.id=? LIMIT 1", id)
	l, err := scanListing(row, false)
	if err == sql.ErrNoRows {
		return l, ErrNotFound
	}
	return l, err
}

// Update rewrites a listing's mutable columns. The handler merges the
// patch into a loaded listing and re-validates before calling this.
func (r *ListingRepo) Update(ctx context.Context, l *model.Listing) error {
	images, err := json.Marshal(l.Images)
	if err != nil {
		return err
	}
	var specs, skills []byte
	args := []any{l.Title, l.Description, l.Category, images, l.Lat, l.Lng, l.Address, l.IsActive}
	set := `title=?, description=?, category=?, images=?, lat=?, lng=?, address=?, is_active=?`

	switch l.Kind {
	case model.KindProduct:
		if len(l.Product.Specifications) > 0 {
			if specs, err = json.Marshal(l.Product.Specifications); err != nil {
				return err
			}
		}
		set += `, price=?, unit=?, stock=?, brand=?, specifications=?`
		args = append(args, l.Product.Price, l.Product.Unit, l.Product.Stock, l.Product.Brand, specs)
	case model.KindService:
		if len(l.Service.Skills) > 0 {
			if skills, err = json.Marshal(l.Service.Skills); err != nil {
				return err
			}
		}
		set += `, hourly_rate=?, daily_rate=?, visit_charge=?, experience_years=?, skills=?, availability=?, is_verified=?`
		args = append(args, l.Service.HourlyRate, l.Service.DailyRate, l.Service.VisitCharge,
			l.Service.ExperienceYears, skills, l.Service.Availability, l.Service.IsVerified)
	case model.KindMachine:
		set += `, hourly_rate=?, rate_unit=?, per_feet_rate=?, model_name=?, capacity=?, owner_operator=?`
		args = append(args, l.Machine.HourlyRate, l.Machine.RateUnit, l.Machine.PerFeetRate,
			l.Machine.ModelName, l.Machine.Capacity, l.Machine.OwnerOperator)
	}

	args = append(args, l.ID)
	res, err := r.db.ExecContext(ctx, "UPDATE listings SET "+set+" WHERE id=?", args...)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// Zero rows can also mean a no-op update; confirm existence.
		if _, err := r.GetByID(ctx, l.ID); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a listing. Bookings and orders keep their denormalized
// snapshot of it, so no cascade happens here.
func (r *ListingRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM listings WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// Search returns one page of listings matching the query plus the total
// match count. Geo-filtered results carry DistanceKm and arrive
// nearest-first; others follow the requested sort, newest first by
// default.
func (r *ListingRepo) Search(ctx context.Context, q ListingQuery) ([]model.Listing, int64, error) {
	cond, args, orderBy := buildListingFilter(q)
	geo := q.Lat != nil && q.Lng != nil

	var total int64
	countSQL := "SELECT COUNT(*) FROM listings l WHERE " + cond
	if err := r.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	limit := q.Limit
	if limit < 1 {
		limit = 20
	}

	cols := listingCols
	// Placeholders bind in order of appearance, so the projected distance
	// arguments must precede the WHERE arguments.
	dataArgs := []any{}
	if geo {
		// Expose the distance both for ordering and for the response.
		cols += ", ST_Distance_Sphere(POINT(l.lng, l.lat), POINT(?, ?)) AS distance_m"
		dataArgs = append(dataArgs, *q.Lng, *q.Lat)
	}
	dataArgs = append(dataArgs, args...)
	dataSQL := "SELECT " + cols + " FROM listings l JOIN users u ON u.id = l.user_id WHERE " + cond +
		" ORDER BY " + orderBy + " LIMIT ? OFFSET ?"
	dataArgs = append(dataArgs, limit, (page-1)*limit)

	rows, err := r.db.QueryContext(ctx, dataSQL, dataArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]model.Listing, 0, limit)
	for rows.Next() {
		l, err := scanListing(rows, geo)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
