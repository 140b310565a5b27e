package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/etukas/marketplace/internal/model"
	"github.com/etukas/marketplace/internal/repository"
)

// ListingHandler serves the public listing query surface and the
// seller-side mutations.
type ListingHandler struct {
	Listings *repository.ListingRepo
}

func NewListingHandler(l *repository.ListingRepo) *ListingHandler {
	return &ListingHandler{Listings: l}
}

// pageDesc describes an adjacent page in a paginated response.
type pageDesc struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// List answers GET /listings with optional category/kind filters, an
// optional geo-radius filter (lat, lng, distance in km, default 10) and
// pagination. Geo-filtered results come back nearest-first; otherwise the
// sort key applies, newest first by default.
func (h *ListingHandler) List(c echo.Context) error {
	q := repository.ListingQuery{
		Category: c.QueryParam("category"),
		Kind:     c.QueryParam("type"),
		Sort:     c.QueryParam("sort"),
		Page:     1,
		Limit:    20,
	}
	if v := c.QueryParam("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			q.Page = n
		}
	}
	if v := c.QueryParam("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			q.Limit = n
		}
	}

	latS, lngS := c.QueryParam("lat"), c.QueryParam("lng")
	if latS != "" && lngS != "" {
		lat, errLat := strconv.ParseFloat(latS, 64)
		lng, errLng := strconv.ParseFloat(lngS, 64)
		if errLat != nil || errLng != nil {
			return fail(c, http.StatusBadRequest, kindValidation, "lat/lng must be numbers")
		}
		q.Lat, q.Lng = &lat, &lng
		if v := c.QueryParam("distance"); v != "" {
			if d, err := strconv.ParseFloat(v, 64); err == nil {
				q.DistanceKm = d
			}
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	listings, total, err := h.Listings.Search(ctx, q)
	if err != nil {
		return fail(c, http.StatusInternalServerError, kindServerError, "query failed")
	}

	pagination := echo.Map{}
	if int64(q.Page*q.Limit) < total {
		pagination["next"] = pageDesc{Page: q.Page + 1, Limit: q.Limit}
	}
	if q.Page > 1 {
		pagination["prev"] = pageDesc{Page: q.Page - 1, Limit: q.Limit}
	}

	var data any = listings
	if sel := c.QueryParam("select"); sel != "" {
		data = projectFields(listings, sel)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":    true,
		"count":      len(listings),
		"total":      total,
		"pagination": pagination,
		"data":       data,
	})
}

// projectFields reduces each listing to the requested comma-separated
// JSON fields (id always included). Unknown fields are simply absent.
func projectFields(listings []model.Listing, sel string) []map[string]any {
	keep := map[string]bool{"id": true}
	for _, f := range strings.Split(sel, ",") {
		if f = strings.TrimSpace(f); f != "" {
			keep[f] = true
		}
	}
	out := make([]map[string]any, 0, len(listings))
	for i := range listings {
		raw, err := json.Marshal(&listings[i])
		if err != nil {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal(raw, &m); err != nil {
			continue
		}
		for k := range m {
			if !keep[k] {
				delete(m, k)
			}
		}
		out = append(out, m)
	}
	return out
}

// Get answers GET /listings/:id with the owner's public contact attached.
func (h *ListingHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusNotFound, kindNotFound, "listing not found")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	l, err := h.Listings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, kindNotFound, "listing not found")
		}
		return fail(c, http.StatusInternalServerError, kindServerError, "query failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": l})
}

// createListingReq is the flat creation form; which fields matter depends
// on `type`.
type createListingReq struct {
	Type        string   `json:"type"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	Address     string   `json:"address"`
	Images      []string `json:"images"`

	// product
	Price          float64           `json:"price"`
	Unit           string            `json:"unit"`
	Stock          int               `json:"stock"`
	Brand          string            `json:"brand"`
	Specifications map[string]string `json:"specifications"`

	// service
	HourlyRate      float64    `json:"hourlyRate"`
	DailyRate       float64    `json:"dailyRate"`
	VisitCharge     float64    `json:"visitCharge"`
	ExperienceYears int        `json:"experienceYears"`
	Skills          stringList `json:"skills"`
	Availability    string     `json:"availability"`

	// machine
	MachineRateUnit string  `json:"machineRateUnit"`
	PerFeetRate     float64 `json:"perFeetRate"`
	ModelName       string  `json:"modelName"`
	Capacity        string  `json:"capacity"`
	OwnerOperator   *bool   `json:"ownerOperator"`
}

func (req *createListingReq) toListing(ownerID uint64) *model.Listing {
	l := &model.Listing{
		UserID:      ownerID,
		Kind:        req.Type,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Category:    req.Category,
		Images:      req.Images,
		Address:     req.Address,
		IsActive:    true,
	}
	if req.Latitude != nil {
		l.Lat = *req.Latitude
	}
	if req.Longitude != nil {
		l.Lng = *req.Longitude
	}
	switch req.Type {
	case model.KindProduct:
		l.Product = &model.ProductDetails{
			Price: req.Price, Unit: req.Unit, Stock: req.Stock,
			Brand: req.Brand, Specifications: req.Specifications,
		}
	case model.KindService:
		l.Service = &model.ServiceDetails{
			HourlyRate: req.HourlyRate, DailyRate: req.DailyRate, VisitCharge: req.VisitCharge,
			ExperienceYears: req.ExperienceYears, Skills: req.Skills, Availability: req.Availability,
		}
	case model.KindMachine:
		ownerOp := true
		if req.OwnerOperator != nil {
			ownerOp = *req.OwnerOperator
		}
		l.Machine = &model.MachineDetails{
			HourlyRate: req.HourlyRate, RateUnit: req.MachineRateUnit, PerFeetRate: req.PerFeetRate,
			ModelName: req.ModelName, Capacity: req.Capacity, OwnerOperator: ownerOp,
		}
	}
	return l
}

// Create answers POST /listings for selling roles.
func (h *ListingHandler) Create(c echo.Context) error {
	uid, _ := currentUser(c)
	var req createListingReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, kindValidation, "invalid body")
	}
	if !model.ValidKind(req.Type) {
		return fail(c, http.StatusBadRequest, kindInvalidKind, "invalid listing type")
	}
	if req.Latitude == nil || req.Longitude == nil {
		return fail(c, http.StatusBadRequest, kindValidation,
			"latitude and longitude are required for matching with nearby customers")
	}

	l := req.toListing(uid)
	l.Normalize()
	if msgs := l.Validate(); len(msgs) > 0 {
		return failFields(c, msgs)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	created, err := h.Listings.Create(ctx, l)
	if err != nil {
		return fail(c, http.StatusInternalServerError, kindServerError, "create listing failed")
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": created})
}

// updateListingReq is a partial patch; nil fields stay untouched.
type updateListingReq struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Category    *string   `json:"category"`
	Latitude    *float64  `json:"latitude"`
	Longitude   *float64  `json:"longitude"`
	Address     *string   `json:"address"`
	Images      *[]string `json:"images"`
	IsActive    *bool     `json:"is_active"`

	Price          *float64           `json:"price"`
	Unit           *string            `json:"unit"`
	Stock          *int               `json:"stock"`
	Brand          *string            `json:"brand"`
	Specifications *map[string]string `json:"specifications"`

	HourlyRate      *float64    `json:"hourlyRate"`
	DailyRate       *float64    `json:"dailyRate"`
	VisitCharge     *float64    `json:"visitCharge"`
	ExperienceYears *int        `json:"experienceYears"`
	Skills          *stringList `json:"skills"`
	Availability    *string     `json:"availability"`

	MachineRateUnit *string  `json:"machineRateUnit"`
	PerFeetRate     *float64 `json:"perFeetRate"`
	ModelName       *string  `json:"modelName"`
	Capacity        *string  `json:"capacity"`
	OwnerOperator   *bool    `json:"ownerOperator"`
}

func applyPatch(l *model.Listing, p *updateListingReq) {
	setStr := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	setStr(&l.Title, p.Title)
	setStr(&l.Description, p.Description)
	setStr(&l.Category, p.Category)
	setStr(&l.Address, p.Address)
	if p.Latitude != nil {
		l.Lat = *p.Latitude
	}
	if p.Longitude != nil {
		l.Lng = *p.Longitude
	}
	if p.Images != nil {
		l.Images = *p.Images
	}
	if p.IsActive != nil {
		l.IsActive = *p.IsActive
	}

	switch l.Kind {
	case model.KindProduct:
		if p.Price != nil {
			l.Product.Price = *p.Price
		}
		setStr(&l.Product.Unit, p.Unit)
		if p.Stock != nil {
			l.Product.Stock = *p.Stock
		}
		setStr(&l.Product.Brand, p.Brand)
		if p.Specifications != nil {
			l.Product.Specifications = *p.Specifications
		}
	case model.KindService:
		if p.HourlyRate != nil {
			l.Service.HourlyRate = *p.HourlyRate
		}
		if p.DailyRate != nil {
			l.Service.DailyRate = *p.DailyRate
		}
		if p.VisitCharge != nil {
			l.Service.VisitCharge = *p.VisitCharge
		}
		if p.ExperienceYears != nil {
			l.Service.ExperienceYears = *p.ExperienceYears
		}
		if p.Skills != nil {
			l.Service.Skills = *p.Skills
		}
		setStr(&l.Service.Availability, p.Availability)
	case model.KindMachine:
		if p.HourlyRate != nil {
			l.Machine.HourlyRate = *p.HourlyRate
		}
		setStr(&l.Machine.RateUnit, p.MachineRateUnit)
		if p.PerFeetRate != nil {
			l.Machine.PerFeetRate = *p.PerFeetRate
		}
		setStr(&l.Machine.ModelName, p.ModelName)
		setStr(&l.Machine.Capacity, p.Capacity)
		if p.OwnerOperator != nil {
			l.Machine.OwnerOperator = *p.OwnerOperator
		}
	}
}

// loadOwned fetches a listing and verifies the caller may mutate it
// (owner or admin).
func (h *ListingHandler) loadOwned(ctx context.Context, c echo.Context) (*model.Listing, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	l, err := h.Listings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	uid, role := currentUser(c)
	if l.UserID != uid && role != model.RoleAdmin {
		return nil, repository.ErrForbidden
	}
	return &l, nil
}

func (h *ListingHandler) ownershipError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return fail(c, http.StatusNotFound, kindNotFound, "listing not found")
	case errors.Is(err, repository.ErrForbidden):
		return fail(c, http.StatusForbidden, kindForbidden, "not authorized for this listing")
	}
	return fail(c, http.StatusInternalServerError, kindServerError, "query failed")
}

// Update answers PUT /listings/:id, applying a partial patch with
// re-validation. Only the owner or an admin may update; the kind itself
// is immutable.
func (h *ListingHandler) Update(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	l, err := h.loadOwned(ctx, c)
	if err != nil {
		return h.ownershipError(c, err)
	}
	var patch updateListingReq
	if err := c.Bind(&patch); err != nil {
		return fail(c, http.StatusBadRequest, kindValidation, "invalid body")
	}
	applyPatch(l, &patch)
	if msgs := l.Validate(); len(msgs) > 0 {
		return failFields(c, msgs)
	}
	if err := h.Listings.Update(ctx, l); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, kindNotFound, "listing not found")
		}
		return fail(c, http.StatusInternalServerError, kindServerError, "update listing failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": l})
}

// Delete answers DELETE /listings/:id. Hard delete, no cascade: existing
// bookings and orders keep their denormalized snapshot of the listing.
func (h *ListingHandler) Delete(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	l, err := h.loadOwned(ctx, c)
	if err != nil {
		return h.ownershipError(c, err)
	}
	if err := h.Listings.Delete(ctx, l.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, kindNotFound, "listing not found")
		}
		return fail(c, http.StatusInternalServerError, kindServerError, "delete listing failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{}})
}
