package model

import (
	"fmt"
	"time"
)

// Listing kinds. The kind discriminates which variant payload applies.
const (
	KindProduct = "product"
	KindService = "service"
	KindMachine = "machine"
)

// ValidKind reports whether s names a known listing kind.
func ValidKind(s string) bool {
	return s == KindProduct || s == KindService || s == KindMachine
}

// Machine rate units accepted by MachineDetails.RateUnit.
var machineRateUnits = map[string]bool{
	"hour": true, "day": true, "feet": true, "meter": true, "trip": true, "load": true,
}

// Listing is the polymorphic sellable unit. The shared fields live on the
// struct directly; exactly one of the three variant payloads is non-nil,
// selected by Kind. Modeling the variants as a tagged union keeps
// validation exhaustive over the kind enum and avoids downcasting.
//
// Location is a mandatory [longitude, latitude] point; geo-radius queries
// and nearest-first ordering are computed from it by the store.
type Listing struct {
	ID          uint64    `json:"id"`
	UserID      uint64    `json:"user_id"`
	Kind        string    `json:"kind"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Images      []string  `json:"images"`
	Lat         float64   `json:"lat"`
	Lng         float64   `json:"lng"`
	Address     string    `json:"address,omitempty"`
	Rating      float64   `json:"rating"`
	NumReviews  uint32    `json:"num_reviews"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Product *ProductDetails `json:"product,omitempty"`
	Service *ServiceDetails `json:"service,omitempty"`
	Machine *MachineDetails `json:"machine,omitempty"`

	// Denormalized owner contact, populated by read queries only.
	OwnerName  string `json:"owner_name,omitempty"`
	OwnerPhone string `json:"owner_phone,omitempty"`

	// DistanceKm is set on geo-filtered query results (distance from the
	// query center). Display-only, never persisted.
	DistanceKm *float64 `json:"distance_km,omitempty"`
}

// ProductDetails carries the product-variant fields: a unit price, stock
// on hand and optional brand/specification metadata.
type ProductDetails struct {
	Price          float64           `json:"price"`
	Unit           string            `json:"unit"` // e.g. "kg", "ton", "bag"
	Stock          int               `json:"stock"`
	Brand          string            `json:"brand,omitempty"`
	Specifications map[string]string `json:"specifications,omitempty"`
}

// ServiceDetails carries the service-variant fields. Bookings against a
// service are priced from DailyRate and VisitCharge.
type ServiceDetails struct {
	HourlyRate      float64  `json:"hourly_rate"`
	DailyRate       float64  `json:"daily_rate"`
	VisitCharge     float64  `json:"visit_charge"`
	ExperienceYears int      `json:"experience_years"`
	Skills          []string `json:"skills,omitempty"`
	Availability    string   `json:"availability"`
	IsVerified      bool     `json:"is_verified"`
}

// MachineDetails carries the machine-variant fields. HourlyRate holds the
// rate value regardless of RateUnit; PerFeetRate is a legacy field kept for
// rows migrated from the old schema.
type MachineDetails struct {
	HourlyRate    float64 `json:"hourly_rate"`
	RateUnit      string  `json:"rate_unit"`
	PerFeetRate   float64 `json:"per_feet_rate,omitempty"`
	ModelName     string  `json:"model_name,omitempty"`
	Capacity      string  `json:"capacity,omitempty"`
	OwnerOperator bool    `json:"owner_operator"`
}

// Validate checks the listing's shared and variant fields, aggregating
// every violation rather than stopping at the first. A nil return means
// the listing is well formed.
func (l *Listing) Validate() []string {
	var errs []string
	if l.Title == "" {
		errs = append(errs, "title is required")
	}
	if len(l.Title) > 100 {
		errs = append(errs, "title cannot be more than 100 characters")
	}
	if l.Description == "" {
		errs = append(errs, "description is required")
	}
	if len(l.Description) > 1000 {
		errs = append(errs, "description cannot be more than 1000 characters")
	}
	if l.Category == "" {
		errs = append(errs, "category is required")
	}
	if l.Lat < -90 || l.Lat > 90 {
		errs = append(errs, "latitude must be between -90 and 90")
	}
	if l.Lng < -180 || l.Lng > 180 {
		errs = append(errs, "longitude must be between -180 and 180")
	}
	if l.Lat == 0 && l.Lng == 0 {
		errs = append(errs, "latitude and longitude are required for matching with nearby customers")
	}

	switch l.Kind {
	case KindProduct:
		if l.Product == nil {
			errs = append(errs, "product details are required")
			break
		}
		if l.Product.Price <= 0 {
			errs = append(errs, "price is required")
		}
		if l.Product.Unit == "" {
			errs = append(errs, "unit is required")
		}
		if l.Product.Stock < 0 {
			errs = append(errs, "stock cannot be negative")
		}
	case KindService:
		if l.Service == nil {
			errs = append(errs, "service details are required")
			break
		}
		if l.Service.DailyRate <= 0 && l.Service.HourlyRate <= 0 {
			errs = append(errs, "a daily or hourly rate is required")
		}
		if l.Service.VisitCharge < 0 {
			errs = append(errs, "visit charge cannot be negative")
		}
	case KindMachine:
		if l.Machine == nil {
			errs = append(errs, "machine details are required")
			break
		}
		if l.Machine.HourlyRate <= 0 {
			errs = append(errs, "rate value is required")
		}
		if l.Machine.RateUnit != "" && !machineRateUnits[l.Machine.RateUnit] {
			errs = append(errs, fmt.Sprintf("unknown rate unit %q", l.Machine.RateUnit))
		}
	default:
		errs = append(errs, fmt.Sprintf("invalid listing kind %q", l.Kind))
	}
	return errs
}

// Normalize fills variant defaults that the store expects before insert:
// machine rate unit falls back to "hour", service availability to
// "All Days".
func (l *Listing) Normalize() {
	if l.Machine != nil && l.Machine.RateUnit == "" {
		l.Machine.RateUnit = "hour"
	}
	if l.Service != nil && l.Service.Availability == "" {
		l.Service.Availability = "All Days"
	}
}
