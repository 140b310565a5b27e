package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func validServiceListing() Listing {
	return Listing{
		Kind:        KindService,
		Title:       "Experienced Mason Crew",
		Description: "Brickwork and plastering for residential sites.",
		Category:    "Masonry",
		Lat:         17.3850,
		Lng:         78.4867,
		Service:     &ServiceDetails{DailyRate: 1200, VisitCharge: 100},
	}
}

func TestListingValidateOK(t *testing.T) {
	l := validServiceListing()
	assert.Empty(t, l.Validate())

	p := Listing{
		Kind: KindProduct, Title: "Cement 50kg", Description: "OPC 53 bags.",
		Category: "Cement", Lat: 17.4, Lng: 78.5,
		Product: &ProductDetails{Price: 420, Unit: "bag", Stock: 100},
	}
	assert.Empty(t, p.Validate())

	m := Listing{
		Kind: KindMachine, Title: "JCB 3DX", Description: "Backhoe with operator.",
		Category: "Earthmovers", Lat: 17.4, Lng: 78.5,
		Machine: &MachineDetails{HourlyRate: 900, RateUnit: "hour"},
	}
	assert.Empty(t, m.Validate())
}

func TestListingValidateAggregates(t *testing.T) {
	// An empty listing reports every shared violation at once, not just
	// the first.
	l := Listing{Kind: KindProduct}
	errs := l.Validate()
	assert.Contains(t, errs, "title is required")
	assert.Contains(t, errs, "description is required")
	assert.Contains(t, errs, "category is required")
	assert.Contains(t, errs, "latitude and longitude are required for matching with nearby customers")
	assert.Contains(t, errs, "product details are required")
}

func TestListingValidateLimits(t *testing.T) {
	l := validServiceListing()
	l.Title = strings.Repeat("x", 101)
	l.Description = strings.Repeat("y", 1001)
	errs := l.Validate()
	assert.Contains(t, errs, "title cannot be more than 100 characters")
	assert.Contains(t, errs, "description cannot be more than 1000 characters")
}

func TestListingValidateCoordinates(t *testing.T) {
	l := validServiceListing()
	l.Lat = 91
	l.Lng = -200
	errs := l.Validate()
	assert.Contains(t, errs, "latitude must be between -90 and 90")
	assert.Contains(t, errs, "longitude must be between -180 and 180")
}

func TestListingValidateVariants(t *testing.T) {
	s := validServiceListing()
	s.Service = &ServiceDetails{VisitCharge: -1}
	errs := s.Validate()
	assert.Contains(t, errs, "a daily or hourly rate is required")
	assert.Contains(t, errs, "visit charge cannot be negative")

	m := validServiceListing()
	m.Kind = KindMachine
	m.Service = nil
	m.Machine = &MachineDetails{HourlyRate: 500, RateUnit: "fortnight"}
	assert.Contains(t, m.Validate(), `unknown rate unit "fortnight"`)

	bad := validServiceListing()
	bad.Kind = "vehicle"
	assert.Contains(t, bad.Validate(), `invalid listing kind "vehicle"`)
}

func TestListingNormalize(t *testing.T) {
	m := Listing{Kind: KindMachine, Machine: &MachineDetails{HourlyRate: 500}}
	m.Normalize()
	assert.Equal(t, "hour", m.Machine.RateUnit)

	s := Listing{Kind: KindService, Service: &ServiceDetails{DailyRate: 1000}}
	s.Normalize()
	assert.Equal(t, "All Days", s.Service.Availability)

	// Explicit values survive.
	m2 := Listing{Kind: KindMachine, Machine: &MachineDetails{HourlyRate: 500, RateUnit: "day"}}
	m2.Normalize()
	assert.Equal(t, "day", m2.Machine.RateUnit)
}

func TestValidKind(t *testing.T) {
	assert.True(t, ValidKind(KindProduct))
	assert.True(t, ValidKind(KindService))
	assert.True(t, ValidKind(KindMachine))
	assert.False(t, ValidKind("vehicle"))
	assert.False(t, ValidKind(""))
}
