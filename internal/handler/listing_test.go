package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/etukas/marketplace/internal/model"
)

func TestProjectFields(t *testing.T) {
	listings := []model.Listing{
		{ID: 1, Kind: model.KindProduct, Title: "Cement 50kg", Category: "Cement", Description: "OPC 53 bags."},
		{ID: 2, Kind: model.KindService, Title: "Mason Crew", Category: "Masonry", Description: "Brickwork."},
	}

	out := projectFields(listings, "title,category")
	assert.Len(t, out, 2)

	// Requested fields plus id survive; everything else is stripped.
	assert.Equal(t, "Cement 50kg", out[0]["title"])
	assert.Equal(t, "Cement", out[0]["category"])
	assert.Contains(t, out[0], "id")
	assert.NotContains(t, out[0], "description")
	assert.NotContains(t, out[0], "kind")

	// Unknown field names are simply absent, not an error.
	out = projectFields(listings, "no_such_field")
	assert.Contains(t, out[0], "id")
	assert.NotContains(t, out[0], "no_such_field")
	assert.NotContains(t, out[0], "title")
}

func TestApplyPatchShared(t *testing.T) {
	l := model.Listing{
		Kind: model.KindProduct, Title: "Old", Description: "Old desc",
		Category: "Cement", Lat: 17.0, Lng: 78.0, IsActive: true,
		Product: &model.ProductDetails{Price: 400, Unit: "bag", Stock: 10},
	}

	title := "New title"
	lat := 17.5
	active := false
	applyPatch(&l, &updateListingReq{Title: &title, Latitude: &lat, IsActive: &active})

	assert.Equal(t, "New title", l.Title)
	assert.Equal(t, 17.5, l.Lat)
	assert.False(t, l.IsActive)

	// Fields omitted from the patch keep their values.
	assert.Equal(t, "Old desc", l.Description)
	assert.Equal(t, 78.0, l.Lng)
	assert.Equal(t, 400.0, l.Product.Price)
}

func TestApplyPatchVariant(t *testing.T) {
	l := model.Listing{
		Kind:    model.KindService,
		Service: &model.ServiceDetails{DailyRate: 1000, VisitCharge: 100, Skills: []string{"brickwork"}},
	}

	rate := 1500.0
	skills := stringList{"brickwork", "plastering"}
	applyPatch(&l, &updateListingReq{DailyRate: &rate, Skills: &skills})

	assert.Equal(t, 1500.0, l.Service.DailyRate)
	assert.Equal(t, []string{"brickwork", "plastering"}, l.Service.Skills)
	assert.Equal(t, 100.0, l.Service.VisitCharge)
}
