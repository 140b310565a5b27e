package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildListingFilterEmpty(t *testing.T) {
	cond, args, orderBy := buildListingFilter(ListingQuery{})
	assert.Equal(t, "1=1", cond)
	assert.Empty(t, args)
	assert.Equal(t, "l.created_at DESC", orderBy)
}

func TestBuildListingFilterCategoryAndKind(t *testing.T) {
	cond, args, orderBy := buildListingFilter(ListingQuery{
		Category:   "Cement",
		Kind:       "product",
		ActiveOnly: true,
	})
	assert.Equal(t, "l.category = ? AND l.kind = ? AND l.is_active = TRUE", cond)
	assert.Equal(t, []any{"Cement", "product"}, args)
	assert.Equal(t, "l.created_at DESC", orderBy)
}

func TestBuildListingFilterGeo(t *testing.T) {
	lat, lng := 17.3850, 78.4867
	cond, args, orderBy := buildListingFilter(ListingQuery{Lat: &lat, Lng: &lng, DistanceKm: 5})

	// POINT takes (lng, lat) and the radius is bound in meters.
	assert.Contains(t, cond, "ST_Distance_Sphere(POINT(l.lng, l.lat), POINT(?, ?)) <= ?")
	assert.Equal(t, []any{lng, lat, 5000.0}, args)

	// Geo results are always nearest-first.
	assert.Equal(t, "distance_m ASC", orderBy)
}

func TestBuildListingFilterGeoDefaultRadius(t *testing.T) {
	lat, lng := 17.3850, 78.4867
	_, args, _ := buildListingFilter(ListingQuery{Lat: &lat, Lng: &lng})
	assert.Equal(t, 10000.0, args[len(args)-1], "default radius is 10 km")
}

func TestBuildListingFilterGeoIgnoresSort(t *testing.T) {
	lat, lng := 17.3850, 78.4867
	_, _, orderBy := buildListingFilter(ListingQuery{Lat: &lat, Lng: &lng, Sort: "-price"})
	assert.Equal(t, "distance_m ASC", orderBy)
}

func TestBuildListingFilterSort(t *testing.T) {
	_, _, orderBy := buildListingFilter(ListingQuery{Sort: "-price,title"})
	assert.Equal(t, "l.price DESC, l.title ASC", orderBy)

	// Unknown keys are dropped; an all-unknown sort falls back to the
	// default ordering rather than interpolating client input.
	_, _, orderBy = buildListingFilter(ListingQuery{Sort: "-price; DROP TABLE listings"})
	assert.Equal(t, "l.created_at DESC", orderBy)
}
