package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/etukas/marketplace/internal/model"
)

func TestSellerIDPrefix(t *testing.T) {
	assert.Equal(t, "SEC", SellerIDPrefix(model.RoleSeller, "Cement"))
	assert.Equal(t, "WOM", SellerIDPrefix(model.RoleWorker, "Masonry"))
	assert.Equal(t, "OWE", SellerIDPrefix(model.RoleOwner, "Earthmovers"))

	// Lowercase category first letter is upper-cased in the prefix.
	assert.Equal(t, "SEC", SellerIDPrefix(model.RoleSeller, "cement"))

	// Missing category falls back to the default.
	assert.Equal(t, "SEC", SellerIDPrefix(model.RoleSeller, ""))

	// Customers and admins carry no identifier.
	assert.Equal(t, "", SellerIDPrefix(model.RoleCustomer, "Cement"))
	assert.Equal(t, "", SellerIDPrefix(model.RoleAdmin, "Cement"))
}

func TestFormatSellerID(t *testing.T) {
	assert.Equal(t, "SEC0001", FormatSellerID("SEC", 1))
	assert.Equal(t, "SEC0042", FormatSellerID("SEC", 42))
	assert.Equal(t, "WOM9999", FormatSellerID("WOM", 9999))

	// Past four digits the number widens instead of wrapping.
	assert.Equal(t, "SEC10000", FormatSellerID("SEC", 10000))
}

func TestSellerIDSequence(t *testing.T) {
	assert.Equal(t, 1, SellerIDSequence("SEC", "SEC0001"))
	assert.Equal(t, 123, SellerIDSequence("SEC", "SEC0123"))
	assert.Equal(t, 10000, SellerIDSequence("SEC", "SEC10000"))

	// Wrong prefix or garbage yields 0 so callers restart at 1.
	assert.Equal(t, 0, SellerIDSequence("SEC", "WOM0001"))
	assert.Equal(t, 0, SellerIDSequence("SEC", "SECxyz"))
	assert.Equal(t, 0, SellerIDSequence("SEC", ""))
}

func TestSellerIDRoundTrip(t *testing.T) {
	// The second seller in a category continues the sequence.
	prefix := SellerIDPrefix(model.RoleSeller, "Cement")
	first := FormatSellerID(prefix, SellerIDSequence(prefix, "")+1)
	assert.Equal(t, "SEC0001", first)

	second := FormatSellerID(prefix, SellerIDSequence(prefix, first)+1)
	assert.Equal(t, "SEC0002", second)
}
