package utils

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/etukas/marketplace/internal/model"
)

// DefaultSellerCategory is assumed when a selling account registers
// without naming a category.
const DefaultSellerCategory = "Cement"

// rolePrefix maps selling roles to the two-letter code that opens a
// seller identifier. Admins do not receive identifiers.
var rolePrefix = map[string]string{
	model.RoleSeller: "SE",
	model.RoleWorker: "WO",
	model.RoleOwner:  "OW",
}

// SellerIDPrefix derives the identifier prefix for a role and primary
// category: role code plus the upper-cased first letter of the category.
// A seller in "Cement" yields "SEC". The empty string means the role
// carries no identifier.
func SellerIDPrefix(role, primaryCategory string) string {
	code, ok := rolePrefix[role]
	if !ok {
		return ""
	}
	if primaryCategory == "" {
		primaryCategory = DefaultSellerCategory
	}
	first := rune(primaryCategory[0])
	return code + string(unicode.ToUpper(first))
}

// FormatSellerID renders a full identifier from its prefix and sequence
// number, zero-padding the sequence to four digits ("SEC" + 1 -> "SEC0001").
// Sequences past 9999 widen naturally rather than wrapping.
func FormatSellerID(prefix string, seq int) string {
	return fmt.Sprintf("%s%04d", prefix, seq)
}

// SellerIDSequence extracts the numeric sequence from an identifier given
// its prefix. It returns 0 when the identifier does not match the prefix
// or carries no parsable number, so callers start fresh sequences at 1.
func SellerIDSequence(prefix, sellerID string) int {
	if !strings.HasPrefix(sellerID, prefix) {
		return 0
	}
	n, err := strconv.Atoi(sellerID[len(prefix):])
	if err != nil || n < 0 {
		return 0
	}
	return n
}
