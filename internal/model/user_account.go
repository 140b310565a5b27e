package model

import "time"

// Roles a user account can hold. Selling roles may own listings and see
// the seller-side dashboards; customers only create bookings and orders.
const (
	RoleCustomer = "customer"
	RoleSeller   = "seller"
	RoleWorker   = "worker"
	RoleOwner    = "owner"
	RoleAdmin    = "admin"
)

// SellingRoles is the set of roles allowed to create and manage listings.
var SellingRoles = []string{RoleSeller, RoleWorker, RoleOwner, RoleAdmin}

// ValidRole reports whether s is one of the known account roles.
func ValidRole(s string) bool {
	switch s {
	case RoleCustomer, RoleSeller, RoleWorker, RoleOwner, RoleAdmin:
		return true
	}
	return false
}

// IsSellingRole reports whether the role may own listings.
func IsSellingRole(role string) bool {
	for _, r := range SellingRoles {
		if r == role {
			return true
		}
	}
	return false
}

// User represents an account record as stored in the `users` table.
// SellerID is assigned once at registration for selling roles and is
// immutable afterwards; it is nil for customers.
//
// Fields:
//
//	ID               – primary key identifier.
//	Name             – display name.
//	Email            – unique email address.
//	PasswordHash     – bcrypt hashed password. Never serialized.
//	Role             – one of the role constants above.
//	Phone            – contact phone number.
//	SellerID         – category-prefixed sequential code (nullable).
//	SellerCategories – categories the seller trades in.
//	CreatedAt        – timestamp of creation.
//	UpdatedAt        – timestamp of last update.
type User struct {
	ID               uint64    `json:"id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	PasswordHash     string    `json:"-"`
	Role             string    `json:"role"`
	Phone            string    `json:"phone"`
	SellerID         *string   `json:"seller_id,omitempty"`
	SellerCategories []string  `json:"seller_categories,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Address is a customer's saved delivery location.
type Address struct {
	ID          uint64  `json:"id"`
	UserID      uint64  `json:"-"`
	Label       string  `json:"label"`
	AddressLine string  `json:"address_line"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
}
