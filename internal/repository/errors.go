// Package repository defines sentinel errors reused across repositories.
// Higher layers use them to map store failures onto the API error
// taxonomy instead of leaking driver errors to callers.
package repository

import "errors"

// ErrNotFound is returned when a referenced entity does not exist.
// Handlers translate it into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own. Handlers translate it into HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrEmailExists signals the unique email constraint fired at registration.
var ErrEmailExists = errors.New("email already exists")

// ErrSellerIDExhausted is returned when seller identifier assignment keeps
// colliding after its bounded retries. Concurrent registrations under the
// same category prefix can race; the unique key rejects the loser and the
// repository recomputes, but it gives up rather than spinning.
var ErrSellerIDExhausted = errors.New("seller id assignment failed after retries")

// ErrInvalidTransition is returned when a status update would leave the
// booking/order state diagram. Handlers translate it into HTTP 400.
var ErrInvalidTransition = errors.New("invalid status transition")
