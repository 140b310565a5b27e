package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/etukas/marketplace/internal/handler"
	"github.com/etukas/marketplace/internal/middleware"
	"github.com/etukas/marketplace/internal/model"
	"github.com/etukas/marketplace/internal/repository"
)

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only a health check for load balancers.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth wires registration, login, session and profile-address
// endpoints. Register and login live under /v1/auth without a session;
// everything else rides the Session middleware.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string, sessions *repository.SessionRepo) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)

	auth := e.Group("/v1/auth", middleware.Session(jwtSecret, sessions))
	auth.GET("/me", a.Me)
	// Logout accepts both verbs; clients historically used GET.
	auth.GET("/logout", a.Logout)
	auth.POST("/logout", a.Logout)
	auth.GET("/addresses", a.ListAddresses)
	auth.POST("/addresses", a.AddAddress)
}

// RegisterListings wires the listing surface. Browse endpoints are public
// and served through the response cache; mutations require a session and
// a selling role, with per-listing ownership checked in the handler.
func RegisterListings(e *echo.Echo, h *handler.ListingHandler, jwtSecret string, sessions *repository.SessionRepo, cache echo.MiddlewareFunc) {
	e.GET("/v1/listings", h.List, cache)
	e.GET("/v1/listings/:id", h.Get, cache)

	sell := e.Group("/v1/listings",
		middleware.Session(jwtSecret, sessions),
		middleware.RequireRole(model.SellingRoles...))
	sell.POST("", h.Create)
	sell.PUT("/:id", h.Update)
	sell.DELETE("/:id", h.Delete)
}

// RegisterTransactions wires bookings and orders. All endpoints need a
// session; the seller dashboards additionally need a selling role.
func RegisterTransactions(e *echo.Echo, b *handler.BookingHandler, o *handler.OrderHandler, jwtSecret string, sessions *repository.SessionRepo) {
	sellerOnly := middleware.RequireRole(model.SellingRoles...)

	bg := e.Group("/v1/bookings", middleware.Session(jwtSecret, sessions))
	bg.POST("", b.Create)
	bg.GET("/my", b.My)
	bg.GET("/seller", b.Seller, sellerOnly)
	bg.PUT("/:id", b.UpdateStatus)

	og := e.Group("/v1/orders", middleware.Session(jwtSecret, sessions))
	og.POST("", o.Create)
	og.GET("/my", o.My)
	og.GET("/seller", o.Seller, sellerOnly)
	og.PUT("/:id", o.UpdateStatus)
}
